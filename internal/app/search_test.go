package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/namescan/internal/adapters/csvio"
	"github.com/corey/namescan/internal/adapters/runstore"
	"github.com/corey/namescan/internal/ports"
)

func writeCSV(t *testing.T, path string, rows [][]string) {
	t.Helper()
	w, err := csvio.Create(path)
	require.NoError(t, err)
	for _, row := range rows {
		require.NoError(t, w.Write(row))
	}
	require.NoError(t, w.Close())
}

func readCSV(t *testing.T, path string) ([]string, []map[string]string) {
	t.Helper()
	r, err := csvio.Open(path)
	require.NoError(t, err)
	defer r.Close()

	var rows []map[string]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}
	return r.Header(), rows
}

func defaultOpts(workers int) ports.SearchOptions {
	return ports.SearchOptions{
		TextColumn: "text",
		InputCols:  []string{"uniqid", "text"},
		SearchCols: []string{"uniqid", "n", "match", "start", "end", "count"},
		MaxNames:   2,
		Workers:    workers,
	}
}

func newJob(t *testing.T, names, corpus [][]string, opts ports.SearchOptions) *SearchJob {
	t.Helper()
	dir := t.TempDir()
	namesPath := filepath.Join(dir, "names.csv")
	corpusPath := filepath.Join(dir, "corpus.csv")
	writeCSV(t, namesPath, names)
	writeCSV(t, corpusPath, corpus)

	return &SearchJob{
		CorpusPath:   corpusPath,
		NamesPath:    namesPath,
		OutPath:      filepath.Join(dir, "results.csv"),
		IDColumn:     "uniqid",
		SearchColumn: "search_name",
		Opts:         opts,
		Log:          zerolog.Nop(),
	}
}

func TestBuildHeader(t *testing.T) {
	opts := ports.SearchOptions{
		InputCols:  []string{"text", "uniqid"},
		SearchCols: []string{"uniqid", "n", "count"},
		MaxNames:   2,
	}

	header := BuildHeader([]string{"uniqid", "date", "text"}, opts)
	assert.Equal(t, []string{
		"uniqid", "text",
		"name1.uniqid", "name1.n",
		"name2.uniqid", "name2.n",
		"count",
	}, header)
}

func TestSearchJob_EndToEnd(t *testing.T) {
	names := [][]string{
		{"uniqid", "search_name"},
		{"N1", "john smith"},
		{"N2", "alice brown"},
	}
	corpus := [][]string{
		{"uniqid", "text"},
		{"0", "John Smith met Alice Brown"},
		{"1", "nothing of note"},
		{"2", "alice brown, then alice brown again"},
	}

	job := newJob(t, names, corpus, defaultOpts(1))
	stats, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.RowsProcessed)
	assert.Equal(t, 2, stats.RowsMatched)
	assert.Equal(t, 4, stats.TotalMatches)

	header, rows := readCSV(t, job.OutPath)
	assert.Equal(t, BuildHeader([]string{"uniqid", "text"}, job.Opts), header)
	require.Len(t, rows, 3)

	byID := make(map[string]map[string]string, len(rows))
	for _, row := range rows {
		byID[row["uniqid"]] = row
	}

	first := byID["0"]
	assert.Equal(t, "N1", first["name1.uniqid"])
	assert.Equal(t, "1", first["name1.n"])
	assert.Equal(t, "John Smith", first["name1.match"])
	assert.Equal(t, "0", first["name1.start"])
	assert.Equal(t, "10", first["name1.end"])
	assert.Equal(t, "N2", first["name2.uniqid"])
	assert.Equal(t, "2", first["count"])

	empty := byID["1"]
	assert.Equal(t, "", empty["name1.uniqid"])
	assert.Equal(t, "0", empty["count"])

	repeat := byID["2"]
	assert.Equal(t, "N2", repeat["name1.uniqid"])
	assert.Equal(t, "2", repeat["name1.n"])
	assert.Equal(t, "alice brown;alice brown", repeat["name1.match"])
	assert.Equal(t, "2", repeat["count"])
}

func TestSearchJob_WorkerCountInvariant(t *testing.T) {
	names := [][]string{
		{"uniqid", "search_name"},
		{"N1", "maria lopez"},
		{"N2", "david cohen"},
	}
	corpus := [][]string{{"uniqid", "text"}}
	for i := 0; i < 600; i++ {
		text := "filler text for this row"
		switch i % 3 {
		case 0:
			text = "maria lopez appeared here"
		case 1:
			text = "david cohen and maria lopez"
		}
		corpus = append(corpus, []string{fmt.Sprintf("%d", i), text})
	}

	collect := func(workers int) []string {
		job := newJob(t, names, corpus, defaultOpts(workers))
		_, err := job.Run(context.Background())
		require.NoError(t, err)
		_, rows := readCSV(t, job.OutPath)
		keys := make([]string, len(rows))
		for i, row := range rows {
			keys[i] = fmt.Sprintf("%s|%s|%s|%s", row["uniqid"], row["name1.uniqid"], row["name2.uniqid"], row["count"])
		}
		sort.Strings(keys)
		return keys
	}

	assert.Equal(t, collect(1), collect(4))
}

func TestSearchJob_OnlyMatches(t *testing.T) {
	names := [][]string{{"uniqid", "search_name"}, {"N1", "john smith"}}
	corpus := [][]string{
		{"uniqid", "text"},
		{"0", "john smith was here"},
		{"1", "nobody else"},
	}

	opts := defaultOpts(1)
	opts.OnlyMatches = true
	job := newJob(t, names, corpus, opts)
	stats, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.RowsProcessed)
	_, rows := readCSV(t, job.OutPath)
	require.Len(t, rows, 1)
	assert.Equal(t, "0", rows[0]["uniqid"])
}

func TestSearchJob_RefusesExistingOutput(t *testing.T) {
	names := [][]string{{"uniqid", "search_name"}, {"N1", "john smith"}}
	corpus := [][]string{{"uniqid", "text"}, {"0", "john smith"}}

	job := newJob(t, names, corpus, defaultOpts(1))
	writeCSV(t, job.OutPath, [][]string{{"existing"}})

	_, err := job.Run(context.Background())
	assert.ErrorContains(t, err, "already exists")
}

func TestSearchJob_Resume(t *testing.T) {
	names := [][]string{{"uniqid", "search_name"}, {"N1", "john smith"}}
	corpus := [][]string{
		{"uniqid", "text"},
		{"0", "john smith"},
		{"1", "john smith again"},
	}

	opts := defaultOpts(1)
	opts.Resume = true
	job := newJob(t, names, corpus, opts)

	store, err := runstore.NewStore(job.OutPath + ".checkpoint")
	require.NoError(t, err)
	defer store.Close()
	job.Store = store

	// The single planned chunk is already checkpointed: nothing to do.
	require.NoError(t, store.MarkChunkDone(job.runID(), 0, 2))

	stats, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.RowsProcessed)

	_, rows := readCSV(t, job.OutPath)
	assert.Empty(t, rows)
}

func TestSearchJob_ResumeRejectsStream(t *testing.T) {
	names := [][]string{{"uniqid", "search_name"}, {"N1", "john smith"}}
	corpus := [][]string{{"uniqid", "text"}, {"0", "john smith"}}

	// Stream rows land in the output before their chunk checkpoint does;
	// resuming would append them again.
	opts := defaultOpts(1)
	opts.Stream = true
	opts.Resume = true
	job := newJob(t, names, corpus, opts)

	_, err := job.Run(context.Background())
	assert.ErrorContains(t, err, "cannot be combined")
}

func TestSearchJob_ResumeLogsPriorStats(t *testing.T) {
	names := [][]string{{"uniqid", "search_name"}, {"N1", "john smith"}}
	corpus := [][]string{
		{"uniqid", "text"},
		{"0", "john smith"},
		{"1", "john smith again"},
	}

	opts := defaultOpts(1)
	opts.Resume = true
	job := newJob(t, names, corpus, opts)

	store, err := runstore.NewStore(job.OutPath + ".checkpoint")
	require.NoError(t, err)
	defer store.Close()
	job.Store = store

	// State an interrupted run leaves behind: a checkpointed chunk and
	// its saved stats.
	require.NoError(t, store.MarkChunkDone(job.runID(), 0, 2))
	require.NoError(t, store.SaveStats(job.runID(), &ports.Stats{RowsProcessed: 2}))

	var buf bytes.Buffer
	job.Log = zerolog.New(&buf)

	_, err = job.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "prior run stats")
}

func TestSearchJob_StreamMode(t *testing.T) {
	names := [][]string{{"uniqid", "search_name"}, {"N1", "john smith"}}
	corpus := [][]string{
		{"uniqid", "text"},
		{"0", "john smith"},
		{"1", "no match"},
	}

	opts := defaultOpts(1)
	opts.Stream = true
	job := newJob(t, names, corpus, opts)
	stats, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.RowsProcessed)
	_, rows := readCSV(t, job.OutPath)
	assert.Len(t, rows, 2)
}

func TestSearchJob_MissingNamesColumn(t *testing.T) {
	names := [][]string{{"uniqid", "wrong_column"}, {"N1", "john smith"}}
	corpus := [][]string{{"uniqid", "text"}, {"0", "x"}}

	job := newJob(t, names, corpus, defaultOpts(1))
	_, err := job.Run(context.Background())
	assert.ErrorContains(t, err, `"search_name"`)
}

func TestLoadKeywords_CountsSkippedRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "names.csv")
	writeCSV(t, path, [][]string{
		{"uniqid", "search_name"},
		{"N1", "john smith"},
		{"N2", "   "},
		{"N3"},
		{"N4", "alice brown"},
	})

	entries, skipped, err := LoadKeywords(path, "uniqid", "search_name")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 2, skipped)
	assert.Equal(t, "N1", entries[0].GroupID)
	assert.Equal(t, "N4", entries[1].GroupID)
}

func TestSearchJob_StatsCountSkippedKeywords(t *testing.T) {
	names := [][]string{
		{"uniqid", "search_name"},
		{"N1", "john smith"},
		{"N2", ""},
	}
	corpus := [][]string{{"uniqid", "text"}, {"0", "john smith"}}

	job := newJob(t, names, corpus, defaultOpts(1))
	stats, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.KeywordsSkipped)
}
