package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/corey/namescan/internal/adapters/csvio"
	"github.com/corey/namescan/internal/domain/match"
	"github.com/corey/namescan/internal/ports"
)

// SearchJob is one end-to-end search run: load keywords, plan the corpus,
// fan rows out to workers, and write results. A job is single-use.
type SearchJob struct {
	CorpusPath   string
	NamesPath    string
	OutPath      string
	IDColumn     string
	SearchColumn string
	Tiers        match.TierTable
	Opts         ports.SearchOptions
	Cleaner      ports.TextCleaner
	Store        ports.RunStore
	Overwrite    bool
	AppendOutput bool
	Log          zerolog.Logger
}

// Run executes the job. Cancellation via ctx is a normal outcome: the output
// holds every chunk completed so far, the checkpoint store keeps the run
// resumable, and the partial stats are returned without an error.
func (j *SearchJob) Run(ctx context.Context) (*ports.Stats, error) {
	// Stream mode appends rows before their chunk checkpoint commits, so a
	// resumed stream run would write those rows a second time.
	if j.Opts.Stream && j.Opts.Resume {
		return nil, fmt.Errorf("--stream and --resume cannot be combined: checkpoints are chunk-granular")
	}

	entries, skipped, err := LoadKeywords(j.NamesPath, j.IDColumn, j.SearchColumn)
	if err != nil {
		return nil, err
	}
	idx := match.BuildIndex(entries, j.Tiers, j.Log)

	sched := &Scheduler{Workers: j.Opts.Workers, Keywords: idx.Len(), Log: j.Log}
	plan, err := sched.PlanCorpus(j.CorpusPath, j.Opts.TextColumn)
	if err != nil {
		return nil, err
	}

	runID := j.runID()
	chunks := plan.Chunks
	resumed := 0
	if j.Opts.Resume && j.Store != nil {
		if prior, err := j.Store.LoadStats(runID); err == nil && prior != nil {
			j.Log.Info().
				Int("rows", prior.RowsProcessed).
				Int("matched", prior.RowsMatched).
				Msg("prior run stats")
		}
		done, err := j.Store.CompletedChunks(runID)
		if err != nil {
			return nil, fmt.Errorf("load checkpoint: %w", err)
		}
		if len(done) > 0 {
			kept := chunks[:0]
			for _, c := range chunks {
				if done[c.ID] {
					resumed++
					continue
				}
				kept = append(kept, c)
			}
			chunks = kept
			j.Log.Info().Int("completed_chunks", resumed).Msg("resuming prior run")
		}
	}

	w, fresh, err := j.openOutput()
	if err != nil {
		return nil, err
	}
	defer w.Close()
	if fresh {
		if err := w.Write(BuildHeader(plan.Header, j.Opts)); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	pool := &WorkerPool{
		CorpusPath: j.CorpusPath,
		Index:      idx,
		Cleaner:    j.Cleaner,
		Opts:       j.Opts,
		Header:     plan.Header,
		Log:        j.Log,
	}
	results, err := pool.Run(ctx, chunks)
	if err != nil {
		return nil, err
	}

	writer := &ResultWriter{
		W:           w,
		Log:         j.Log,
		Store:       j.Store,
		RunID:       runID,
		PlannedRows: plan.Eligible,
	}
	stats := writer.Drain(results)
	stats.RowsSkipped = plan.Skipped
	stats.KeywordsSkipped = skipped
	stats.DuplicateKeywords = idx.Duplicates()

	if err := w.Flush(); err != nil {
		return stats, fmt.Errorf("flush output: %w", err)
	}

	if j.Store != nil {
		if err := j.Store.SaveStats(runID, stats); err != nil {
			j.Log.Warn().Err(err).Msg("save run stats")
		}
		// A cancelled run keeps its checkpoint so --resume can pick it up.
		if ctx.Err() == nil && stats.WorkerErrors == 0 {
			if err := j.Store.DeleteRun(runID); err != nil {
				j.Log.Warn().Err(err).Msg("clear checkpoint")
			}
		}
	}

	j.Log.Info().
		Int("rows", stats.RowsProcessed).
		Int("matched", stats.RowsMatched).
		Int("matches", stats.TotalMatches).
		Int("skipped", stats.RowsSkipped).
		Dur("elapsed", stats.Elapsed).
		Msg("search complete")
	return stats, nil
}

// runID ties checkpoints to the output/corpus pair, so the same corpus
// searched into a different output file is a different run.
func (j *SearchJob) runID() string {
	return j.OutPath + "::" + j.CorpusPath
}

// openOutput opens the output writer and reports whether the header still
// needs writing. Refusing to clobber an existing file is the default; the
// caller opts into Overwrite or AppendOutput explicitly.
func (j *SearchJob) openOutput() (*csvio.Writer, bool, error) {
	_, statErr := os.Stat(j.OutPath)
	exists := statErr == nil

	switch {
	case j.AppendOutput && exists:
		w, err := csvio.Append(j.OutPath)
		return w, false, err
	case exists && !j.Overwrite && !j.Opts.Resume:
		return nil, false, fmt.Errorf("output %s already exists (use --overwrite or --resume)", j.OutPath)
	case exists && j.Opts.Resume:
		w, err := csvio.Append(j.OutPath)
		return w, false, err
	default:
		w, err := csvio.Create(j.OutPath)
		return w, true, err
	}
}

// LoadKeywords reads the names file and returns one entry per row, in file
// order, plus how many rows were skipped for being malformed or having a
// blank search name. Missing id or search columns are setup errors.
func LoadKeywords(path, idColumn, searchColumn string) ([]ports.KeywordEntry, int, error) {
	r, err := csvio.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer r.Close()

	if !contains(r.Header(), idColumn) {
		return nil, 0, fmt.Errorf("names %s: required column %q not found", path, idColumn)
	}
	if !contains(r.Header(), searchColumn) {
		return nil, 0, fmt.Errorf("names %s: required column %q not found", path, searchColumn)
	}

	var entries []ports.KeywordEntry
	skipped := 0
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.Is(err, csvio.ErrRowShape) {
				skipped++
				continue
			}
			return nil, 0, fmt.Errorf("read names %s: %w", path, err)
		}
		if strings.TrimSpace(row[searchColumn]) == "" {
			skipped++
			continue
		}
		entries = append(entries, ports.KeywordEntry{
			GroupID: row[idColumn],
			Keyword: row[searchColumn],
		})
	}
	return entries, skipped, nil
}
