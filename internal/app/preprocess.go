package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/corey/namescan/internal/adapters/csvio"
	"github.com/corey/namescan/internal/domain/match"
	"github.com/corey/namescan/internal/domain/pattern"
	"github.com/corey/namescan/internal/ports"
)

// PreprocessJob expands a structured names file into the flat search-name
// list the search command consumes: template expansion, drop-list filtering,
// then pairwise edit-distance deduplication across the whole list.
type PreprocessJob struct {
	NamesPath string
	OutPath   string
	DropPath  string
	IDColumn  string
	Templates []string
	Tiers     match.TierTable
	Log       zerolog.Logger
}

// Run reads every record, generates candidates, dedupes them, and writes the
// output with the input columns plus a search_name column. One input record
// yields one output row per surviving candidate.
func (j *PreprocessJob) Run() (*ports.Stats, error) {
	dropList, err := loadDropList(j.DropPath)
	if err != nil {
		return nil, err
	}

	r, err := csvio.Open(j.NamesPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !contains(r.Header(), j.IDColumn) {
		return nil, fmt.Errorf("names %s: required column %q not found", j.NamesPath, j.IDColumn)
	}
	header := r.Header()

	stats := &ports.Stats{}
	var cands []ports.Candidate
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.Is(err, csvio.ErrRowShape) {
				stats.RowsSkipped++
				continue
			}
			return nil, fmt.Errorf("read names %s: %w", j.NamesPath, err)
		}
		stats.RowsProcessed++

		generated, dropped := pattern.Generate(row, j.IDColumn, j.Templates, dropList)
		stats.DroppedCandidates += dropped
		cands = append(cands, generated...)
	}

	kept, removed := pattern.Deduplicate(cands, j.Tiers)
	stats.DedupedCandidates = removed
	j.Log.Info().
		Int("records", stats.RowsProcessed).
		Int("candidates", len(cands)).
		Int("deduped", removed).
		Int("kept", len(kept)).
		Msg("names preprocessed")

	w, err := csvio.Create(j.OutPath)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	outHeader := append(append([]string{}, header...), "search_name")
	if err := w.Write(outHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, c := range kept {
		row := make([]string, 0, len(outHeader))
		for _, col := range header {
			row = append(row, c.Row[col])
		}
		row = append(row, c.Name)
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write candidate: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("flush output: %w", err)
	}
	return stats, nil
}

// loadDropList reads one lowercased name per line, skipping blanks. An empty
// path means no drop list.
func loadDropList(path string) (map[string]bool, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open drop list: %w", err)
	}
	defer f.Close()

	drop := make(map[string]bool)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.ToLower(strings.TrimSpace(sc.Text()))
		if line == "" {
			continue
		}
		drop[line] = true
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read drop list: %w", err)
	}
	return drop, nil
}
