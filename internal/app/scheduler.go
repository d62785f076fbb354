// Package app wires the pipeline together: chunk planning, the worker pool,
// result writing, and the job-level operations exposed by the CLI.
package app

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/corey/namescan/internal/adapters/csvio"
	"github.com/corey/namescan/internal/ports"
)

// Chunk size tuning bounds. Chunk size shrinks as worker count and keyword
// count grow, to bound per-chunk matcher cost and smooth load.
const (
	baseChunkSize = 1000
	minChunkSize  = 100
	maxChunkSize  = 5000
)

// Scheduler plans the static work distribution for one corpus file.
type Scheduler struct {
	Workers  int
	Keywords int
	Log      zerolog.Logger
}

// Plan holds everything learned from the planning scan: the chunks, the
// corpus header, and how many rows were eligible vs skipped.
type Plan struct {
	Chunks   []ports.Chunk
	Header   []string
	Eligible int
	Skipped  int
}

// ChunkSize auto-tunes the rows-per-chunk target:
// clamp(base/workers/complexity, min, max), where complexity grows with the
// keyword count (more keywords mean smaller chunks).
func (s *Scheduler) ChunkSize() int {
	workers := s.Workers
	if workers < 1 {
		workers = 1
	}
	base := baseChunkSize / workers
	if base < minChunkSize {
		base = minChunkSize
	}

	complexity := float64(s.Keywords) / 100
	if complexity < 1 {
		complexity = 1
	}
	if complexity > 5 {
		complexity = 5
	}

	size := int(float64(base) / complexity)
	if size < minChunkSize {
		size = minChunkSize
	}
	if size > maxChunkSize {
		size = maxChunkSize
	}
	return size
}

// PlanCorpus streams the corpus once, skipping rows whose text column is
// absent or blank, and groups consecutive eligible row numbers into chunks.
// Row numbers are zero-based data-row positions (the header is row -1, so to
// speak). A missing text column is a setup error; malformed rows are counted
// and skipped.
func (s *Scheduler) PlanCorpus(path, textColumn string) (*Plan, error) {
	r, err := csvio.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if !contains(r.Header(), textColumn) {
		return nil, fmt.Errorf("corpus %s: required column %q not found", path, textColumn)
	}

	size := s.ChunkSize()
	plan := &Plan{Header: r.Header()}
	cur := ports.Chunk{StartRow: -1}

	rowNum := -1
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			if errors.Is(err, csvio.ErrRowShape) {
				plan.Skipped++
				continue
			}
			return nil, fmt.Errorf("scan corpus %s: %w", path, err)
		}
		if strings.TrimSpace(row[textColumn]) == "" {
			plan.Skipped++
			continue
		}

		if cur.StartRow < 0 {
			cur.StartRow = rowNum
		}
		cur.EndRow = rowNum
		cur.Rows++
		plan.Eligible++

		if cur.Rows >= size {
			plan.Chunks = append(plan.Chunks, cur)
			cur = ports.Chunk{ID: len(plan.Chunks), StartRow: -1}
		}
	}
	if cur.Rows > 0 {
		plan.Chunks = append(plan.Chunks, cur)
	}

	s.Log.Info().
		Int("chunks", len(plan.Chunks)).
		Int("chunk_size", size).
		Int("eligible_rows", plan.Eligible).
		Int("skipped_rows", plan.Skipped).
		Msg("corpus planned")
	return plan, nil
}

func contains(cols []string, want string) bool {
	for _, c := range cols {
		if c == want {
			return true
		}
	}
	return false
}
