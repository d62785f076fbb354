package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/corey/namescan/internal/adapters/csvio"
	"github.com/corey/namescan/internal/domain/match"
	"github.com/corey/namescan/internal/ports"
)

// Per-worker feed depth and the results fan-in multiplier. Small on purpose:
// the reader must stall when workers fall behind, and workers must stall when
// the writer falls behind.
const (
	feedDepth    = 2
	resultsDepth = 2
)

// chunkStats is the per-chunk slice of the run totals.
type chunkStats struct {
	Rows    int
	Matched int
	Matches int
}

// chunkResult is one unit of writer work. In batch mode each chunk produces
// exactly one result with Done set. In stream mode a chunk produces one
// result per row followed by an empty Done marker, so the writer can still
// checkpoint chunk completion.
type chunkResult struct {
	ChunkID int
	Rows    [][]string
	Stats   chunkStats
	Done    bool
	Err     error
}

type chunkPayload struct {
	Chunk ports.Chunk
	Rows  []ports.Row
}

// WorkerPool runs the matching phase: a reader goroutine re-streams the
// corpus and routes rows to statically assigned workers, each of which owns
// its own matcher. Results flow to a single consumer over a bounded channel.
type WorkerPool struct {
	CorpusPath string
	Index      *match.KeywordIndex
	Cleaner    ports.TextCleaner
	Opts       ports.SearchOptions
	Header     []string
	Log        zerolog.Logger
}

// Run starts the reader and workers and returns the results channel. The
// channel closes once every chunk in chunks has been fully processed or ctx
// is cancelled. Chunks are assigned by ID modulo worker count, so the same
// plan always yields the same assignment.
func (p *WorkerPool) Run(ctx context.Context, chunks []ports.Chunk) (<-chan chunkResult, error) {
	workers := p.Opts.Workers
	if workers < 1 {
		workers = 1
	}

	feeds := make([]chan chunkPayload, workers)
	for i := range feeds {
		feeds[i] = make(chan chunkPayload, feedDepth)
	}
	results := make(chan chunkResult, resultsDepth*workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(feed <-chan chunkPayload) {
			defer wg.Done()
			p.worker(ctx, feed, results)
		}(feeds[i])
	}

	go func() {
		if err := p.read(ctx, chunks, feeds, workers); err != nil && !errors.Is(err, context.Canceled) {
			results <- chunkResult{Err: err}
		}
		for _, feed := range feeds {
			close(feed)
		}
		wg.Wait()
		close(results)
	}()

	return results, nil
}

// read re-streams the corpus with the same eligibility rules the planner
// used, collects each chunk's rows, and hands the payload to the chunk's
// worker. Rows belonging to chunks absent from the plan (already completed
// in a resumed run) are read and discarded.
func (p *WorkerPool) read(ctx context.Context, chunks []ports.Chunk, feeds []chan chunkPayload, workers int) error {
	r, err := csvio.Open(p.CorpusPath)
	if err != nil {
		return err
	}
	defer r.Close()

	// Chunks arrive ordered by StartRow; walk them in lockstep with the rows.
	next := 0
	var cur *chunkPayload

	flush := func() error {
		if cur == nil {
			return nil
		}
		feed := feeds[cur.Chunk.ID%workers]
		select {
		case feed <- *cur:
		case <-ctx.Done():
			return ctx.Err()
		}
		cur = nil
		return nil
	}

	rowNum := -1
	for next < len(chunks) {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			if errors.Is(err, csvio.ErrRowShape) {
				continue
			}
			return fmt.Errorf("read corpus %s: %w", p.CorpusPath, err)
		}
		if strings.TrimSpace(fields[p.Opts.TextColumn]) == "" {
			continue
		}

		if rowNum < chunks[next].StartRow {
			continue // row belongs to a chunk completed by a prior run
		}
		if cur == nil {
			cur = &chunkPayload{Chunk: chunks[next], Rows: make([]ports.Row, 0, chunks[next].Rows)}
		}
		cur.Rows = append(cur.Rows, ports.Row{Num: rowNum, Fields: fields})
		if rowNum == chunks[next].EndRow {
			if err := flush(); err != nil {
				return err
			}
			next++
		}
	}
	return flush()
}

// worker builds its matcher once and processes every chunk on its feed.
func (p *WorkerPool) worker(ctx context.Context, feed <-chan chunkPayload, results chan<- chunkResult) {
	m := match.NewMatcher(p.Index)
	for payload := range feed {
		for _, res := range p.processChunk(m, payload) {
			select {
			case results <- res:
			case <-ctx.Done():
				return
			}
		}
	}
}

// processChunk turns one chunk into writer work. A panic while matching is
// contained to the chunk: rows built so far are kept and the error is
// reported alongside them.
func (p *WorkerPool) processChunk(m *match.Matcher, payload chunkPayload) (out []chunkResult) {
	var stats chunkStats
	rows := make([][]string, 0, len(payload.Rows))

	defer func() {
		if r := recover(); r != nil {
			out = append(out, chunkResult{
				ChunkID: payload.Chunk.ID,
				Rows:    rows,
				Stats:   stats,
				Done:    true,
				Err:     fmt.Errorf("chunk %d: worker panic: %v", payload.Chunk.ID, r),
			})
		}
	}()

	for _, row := range payload.Rows {
		text := row.Fields[p.Opts.TextColumn]
		if p.Cleaner != nil {
			text = p.Cleaner.Clean(text)
		}
		groups, total := m.Search(text, p.Opts.MaxNames)

		stats.Rows++
		stats.Matches += total
		if total > 0 {
			stats.Matched++
		}
		if p.Opts.OnlyMatches && total == 0 {
			continue
		}

		built := p.buildRow(row.Fields, text, groups, total)
		if p.Opts.Stream {
			out = append(out, chunkResult{ChunkID: payload.Chunk.ID, Rows: [][]string{built}})
		} else {
			rows = append(rows, built)
		}
	}

	if p.Opts.Stream {
		out = append(out, chunkResult{ChunkID: payload.Chunk.ID, Stats: stats, Done: true})
		return out
	}
	return append(out, chunkResult{ChunkID: payload.Chunk.ID, Rows: rows, Stats: stats, Done: true})
}

// buildRow assembles one output record: the copied input columns in corpus
// header order, then per-slot result fields, then the total count when
// selected. The text column carries the cleaned text when cleaning is on.
func (p *WorkerPool) buildRow(fields map[string]string, text string, groups []match.Group, total int) []string {
	include := make(map[string]bool, len(p.Opts.InputCols))
	for _, c := range p.Opts.InputCols {
		include[c] = true
	}
	selected := selectedFields(p.Opts.SearchCols)

	row := make([]string, 0, len(p.Opts.InputCols)+len(groups)*len(selected)+1)
	for _, col := range p.Header {
		if !include[col] {
			continue
		}
		if col == p.Opts.TextColumn {
			row = append(row, text)
		} else {
			row = append(row, fields[col])
		}
	}

	for _, g := range groups {
		for _, f := range selected {
			row = append(row, slotField(g, f))
		}
	}
	if wantCount(p.Opts.SearchCols) {
		row = append(row, strconv.Itoa(total))
	}
	return row
}

// slotField renders one result field for one slot. Empty slots render as
// empty strings across the board.
func slotField(g match.Group, field string) string {
	if len(g.Spans) == 0 {
		return ""
	}
	switch field {
	case "uniqid":
		return g.GroupID
	case "n":
		return strconv.Itoa(g.Count())
	case "match":
		parts := make([]string, len(g.Spans))
		for i, s := range g.Spans {
			parts[i] = s.Text
		}
		return strings.Join(parts, ";")
	case "start":
		parts := make([]string, len(g.Spans))
		for i, s := range g.Spans {
			parts[i] = strconv.Itoa(s.Start)
		}
		return strings.Join(parts, ";")
	case "end":
		parts := make([]string, len(g.Spans))
		for i, s := range g.Spans {
			parts[i] = strconv.Itoa(s.End)
		}
		return strings.Join(parts, ";")
	}
	return ""
}

// selectedFields filters the requested search columns down to per-slot
// result fields, preserving the canonical field order.
func selectedFields(searchCols []string) []string {
	want := make(map[string]bool, len(searchCols))
	for _, c := range searchCols {
		want[c] = true
	}
	out := make([]string, 0, len(ports.ResultFields))
	for _, f := range ports.ResultFields {
		if want[f] {
			out = append(out, f)
		}
	}
	return out
}

func wantCount(searchCols []string) bool {
	for _, c := range searchCols {
		if c == "count" {
			return true
		}
	}
	return false
}
