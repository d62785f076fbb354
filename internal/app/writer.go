package app

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/corey/namescan/internal/adapters/csvio"
	"github.com/corey/namescan/internal/ports"
)

// progressInterval paces the writer's progress log lines.
const progressInterval = 2 * time.Second

// BuildHeader derives the output header from the corpus header and the
// search options: the copied input columns in corpus order, then
// name{i}.{field} for every result slot and selected field, then "count"
// when requested.
func BuildHeader(corpusHeader []string, opts ports.SearchOptions) []string {
	include := make(map[string]bool, len(opts.InputCols))
	for _, c := range opts.InputCols {
		include[c] = true
	}
	selected := selectedFields(opts.SearchCols)

	header := make([]string, 0, len(opts.InputCols)+opts.MaxNames*len(selected)+1)
	for _, col := range corpusHeader {
		if include[col] {
			header = append(header, col)
		}
	}
	for i := 1; i <= opts.MaxNames; i++ {
		for _, f := range selected {
			header = append(header, fmt.Sprintf("name%d.%s", i, f))
		}
	}
	if wantCount(opts.SearchCols) {
		header = append(header, "count")
	}
	return header
}

// ResultWriter is the single consumer of the pool's results channel. It
// appends rows to the output file, checkpoints finished chunks, and keeps
// the run totals.
type ResultWriter struct {
	W           *csvio.Writer
	Log         zerolog.Logger
	Store       ports.RunStore
	RunID       string
	PlannedRows int
}

// Drain consumes results until the channel closes and returns the
// accumulated run stats. Errors reported by workers are logged and counted;
// rows that arrived with them are still written.
func (w *ResultWriter) Drain(results <-chan chunkResult) *ports.Stats {
	stats := &ports.Stats{}
	start := time.Now()
	lastLog := start

	for res := range results {
		if res.Err != nil {
			stats.WorkerErrors++
			w.Log.Error().Err(res.Err).Int("chunk", res.ChunkID).Msg("worker failed")
		}
		for _, row := range res.Rows {
			if err := w.W.Write(row); err != nil {
				stats.WorkerErrors++
				w.Log.Error().Err(err).Int("chunk", res.ChunkID).Msg("write row")
				break
			}
		}
		if !res.Done {
			continue
		}

		stats.RowsProcessed += res.Stats.Rows
		stats.RowsMatched += res.Stats.Matched
		stats.TotalMatches += res.Stats.Matches
		if err := w.W.Flush(); err != nil {
			stats.WorkerErrors++
			w.Log.Error().Err(err).Int("chunk", res.ChunkID).Msg("flush output")
		}
		if w.Store != nil && res.Err == nil {
			if err := w.Store.MarkChunkDone(w.RunID, res.ChunkID, res.Stats.Rows); err != nil {
				w.Log.Warn().Err(err).Int("chunk", res.ChunkID).Msg("checkpoint chunk")
			}
		}

		if time.Since(lastLog) >= progressInterval {
			lastLog = time.Now()
			w.logProgress(stats, start)
		}
	}

	stats.Elapsed = time.Since(start)
	if secs := stats.Elapsed.Seconds(); secs > 0 {
		stats.RowsPerSec = float64(stats.RowsProcessed) / secs
	}
	return stats
}

func (w *ResultWriter) logProgress(stats *ports.Stats, start time.Time) {
	rate := float64(stats.RowsProcessed) / time.Since(start).Seconds()
	ev := w.Log.Info().
		Int("rows", stats.RowsProcessed).
		Int("matched", stats.RowsMatched).
		Float64("rows_per_sec", rate)
	if w.PlannedRows > 0 && rate > 0 {
		remaining := w.PlannedRows - stats.RowsProcessed
		ev = ev.Dur("eta", time.Duration(float64(remaining)/rate*float64(time.Second)))
	}
	ev.Msg("search progress")
}
