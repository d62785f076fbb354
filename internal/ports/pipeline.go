package ports

import "time"

// Row is one eligible corpus row: its zero-based position in the file and the
// column values keyed by header name.
type Row struct {
	Num    int
	Fields map[string]string
}

// Chunk is a contiguous range of eligible corpus rows assigned to exactly one
// worker. Assignment is static: chunk ID modulo worker count.
type Chunk struct {
	ID       int
	StartRow int
	EndRow   int
	Rows     int
}

// SearchOptions controls one search job. Zero values fall back to the
// defaults applied by the cmd layer.
type SearchOptions struct {
	TextColumn  string   // corpus column holding the document text
	InputCols   []string // corpus columns copied into the output
	SearchCols  []string // subset of ResultFields plus "count"
	MaxNames    int      // result slots per output row
	Workers     int      // parallel worker count
	Clean       bool     // run the text cleaner before matching
	Stream      bool     // row-granularity results instead of chunk batches
	Resume      bool     // skip chunks checkpointed by a prior run
	OnlyMatches bool     // drop output rows with zero matches
}

// Stats aggregates what happened during a job. Every discarded row or
// candidate is counted somewhere.
type Stats struct {
	RowsProcessed     int           `json:"rows_processed"`
	RowsMatched       int           `json:"rows_matched"`
	RowsSkipped       int           `json:"rows_skipped"`
	TotalMatches      int           `json:"total_matches"`
	KeywordsSkipped   int           `json:"keywords_skipped"`
	DuplicateKeywords int           `json:"duplicate_keywords"`
	DroppedCandidates int           `json:"dropped_candidates"`
	DedupedCandidates int           `json:"deduped_candidates"`
	WorkerErrors      int           `json:"worker_errors"`
	Elapsed           time.Duration `json:"elapsed"`
	RowsPerSec        float64       `json:"rows_per_sec"`
}

// TextCleaner normalizes document text before matching. Cleaning is an
// external collaborator to the matcher: workers apply it per row when the
// job asks for it, and the cleaned text replaces the original in the output.
type TextCleaner interface {
	Clean(text string) string
}
