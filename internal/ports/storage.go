package ports

// RunStore checkpoints search-run progress to durable storage so an
// interrupted run can be resumed without re-scanning completed chunks.
// Runs are keyed by output path. The matcher index itself is never
// persisted; it is rebuilt in memory for every job.
//
// Crash safety: MarkChunkDone must be transactional. A crash mid-write must
// not corrupt previously committed chunk records.
type RunStore interface {
	// CompletedChunks returns the set of chunk IDs already finished for a
	// run. Returns an empty set for an unknown run.
	CompletedChunks(runID string) (map[int]bool, error)

	// MarkChunkDone records that a chunk finished and how many rows it
	// produced. Idempotent.
	MarkChunkDone(runID string, chunkID int, rows int) error

	// SaveStats persists the final aggregate statistics for a run.
	// Overwrites prior stats.
	SaveStats(runID string, stats *Stats) error

	// LoadStats retrieves the persisted statistics for a run, or nil when
	// none were saved.
	LoadStats(runID string) (*Stats, error)

	// DeleteRun removes all checkpoint data for a run. Idempotent: deleting
	// an unknown run is not an error.
	DeleteRun(runID string) error

	// Close releases the underlying storage.
	Close() error
}
