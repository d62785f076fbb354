package app

import (
	"context"

	"github.com/corey/namescan/internal/ports"
)

// followQueueDepth bounds how many discovered files can wait while a search
// is in flight.
const followQueueDepth = 16

// Follow watches dir for new corpus files and runs the job against each one
// as it settles, appending to the shared output file. Runs are serialized so
// the checkpoint store and output writer never see two jobs at once. Follow
// returns when ctx is cancelled.
func (j *SearchJob) Follow(ctx context.Context, dir string, watcher ports.CorpusWatcher) error {
	jobs := make(chan string, followQueueDepth)
	err := watcher.Watch(dir, func(path string) {
		select {
		case jobs <- path:
		default:
			j.Log.Warn().Str("file", path).Msg("follow queue full, dropping file")
		}
	})
	if err != nil {
		return err
	}
	defer watcher.Stop()

	if j.CorpusPath != "" {
		if _, err := j.Run(ctx); err != nil {
			return err
		}
	}

	j.Log.Info().Str("dir", dir).Msg("watching for corpus files")
	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-jobs:
			run := *j
			run.CorpusPath = path
			run.AppendOutput = true
			run.Overwrite = false
			if _, err := run.Run(ctx); err != nil {
				j.Log.Error().Err(err).Str("file", path).Msg("follow search failed")
			}
		}
	}
}
