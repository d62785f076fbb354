package runstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/namescan/internal/ports"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "run.checkpoint"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMarkAndLoadChunks(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.MarkChunkDone("run1", 0, 250))
	require.NoError(t, s.MarkChunkDone("run1", 2, 250))

	done, err := s.CompletedChunks("run1")
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{0: true, 2: true}, done)
}

func TestCompletedChunks_UnknownRun(t *testing.T) {
	s := newStore(t)

	done, err := s.CompletedChunks("never-seen")
	require.NoError(t, err)
	assert.Empty(t, done)
}

func TestRunsAreIsolated(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.MarkChunkDone("run1", 0, 10))
	require.NoError(t, s.MarkChunkDone("run2", 7, 10))

	done, err := s.CompletedChunks("run1")
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{0: true}, done)
}

func TestSaveAndLoadStats(t *testing.T) {
	s := newStore(t)

	in := &ports.Stats{RowsProcessed: 1000, RowsMatched: 42, TotalMatches: 99}
	require.NoError(t, s.SaveStats("run1", in))

	out, err := s.LoadStats("run1")
	require.NoError(t, err)
	assert.Equal(t, in.RowsProcessed, out.RowsProcessed)
	assert.Equal(t, in.RowsMatched, out.RowsMatched)
	assert.Equal(t, in.TotalMatches, out.TotalMatches)
}

func TestDeleteRun(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.MarkChunkDone("run1", 0, 10))
	require.NoError(t, s.DeleteRun("run1"))

	done, err := s.CompletedChunks("run1")
	require.NoError(t, err)
	assert.Empty(t, done)

	// Deleting a run that never existed is not an error.
	assert.NoError(t, s.DeleteRun("ghost"))
}
