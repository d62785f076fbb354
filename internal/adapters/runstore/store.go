// Package runstore implements the ports.RunStore interface using bbolt
// (embedded B+ tree). Each run gets its own top-level bucket keyed by output
// path. Within that bucket, a "chunks" sub-bucket records completed chunk IDs
// and a "stats" key holds the JSON-serialized final statistics. Writes are
// transactional, so a crash mid-write cannot corrupt previously committed
// checkpoints.
package runstore

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/corey/namescan/internal/ports"
)

// Bucket and key names
var (
	bucketChunks = []byte("chunks")
	keyStats     = []byte("stats")
)

// Store implements ports.RunStore backed by bbolt.
type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// chunkKey encodes a chunk ID as a big-endian key so bbolt iterates in order.
func chunkKey(chunkID int) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(chunkID))
	return b[:]
}

// CompletedChunks returns the set of chunk IDs already finished for a run.
// Returns an empty set for an unknown run.
func (s *Store) CompletedChunks(runID string) (map[int]bool, error) {
	done := make(map[int]bool)
	err := s.db.View(func(tx *bolt.Tx) error {
		run := tx.Bucket([]byte(runID))
		if run == nil {
			return nil
		}
		cb := run.Bucket(bucketChunks)
		if cb == nil {
			return nil
		}
		return cb.ForEach(func(k, v []byte) error {
			if len(k) == 8 {
				done[int(binary.BigEndian.Uint64(k))] = true
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return done, nil
}

// MarkChunkDone records that a chunk finished and how many output rows it
// produced. Idempotent.
func (s *Store) MarkChunkDone(runID string, chunkID int, rows int) error {
	var v [8]byte
	binary.BigEndian.PutUint64(v[:], uint64(rows))
	return s.db.Update(func(tx *bolt.Tx) error {
		run, err := tx.CreateBucketIfNotExists([]byte(runID))
		if err != nil {
			return err
		}
		cb, err := run.CreateBucketIfNotExists(bucketChunks)
		if err != nil {
			return err
		}
		return cb.Put(chunkKey(chunkID), v[:])
	})
}

// SaveStats persists the final aggregate statistics for a run.
func (s *Store) SaveStats(runID string, stats *ports.Stats) error {
	if stats == nil {
		return fmt.Errorf("nil stats")
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		run, err := tx.CreateBucketIfNotExists([]byte(runID))
		if err != nil {
			return err
		}
		return run.Put(keyStats, data)
	})
}

// LoadStats retrieves the persisted statistics for a run.
// Returns nil, nil if none were saved.
func (s *Store) LoadStats(runID string) (*ports.Stats, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		run := tx.Bucket([]byte(runID))
		if run == nil {
			return nil
		}
		// Copy bytes out of the transaction (bbolt slices are only valid within tx)
		if v := run.Get(keyStats); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var stats ports.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("unmarshal stats: %w", err)
	}
	return &stats, nil
}

// DeleteRun removes all checkpoint data for a run.
// Idempotent: deleting an unknown run is not an error.
func (s *Store) DeleteRun(runID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(runID)); err == bolt.ErrBucketNotFound {
			return nil // idempotent
		} else {
			return err
		}
	})
}
