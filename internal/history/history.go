// Package history persists completed scan results.
//
// Results are stored in a BoltDB file, JSON encoded and zstd compressed.
// The store is bounded: once it holds MaxEntries scans, adding another
// evicts the oldest. Keys are big-endian sequence numbers, so iteration
// order is insertion order.
package history

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	bolt "go.etcd.io/bbolt"

	"github.com/rendayigit/dupescan/internal/types"
)

const bucketName = "scans"

// MaxEntries is the retention cap. Adding past it evicts the oldest scan.
const MaxEntries = 50

// ErrNotFound is returned by Get for unknown scan IDs.
var ErrNotFound = errors.New("scan not found")

// Store keeps completed scan results on disk.
type Store struct {
	db      *bolt.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Summary identifies one stored scan without its group details.
type Summary struct {
	ID        uint64
	Timestamp string
	Directory string
	Groups    int
}

// String renders the summary as a history line.
func (s Summary) String() string {
	return fmt.Sprintf("%s - %s (%d groups)", s.Timestamp, s.Directory, s.Groups)
}

// Open opens (or creates) the history database at path.
// BoltDB's file lock makes concurrent opens fail after the timeout.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history (locked by another instance?): %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, encoder: encoder, decoder: decoder}, nil
}

// Close releases the database and the compression contexts.
func (s *Store) Close() error {
	_ = s.encoder.Close()
	s.decoder.Close()
	return s.db.Close()
}

// Add stores a scan result and returns its ID, evicting the oldest
// entries when the store is over MaxEntries.
func (s *Store) Add(result *types.ScanResult) (uint64, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("encode scan: %w", err)
	}
	compressed := s.encoder.EncodeAll(payload, nil)

	var id uint64
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		id = seq
		if err := b.Put(seqKey(seq), compressed); err != nil {
			return err
		}

		count := 0
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			count++
		}
		for k, _ := c.First(); k != nil && count > MaxEntries; k, _ = c.Next() {
			if err := c.Delete(); err != nil {
				return err
			}
			count--
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("store scan: %w", err)
	}
	return id, nil
}

// List returns summaries of all stored scans, newest first.
func (s *Store) List() ([]Summary, error) {
	var summaries []Summary
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketName)).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			result, err := s.decode(v)
			if err != nil {
				return err
			}
			summaries = append(summaries, Summary{
				ID:        binary.BigEndian.Uint64(k),
				Timestamp: result.Timestamp,
				Directory: result.Directory,
				Groups:    result.TotalGroups,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return summaries, nil
}

// Get returns the full result of a stored scan.
func (s *Store) Get(id uint64) (*types.ScanResult, error) {
	var result *types.ScanResult
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get(seqKey(id))
		if data == nil {
			return fmt.Errorf("history: scan %d: %w", id, ErrNotFound)
		}
		var err error
		result, err = s.decode(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Clear removes all stored scans and resets the ID sequence.
func (s *Store) Clear() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (s *Store) decode(data []byte) (*types.ScanResult, error) {
	payload, err := s.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress scan: %w", err)
	}
	var result types.ScanResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode scan: %w", err)
	}
	return &result, nil
}

// seqKey renders a sequence number as a sortable fixed-width key.
func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}
