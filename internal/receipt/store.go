package receipt

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.etcd.io/bbolt"
)

const (
	bucketName = "receipts"
	listKey    = "receipts"
)

// Store holds the full receipt list under one logical key. The list is
// always replaced wholesale on write; there is no partial update primitive.
type Store interface {
	// Read returns the stored list. A missing or corrupt blob reads as an
	// empty list, never an error.
	Read() ([]Receipt, error)

	// Write replaces the stored list with the given one.
	Write(receipts []Receipt) error

	// Update applies fn to the current list and writes the result back.
	// The whole read-modify-write sequence runs under the store's lock,
	// so interleaved mutations cannot lose updates.
	Update(fn func([]Receipt) []Receipt) error

	// Clear removes the list key entirely.
	Clear() error

	// Close closes the underlying database.
	Close() error
}

// BoltStore implements Store using BoltDB, serializing all mutations
// through a single mutex.
type BoltStore struct {
	db *bbolt.DB
	mu sync.Mutex
}

// NewBoltStore opens (or creates) the database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Read returns the stored list.
func (s *BoltStore) Read() ([]Receipt, error) {
	receipts := make([]Receipt, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(listKey))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &receipts); err != nil {
			// Corrupt blob: treat as empty rather than failing the read.
			slog.Warn("Discarding malformed receipt list", "error", err)
			receipts = receipts[:0]
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading receipts: %w", err)
	}
	return receipts, nil
}

// Write replaces the stored list.
func (s *BoltStore) Write(receipts []Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(receipts)
}

func (s *BoltStore) write(receipts []Receipt) error {
	if receipts == nil {
		receipts = []Receipt{}
	}
	data, err := json.Marshal(receipts)
	if err != nil {
		return fmt.Errorf("marshaling receipts: %w", err)
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(listKey), data)
	})
	if err != nil {
		return fmt.Errorf("writing receipts: %w", err)
	}
	return nil
}

// Update applies fn under the store lock.
func (s *BoltStore) Update(fn func([]Receipt) []Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	receipts, err := s.Read()
	if err != nil {
		return err
	}
	return s.write(fn(receipts))
}

// Clear removes the list key.
func (s *BoltStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(listKey))
	})
	if err != nil {
		return fmt.Errorf("clearing receipts: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
