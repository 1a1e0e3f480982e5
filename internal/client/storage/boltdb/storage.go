// Package boltdb implements the campaign store on top of a bbolt file:
// one bucket per collection plus the outbox and metadata buckets.
package boltdb

import (
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/campkeeper/internal/client/storage"
	"github.com/iudanet/campkeeper/internal/models"
)

var (
	// BoltDB bucket names
	bucketChanges  = []byte("changes")
	bucketMetadata = []byte("metadata")
)

// Storage is the bbolt-backed store for a single campaign.
type Storage struct {
	db *bbolt.DB
}

var _ storage.Store = (*Storage)(nil)

// New opens (creating if necessary) the campaign database at path.
func New(path string) (*Storage, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &Storage{db: db}

	if err := s.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return s, nil
}

// Open adapts New to the registry's OpenFunc signature.
func Open(path string) (storage.Store, error) {
	return New(path)
}

// Close closes the database file.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// initBuckets creates all collection buckets plus changes and metadata.
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, col := range models.Collections() {
			if _, err := tx.CreateBucketIfNotExists([]byte(col.Name)); err != nil {
				return fmt.Errorf("failed to create bucket %q: %w", col.Name, err)
			}
		}

		if _, err := tx.CreateBucketIfNotExists(bucketChanges); err != nil {
			return fmt.Errorf("failed to create changes bucket: %w", err)
		}

		if _, err := tx.CreateBucketIfNotExists(bucketMetadata); err != nil {
			return fmt.Errorf("failed to create metadata bucket: %w", err)
		}

		return nil
	})
}

// itob encodes an outbox sequence id as a big-endian key so that bucket
// iteration order is append order.
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
