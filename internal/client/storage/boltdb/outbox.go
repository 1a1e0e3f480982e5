package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/campkeeper/internal/models"
)

// ListChanges returns the outbox in append order. Big-endian sequence keys
// make bucket order equal to insertion order.
func (s *Storage) ListChanges(ctx context.Context) ([]models.Change, error) {
	var changes []models.Change

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketChanges)
		if b == nil {
			return fmt.Errorf("changes bucket not found")
		}

		return b.ForEach(func(k, v []byte) error {
			var ch models.Change
			if err := json.Unmarshal(v, &ch); err != nil {
				return fmt.Errorf("failed to unmarshal change: %w", err)
			}
			changes = append(changes, ch)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return changes, nil
}

// CountChanges returns the number of pending outbox rows.
func (s *Storage) CountChanges(ctx context.Context) (int, error) {
	var count int

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketChanges)
		if b == nil {
			return fmt.Errorf("changes bucket not found")
		}

		return b.ForEach(func(k, v []byte) error {
			count++
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

// ClearChanges drops all outbox rows. Called only after the server confirmed
// a pushed batch; the sequence counter restarts with the fresh bucket.
func (s *Storage) ClearChanges(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketChanges); err != nil {
			return fmt.Errorf("failed to drop changes bucket: %w", err)
		}

		if _, err := tx.CreateBucket(bucketChanges); err != nil {
			return fmt.Errorf("failed to recreate changes bucket: %w", err)
		}

		return nil
	})
}
