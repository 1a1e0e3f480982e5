package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/campkeeper/internal/client/storage"
	"github.com/iudanet/campkeeper/internal/models"
)

// GetMetadata retrieves a metadata row by key.
func (s *Storage) GetMetadata(ctx context.Context, key string) (*models.MetadataRow, error) {
	var row *models.MetadataRow

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMetadata)
		if b == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		data := b.Get([]byte(key))
		if data == nil {
			return storage.ErrMetadataNotFound
		}

		row = &models.MetadataRow{}
		if err := json.Unmarshal(data, row); err != nil {
			return fmt.Errorf("failed to unmarshal metadata: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return row, nil
}

// PutMetadata upserts a metadata row. Metadata rows are never deleted.
func (s *Storage) PutMetadata(ctx context.Context, key string, value any, updatedAt int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMetadata)
		if b == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		row := models.MetadataRow{
			ID:        key,
			Value:     value,
			UpdatedAt: updatedAt,
		}

		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}

		if err := b.Put([]byte(key), data); err != nil {
			return fmt.Errorf("failed to save metadata: %w", err)
		}

		return nil
	})
}
