package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/campkeeper/internal/client/storage"
	"github.com/iudanet/campkeeper/internal/models"
)

// Get retrieves a document by id.
func (s *Storage) Get(ctx context.Context, collection, id string) (models.Doc, error) {
	var doc models.Doc

	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		doc, err = (&boltTx{tx: tx}).Get(collection, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// Put stores or replaces a single document.
func (s *Storage) Put(ctx context.Context, collection string, doc models.Doc) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return (&boltTx{tx: tx}).Put(collection, doc)
	})
}

// BulkPut upserts a batch of documents in one transaction, unconditionally
// overwriting any local copy with the same id.
func (s *Storage) BulkPut(ctx context.Context, collection string, docs []models.Doc) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		btx := &boltTx{tx: tx}
		for _, doc := range docs {
			if err := btx.Put(collection, doc); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a document by id.
func (s *Storage) Delete(ctx context.Context, collection, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return (&boltTx{tx: tx}).Delete(collection, id)
	})
}

// List returns all documents of a collection.
func (s *Storage) List(ctx context.Context, collection string) ([]models.Doc, error) {
	var docs []models.Doc

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return fmt.Errorf("bucket %q not found", collection)
		}

		return b.ForEach(func(k, v []byte) error {
			var doc models.Doc
			if err := json.Unmarshal(v, &doc); err != nil {
				return fmt.Errorf("failed to unmarshal document: %w", err)
			}
			docs = append(docs, doc)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return docs, nil
}

// MaxField scans a collection for the maximum numeric value of a field.
// Returns 0 when the collection is empty or no document carries the field,
// which makes the first pull request "everything since 0".
func (s *Storage) MaxField(ctx context.Context, collection, field string) (int64, error) {
	var maxVal int64

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return fmt.Errorf("bucket %q not found", collection)
		}

		return b.ForEach(func(k, v []byte) error {
			var doc models.Doc
			if err := json.Unmarshal(v, &doc); err != nil {
				return fmt.Errorf("failed to unmarshal document: %w", err)
			}

			if val, ok := numField(doc, field); ok && val > maxVal {
				maxVal = val
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	return maxVal, nil
}

// Update runs fn inside a single bbolt read-write transaction. If fn returns
// an error, every write performed through the Tx rolls back.
func (s *Storage) Update(ctx context.Context, fn func(tx storage.Tx) error) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

// numField extracts a numeric document field as epoch millis. JSON decoding
// yields float64; int variants are kept for documents built in-process.
func numField(doc models.Doc, field string) (int64, bool) {
	switch v := doc[field].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
