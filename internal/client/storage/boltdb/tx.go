package boltdb

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/campkeeper/internal/client/storage"
	"github.com/iudanet/campkeeper/internal/models"
)

// boltTx adapts a bbolt read-write transaction to storage.Tx.
type boltTx struct {
	tx *bbolt.Tx
}

var _ storage.Tx = (*boltTx)(nil)

func (t *boltTx) bucket(name string) (*bbolt.Bucket, error) {
	b := t.tx.Bucket([]byte(name))
	if b == nil {
		return nil, fmt.Errorf("bucket %q not found", name)
	}
	return b, nil
}

// Get retrieves a document by id inside the transaction.
func (t *boltTx) Get(collection, id string) (models.Doc, error) {
	b, err := t.bucket(collection)
	if err != nil {
		return nil, err
	}

	data := b.Get([]byte(id))
	if data == nil {
		return nil, storage.ErrDocNotFound
	}

	var doc models.Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}

	return doc, nil
}

// Put stores or replaces a document keyed by its "id" field.
func (t *boltTx) Put(collection string, doc models.Doc) error {
	id, err := docID(doc)
	if err != nil {
		return err
	}

	b, err := t.bucket(collection)
	if err != nil {
		return err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	if err := b.Put([]byte(id), data); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	return nil
}

// Delete removes a document. Missing documents are ignored.
func (t *boltTx) Delete(collection, id string) error {
	b, err := t.bucket(collection)
	if err != nil {
		return err
	}

	if err := b.Delete([]byte(id)); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	return nil
}

// AppendChange appends an outbox row, assigning the next sequence id.
func (t *boltTx) AppendChange(ch *models.Change) error {
	b, err := t.bucket(string(bucketChanges))
	if err != nil {
		return err
	}

	seq, err := b.NextSequence()
	if err != nil {
		return fmt.Errorf("failed to get next sequence: %w", err)
	}
	ch.ID = seq

	data, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}

	if err := b.Put(itob(ch.ID), data); err != nil {
		return fmt.Errorf("failed to append change: %w", err)
	}

	return nil
}

// FindPendingCreate returns the uncommitted create record for an entity.
func (t *boltTx) FindPendingCreate(entity, entityID string) (*models.Change, error) {
	b, err := t.bucket(string(bucketChanges))
	if err != nil {
		return nil, err
	}

	var found *models.Change
	err = b.ForEach(func(k, v []byte) error {
		var ch models.Change
		if err := json.Unmarshal(v, &ch); err != nil {
			return fmt.Errorf("failed to unmarshal change: %w", err)
		}

		if ch.Op == models.OpCreate && ch.Entity == entity && ch.EntityID == entityID {
			found = &ch
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if found == nil {
		return nil, storage.ErrChangeNotFound
	}

	return found, nil
}

// UpdateChange rewrites an existing outbox row in place.
func (t *boltTx) UpdateChange(ch *models.Change) error {
	b, err := t.bucket(string(bucketChanges))
	if err != nil {
		return err
	}

	if b.Get(itob(ch.ID)) == nil {
		return storage.ErrChangeNotFound
	}

	data, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}

	if err := b.Put(itob(ch.ID), data); err != nil {
		return fmt.Errorf("failed to update change: %w", err)
	}

	return nil
}

// DeleteChange removes one outbox row by sequence id.
func (t *boltTx) DeleteChange(id uint64) error {
	b, err := t.bucket(string(bucketChanges))
	if err != nil {
		return err
	}

	if err := b.Delete(itob(id)); err != nil {
		return fmt.Errorf("failed to delete change: %w", err)
	}

	return nil
}

// docID extracts the reserved "id" key of a document.
func docID(doc models.Doc) (string, error) {
	id, ok := doc["id"].(string)
	if !ok || id == "" {
		return "", storage.ErrMissingID
	}
	return id, nil
}
