// Package storage defines the contract of the per-campaign embedded store.
package storage

import (
	"context"

	"github.com/iudanet/campkeeper/internal/models"
)

// Tx is a multi-collection transaction. Every mutation performed through a
// Tx either commits as a whole or rolls back as a whole, including outbox
// writes; the mutation recorder relies on "apply the domain change" and
// "log the change" being atomic.
type Tx interface {
	// Get retrieves a document by id inside the transaction.
	// Returns ErrDocNotFound if it does not exist.
	Get(collection, id string) (models.Doc, error)

	// Put stores or replaces a document. The document must carry an "id" key.
	Put(collection string, doc models.Doc) error

	// Delete removes a document. Deleting a missing document is not an error.
	Delete(collection, id string) error

	// AppendChange appends a new outbox row and assigns its sequence id.
	AppendChange(ch *models.Change) error

	// FindPendingCreate returns the uncommitted create record for
	// (entity, entityID), or ErrChangeNotFound if none is pending.
	FindPendingCreate(entity, entityID string) (*models.Change, error)

	// UpdateChange rewrites an existing outbox row in place.
	UpdateChange(ch *models.Change) error

	// DeleteChange removes a single outbox row by sequence id.
	DeleteChange(id uint64) error
}

// Store is one campaign's embedded local database: entity collections, the
// outbox of pending changes and the metadata key-value table.
type Store interface {
	// Get retrieves a document by id.
	// Returns ErrDocNotFound if it does not exist.
	Get(ctx context.Context, collection, id string) (models.Doc, error)

	// Put stores or replaces a single document.
	Put(ctx context.Context, collection string, doc models.Doc) error

	// BulkPut upserts a batch of documents, unconditionally overwriting any
	// local copy with the same id.
	BulkPut(ctx context.Context, collection string, docs []models.Doc) error

	// Delete removes a document by id.
	Delete(ctx context.Context, collection, id string) error

	// List returns all documents of a collection.
	List(ctx context.Context, collection string) ([]models.Doc, error)

	// MaxField returns the maximum numeric value of a document field across
	// the collection, or 0 for an empty collection. Used as the pull cursor.
	MaxField(ctx context.Context, collection, field string) (int64, error)

	// Update runs fn inside a single read-write transaction.
	Update(ctx context.Context, fn func(tx Tx) error) error

	// ListChanges returns the outbox in append order.
	ListChanges(ctx context.Context) ([]models.Change, error)

	// CountChanges returns the number of pending outbox rows.
	CountChanges(ctx context.Context) (int, error)

	// ClearChanges removes all outbox rows after a confirmed push.
	ClearChanges(ctx context.Context) error

	// GetMetadata retrieves a metadata row by key.
	// Returns ErrMetadataNotFound if the key has never been written.
	GetMetadata(ctx context.Context, key string) (*models.MetadataRow, error)

	// PutMetadata upserts a metadata row, stamping its UpdatedAt.
	PutMetadata(ctx context.Context, key string, value any, updatedAt int64) error

	// Close releases the underlying database file.
	Close() error
}
