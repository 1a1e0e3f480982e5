// Package storage defines the server-side document store contract.
package storage

import (
	"context"

	"github.com/iudanet/campkeeper/internal/models"
)

// DocumentStorage persists the authoritative copy of every campaign document.
// Documents are scoped by owner and campaign; collections share one table.
type DocumentStorage interface {
	// ApplyChange applies one replicated change with last-write-wins
	// semantics: a create or update whose timestamp is older than the stored
	// document is skipped, a delete always wins. Returns whether the change
	// took effect.
	ApplyChange(ctx context.Context, ownerID, campaign string, ch models.Change) (bool, error)

	// GetDocument returns one stored document.
	// Returns ErrDocumentNotFound if it does not exist.
	GetDocument(ctx context.Context, ownerID, campaign, collection, id string) (models.Doc, error)

	// ListDocumentsSince returns every document of a collection whose update
	// timestamp is strictly greater than since, oldest first.
	ListDocumentsSince(ctx context.Context, ownerID, campaign, collection string, since int64) ([]models.Doc, error)

	// Close releases the underlying database.
	Close() error
}
