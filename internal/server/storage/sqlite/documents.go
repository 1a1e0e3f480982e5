package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iudanet/campkeeper/internal/models"
	"github.com/iudanet/campkeeper/internal/server/storage"
)

// ApplyChange applies one replicated change with last-write-wins semantics.
// A create or update loses against a stored document whose updated_at is at
// least as new; a delete always wins. Returns whether the change took effect,
// so replayed batches stay idempotent.
func (s *Storage) ApplyChange(ctx context.Context, ownerID, campaign string, ch models.Change) (bool, error) {
	switch ch.Op {
	case models.OpCreate, models.OpUpdate:
		return s.upsertDocument(ctx, ownerID, campaign, ch)
	case models.OpDelete:
		return s.deleteDocument(ctx, ownerID, campaign, ch)
	default:
		return false, fmt.Errorf("unknown change op %q", ch.Op)
	}
}

// upsertDocument merges the change payload over the stored document, or
// inserts a new one. The stored document wins when it is newer.
func (s *Storage) upsertDocument(ctx context.Context, ownerID, campaign string, ch models.Change) (bool, error) {
	existing, updatedAt, err := s.getDocumentRow(ctx, ownerID, campaign, ch.Entity, ch.EntityID)
	if err != nil && !errors.Is(err, storage.ErrDocumentNotFound) {
		return false, fmt.Errorf("failed to check existing document: %w", err)
	}

	if existing != nil {
		if updatedAt >= ch.TS {
			return false, nil
		}

		for k, v := range ch.Payload {
			existing[k] = v
		}

		data, err := json.Marshal(existing)
		if err != nil {
			return false, fmt.Errorf("failed to marshal document: %w", err)
		}

		query := `
			UPDATE documents
			SET data = ?, updated_at = ?
			WHERE owner_id = ? AND campaign = ? AND collection = ? AND id = ?
		`
		if _, err := s.db.ExecContext(ctx, query,
			string(data), ch.TS, ownerID, campaign, ch.Entity, ch.EntityID,
		); err != nil {
			return false, fmt.Errorf("failed to update document: %w", err)
		}

		return true, nil
	}

	doc := make(models.Doc, len(ch.Payload))
	for k, v := range ch.Payload {
		doc[k] = v
	}
	doc["id"] = ch.EntityID

	data, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("failed to marshal document: %w", err)
	}

	query := `
		INSERT INTO documents (owner_id, campaign, collection, id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query,
		ownerID, campaign, ch.Entity, ch.EntityID, string(data), ch.TS, ch.TS,
	); err != nil {
		return false, fmt.Errorf("failed to insert document: %w", err)
	}

	return true, nil
}

// deleteDocument removes the row outright. Deleting a missing document is a
// no-op, not an error: the client may replay a batch the server already saw.
func (s *Storage) deleteDocument(ctx context.Context, ownerID, campaign string, ch models.Change) (bool, error) {
	query := `
		DELETE FROM documents
		WHERE owner_id = ? AND campaign = ? AND collection = ? AND id = ?
	`
	result, err := s.db.ExecContext(ctx, query, ownerID, campaign, ch.Entity, ch.EntityID)
	if err != nil {
		return false, fmt.Errorf("failed to delete document: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// GetDocument retrieves a single document.
func (s *Storage) GetDocument(ctx context.Context, ownerID, campaign, collection, id string) (models.Doc, error) {
	doc, _, err := s.getDocumentRow(ctx, ownerID, campaign, collection, id)
	return doc, err
}

func (s *Storage) getDocumentRow(ctx context.Context, ownerID, campaign, collection, id string) (models.Doc, int64, error) {
	query := `
		SELECT data, updated_at
		FROM documents
		WHERE owner_id = ? AND campaign = ? AND collection = ? AND id = ?
	`

	var data string
	var updatedAt int64
	err := s.db.QueryRowContext(ctx, query, ownerID, campaign, collection, id).Scan(&data, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, storage.ErrDocumentNotFound
		}
		return nil, 0, fmt.Errorf("failed to get document: %w", err)
	}

	var doc models.Doc
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal document: %w", err)
	}

	return doc, updatedAt, nil
}

// ListDocumentsSince returns documents modified strictly after since, oldest
// first. Chat messages are never updated after insert, so the updated_at
// column serves the createdAt cursor as well.
func (s *Storage) ListDocumentsSince(ctx context.Context, ownerID, campaign, collection string, since int64) ([]models.Doc, error) {
	query := `
		SELECT data
		FROM documents
		WHERE owner_id = ? AND campaign = ? AND collection = ? AND updated_at > ?
		ORDER BY updated_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID, campaign, collection, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []models.Doc
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}

		var doc models.Doc
		if err := json.Unmarshal([]byte(data), &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document: %w", err)
		}

		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return docs, nil
}
