// Package data implements local-first entity mutations. Every write lands in
// the campaign store together with its outbox record in one transaction; the
// sync layer replays the outbox later.
package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/campkeeper/internal/client/activity"
	"github.com/iudanet/campkeeper/internal/client/outbox"
	"github.com/iudanet/campkeeper/internal/client/storage"
	"github.com/iudanet/campkeeper/internal/models"
)

// Service defines the client-side mutation API over campaign entities.
type Service interface {
	CreateNote(ctx context.Context, campaign string, note *models.Note) error
	UpdateNote(ctx context.Context, campaign, id string, fields models.Doc) error
	DeleteNote(ctx context.Context, campaign, id string) error
	GetNote(ctx context.Context, campaign, id string) (models.Doc, error)
	ListNotes(ctx context.Context, campaign string) ([]models.Doc, error)

	SaveEdge(ctx context.Context, campaign string, edge *models.Edge) error
	DeleteEdge(ctx context.Context, campaign, id string) error
	ListEdges(ctx context.Context, campaign string) ([]models.Doc, error)

	SaveFolder(ctx context.Context, campaign string, folder *models.Folder) error
	DeleteFolder(ctx context.Context, campaign, id string) error
	ListFolders(ctx context.Context, campaign string) ([]models.Doc, error)

	CreateChat(ctx context.Context, campaign string, chat *models.ChatSession) error
	AppendChatMessage(ctx context.Context, campaign string, msg *models.ChatMessage) error
	ListChatMessages(ctx context.Context, campaign, chatID string) ([]models.Doc, error)
}

type service struct {
	registry *storage.Registry
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a mutation service over the campaign store registry.
func NewService(registry *storage.Registry, logger *slog.Logger) Service {
	return &service{
		registry: registry,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateNote stores a new note and logs a create change.
func (s *service) CreateNote(ctx context.Context, campaign string, note *models.Note) error {
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	now := s.now().UnixMilli()
	note.CreatedAt = now
	note.UpdatedAt = now

	doc, err := models.ToDoc(note)
	if err != nil {
		return err
	}

	return s.create(ctx, campaign, models.CollectionNodes, note.ID, doc, now)
}

// UpdateNote overlays the given fields onto an existing note and logs an
// update change carrying only the touched fields plus the new timestamp.
func (s *service) UpdateNote(ctx context.Context, campaign, id string, fields models.Doc) error {
	return s.update(ctx, campaign, models.CollectionNodes, id, fields)
}

// DeleteNote removes a note and logs a delete change.
func (s *service) DeleteNote(ctx context.Context, campaign, id string) error {
	return s.delete(ctx, campaign, models.CollectionNodes, id)
}

func (s *service) GetNote(ctx context.Context, campaign, id string) (models.Doc, error) {
	store, err := s.registry.Get(campaign)
	if err != nil {
		return nil, err
	}
	return store.Get(ctx, models.CollectionNodes, id)
}

func (s *service) ListNotes(ctx context.Context, campaign string) ([]models.Doc, error) {
	return s.list(ctx, campaign, models.CollectionNodes)
}

// SaveEdge upserts a relationship: a first save logs a create, a later save
// of the same id logs an update with the full document.
func (s *service) SaveEdge(ctx context.Context, campaign string, edge *models.Edge) error {
	if edge.ID == "" {
		edge.ID = uuid.New().String()
	}
	if edge.Attributes == nil {
		edge.Attributes = models.Doc{}
	}
	now := s.now().UnixMilli()
	if edge.CreatedAt == 0 {
		edge.CreatedAt = now
	}
	edge.UpdatedAt = now

	doc, err := models.ToDoc(edge)
	if err != nil {
		return err
	}

	return s.save(ctx, campaign, models.CollectionEdges, edge.ID, doc, now)
}

func (s *service) DeleteEdge(ctx context.Context, campaign, id string) error {
	return s.delete(ctx, campaign, models.CollectionEdges, id)
}

func (s *service) ListEdges(ctx context.Context, campaign string) ([]models.Doc, error) {
	return s.list(ctx, campaign, models.CollectionEdges)
}

// SaveFolder upserts one node of the folder tree.
func (s *service) SaveFolder(ctx context.Context, campaign string, folder *models.Folder) error {
	if folder.ID == "" {
		folder.ID = uuid.New().String()
	}
	if folder.NoteIDs == nil {
		folder.NoteIDs = []string{}
	}
	if folder.ChildFolderIDs == nil {
		folder.ChildFolderIDs = []string{}
	}
	now := s.now().UnixMilli()
	if folder.CreatedAt == 0 {
		folder.CreatedAt = now
	}
	folder.UpdatedAt = now

	doc, err := models.ToDoc(folder)
	if err != nil {
		return err
	}

	return s.save(ctx, campaign, models.CollectionFolders, folder.ID, doc, now)
}

func (s *service) DeleteFolder(ctx context.Context, campaign, id string) error {
	return s.delete(ctx, campaign, models.CollectionFolders, id)
}

func (s *service) ListFolders(ctx context.Context, campaign string) ([]models.Doc, error) {
	return s.list(ctx, campaign, models.CollectionFolders)
}

// CreateChat stores a new chat session.
func (s *service) CreateChat(ctx context.Context, campaign string, chat *models.ChatSession) error {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}
	now := s.now().UnixMilli()
	chat.CreatedAt = now
	chat.UpdatedAt = now

	doc, err := models.ToDoc(chat)
	if err != nil {
		return err
	}

	return s.create(ctx, campaign, models.CollectionChats, chat.ID, doc, now)
}

// AppendChatMessage stores a new message and bumps the owning session's
// message count in the same transaction. Messages are append-only: they are
// never updated or deleted after this.
func (s *service) AppendChatMessage(ctx context.Context, campaign string, msg *models.ChatMessage) error {
	store, err := s.registry.Get(campaign)
	if err != nil {
		return err
	}

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	now := s.now().UnixMilli()
	msg.CreatedAt = now

	msgDoc, err := models.ToDoc(msg)
	if err != nil {
		return err
	}

	err = store.Update(ctx, func(tx storage.Tx) error {
		if err := tx.Put(models.CollectionChatMessages, msgDoc); err != nil {
			return fmt.Errorf("failed to store chat message: %w", err)
		}
		if err := outbox.Record(tx, models.Change{
			Op:       models.OpCreate,
			Entity:   models.CollectionChatMessages,
			EntityID: msg.ID,
			Payload:  msgDoc,
			TS:       now,
		}); err != nil {
			return err
		}

		chat, err := tx.Get(models.CollectionChats, msg.ChatID)
		if err != nil {
			return fmt.Errorf("failed to load chat session: %w", err)
		}

		count, _ := chat["messageCount"].(float64)
		chat["messageCount"] = count + 1
		chat["updatedAt"] = now

		if err := tx.Put(models.CollectionChats, chat); err != nil {
			return fmt.Errorf("failed to update chat session: %w", err)
		}
		return outbox.Record(tx, models.Change{
			Op:       models.OpUpdate,
			Entity:   models.CollectionChats,
			EntityID: msg.ChatID,
			Payload:  models.Doc{"messageCount": chat["messageCount"], "updatedAt": now},
			TS:       now,
		})
	})
	if err != nil {
		return err
	}

	return s.touch(ctx, store)
}

func (s *service) ListChatMessages(ctx context.Context, campaign, chatID string) ([]models.Doc, error) {
	store, err := s.registry.Get(campaign)
	if err != nil {
		return nil, err
	}

	all, err := store.List(ctx, models.CollectionChatMessages)
	if err != nil {
		return nil, err
	}

	msgs := make([]models.Doc, 0, len(all))
	for _, doc := range all {
		if doc["chatId"] == chatID {
			msgs = append(msgs, doc)
		}
	}
	return msgs, nil
}

// create writes a document and logs a create change in one transaction.
func (s *service) create(ctx context.Context, campaign, collection, id string, doc models.Doc, ts int64) error {
	store, err := s.registry.Get(campaign)
	if err != nil {
		return err
	}

	err = store.Update(ctx, func(tx storage.Tx) error {
		if err := tx.Put(collection, doc); err != nil {
			return fmt.Errorf("failed to store %s document: %w", collection, err)
		}
		return outbox.Record(tx, models.Change{
			Op:       models.OpCreate,
			Entity:   collection,
			EntityID: id,
			Payload:  doc,
			TS:       ts,
		})
	})
	if err != nil {
		return err
	}

	return s.touch(ctx, store)
}

// update overlays fields onto the stored document and logs an update change
// carrying only the touched fields. Thanks to outbox coalescing an edit of a
// still-unpushed create folds into the pending create instead.
func (s *service) update(ctx context.Context, campaign, collection, id string, fields models.Doc) error {
	store, err := s.registry.Get(campaign)
	if err != nil {
		return err
	}

	now := s.now().UnixMilli()

	err = store.Update(ctx, func(tx storage.Tx) error {
		doc, err := tx.Get(collection, id)
		if err != nil {
			return fmt.Errorf("failed to load %s document: %w", collection, err)
		}

		payload := make(models.Doc, len(fields)+1)
		for k, v := range fields {
			doc[k] = v
			payload[k] = v
		}
		doc["updatedAt"] = now
		payload["updatedAt"] = now

		if err := tx.Put(collection, doc); err != nil {
			return fmt.Errorf("failed to store %s document: %w", collection, err)
		}
		return outbox.Record(tx, models.Change{
			Op:       models.OpUpdate,
			Entity:   collection,
			EntityID: id,
			Payload:  payload,
			TS:       now,
		})
	})
	if err != nil {
		return err
	}

	return s.touch(ctx, store)
}

// save upserts: create when the id is unknown locally, update otherwise.
func (s *service) save(ctx context.Context, campaign, collection, id string, doc models.Doc, ts int64) error {
	store, err := s.registry.Get(campaign)
	if err != nil {
		return err
	}

	err = store.Update(ctx, func(tx storage.Tx) error {
		op := models.OpUpdate
		if _, err := tx.Get(collection, id); err != nil {
			if !errors.Is(err, storage.ErrDocNotFound) {
				return fmt.Errorf("failed to load %s document: %w", collection, err)
			}
			op = models.OpCreate
		}

		if err := tx.Put(collection, doc); err != nil {
			return fmt.Errorf("failed to store %s document: %w", collection, err)
		}
		return outbox.Record(tx, models.Change{
			Op:       op,
			Entity:   collection,
			EntityID: id,
			Payload:  doc,
			TS:       ts,
		})
	})
	if err != nil {
		return err
	}

	return s.touch(ctx, store)
}

// delete removes a document and logs a delete change. Deleting an entity
// whose create never left the outbox cancels the create instead.
func (s *service) delete(ctx context.Context, campaign, collection, id string) error {
	store, err := s.registry.Get(campaign)
	if err != nil {
		return err
	}

	now := s.now().UnixMilli()

	err = store.Update(ctx, func(tx storage.Tx) error {
		if err := tx.Delete(collection, id); err != nil {
			return fmt.Errorf("failed to delete %s document: %w", collection, err)
		}
		return outbox.Record(tx, models.Change{
			Op:       models.OpDelete,
			Entity:   collection,
			EntityID: id,
			TS:       now,
		})
	})
	if err != nil {
		return err
	}

	return s.touch(ctx, store)
}

func (s *service) list(ctx context.Context, campaign, collection string) ([]models.Doc, error) {
	store, err := s.registry.Get(campaign)
	if err != nil {
		return nil, err
	}
	return store.List(ctx, collection)
}

// touch stamps the activity timestamps after a committed mutation so the
// scheduler holds sync back until editing settles.
func (s *service) touch(ctx context.Context, store storage.Store) error {
	tracker := activity.NewTracker(store, s.logger)
	if err := tracker.TouchActivity(ctx); err != nil {
		return err
	}
	return tracker.TouchLocalChange(ctx)
}
