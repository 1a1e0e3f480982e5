package data

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/campkeeper/internal/client/storage"
	"github.com/iudanet/campkeeper/internal/client/storage/boltdb"
	"github.com/iudanet/campkeeper/internal/models"
)

const testCampaign = "curse-of-strahd"

func newTestService(t *testing.T) (Service, storage.Store) {
	t.Helper()

	registry := storage.NewRegistry(t.TempDir(), boltdb.Open)
	t.Cleanup(func() {
		require.NoError(t, registry.Close())
	})

	store, err := registry.Get(testCampaign)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(registry, logger), store
}

func outboxRows(t *testing.T, store storage.Store) []models.Change {
	t.Helper()

	changes, err := store.ListChanges(context.Background())
	require.NoError(t, err)
	return changes
}

func TestCreateNote(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	note := &models.Note{
		Title:      "Castle Ravenloft",
		Markdown:   "# The castle",
		CampaignID: testCampaign,
		Type:       "location",
	}
	require.NoError(t, service.CreateNote(ctx, testCampaign, note))

	// ID and timestamps were assigned
	require.NotEmpty(t, note.ID)
	assert.NotZero(t, note.CreatedAt)
	assert.Equal(t, note.CreatedAt, note.UpdatedAt)

	// Document landed in the store
	doc, err := store.Get(ctx, models.CollectionNodes, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "Castle Ravenloft", doc["title"])

	// One create change pending
	changes := outboxRows(t, store)
	require.Len(t, changes, 1)
	assert.Equal(t, models.OpCreate, changes[0].Op)
	assert.Equal(t, models.CollectionNodes, changes[0].Entity)
	assert.Equal(t, note.ID, changes[0].EntityID)
}

func TestCreateThenUpdate_CoalescesIntoSingleCreate(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	note := &models.Note{Title: "Draft", CampaignID: testCampaign}
	require.NoError(t, service.CreateNote(ctx, testCampaign, note))
	require.NoError(t, service.UpdateNote(ctx, testCampaign, note.ID, models.Doc{"title": "Final title"}))

	// Still a single pending create, now carrying the edited title
	changes := outboxRows(t, store)
	require.Len(t, changes, 1)
	assert.Equal(t, models.OpCreate, changes[0].Op)
	assert.Equal(t, "Final title", changes[0].Payload["title"])

	// The stored document was updated too
	doc, err := store.Get(ctx, models.CollectionNodes, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final title", doc["title"])
}

func TestUpdateNote_SyncedEntity_AppendsUpdate(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	// A note that arrived via pull: present locally, nothing in the outbox
	require.NoError(t, store.Put(ctx, models.CollectionNodes, models.Doc{
		"id": "n1", "title": "Old", "markdown": "body", "updatedAt": float64(1000),
	}))

	require.NoError(t, service.UpdateNote(ctx, testCampaign, "n1", models.Doc{"title": "New"}))

	changes := outboxRows(t, store)
	require.Len(t, changes, 1)
	assert.Equal(t, models.OpUpdate, changes[0].Op)

	// Payload carries only the touched fields plus the new timestamp
	assert.Equal(t, "New", changes[0].Payload["title"])
	assert.Contains(t, changes[0].Payload, "updatedAt")
	assert.NotContains(t, changes[0].Payload, "markdown")

	// Untouched fields survive locally
	doc, err := store.Get(ctx, models.CollectionNodes, "n1")
	require.NoError(t, err)
	assert.Equal(t, "body", doc["markdown"])
}

func TestUpdateNote_Missing(t *testing.T) {
	service, store := newTestService(t)

	err := service.UpdateNote(context.Background(), testCampaign, "ghost", models.Doc{"title": "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrDocNotFound)

	assert.Empty(t, outboxRows(t, store))
}

func TestDeleteNote_PendingCreate_NetsOut(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	note := &models.Note{Title: "Ephemeral", CampaignID: testCampaign}
	require.NoError(t, service.CreateNote(ctx, testCampaign, note))
	require.NoError(t, service.DeleteNote(ctx, testCampaign, note.ID))

	// Create was cancelled, nothing left to push
	assert.Empty(t, outboxRows(t, store))

	_, err := store.Get(ctx, models.CollectionNodes, note.ID)
	assert.ErrorIs(t, err, storage.ErrDocNotFound)
}

func TestDeleteNote_SyncedEntity_AppendsDelete(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, models.CollectionNodes, models.Doc{"id": "n1", "title": "Synced"}))

	require.NoError(t, service.DeleteNote(ctx, testCampaign, "n1"))

	changes := outboxRows(t, store)
	require.Len(t, changes, 1)
	assert.Equal(t, models.OpDelete, changes[0].Op)
	assert.Equal(t, "n1", changes[0].EntityID)
}

func TestSaveEdge_CreateThenUpdate(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	edge := &models.Edge{
		FromID:     "n1",
		ToID:       "n2",
		RelType:    "RULES",
		CampaignID: testCampaign,
	}
	require.NoError(t, service.SaveEdge(ctx, testCampaign, edge))
	require.NotEmpty(t, edge.ID)

	// Push drains the outbox, then the same edge is saved again
	require.NoError(t, store.ClearChanges(ctx))

	edge.RelType = "KNOWS"
	require.NoError(t, service.SaveEdge(ctx, testCampaign, edge))

	changes := outboxRows(t, store)
	require.Len(t, changes, 1)
	assert.Equal(t, models.OpUpdate, changes[0].Op)
	assert.Equal(t, "KNOWS", changes[0].Payload["relType"])
}

func TestSaveFolder(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	folder := &models.Folder{Name: "NPCs", CampaignID: testCampaign}
	require.NoError(t, service.SaveFolder(ctx, testCampaign, folder))

	doc, err := store.Get(ctx, models.CollectionFolders, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, "NPCs", doc["name"])

	changes := outboxRows(t, store)
	require.Len(t, changes, 1)
	assert.Equal(t, models.OpCreate, changes[0].Op)
}

func TestAppendChatMessage_BumpsSessionCount(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	chat := &models.ChatSession{Title: "Planning", CampaignID: testCampaign}
	require.NoError(t, service.CreateChat(ctx, testCampaign, chat))

	msg := &models.ChatMessage{
		ChatID:     chat.ID,
		CampaignID: testCampaign,
		Role:       "user",
		Content:    "Who rules Barovia?",
	}
	require.NoError(t, service.AppendChatMessage(ctx, testCampaign, msg))
	require.NotEmpty(t, msg.ID)
	assert.NotZero(t, msg.CreatedAt)

	// The session's counter moved with the message
	chatDoc, err := store.Get(ctx, models.CollectionChats, chat.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(1), chatDoc["messageCount"])

	msgs, err := service.ListChatMessages(ctx, testCampaign, chat.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Who rules Barovia?", msgs[0]["content"])
}

func TestMutations_StampActivityMetadata(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	note := &models.Note{Title: "Any", CampaignID: testCampaign}
	require.NoError(t, service.CreateNote(ctx, testCampaign, note))

	activityRow, err := store.GetMetadata(ctx, models.MetaLastActivity)
	require.NoError(t, err)
	assert.NotZero(t, activityRow.UpdatedAt)

	changeRow, err := store.GetMetadata(ctx, models.MetaLastLocalChange)
	require.NoError(t, err)
	assert.NotZero(t, changeRow.UpdatedAt)
}
