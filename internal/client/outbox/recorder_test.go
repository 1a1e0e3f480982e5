package outbox

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/campkeeper/internal/client/storage"
	"github.com/iudanet/campkeeper/internal/client/storage/boltdb"
	"github.com/iudanet/campkeeper/internal/models"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()

	store, err := boltdb.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

func record(t *testing.T, store storage.Store, ch models.Change) {
	t.Helper()

	err := store.Update(context.Background(), func(tx storage.Tx) error {
		return Record(tx, ch)
	})
	require.NoError(t, err)
}

func TestCoalesce_MergesPayloadAndBumpsTS(t *testing.T) {
	existing := models.Change{
		ID:       7,
		Op:       models.OpCreate,
		Entity:   models.CollectionNodes,
		EntityID: "n1",
		Payload:  models.Doc{"title": "Old", "markdown": "body"},
		TS:       1000,
	}
	incoming := models.Change{
		Op:       models.OpUpdate,
		Entity:   models.CollectionNodes,
		EntityID: "n1",
		Payload:  models.Doc{"title": "New"},
		TS:       1200,
	}

	merged := Coalesce(existing, incoming)

	assert.Equal(t, models.OpCreate, merged.Op)
	assert.Equal(t, uint64(7), merged.ID)
	assert.Equal(t, "New", merged.Payload["title"])
	assert.Equal(t, "body", merged.Payload["markdown"])
	assert.Equal(t, int64(1200), merged.TS)

	// Inputs are not mutated
	assert.Equal(t, "Old", existing.Payload["title"])
}

func TestRecord_CreateThenRename_SingleCreateRow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record(t, store, models.Change{
		Op:       models.OpCreate,
		Entity:   models.CollectionNodes,
		EntityID: "n1",
		Payload:  models.Doc{"title": "First draft", "markdown": "# hi"},
		TS:       1000,
	})
	record(t, store, models.Change{
		Op:       models.OpUpdate,
		Entity:   models.CollectionNodes,
		EntityID: "n1",
		Payload:  models.Doc{"title": "Final title"},
		TS:       1200,
	})

	changes, err := store.ListChanges(ctx)
	require.NoError(t, err)
	require.Len(t, changes, 1)

	assert.Equal(t, models.OpCreate, changes[0].Op)
	assert.Equal(t, "n1", changes[0].EntityID)
	assert.Equal(t, "Final title", changes[0].Payload["title"])
	assert.Equal(t, "# hi", changes[0].Payload["markdown"])
	assert.Equal(t, int64(1200), changes[0].TS)
}

func TestRecord_UpdateWithoutPendingCreate_Appends(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record(t, store, models.Change{
		Op:       models.OpUpdate,
		Entity:   models.CollectionNodes,
		EntityID: "n1",
		Payload:  models.Doc{"title": "Edit one"},
		TS:       1000,
	})
	record(t, store, models.Change{
		Op:       models.OpUpdate,
		Entity:   models.CollectionNodes,
		EntityID: "n1",
		Payload:  models.Doc{"title": "Edit two"},
		TS:       1100,
	})

	// Updates against an already-synced entity are appended, not merged
	changes, err := store.ListChanges(ctx)
	require.NoError(t, err)
	assert.Len(t, changes, 2)
}

func TestRecord_DeleteAfterPendingCreate_NetsOut(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record(t, store, models.Change{
		Op:       models.OpCreate,
		Entity:   models.CollectionNodes,
		EntityID: "n1",
		Payload:  models.Doc{"title": "Ephemeral"},
		TS:       1000,
	})
	record(t, store, models.Change{
		Op:       models.OpDelete,
		Entity:   models.CollectionNodes,
		EntityID: "n1",
		TS:       1100,
	})

	// The entity never reached the server, so nothing remains to push
	changes, err := store.ListChanges(ctx)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestRecord_DeleteOfSyncedEntity_Appends(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record(t, store, models.Change{
		Op:       models.OpDelete,
		Entity:   models.CollectionNodes,
		EntityID: "n1",
		TS:       1000,
	})

	changes, err := store.ListChanges(ctx)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, models.OpDelete, changes[0].Op)
}

func TestRecord_CoalescingIsPerEntity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record(t, store, models.Change{
		Op:       models.OpCreate,
		Entity:   models.CollectionNodes,
		EntityID: "n1",
		Payload:  models.Doc{"title": "One"},
		TS:       1000,
	})
	record(t, store, models.Change{
		Op:       models.OpCreate,
		Entity:   models.CollectionEdges,
		EntityID: "e1",
		Payload:  models.Doc{"relType": "KNOWS"},
		TS:       1050,
	})
	record(t, store, models.Change{
		Op:       models.OpUpdate,
		Entity:   models.CollectionNodes,
		EntityID: "n1",
		Payload:  models.Doc{"title": "One renamed"},
		TS:       1100,
	})

	changes, err := store.ListChanges(ctx)
	require.NoError(t, err)
	require.Len(t, changes, 2)

	byEntity := map[string]models.Change{}
	for _, ch := range changes {
		byEntity[ch.Entity] = ch
	}
	assert.Equal(t, "One renamed", byEntity[models.CollectionNodes].Payload["title"])
	assert.Equal(t, "KNOWS", byEntity[models.CollectionEdges].Payload["relType"])
}
