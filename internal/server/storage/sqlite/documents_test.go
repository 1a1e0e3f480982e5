package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/campkeeper/internal/models"
	"github.com/iudanet/campkeeper/internal/server/storage"
)

const (
	testOwner    = "user-1"
	testCampaign = "curse-of-strahd"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	return s
}

func createChange(id string, ts int64, payload models.Doc) models.Change {
	return models.Change{
		Op:       models.OpCreate,
		Entity:   models.CollectionNodes,
		EntityID: id,
		Payload:  payload,
		TS:       ts,
	}
}

func TestApplyChange_Create(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	applied, err := s.ApplyChange(ctx, testOwner, testCampaign,
		createChange("n1", 1000, models.Doc{"title": "Barovia", "updatedAt": float64(1000)}))
	require.NoError(t, err)
	assert.True(t, applied)

	doc, err := s.GetDocument(ctx, testOwner, testCampaign, models.CollectionNodes, "n1")
	require.NoError(t, err)
	assert.Equal(t, "Barovia", doc["title"])
	assert.Equal(t, "n1", doc["id"])
}

func TestApplyChange_UpdateMergesFields(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.ApplyChange(ctx, testOwner, testCampaign,
		createChange("n1", 1000, models.Doc{"title": "Old", "markdown": "body"}))
	require.NoError(t, err)

	applied, err := s.ApplyChange(ctx, testOwner, testCampaign, models.Change{
		Op:       models.OpUpdate,
		Entity:   models.CollectionNodes,
		EntityID: "n1",
		Payload:  models.Doc{"title": "New", "updatedAt": float64(2000)},
		TS:       2000,
	})
	require.NoError(t, err)
	assert.True(t, applied)

	// Touched fields changed, untouched fields survived
	doc, err := s.GetDocument(ctx, testOwner, testCampaign, models.CollectionNodes, "n1")
	require.NoError(t, err)
	assert.Equal(t, "New", doc["title"])
	assert.Equal(t, "body", doc["markdown"])
}

func TestApplyChange_StaleUpdateLoses(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.ApplyChange(ctx, testOwner, testCampaign,
		createChange("n1", 2000, models.Doc{"title": "Fresh"}))
	require.NoError(t, err)

	// An older edit arrives late: last write wins, nothing changes
	applied, err := s.ApplyChange(ctx, testOwner, testCampaign, models.Change{
		Op:       models.OpUpdate,
		Entity:   models.CollectionNodes,
		EntityID: "n1",
		Payload:  models.Doc{"title": "Stale"},
		TS:       1000,
	})
	require.NoError(t, err)
	assert.False(t, applied)

	doc, err := s.GetDocument(ctx, testOwner, testCampaign, models.CollectionNodes, "n1")
	require.NoError(t, err)
	assert.Equal(t, "Fresh", doc["title"])
}

func TestApplyChange_ReplayedCreateIsIdempotent(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	ch := createChange("n1", 1000, models.Doc{"title": "Barovia"})

	applied, err := s.ApplyChange(ctx, testOwner, testCampaign, ch)
	require.NoError(t, err)
	assert.True(t, applied)

	// The same batch pushed again after a lost response
	applied, err = s.ApplyChange(ctx, testOwner, testCampaign, ch)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestApplyChange_DeleteAlwaysWins(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.ApplyChange(ctx, testOwner, testCampaign,
		createChange("n1", 5000, models.Doc{"title": "Doomed"}))
	require.NoError(t, err)

	// Delete carries an older timestamp but still removes the document
	applied, err := s.ApplyChange(ctx, testOwner, testCampaign, models.Change{
		Op:       models.OpDelete,
		Entity:   models.CollectionNodes,
		EntityID: "n1",
		TS:       1000,
	})
	require.NoError(t, err)
	assert.True(t, applied)

	_, err = s.GetDocument(ctx, testOwner, testCampaign, models.CollectionNodes, "n1")
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)
}

func TestApplyChange_DeleteMissingIsNoop(t *testing.T) {
	s := newTestStorage(t)

	applied, err := s.ApplyChange(context.Background(), testOwner, testCampaign, models.Change{
		Op:       models.OpDelete,
		Entity:   models.CollectionNodes,
		EntityID: "ghost",
		TS:       1000,
	})
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestListDocumentsSince(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	for _, ch := range []models.Change{
		createChange("n1", 1000, models.Doc{"title": "First"}),
		createChange("n2", 2000, models.Doc{"title": "Second"}),
		createChange("n3", 3000, models.Doc{"title": "Third"}),
	} {
		_, err := s.ApplyChange(ctx, testOwner, testCampaign, ch)
		require.NoError(t, err)
	}

	// Strictly-greater cursor: n2 itself is excluded
	docs, err := s.ListDocumentsSince(ctx, testOwner, testCampaign, models.CollectionNodes, 2000)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "n3", docs[0]["id"])

	docs, err = s.ListDocumentsSince(ctx, testOwner, testCampaign, models.CollectionNodes, 0)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "n1", docs[0]["id"])
	assert.Equal(t, "n3", docs[2]["id"])
}

func TestListDocumentsSince_ScopedByOwnerAndCampaign(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.ApplyChange(ctx, testOwner, testCampaign,
		createChange("n1", 1000, models.Doc{"title": "Mine"}))
	require.NoError(t, err)
	_, err = s.ApplyChange(ctx, "user-2", testCampaign,
		createChange("n2", 1000, models.Doc{"title": "Theirs"}))
	require.NoError(t, err)
	_, err = s.ApplyChange(ctx, testOwner, "other-campaign",
		createChange("n3", 1000, models.Doc{"title": "Elsewhere"}))
	require.NoError(t, err)

	docs, err := s.ListDocumentsSince(ctx, testOwner, testCampaign, models.CollectionNodes, 0)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Mine", docs[0]["title"])
}
