// Package sync runs push/pull passes between a campaign store and the server.
package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iudanet/campkeeper/internal/client/activity"
	httpClient "github.com/iudanet/campkeeper/internal/client/api"
	"github.com/iudanet/campkeeper/internal/client/storage"
	"github.com/iudanet/campkeeper/internal/models"
)

// Service defines the sync coordinator interface.
type Service interface {
	// PushPull runs one push/pull pass for a campaign: drain the outbox,
	// then refresh every collection since its local cursor. A pass that is
	// not due (gate closed, another pass running) is a silent no-op.
	PushPull(ctx context.Context, campaign string) error
}

type service struct {
	apiClient httpClient.SyncAPI
	registry  *storage.Registry
	logger    *slog.Logger
}

// NewService creates a sync coordinator over the campaign store registry.
func NewService(apiClient httpClient.SyncAPI, registry *storage.Registry, logger *slog.Logger) Service {
	return &service{
		apiClient: apiClient,
		registry:  registry,
		logger:    logger,
	}
}

// PushPull performs one synchronization pass.
//
// Ordering: push strictly precedes pull, so a pass never overwrites a
// pending outbox entry with stale server data. Pull failures keep the
// collections already pulled (no rollback across pull steps).
func (s *service) PushPull(ctx context.Context, campaign string) error {
	store, err := s.registry.Get(campaign)
	if err != nil {
		return fmt.Errorf("failed to get campaign store: %w", err)
	}

	tracker := activity.NewTracker(store, s.logger)

	due, err := tracker.ShouldSync(ctx)
	if err != nil {
		return fmt.Errorf("failed to evaluate sync gate: %w", err)
	}
	if !due {
		return nil
	}

	// Advisory flag: skip if another pass looks alive, steal it if stale.
	proceed, err := tracker.ClearStuckSyncing(ctx)
	if err != nil {
		return fmt.Errorf("failed to check sync state: %w", err)
	}
	if !proceed {
		s.logger.Debug("Sync already in progress, skipping pass", "campaign", campaign)
		return nil
	}

	if err := tracker.SetSyncState(ctx, models.SyncSyncing); err != nil {
		return err
	}

	if err := s.push(ctx, campaign, store); err != nil {
		s.setErrorState(ctx, tracker, campaign)
		return fmt.Errorf("push failed: %w", err)
	}

	if err := s.pull(ctx, campaign, store); err != nil {
		s.setErrorState(ctx, tracker, campaign)
		return fmt.Errorf("pull failed: %w", err)
	}

	if err := tracker.SetSyncState(ctx, models.SyncIdle); err != nil {
		return err
	}

	return nil
}

// push sends the whole outbox in one batch. The outbox is cleared only after
// the server confirmed the batch; on failure it is retained untouched, which
// gives at-least-once delivery on the next eligible attempt.
func (s *service) push(ctx context.Context, campaign string, store storage.Store) error {
	changes, err := store.ListChanges(ctx)
	if err != nil {
		return fmt.Errorf("failed to read outbox: %w", err)
	}
	if len(changes) == 0 {
		return nil
	}

	if err := s.apiClient.PushChanges(ctx, campaign, changes); err != nil {
		return err
	}

	if err := store.ClearChanges(ctx); err != nil {
		return fmt.Errorf("failed to clear outbox: %w", err)
	}

	s.logger.Info("Pushed local changes", "campaign", campaign, "count", len(changes))
	return nil
}

// pull refreshes every collection in the fixed order, fail-fast. Each
// collection's cursor is the maximum timestamp currently stored locally;
// pulled documents overwrite local copies unconditionally.
func (s *service) pull(ctx context.Context, campaign string, store storage.Store) error {
	for _, col := range models.Collections() {
		since, err := store.MaxField(ctx, col.Name, col.CursorField)
		if err != nil {
			return fmt.Errorf("failed to compute cursor for %s: %w", col.Name, err)
		}

		docs, err := s.apiClient.PullCollection(ctx, campaign, col.Path, since)
		if err != nil {
			return fmt.Errorf("failed to pull %s: %w", col.Name, err)
		}

		if col.Name == models.CollectionEdges {
			for i, doc := range docs {
				docs[i] = EdgeFromWire(doc)
			}
		}

		if len(docs) == 0 {
			continue
		}

		if err := store.BulkPut(ctx, col.Name, docs); err != nil {
			return fmt.Errorf("failed to store pulled %s: %w", col.Name, err)
		}

		s.logger.Debug("Pulled collection",
			"campaign", campaign,
			"collection", col.Name,
			"since", since,
			"count", len(docs))
	}

	return nil
}

// setErrorState marks the pass as failed. The next scheduler tick retries;
// nothing is surfaced to the editor.
func (s *service) setErrorState(ctx context.Context, tracker *activity.Tracker, campaign string) {
	if err := tracker.SetSyncState(ctx, models.SyncError); err != nil {
		s.logger.Error("Failed to record sync error state", "campaign", campaign, "error", err)
	}
}
