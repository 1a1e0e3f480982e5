package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/campkeeper/internal/client/storage"
	"github.com/iudanet/campkeeper/internal/models"
)

const (
	// typingGuard suppresses sync while keystrokes are landing.
	typingGuard = 1 * time.Second

	// stuckSyncTimeout is how long a "syncing" flag may sit untouched before
	// it is treated as abandoned (crashed process, killed tab). An advisory
	// heuristic, not a distributed lock.
	stuckSyncTimeout = 10 * time.Second
)

// Tracker persists per-campaign activity timestamps and the sync state flag
// in the store's metadata table.
type Tracker struct {
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewTracker creates a tracker over one campaign store.
func NewTracker(store storage.Store, logger *slog.Logger) *Tracker {
	return &Tracker{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// TouchActivity records that the user interacted with the campaign.
func (t *Tracker) TouchActivity(ctx context.Context) error {
	now := t.now().UnixMilli()
	if err := t.store.PutMetadata(ctx, models.MetaLastActivity, now, now); err != nil {
		return fmt.Errorf("failed to update last activity: %w", err)
	}
	return nil
}

// TouchLocalChange records a successful local entity mutation.
func (t *Tracker) TouchLocalChange(ctx context.Context) error {
	now := t.now().UnixMilli()
	if err := t.store.PutMetadata(ctx, models.MetaLastLocalChange, now, now); err != nil {
		return fmt.Errorf("failed to update last local change: %w", err)
	}
	return nil
}

// LastActivity returns the last user activity time, zero if never recorded.
func (t *Tracker) LastActivity(ctx context.Context) (time.Time, error) {
	return t.metaTime(ctx, models.MetaLastActivity)
}

// LastLocalChange returns the last local mutation time, zero if never recorded.
func (t *Tracker) LastLocalChange(ctx context.Context) (time.Time, error) {
	return t.metaTime(ctx, models.MetaLastLocalChange)
}

// ShouldSync reports whether a sync pass is due: only with pending outbox
// rows, never within a second of user activity, and only once the local
// changes have settled for the interval derived from the activity age.
func (t *Tracker) ShouldSync(ctx context.Context) (bool, error) {
	pending, err := t.store.CountChanges(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count pending changes: %w", err)
	}
	if pending == 0 {
		return false, nil
	}

	lastActivity, err := t.LastActivity(ctx)
	if err != nil {
		return false, err
	}
	lastLocalChange, err := t.LastLocalChange(ctx)
	if err != nil {
		return false, err
	}

	now := t.now()
	sinceActivity := now.Sub(lastActivity)
	if sinceActivity < typingGuard {
		return false, nil
	}

	return now.Sub(lastLocalChange) >= SyncInterval(sinceActivity), nil
}

// NextInterval returns the delay the scheduler should use for its next
// attempt, based on the current activity age.
func (t *Tracker) NextInterval(ctx context.Context) time.Duration {
	lastActivity, err := t.LastActivity(ctx)
	if err != nil {
		t.logger.Warn("Failed to read last activity, using max backoff", "error", err)
		return SyncInterval(30 * time.Minute)
	}
	return SyncInterval(t.now().Sub(lastActivity))
}

// SyncState returns the current sync flag, defaulting to idle.
func (t *Tracker) SyncState(ctx context.Context) (models.SyncState, error) {
	row, err := t.store.GetMetadata(ctx, models.MetaSyncState)
	if err != nil {
		if errors.Is(err, storage.ErrMetadataNotFound) {
			return models.SyncIdle, nil
		}
		return models.SyncIdle, fmt.Errorf("failed to get sync state: %w", err)
	}

	state, ok := row.Value.(string)
	if !ok {
		return models.SyncIdle, nil
	}

	return models.SyncState(state), nil
}

// SetSyncState persists the sync flag, stamping its own update time.
func (t *Tracker) SetSyncState(ctx context.Context, state models.SyncState) error {
	if err := t.store.PutMetadata(ctx, models.MetaSyncState, string(state), t.now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to set sync state: %w", err)
	}
	return nil
}

// ClearStuckSyncing resets an abandoned "syncing" flag back to idle once it
// has been untouched for longer than the staleness threshold. Returns true
// when the caller may proceed with a new pass.
func (t *Tracker) ClearStuckSyncing(ctx context.Context) (bool, error) {
	row, err := t.store.GetMetadata(ctx, models.MetaSyncState)
	if err != nil {
		if errors.Is(err, storage.ErrMetadataNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("failed to get sync state: %w", err)
	}

	if state, _ := row.Value.(string); models.SyncState(state) != models.SyncSyncing {
		return true, nil
	}

	stuckFor := t.now().Sub(time.UnixMilli(row.UpdatedAt))
	if stuckFor <= stuckSyncTimeout {
		return false, nil
	}

	t.logger.Warn("Resetting stuck sync state", "stuck_for", stuckFor)
	if err := t.SetSyncState(ctx, models.SyncIdle); err != nil {
		return false, err
	}

	return true, nil
}

// metaTime reads a metadata row holding an epoch-millis value. Missing rows
// map to the zero time so a fresh campaign syncs immediately.
func (t *Tracker) metaTime(ctx context.Context, key string) (time.Time, error) {
	row, err := t.store.GetMetadata(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrMetadataNotFound) {
			return time.UnixMilli(0), nil
		}
		return time.Time{}, fmt.Errorf("failed to get metadata %q: %w", key, err)
	}

	millis, ok := asInt64(row.Value)
	if !ok {
		return time.UnixMilli(0), nil
	}

	return time.UnixMilli(millis), nil
}

// asInt64 coerces the JSON-decoded metadata value into epoch millis.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
