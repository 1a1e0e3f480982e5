package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/iudanet/campkeeper/internal/client/activity"
)

// runStatus prints the campaign's local sync state.
func (c *Cli) runStatus(ctx context.Context) error {
	store, err := c.registry.Get(c.campaign)
	if err != nil {
		return fmt.Errorf("failed to open campaign store: %w", err)
	}

	pending, err := store.CountChanges(ctx)
	if err != nil {
		return fmt.Errorf("failed to count pending changes: %w", err)
	}

	tracker := activity.NewTracker(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	state, err := tracker.SyncState(ctx)
	if err != nil {
		return fmt.Errorf("failed to read sync state: %w", err)
	}

	lastActivity, err := tracker.LastActivity(ctx)
	if err != nil {
		return fmt.Errorf("failed to read last activity: %w", err)
	}

	fmt.Printf("Campaign:        %s\n", c.campaign)
	fmt.Printf("Sync state:      %s\n", state)
	fmt.Printf("Pending changes: %d\n", pending)
	if lastActivity.UnixMilli() > 0 {
		fmt.Printf("Last activity:   %s\n", lastActivity.Format(time.RFC3339))
		fmt.Printf("Next interval:   %s\n", activity.SyncInterval(time.Since(lastActivity)))
	} else {
		fmt.Println("Last activity:   never")
	}
	return nil
}
