package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/iudanet/campkeeper/internal/client/activity"
	"github.com/iudanet/campkeeper/internal/client/scheduler"
)

// runSync runs a single push/pull pass right away.
func (c *Cli) runSync(ctx context.Context) error {
	store, err := c.registry.Get(c.campaign)
	if err != nil {
		return fmt.Errorf("failed to open campaign store: %w", err)
	}

	before, err := store.CountChanges(ctx)
	if err != nil {
		return fmt.Errorf("failed to count pending changes: %w", err)
	}

	if err := c.syncService.PushPull(ctx, c.campaign); err != nil {
		return fmt.Errorf("synchronization failed: %w", err)
	}

	after, err := store.CountChanges(ctx)
	if err != nil {
		return fmt.Errorf("failed to count pending changes: %w", err)
	}

	fmt.Printf("Sync pass finished: %d pending change(s) before, %d after.\n", before, after)
	return nil
}

// runWatch keeps syncing on the adaptive timer until interrupted.
func (c *Cli) runWatch(ctx context.Context) error {
	store, err := c.registry.Get(c.campaign)
	if err != nil {
		return fmt.Errorf("failed to open campaign store: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	tracker := activity.NewTracker(store, logger)

	s := scheduler.New(c.campaign, c.syncService, tracker.NextInterval, logger)
	s.Start(ctx)
	defer s.Stop()

	fmt.Printf("Watching campaign %q, press Ctrl+C to stop.\n", c.campaign)
	<-ctx.Done()

	fmt.Println("Stopped.")
	return nil
}
