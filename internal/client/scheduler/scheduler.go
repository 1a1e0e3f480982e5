// Package scheduler drives sync passes on an adaptive, self-rearming timer.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Syncer runs one sync pass for a campaign.
type Syncer interface {
	PushPull(ctx context.Context, campaign string) error
}

// IntervalFunc returns the delay before the next sync attempt, typically
// activity.Tracker.NextInterval.
type IntervalFunc func(ctx context.Context) time.Duration

// Scheduler arms exactly one timer at a time: fire, run a pass, recompute
// the interval, re-arm. While the user is typing no timer is armed at all;
// the pending one is cancelled, not merely ignored.
type Scheduler struct {
	syncer   Syncer
	interval IntervalFunc
	logger   *slog.Logger
	campaign string

	mu      sync.Mutex
	timer   *time.Timer
	typing  bool
	started bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a scheduler for one campaign.
func New(campaign string, syncer Syncer, interval IntervalFunc, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		campaign: campaign,
		syncer:   syncer,
		interval: interval,
		logger:   logger,
	}
}

// Start arms the first timer. The scheduler stops when ctx is cancelled or
// Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	context.AfterFunc(s.ctx, s.clearTimer)
	s.arm()
}

// Stop cancels the pending timer and prevents re-arming. Any in-flight pass
// finishes on its own; only the next scheduled attempt is cancellable.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.clearTimer()
}

// SetTyping toggles the typing gate. Typing cancels the pending timer;
// stopping re-arms with the current interval.
func (s *Scheduler) SetTyping(typing bool) {
	s.mu.Lock()
	if s.typing == typing {
		s.mu.Unlock()
		return
	}
	s.typing = typing
	s.mu.Unlock()

	if typing {
		s.clearTimer()
		return
	}
	s.arm()
}

// arm schedules the next attempt unless typing, stopped or never started.
func (s *Scheduler) arm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.typing || s.ctx == nil || s.ctx.Err() != nil {
		return
	}

	delay := s.interval(s.ctx)

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(delay, s.fire)
}

// fire runs one pass and re-arms with the freshly computed interval.
func (s *Scheduler) fire() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if ctx == nil || ctx.Err() != nil {
		return
	}

	if err := s.syncer.PushPull(ctx, s.campaign); err != nil {
		// Retried on the next tick; never surfaced to the editor
		s.logger.Warn("Sync pass failed", "campaign", s.campaign, "error", err)
	}

	s.arm()
}

func (s *Scheduler) clearTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
