package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SyncerMock counts passes and optionally signals each one.
type SyncerMock struct {
	PushPullFunc func(ctx context.Context, campaign string) error

	mu        sync.Mutex
	calls     int
	campaigns []string
	fired     chan struct{}
}

func (m *SyncerMock) PushPull(ctx context.Context, campaign string) error {
	m.mu.Lock()
	m.calls++
	m.campaigns = append(m.campaigns, campaign)
	fired := m.fired
	m.mu.Unlock()

	if fired != nil {
		select {
		case fired <- struct{}{}:
		default:
		}
	}

	if m.PushPullFunc == nil {
		return nil
	}
	return m.PushPullFunc(ctx, campaign)
}

func (m *SyncerMock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedInterval(d time.Duration) IntervalFunc {
	return func(ctx context.Context) time.Duration { return d }
}

func TestScheduler_FiresAndRearms(t *testing.T) {
	mock := &SyncerMock{fired: make(chan struct{}, 8)}
	s := New("curse-of-strahd", mock, fixedInterval(5*time.Millisecond), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	// The timer chain keeps firing without any external poke
	for range 3 {
		select {
		case <-mock.fired:
		case <-time.After(time.Second):
			t.Fatal("scheduler stopped firing")
		}
	}

	mock.mu.Lock()
	campaign := mock.campaigns[0]
	mock.mu.Unlock()
	assert.Equal(t, "curse-of-strahd", campaign)
}

func TestScheduler_TypingStopsPendingTimer(t *testing.T) {
	mock := &SyncerMock{}
	s := New("curse-of-strahd", mock, fixedInterval(10*time.Millisecond), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	s.SetTyping(true)
	time.Sleep(50 * time.Millisecond)

	// Nothing armed while typing
	assert.Equal(t, 0, mock.Calls())
}

func TestScheduler_TypingStopRearms(t *testing.T) {
	mock := &SyncerMock{fired: make(chan struct{}, 1)}
	s := New("curse-of-strahd", mock, fixedInterval(5*time.Millisecond), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	s.SetTyping(true)
	s.SetTyping(false)

	select {
	case <-mock.fired:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not re-arm after typing stopped")
	}
}

func TestScheduler_StopPreventsFurtherPasses(t *testing.T) {
	mock := &SyncerMock{}
	s := New("curse-of-strahd", mock, fixedInterval(10*time.Millisecond), testLogger())

	s.Start(context.Background())
	s.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, mock.Calls())
}

func TestScheduler_ContextCancelTearsDown(t *testing.T) {
	mock := &SyncerMock{fired: make(chan struct{}, 8)}
	s := New("curse-of-strahd", mock, fixedInterval(5*time.Millisecond), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	select {
	case <-mock.fired:
	case <-time.After(time.Second):
		t.Fatal("scheduler never fired")
	}

	cancel()
	time.Sleep(30 * time.Millisecond)
	after := mock.Calls()
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, after, mock.Calls())
}

func TestScheduler_SyncErrorDoesNotStopChain(t *testing.T) {
	mock := &SyncerMock{
		fired: make(chan struct{}, 8),
		PushPullFunc: func(ctx context.Context, campaign string) error {
			return context.DeadlineExceeded
		},
	}
	s := New("curse-of-strahd", mock, fixedInterval(5*time.Millisecond), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	// Failing passes still re-arm
	for range 2 {
		select {
		case <-mock.fired:
		case <-time.After(time.Second):
			t.Fatal("scheduler stopped after a sync error")
		}
	}
}

func TestScheduler_StartIsIdempotent(t *testing.T) {
	mock := &SyncerMock{fired: make(chan struct{}, 1)}
	s := New("curse-of-strahd", mock, fixedInterval(5*time.Millisecond), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	s.Start(ctx)
	defer s.Stop()

	select {
	case <-mock.fired:
	case <-time.After(time.Second):
		t.Fatal("scheduler never fired")
	}
	require.NotNil(t, s)
}
