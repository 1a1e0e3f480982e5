// Package activity decides whether and how urgently a campaign should sync.
package activity

import "time"

// SyncInterval maps time since the last user activity to the delay before
// the next sync attempt. Non-decreasing step function: sync aggressively
// right after the user stops interacting, back off as the session goes idle.
func SyncInterval(elapsed time.Duration) time.Duration {
	switch {
	case elapsed < 5*time.Second:
		return 1 * time.Second
	case elapsed < 30*time.Second:
		return 2 * time.Second
	case elapsed < 5*time.Minute:
		return 10 * time.Second
	case elapsed < 30*time.Minute:
		return 30 * time.Second
	default:
		return 5 * time.Minute
	}
}
