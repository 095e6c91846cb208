package scheduler

import (
	"context"
	"time"

	"telegram-vocab-reader/internal/infra/metrics"
)

// Sweepable is a session store that needs explicit expiry (the in-memory one).
// Redis expires keys itself and is never swept.
type Sweepable interface {
	Sweep(ctx context.Context, now time.Time, ttl time.Duration) (int, error)
}

// SessionSweeper drops sessions idle for longer than ttl.
type SessionSweeper struct {
	store Sweepable
	ttl   time.Duration
	now   func() time.Time
}

func NewSessionSweeper(store Sweepable, ttl time.Duration) *SessionSweeper {
	return &SessionSweeper{store: store, ttl: ttl, now: time.Now}
}

func (w *SessionSweeper) Name() string { return "session_sweeper" }

func (w *SessionSweeper) RunOnce(ctx context.Context) (int, error) {
	n, err := w.store.Sweep(ctx, w.now(), w.ttl)
	if err != nil {
		return 0, err
	}
	metrics.AddSessionsExpired(n)
	return n, nil
}
