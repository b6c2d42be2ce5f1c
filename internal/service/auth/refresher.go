package auth

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Outcome records the result of the most recent refresh attempt.
type Outcome struct {
	At      time.Time `json:"at"`
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
}

// Refresher runs the unattended periodic token refresh. Failures are logged
// and swallowed; the next attempt happens at the next tick, with no backoff.
// Running multiple process instances against one token store races
// destructively (last refresh wins) — a documented limitation.
type Refresher struct {
	svc      OAuthService
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu   sync.Mutex
	last *Outcome
}

// NewRefresher creates a refresher for the given interval.
func NewRefresher(svc OAuthService, interval time.Duration, logger *zap.Logger) *Refresher {
	return &Refresher{
		svc:      svc,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run performs one immediate refresh attempt, then refreshes at every tick
// until ctx is done.
func (r *Refresher) Run(ctx context.Context) {
	r.RefreshNow(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RefreshNow(ctx)
		}
	}
}

// RefreshNow attempts one refresh and records the outcome. The returned
// error, if any, is the underlying refresh failure.
func (r *Refresher) RefreshNow(ctx context.Context) (Outcome, error) {
	_, err := r.svc.Refresh(ctx)

	out := Outcome{At: r.now(), Success: err == nil}
	if err != nil {
		out.Error = err.Error()
		r.logger.Warn("scheduled token refresh failed", zap.Error(err))
	} else {
		r.logger.Info("tokens refreshed")
	}

	r.mu.Lock()
	r.last = &out
	r.mu.Unlock()
	return out, err
}

// LastOutcome reports the most recent refresh attempt, if any ran yet.
func (r *Refresher) LastOutcome() (Outcome, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return Outcome{}, false
	}
	return *r.last, true
}
