package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rcnpstock/schweb-email-login/internal/adapter/schwab"
	"github.com/rcnpstock/schweb-email-login/internal/domain"
)

func TestRefresherRecordsSuccess(t *testing.T) {
	h := newOAuthTestHarness(t, nil)
	h.seedCredential()
	h.tokenRepo.seed("access", "refresh", 1800)
	h.tokenClient.response = &schwab.TokenResponse{AccessToken: "next-access", RefreshToken: "next-refresh", ExpiresIn: 1800}

	r := NewRefresher(h.service, 29*time.Minute, zap.NewNop())
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return at }

	_, ok := r.LastOutcome()
	require.False(t, ok)

	outcome, err := r.RefreshNow(context.Background())
	require.NoError(t, err)
	require.True(t, outcome.Success)
	require.Equal(t, at, outcome.At)
	require.Empty(t, outcome.Error)

	last, ok := r.LastOutcome()
	require.True(t, ok)
	require.Equal(t, outcome, last)
}

func TestRefresherRecordsFailure(t *testing.T) {
	h := newOAuthTestHarness(t, nil)

	r := NewRefresher(h.service, 29*time.Minute, zap.NewNop())

	outcome, err := r.RefreshNow(context.Background())
	require.ErrorIs(t, err, domain.ErrNoRefreshToken)
	require.False(t, outcome.Success)
	require.NotEmpty(t, outcome.Error)

	last, ok := r.LastOutcome()
	require.True(t, ok)
	require.False(t, last.Success)
}

func TestRefresherRunSwallowsFailures(t *testing.T) {
	h := newOAuthTestHarness(t, nil)

	r := NewRefresher(h.service, time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		last, ok := r.LastOutcome()
		return ok && !last.Success
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop after cancel")
	}
}
