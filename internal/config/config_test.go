package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/bridge")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "3000", cfg.HTTPPort)
	require.Equal(t, "https://api.schwabapi.com", cfg.SchwabAPIBase)
	require.Equal(t, "https://api.schwabapi.com/v1/oauth/authorize", cfg.SchwabAuthorizeURL)
	require.Equal(t, "https://api.schwabapi.com/v1/oauth/token", cfg.SchwabTokenURL)
	require.Equal(t, "PlaceTrade ReadAccounts", cfg.OAuthScope)
	require.Equal(t, ScopeEncodingPercent, cfg.ScopeEncoding)
	require.Equal(t, 29*time.Minute, cfg.RefreshInterval)
	require.Equal(t, 15*time.Second, cfg.BrokerTimeout)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadRejectsUnknownScopeEncoding(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/bridge")
	t.Setenv("SCOPE_ENCODING", "raw")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "SCOPE_ENCODING")
}

func TestLoadScopeEncodingPlus(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/bridge")
	t.Setenv("SCOPE_ENCODING", ScopeEncodingPlus)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ScopeEncodingPlus, cfg.ScopeEncoding)
}

func TestLoadCustomAPIBase(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/bridge")
	t.Setenv("SCHWAB_API_BASE", "https://sandbox.schwabapi.com/")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://sandbox.schwabapi.com", cfg.SchwabAPIBase)
	require.Equal(t, "https://sandbox.schwabapi.com/v1/oauth/authorize", cfg.SchwabAuthorizeURL)
}
