package repository

import (
	"context"
	"time"

	"github.com/rcnpstock/schweb-email-login/internal/domain"
)

// CredentialRepository persists the singleton brokerage credential.
type CredentialRepository interface {
	// Save upserts the credential keyed by domain.DefaultOwner.
	Save(ctx context.Context, cred domain.Credential) (domain.Credential, error)
	// Get returns the credential, or nil when none has been saved.
	Get(ctx context.Context) (*domain.Credential, error)
}

// TokenRepository persists the singleton brokerage token record.
type TokenRepository interface {
	// Replace atomically swaps all existing token rows for one new record.
	// The new row is inserted before old rows are deleted so a concurrent
	// reader never observes an empty store between two replacements.
	Replace(ctx context.Context, accessToken, refreshToken string, expiresIn int64) (domain.Token, error)
	// Latest returns the most recent token by creation time, or nil.
	Latest(ctx context.Context) (*domain.Token, error)
	// Clear deletes every token record, forcing re-authorization.
	Clear(ctx context.Context) error
}

// LoginStateStore persists short-lived OAuth login state nonces.
type LoginStateStore interface {
	SaveState(ctx context.Context, key string, data domain.LoginState, ttl time.Duration) error
	GetState(ctx context.Context, key string) (*domain.LoginState, error)
	DeleteState(ctx context.Context, key string) error
}
