package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rcnpstock/schweb-email-login/internal/domain"
)

// Compile-time interface assertions.
var (
	_ CredentialRepository = (*PostgresCredentialRepo)(nil)
	_ TokenRepository      = (*PostgresTokenRepo)(nil)
)

// PostgresCredentialRepo implements CredentialRepository on pgx.
type PostgresCredentialRepo struct {
	db   *pgxpool.Pool
	node *snowflake.Node
}

func NewPostgresCredentialRepo(pool *pgxpool.Pool, node *snowflake.Node) *PostgresCredentialRepo {
	return &PostgresCredentialRepo{db: pool, node: node}
}

const upsertCredentialSQL = `INSERT INTO brokerage_credentials (id, owner, client_id, client_secret, redirect_uri)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (owner) DO UPDATE
SET client_id = EXCLUDED.client_id,
    client_secret = EXCLUDED.client_secret,
    redirect_uri = EXCLUDED.redirect_uri,
    updated_at = now()
RETURNING id, owner, client_id, client_secret, redirect_uri, created_at, updated_at`

func (r *PostgresCredentialRepo) Save(ctx context.Context, cred domain.Credential) (domain.Credential, error) {
	owner := cred.Owner
	if owner == "" {
		owner = domain.DefaultOwner
	}

	row := r.db.QueryRow(ctx, upsertCredentialSQL,
		r.node.Generate().Int64(),
		owner,
		cred.ClientID,
		cred.ClientSecret,
		cred.RedirectURI,
	)

	var saved domain.Credential
	if err := row.Scan(
		&saved.ID,
		&saved.Owner,
		&saved.ClientID,
		&saved.ClientSecret,
		&saved.RedirectURI,
		&saved.CreatedAt,
		&saved.UpdatedAt,
	); err != nil {
		return domain.Credential{}, fmt.Errorf("save credential: %w", err)
	}
	return saved, nil
}

const getCredentialSQL = `SELECT id, owner, client_id, client_secret, redirect_uri, created_at, updated_at
FROM brokerage_credentials
WHERE owner = $1
LIMIT 1`

func (r *PostgresCredentialRepo) Get(ctx context.Context) (*domain.Credential, error) {
	row := r.db.QueryRow(ctx, getCredentialSQL, domain.DefaultOwner)

	var cred domain.Credential
	if err := row.Scan(
		&cred.ID,
		&cred.Owner,
		&cred.ClientID,
		&cred.ClientSecret,
		&cred.RedirectURI,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return &cred, nil
}

// PostgresTokenRepo implements TokenRepository on pgx.
type PostgresTokenRepo struct {
	db   *pgxpool.Pool
	node *snowflake.Node
}

func NewPostgresTokenRepo(pool *pgxpool.Pool, node *snowflake.Node) *PostgresTokenRepo {
	return &PostgresTokenRepo{db: pool, node: node}
}

const insertTokenSQL = `INSERT INTO brokerage_tokens (id, access_token, refresh_token, expires_in)
VALUES ($1, $2, $3, $4)
RETURNING id, access_token, refresh_token, expires_in, created_at`

func (r *PostgresTokenRepo) Replace(ctx context.Context, accessToken, refreshToken string, expiresIn int64) (domain.Token, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Token{}, fmt.Errorf("begin replace token: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, insertTokenSQL, r.node.Generate().Int64(), accessToken, refreshToken, expiresIn)

	var token domain.Token
	if err := row.Scan(&token.ID, &token.AccessToken, &token.RefreshToken, &token.ExpiresIn, &token.CreatedAt); err != nil {
		return domain.Token{}, fmt.Errorf("insert token: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM brokerage_tokens WHERE id <> $1`, token.ID); err != nil {
		return domain.Token{}, fmt.Errorf("delete stale tokens: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Token{}, fmt.Errorf("commit replace token: %w", err)
	}
	return token, nil
}

const latestTokenSQL = `SELECT id, access_token, refresh_token, expires_in, created_at
FROM brokerage_tokens
ORDER BY created_at DESC, id DESC
LIMIT 1`

func (r *PostgresTokenRepo) Latest(ctx context.Context) (*domain.Token, error) {
	row := r.db.QueryRow(ctx, latestTokenSQL)

	var token domain.Token
	if err := row.Scan(&token.ID, &token.AccessToken, &token.RefreshToken, &token.ExpiresIn, &token.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest token: %w", err)
	}
	return &token, nil
}

func (r *PostgresTokenRepo) Clear(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM brokerage_tokens`); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}
