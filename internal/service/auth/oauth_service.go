package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rcnpstock/schweb-email-login/internal/adapter/schwab"
	"github.com/rcnpstock/schweb-email-login/internal/config"
	"github.com/rcnpstock/schweb-email-login/internal/domain"
	"github.com/rcnpstock/schweb-email-login/internal/repository"
)

// OAuthService drives the brokerage OAuth lifecycle: credential management,
// the authorization-code flow, and token refresh.
type OAuthService interface {
	SaveCredential(ctx context.Context, in SaveCredentialInput) (domain.Credential, error)
	Credential(ctx context.Context) (*domain.Credential, error)
	AuthorizationURL(ctx context.Context) (string, error)
	ExchangeCode(ctx context.Context, code, state string) (domain.Token, error)
	Refresh(ctx context.Context) (domain.Token, error)
	IsLoggedIn(ctx context.Context) (bool, error)
	Logout(ctx context.Context) error
}

// SaveCredentialInput carries the operator-facing configuration call.
type SaveCredentialInput struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

type oauthService struct {
	credRepo    repository.CredentialRepository
	tokenRepo   repository.TokenRepository
	stateStore  repository.LoginStateStore
	tokenClient schwab.TokenClient
	cfg         config.Config
	logger      *zap.Logger
}

// NewOAuthService wires the OAuth service implementation.
func NewOAuthService(
	credRepo repository.CredentialRepository,
	tokenRepo repository.TokenRepository,
	stateStore repository.LoginStateStore,
	tokenClient schwab.TokenClient,
	cfg config.Config,
	logger *zap.Logger,
) OAuthService {
	return &oauthService{
		credRepo:    credRepo,
		tokenRepo:   tokenRepo,
		stateStore:  stateStore,
		tokenClient: tokenClient,
		cfg:         cfg,
		logger:      logger,
	}
}

const (
	statePrefix = "schwab:login:"
	stateTTL    = 5 * time.Minute
)

func (s *oauthService) SaveCredential(ctx context.Context, in SaveCredentialInput) (domain.Credential, error) {
	var missing []string
	if strings.TrimSpace(in.ClientID) == "" {
		missing = append(missing, "clientId")
	}
	if strings.TrimSpace(in.ClientSecret) == "" {
		missing = append(missing, "clientSecret")
	}
	if len(missing) > 0 {
		return domain.Credential{}, &domain.ValidationError{Missing: missing}
	}

	redirect := strings.TrimSpace(in.RedirectURI)
	if redirect == "" {
		redirect = s.cfg.FallbackRedirectURI
	}

	saved, err := s.credRepo.Save(ctx, domain.Credential{
		Owner:        domain.DefaultOwner,
		ClientID:     strings.TrimSpace(in.ClientID),
		ClientSecret: strings.TrimSpace(in.ClientSecret),
		RedirectURI:  redirect,
	})
	if err != nil {
		return domain.Credential{}, fmt.Errorf("save credential: %w", err)
	}

	s.logger.Info("brokerage credential saved", zap.String("redirect_uri", saved.RedirectURI))
	return saved, nil
}

func (s *oauthService) Credential(ctx context.Context) (*domain.Credential, error) {
	cred, err := s.credRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}
	return cred, nil
}

// AuthorizationURL builds the brokerage authorize URL and persists a login
// state nonce for the callback roundtrip.
func (s *oauthService) AuthorizationURL(ctx context.Context) (string, error) {
	cred, err := s.credRepo.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	if cred == nil || cred.ClientID == "" || cred.RedirectURI == "" {
		return "", domain.ErrNotConfigured
	}

	state, err := secureRandomString(32)
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	if err := s.stateStore.SaveState(ctx, stateKey(state), domain.LoginState{
		State:     state,
		CreatedAt: time.Now().UTC(),
	}, stateTTL); err != nil {
		return "", fmt.Errorf("persist state: %w", err)
	}

	authURL, err := url.Parse(s.cfg.SchwabAuthorizeURL)
	if err != nil {
		return "", fmt.Errorf("parse authorize url: %w", err)
	}

	params := authURL.Query()
	params.Set("response_type", "code")
	params.Set("client_id", cred.ClientID)
	params.Set("redirect_uri", cred.RedirectURI)
	params.Set("state", state)
	// The scope separator encoding is produced per config; url.Values would
	// always emit "+".
	authURL.RawQuery = params.Encode() + "&scope=" + encodeScope(s.cfg.OAuthScope, s.cfg.ScopeEncoding)

	return authURL.String(), nil
}

// ExchangeCode trades the authorization code for tokens and replaces the
// stored token record. The token store is left untouched on failure.
func (s *oauthService) ExchangeCode(ctx context.Context, code, state string) (domain.Token, error) {
	if strings.TrimSpace(code) == "" {
		return domain.Token{}, domain.ErrMissingCode
	}
	if strings.TrimSpace(state) != "" {
		if err := s.consumeState(ctx, state); err != nil {
			return domain.Token{}, err
		}
	}

	cred, err := s.credRepo.Get(ctx)
	if err != nil {
		return domain.Token{}, fmt.Errorf("load credential: %w", err)
	}
	if cred == nil || !cred.Complete() {
		return domain.Token{}, domain.ErrNotConfigured
	}

	resp, err := s.tokenClient.ExchangeCode(ctx, *cred, code)
	if err != nil {
		return domain.Token{}, err
	}

	token, err := s.tokenRepo.Replace(ctx, resp.AccessToken, resp.RefreshToken, resp.ExpiresIn)
	if err != nil {
		return domain.Token{}, fmt.Errorf("persist token: %w", err)
	}

	s.logger.Info("authorization code exchanged", zap.Int64("expires_in", token.ExpiresIn))
	return token, nil
}

// Refresh rotates the stored token using its refresh token. On failure the
// existing record stays in place; the scheduler retries at the next tick.
func (s *oauthService) Refresh(ctx context.Context) (domain.Token, error) {
	current, err := s.tokenRepo.Latest(ctx)
	if err != nil {
		return domain.Token{}, fmt.Errorf("load token: %w", err)
	}
	if current == nil {
		return domain.Token{}, domain.ErrNoRefreshToken
	}

	cred, err := s.refreshCredential(ctx)
	if err != nil {
		return domain.Token{}, err
	}

	resp, err := s.tokenClient.RefreshToken(ctx, cred, current.RefreshToken)
	if err != nil {
		return domain.Token{}, err
	}

	token, err := s.tokenRepo.Replace(ctx, resp.AccessToken, resp.RefreshToken, resp.ExpiresIn)
	if err != nil {
		return domain.Token{}, fmt.Errorf("persist token: %w", err)
	}

	return token, nil
}

// refreshCredential prefers the stored credential, falling back to the
// process-wide defaults only when no record exists. The fallback is a
// deprecated compatibility path.
func (s *oauthService) refreshCredential(ctx context.Context) (domain.Credential, error) {
	cred, err := s.credRepo.Get(ctx)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("load credential: %w", err)
	}
	if cred != nil && cred.Complete() {
		return *cred, nil
	}

	fallback := domain.Credential{
		ClientID:     s.cfg.FallbackClientID,
		ClientSecret: s.cfg.FallbackClientSecret,
		RedirectURI:  s.cfg.FallbackRedirectURI,
	}
	if !fallback.Complete() {
		return domain.Credential{}, domain.ErrNotConfigured
	}
	s.logger.Warn("using environment credential fallback for refresh")
	return fallback, nil
}

func (s *oauthService) IsLoggedIn(ctx context.Context) (bool, error) {
	token, err := s.tokenRepo.Latest(ctx)
	if err != nil {
		return false, fmt.Errorf("load token: %w", err)
	}
	return token != nil, nil
}

func (s *oauthService) Logout(ctx context.Context) error {
	if err := s.tokenRepo.Clear(ctx); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	s.logger.Info("tokens cleared")
	return nil
}

func (s *oauthService) consumeState(ctx context.Context, state string) error {
	key := stateKey(state)
	stored, err := s.stateStore.GetState(ctx, key)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if stored == nil {
		return domain.ErrInvalidState
	}
	if err := s.stateStore.DeleteState(ctx, key); err != nil {
		s.logger.Warn("failed to delete login state", zap.Error(err))
	}
	return nil
}

func stateKey(state string) string {
	return statePrefix + strings.TrimSpace(state)
}

// encodeScope normalizes the configured scope string (either separator is
// accepted on input) and emits it with the configured separator encoding.
func encodeScope(scope, encoding string) string {
	normalized := strings.Join(strings.Fields(strings.ReplaceAll(scope, "+", " ")), " ")
	escaped := url.QueryEscape(normalized)
	if encoding == config.ScopeEncodingPercent {
		return strings.ReplaceAll(escaped, "+", "%20")
	}
	return escaped
}

func secureRandomString(size int) (string, error) {
	if size <= 0 {
		size = 32
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
