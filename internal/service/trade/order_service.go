package trade

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/rcnpstock/schweb-email-login/internal/adapter/schwab"
	"github.com/rcnpstock/schweb-email-login/internal/domain"
	"github.com/rcnpstock/schweb-email-login/internal/repository"
)

// OrderService submits market orders against the current brokerage session.
type OrderService interface {
	PlaceOrder(ctx context.Context, intent domain.OrderIntent) (*OrderResult, error)
}

// OrderResult echoes the submitted order and the raw brokerage response.
type OrderResult struct {
	Symbol      string             `json:"symbol"`
	Quantity    int                `json:"quantity"`
	Instruction domain.Instruction `json:"instruction"`
	AccountHash string             `json:"-"`
	Response    json.RawMessage    `json:"response,omitempty"`
}

type orderService struct {
	tokenRepo repository.TokenRepository
	trader    schwab.TraderClient
	logger    *zap.Logger
}

// NewOrderService wires the order service implementation.
func NewOrderService(tokenRepo repository.TokenRepository, trader schwab.TraderClient, logger *zap.Logger) OrderService {
	return &orderService{tokenRepo: tokenRepo, trader: trader, logger: logger}
}

// PlaceOrder resolves the current access token and the primary account hash,
// then submits a single market day order. Nothing is cached between calls and
// nothing is retried; duplicate submissions are the caller's responsibility.
func (s *orderService) PlaceOrder(ctx context.Context, intent domain.OrderIntent) (*OrderResult, error) {
	normalized, err := intent.Normalize()
	if err != nil {
		return nil, err
	}

	token, err := s.tokenRepo.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	if token == nil {
		return nil, domain.ErrNotAuthenticated
	}

	accountHash, err := s.resolveAccountHash(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	response, err := s.trader.PlaceOrder(ctx, token.AccessToken, accountHash, normalized)
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("symbol", normalized.Symbol),
		zap.Int("quantity", normalized.Quantity),
		zap.String("instruction", string(normalized.Instruction)),
	)

	return &OrderResult{
		Symbol:      normalized.Symbol,
		Quantity:    normalized.Quantity,
		Instruction: normalized.Instruction,
		AccountHash: accountHash,
		Response:    response,
	}, nil
}

// resolveAccountHash returns the first account's opaque identifier. The
// first account is assumed primary, matching the brokerage UI ordering.
func (s *orderService) resolveAccountHash(ctx context.Context, accessToken string) (string, error) {
	accounts, err := s.trader.AccountNumbers(ctx, accessToken)
	if err != nil {
		return "", err
	}
	if len(accounts) == 0 {
		return "", domain.ErrNoAccounts
	}
	if accounts[0].HashValue == "" {
		return "", domain.ErrInvalidAccount
	}
	return accounts[0].HashValue, nil
}
