package schwab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rcnpstock/schweb-email-login/internal/domain"
)

// Account is one entry of the accountNumbers response.
type Account struct {
	AccountNumber string `json:"accountNumber"`
	HashValue     string `json:"hashValue"`
}

// TraderClient encapsulates outbound calls to the Schwab trading API.
type TraderClient interface {
	AccountNumbers(ctx context.Context, accessToken string) ([]Account, error)
	PlaceOrder(ctx context.Context, accessToken, accountHash string, intent domain.OrderIntent) (json.RawMessage, error)
}

// HTTPTraderClient is the default HTTP implementation.
type HTTPTraderClient struct {
	apiBase    string
	httpClient *http.Client
}

var _ TraderClient = (*HTTPTraderClient)(nil)

// NewHTTPTraderClient constructs the default TraderClient.
func NewHTTPTraderClient(apiBase string, client *http.Client) *HTTPTraderClient {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPTraderClient{apiBase: strings.TrimRight(apiBase, "/"), httpClient: client}
}

// AccountNumbers lists the caller's account identifiers.
func (c *HTTPTraderClient) AccountNumbers(ctx context.Context, accessToken string) ([]Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/trader/v1/accounts/accountNumbers", nil)
	if err != nil {
		return nil, fmt.Errorf("build accounts request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Op: "account lookup", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &domain.NetworkError{Op: "account lookup", Err: err}
	}
	if resp.StatusCode >= 300 {
		return nil, &domain.AccountLookupError{Status: resp.StatusCode, Body: string(body)}
	}

	var accounts []Account
	if err := json.Unmarshal(body, &accounts); err != nil {
		return nil, fmt.Errorf("decode accounts response: %w", err)
	}
	return accounts, nil
}

type orderRequest struct {
	OrderType          string     `json:"orderType"`
	Session            string     `json:"session"`
	Duration           string     `json:"duration"`
	OrderStrategyType  string     `json:"orderStrategyType"`
	OrderLegCollection []orderLeg `json:"orderLegCollection"`
}

type orderLeg struct {
	Instruction string          `json:"instruction"`
	Quantity    int             `json:"quantity"`
	Instrument  orderInstrument `json:"instrument"`
}

type orderInstrument struct {
	Symbol    string `json:"symbol"`
	AssetType string `json:"assetType"`
}

// PlaceOrder submits a single-leg market day order and returns the raw
// brokerage response body.
func (c *HTTPTraderClient) PlaceOrder(ctx context.Context, accessToken, accountHash string, intent domain.OrderIntent) (json.RawMessage, error) {
	order := orderRequest{
		OrderType:         "MARKET",
		Session:           "NORMAL",
		Duration:          "DAY",
		OrderStrategyType: "SINGLE",
		OrderLegCollection: []orderLeg{{
			Instruction: string(intent.Instruction),
			Quantity:    intent.Quantity,
			Instrument: orderInstrument{
				Symbol:    intent.Symbol,
				AssetType: "EQUITY",
			},
		}},
	}

	payload, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("encode order: %w", err)
	}

	orderURL := fmt.Sprintf("%s/trader/v1/accounts/%s/orders", c.apiBase, accountHash)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, orderURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Op: "order submission", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &domain.NetworkError{Op: "order submission", Err: err}
	}
	if resp.StatusCode >= 300 {
		return nil, &domain.OrderSubmissionError{Status: resp.StatusCode, Body: string(body)}
	}
	if len(body) == 0 {
		return json.RawMessage(`{}`), nil
	}
	return json.RawMessage(body), nil
}
