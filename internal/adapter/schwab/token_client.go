package schwab

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rcnpstock/schweb-email-login/internal/domain"
)

// TokenResponse models the Schwab token endpoint response.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
}

// TokenClient encapsulates outbound calls to the Schwab OAuth token endpoint.
type TokenClient interface {
	ExchangeCode(ctx context.Context, cred domain.Credential, code string) (*TokenResponse, error)
	RefreshToken(ctx context.Context, cred domain.Credential, refreshToken string) (*TokenResponse, error)
}

// HTTPTokenClient is the default HTTP implementation. Client credentials are
// always sent as HTTP Basic auth; the historical body-parameter variant is
// not supported.
type HTTPTokenClient struct {
	tokenURL   string
	httpClient *http.Client
}

var _ TokenClient = (*HTTPTokenClient)(nil)

// NewHTTPTokenClient constructs the default TokenClient.
func NewHTTPTokenClient(tokenURL string, client *http.Client) *HTTPTokenClient {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPTokenClient{tokenURL: tokenURL, httpClient: client}
}

// ExchangeCode performs the authorization-code grant.
func (c *HTTPTokenClient) ExchangeCode(ctx context.Context, cred domain.Credential, code string) (*TokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", cred.RedirectURI)

	resp, err := c.post(ctx, cred, data, "token exchange")
	if err != nil {
		return nil, err
	}
	if resp.status >= 300 {
		return nil, &domain.TokenExchangeError{Status: resp.status, Body: resp.body}
	}
	return decodeTokenResponse(resp.body)
}

// RefreshToken performs the refresh-token grant.
func (c *HTTPTokenClient) RefreshToken(ctx context.Context, cred domain.Credential, refreshToken string) (*TokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)
	data.Set("redirect_uri", cred.RedirectURI)

	resp, err := c.post(ctx, cred, data, "token refresh")
	if err != nil {
		return nil, err
	}
	if resp.status >= 300 {
		return nil, &domain.TokenRefreshError{Status: resp.status, Body: resp.body}
	}
	return decodeTokenResponse(resp.body)
}

type tokenEndpointResponse struct {
	status int
	body   string
}

func (c *HTTPTokenClient) post(ctx context.Context, cred domain.Credential, data url.Values, op string) (*tokenEndpointResponse, error) {
	if strings.TrimSpace(c.tokenURL) == "" {
		return nil, fmt.Errorf("token url missing")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+basicAuth(cred.ClientID, cred.ClientSecret))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &domain.NetworkError{Op: op, Err: err}
	}
	return &tokenEndpointResponse{status: resp.StatusCode, body: string(body)}, nil
}

func decodeTokenResponse(body string) (*TokenResponse, error) {
	var token TokenResponse
	if err := json.Unmarshal([]byte(body), &token); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if strings.TrimSpace(token.AccessToken) == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}
	return &token, nil
}

func basicAuth(clientID, clientSecret string) string {
	return base64.StdEncoding.EncodeToString([]byte(clientID + ":" + clientSecret))
}
