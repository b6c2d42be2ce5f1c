package handler_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rcnpstock/schweb-email-login/internal/domain"
)

func TestLoginRedirectsToBrokerage(t *testing.T) {
	h := newHandlerTestHarness(t)
	h.oauth.authURL = "https://api.schwabapi.com/v1/oauth/authorize?client_id=abc&state=xyz"

	w := h.do(http.MethodGet, "/login", "")

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, h.oauth.authURL, w.Header().Get("Location"))
}

func TestLoginWithoutCredential(t *testing.T) {
	h := newHandlerTestHarness(t)
	h.oauth.authErr = domain.ErrNotConfigured

	w := h.do(http.MethodGet, "/login", "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "not_configured", body["error"])
}

func TestCallbackExchangesCode(t *testing.T) {
	h := newHandlerTestHarness(t)

	w := h.do(http.MethodGet, "/callback?code=auth-code&state=xyz", "")

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/oauth/success", w.Header().Get("Location"))
	require.Equal(t, "auth-code", h.oauth.lastCode)
	require.Equal(t, "xyz", h.oauth.lastState)
}

func TestCallbackWithoutCode(t *testing.T) {
	h := newHandlerTestHarness(t)
	h.oauth.exchange = domain.ErrMissingCode

	w := h.do(http.MethodGet, "/callback", "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "invalid_request", body["error"])
}

func TestCallbackExchangeRejected(t *testing.T) {
	h := newHandlerTestHarness(t)
	h.oauth.exchange = &domain.TokenExchangeError{Status: 400, Body: `{"error":"invalid_grant"}`}

	w := h.do(http.MethodGet, "/callback?code=expired", "")

	require.Equal(t, http.StatusBadGateway, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "token_exchange_failed", body["error"])
	// upstream detail stays server-side
	require.NotContains(t, w.Body.String(), "invalid_grant")
}

func TestStatusReflectsLogin(t *testing.T) {
	h := newHandlerTestHarness(t)

	w := h.do(http.MethodGet, "/api/oauth/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, false, body["loggedIn"])
	require.NotContains(t, body, "lastRefresh")

	h.oauth.loggedIn = true
	w = h.do(http.MethodGet, "/api/oauth/status", "")
	body = decodeBody(t, w)
	require.Equal(t, true, body["loggedIn"])
}

func TestStatusDegradesOnStoreFailure(t *testing.T) {
	h := newHandlerTestHarness(t)
	h.oauth.loggedIn = true
	h.oauth.loggedInErr = errors.New("connection refused")

	w := h.do(http.MethodGet, "/api/oauth/status", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, false, body["loggedIn"])
}

func TestManualRefresh(t *testing.T) {
	h := newHandlerTestHarness(t)
	h.oauth.token = domain.Token{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 1800}

	w := h.do(http.MethodPost, "/api/oauth/refresh", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, true, body["refreshed"])

	// the refresh outcome shows up on status afterwards
	w = h.do(http.MethodGet, "/api/oauth/status", "")
	body = decodeBody(t, w)
	require.Contains(t, body, "lastRefresh")
}

func TestManualRefreshWithoutToken(t *testing.T) {
	h := newHandlerTestHarness(t)
	h.oauth.refreshErr = domain.ErrNoRefreshToken

	w := h.do(http.MethodPost, "/api/oauth/refresh", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "not_authenticated", body["error"])
}

func TestLogout(t *testing.T) {
	h := newHandlerTestHarness(t)
	h.oauth.loggedIn = true

	w := h.do(http.MethodPost, "/api/oauth/logout", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, h.oauth.logoutCalls)
	require.False(t, h.oauth.loggedIn)
}
