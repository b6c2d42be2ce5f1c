package schwab

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rcnpstock/schweb-email-login/internal/domain"
)

func TestAccountNumbers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/trader/v1/accounts/accountNumbers", r.URL.Path)
		require.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"accountNumber":"123456","hashValue":"HASH-1"},{"accountNumber":"654321","hashValue":"HASH-2"}]`))
	}))
	defer srv.Close()

	client := NewHTTPTraderClient(srv.URL, srv.Client())
	accounts, err := client.AccountNumbers(context.Background(), "access-token")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	require.Equal(t, "123456", accounts[0].AccountNumber)
	require.Equal(t, "HASH-1", accounts[0].HashValue)
}

func TestAccountNumbersRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"token expired"}`))
	}))
	defer srv.Close()

	client := NewHTTPTraderClient(srv.URL, srv.Client())
	_, err := client.AccountNumbers(context.Background(), "stale-token")

	var lookupErr *domain.AccountLookupError
	require.ErrorAs(t, err, &lookupErr)
	require.Equal(t, http.StatusUnauthorized, lookupErr.Status)
	require.Contains(t, lookupErr.Body, "token expired")

	var orderErr *domain.OrderSubmissionError
	require.False(t, errors.As(err, &orderErr))
}

func TestPlaceOrderBody(t *testing.T) {
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/trader/v1/accounts/HASH-1/orders", r.URL.Path)
		require.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &gotBody))

		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewHTTPTraderClient(srv.URL, srv.Client())
	resp, err := client.PlaceOrder(context.Background(), "access-token", "HASH-1", domain.OrderIntent{
		Symbol:      "AAPL",
		Quantity:    3,
		Instruction: domain.InstructionBuy,
	})
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(resp))

	require.Equal(t, "MARKET", gotBody["orderType"])
	require.Equal(t, "NORMAL", gotBody["session"])
	require.Equal(t, "DAY", gotBody["duration"])
	require.Equal(t, "SINGLE", gotBody["orderStrategyType"])

	legs, ok := gotBody["orderLegCollection"].([]any)
	require.True(t, ok)
	require.Len(t, legs, 1)
	leg := legs[0].(map[string]any)
	require.Equal(t, "BUY", leg["instruction"])
	require.Equal(t, float64(3), leg["quantity"])
	instrument := leg["instrument"].(map[string]any)
	require.Equal(t, "AAPL", instrument["symbol"])
	require.Equal(t, "EQUITY", instrument["assetType"])
}

func TestPlaceOrderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"insufficient buying power"}`))
	}))
	defer srv.Close()

	client := NewHTTPTraderClient(srv.URL, srv.Client())
	_, err := client.PlaceOrder(context.Background(), "access-token", "HASH-1", domain.OrderIntent{
		Symbol: "AAPL", Quantity: 1, Instruction: domain.InstructionBuy,
	})

	var orderErr *domain.OrderSubmissionError
	require.ErrorAs(t, err, &orderErr)
	require.Equal(t, http.StatusBadRequest, orderErr.Status)
	require.Contains(t, orderErr.Body, "insufficient")
}

func TestPlaceOrderEchoesResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"orderId":42,"status":"WORKING"}`))
	}))
	defer srv.Close()

	client := NewHTTPTraderClient(srv.URL, srv.Client())
	resp, err := client.PlaceOrder(context.Background(), "access-token", "HASH-1", domain.OrderIntent{
		Symbol: "AAPL", Quantity: 1, Instruction: domain.InstructionSell,
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"orderId":42,"status":"WORKING"}`, string(resp))
}

func TestAccountNumbersNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := NewHTTPTraderClient(srv.URL, nil)
	_, err := client.AccountNumbers(context.Background(), "access-token")

	var networkErr *domain.NetworkError
	require.ErrorAs(t, err, &networkErr)
}
