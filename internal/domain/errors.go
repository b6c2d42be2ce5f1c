package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotConfigured signals missing or incomplete brokerage credentials.
	ErrNotConfigured = errors.New("schwab: credentials not configured")
	// ErrMissingCode indicates the OAuth callback carried no authorization code.
	ErrMissingCode = errors.New("schwab: authorization code is required")
	// ErrInvalidState indicates the login state nonce is unknown or expired.
	ErrInvalidState = errors.New("schwab: login state invalid or expired")
	// ErrNotAuthenticated signals that no token record exists.
	ErrNotAuthenticated = errors.New("schwab: not logged in")
	// ErrNoRefreshToken indicates refresh was attempted with an empty token store.
	ErrNoRefreshToken = errors.New("schwab: no refresh token stored")
	// ErrNoAccounts signals the brokerage returned zero accounts.
	ErrNoAccounts = errors.New("schwab: no accounts found")
	// ErrInvalidAccount signals the first account entry lacks a hash value.
	ErrInvalidAccount = errors.New("schwab: account entry missing hash value")
)

// ValidationError reports required request fields that were absent.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// InvalidActionError reports an alert action outside buy/long/sell/short.
type InvalidActionError struct {
	Received string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action %q: expected buy, long, sell, or short", e.Received)
}

// InvalidQuantityError reports an alert quantity that cannot describe an
// order. Absent quantities default to one share; negatives are rejected.
type InvalidQuantityError struct {
	Received float64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %v: must be a positive number", e.Received)
}

// TokenExchangeError carries the brokerage rejection of a code exchange.
type TokenExchangeError struct {
	Status int
	Body   string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("token exchange rejected: status=%d body=%s", e.Status, e.Body)
}

// TokenRefreshError carries the brokerage rejection of a refresh request.
type TokenRefreshError struct {
	Status int
	Body   string
}

func (e *TokenRefreshError) Error() string {
	return fmt.Sprintf("token refresh rejected: status=%d body=%s", e.Status, e.Body)
}

// AccountLookupError carries a non-2xx response to the account-numbers
// lookup, distinct from the brokerage rejecting an order.
type AccountLookupError struct {
	Status int
	Body   string
}

func (e *AccountLookupError) Error() string {
	return fmt.Sprintf("account lookup rejected: status=%d body=%s", e.Status, e.Body)
}

// OrderSubmissionError carries a non-2xx response to an order submission.
type OrderSubmissionError struct {
	Status int
	Body   string
}

func (e *OrderSubmissionError) Error() string {
	return fmt.Sprintf("order rejected: status=%d body=%s", e.Status, e.Body)
}

// NetworkError wraps a transport-level failure (timeout, connection refused)
// talking to the brokerage, distinct from an authenticated rejection.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
