package domain

import "time"

// Token is the persisted brokerage token record. The store keeps at most one
// current token; a successful exchange or refresh replaces it wholesale.
type Token struct {
	ID           int64
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	CreatedAt    time.Time
}

// LoginState is the short-lived state nonce persisted between the authorize
// redirect and the OAuth callback.
type LoginState struct {
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}
