package domain

import "time"

// DefaultOwner keys the singleton credential row. The app manages exactly one
// brokerage configuration; saving a new one overwrites the prior record.
const DefaultOwner = "default"

// Credential holds the registered Schwab application credentials.
type Credential struct {
	ID           int64
	Owner        string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Complete reports whether the credential can drive an OAuth flow.
func (c Credential) Complete() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURI != ""
}
