package hydra

import "time"

// ClientDTO is an OAuth2 client as returned by the admin API
type ClientDTO struct {
	ClientID     string    `json:"client_id"`
	ClientName   string    `json:"client_name"`
	Owner        string    `json:"owner"`
	GrantTypes   []string  `json:"grant_types"`
	RedirectURIs []string  `json:"redirect_uris"`
	Scope        string    `json:"scope"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IntrospectionDTO is the RFC 7662 introspection response
type IntrospectionDTO struct {
	Active    bool   `json:"active"`
	Subject   string `json:"sub"`
	ClientID  string `json:"client_id"`
	Scope     string `json:"scope"`
	TokenUse  string `json:"token_use"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
