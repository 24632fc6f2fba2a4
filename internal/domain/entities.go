package domain

import (
	"fmt"
	"strings"
	"time"
)

// IdentityState is the lifecycle state of an identity
type IdentityState string

const (
	IdentityStateActive   IdentityState = "active"
	IdentityStateInactive IdentityState = "inactive"
)

// Valid reports whether the state is one the identity service accepts
func (s IdentityState) Valid() bool {
	return s == IdentityStateActive || s == IdentityStateInactive
}

// Identity represents an identity managed by the identity service
type Identity struct {
	ID        string         // Server-assigned UUID
	SchemaID  string         // Identity schema the traits conform to
	State     IdentityState  // active or inactive
	Traits    map[string]any // Schema-defined traits (email, username, name, ...)
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName returns the most human-friendly trait available, falling back to the ID
func (i Identity) DisplayName() string {
	for _, key := range []string{"email", "username", "phone"} {
		if v, ok := i.Traits[key].(string); ok && v != "" {
			return v
		}
	}
	if name, ok := i.Traits["name"].(map[string]any); ok {
		first, _ := name["first"].(string)
		last, _ := name["last"].(string)
		if full := strings.TrimSpace(first + " " + last); full != "" {
			return full
		}
	}
	if name, ok := i.Traits["name"].(string); ok && name != "" {
		return name
	}
	return i.ID
}

// IsActive returns true if the identity can sign in
func (i Identity) IsActive() bool {
	return i.State != IdentityStateInactive
}

// Device is a user agent a session was used from
type Device struct {
	IPAddress string
	UserAgent string
	Location  string
}

// Session represents an authenticated session for an identity
type Session struct {
	ID              string
	IdentityID      string
	Active          bool
	AuthenticatedAt time.Time
	IssuedAt        time.Time
	ExpiresAt       time.Time
	Devices         []Device
}

// OlderThan reports whether the session authenticated before the cutoff
func (s Session) OlderThan(cutoff time.Time) bool {
	return s.AuthenticatedAt.Before(cutoff)
}

// Age returns how long ago the session authenticated
func (s Session) Age(now time.Time) time.Duration {
	return now.Sub(s.AuthenticatedAt)
}

// OAuth2Client represents a registered OAuth2 client
type OAuth2Client struct {
	ClientID     string
	ClientName   string
	Owner        string
	GrantTypes   []string
	RedirectURIs []string
	Scope        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName returns the client name, or the client ID when unnamed
func (c OAuth2Client) DisplayName() string {
	if c.ClientName != "" {
		return c.ClientName
	}
	return c.ClientID
}

// Introspection is the result of introspecting an access or refresh token
type Introspection struct {
	Active    bool
	Subject   string
	ClientID  string
	Scope     string
	TokenUse  string // "access_token" or "refresh_token"
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at the given time
func (t Introspection) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}

// Summary returns a one-line description of the token
func (t Introspection) Summary() string {
	if !t.Active {
		return "inactive"
	}
	return fmt.Sprintf("%s for %s (client %s)", t.TokenUse, t.Subject, t.ClientID)
}
