package kratos

import "time"

// IdentityDTO is an identity as returned by the admin API
type IdentityDTO struct {
	ID        string         `json:"id"`
	SchemaID  string         `json:"schema_id"`
	State     string         `json:"state"`
	Traits    map[string]any `json:"traits"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// SessionDTO is a session as returned by the admin API
type SessionDTO struct {
	ID              string       `json:"id"`
	Active          bool         `json:"active"`
	AuthenticatedAt time.Time    `json:"authenticated_at"`
	IssuedAt        time.Time    `json:"issued_at"`
	ExpiresAt       time.Time    `json:"expires_at"`
	Identity        *IdentityDTO `json:"identity,omitempty"`
	Devices         []DeviceDTO  `json:"devices,omitempty"`
}

// DeviceDTO is a user agent attached to a session
type DeviceDTO struct {
	ID        string `json:"id"`
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	Location  string `json:"location"`
}

// patchOp is one RFC 6902 JSON patch operation
type patchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// VersionDTO is the /version response
type VersionDTO struct {
	Version string `json:"version"`
}
