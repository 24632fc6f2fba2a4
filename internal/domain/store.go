package domain

// Region names a cache region. Regions are invalidated as a whole after
// mutations so list views refetch fresh state.
type Region string

const (
	RegionIdentities       Region = "identities"
	RegionIdentitiesSearch Region = "identities-search"
	RegionSessions         Region = "sessions"
	RegionIdentitySessions Region = "identity-sessions"
	RegionClients          Region = "clients"
)

// Regions lists every cache region the store knows about
func Regions() []Region {
	return []Region{
		RegionIdentities,
		RegionIdentitiesSearch,
		RegionSessions,
		RegionIdentitySessions,
		RegionClients,
	}
}

// Invalidator drops cached state for a region.
type Invalidator interface {
	Invalidate(region Region)
}

// Store handles local cache (BoltDB + memory).
// Presentation code reads directly from Store for cache access.
type Store interface {
	Invalidator

	// === Identities ===
	GetIdentities() ([]*Identity, bool)
	SaveIdentities(identities []*Identity) error

	// === Search results (keyed by normalized query) ===
	GetSearch(query string) ([]*Identity, bool)
	SaveSearch(query string, identities []*Identity) error

	// === Sessions ===
	GetSessions() ([]*Session, bool)
	SaveSessions(sessions []*Session) error

	GetIdentitySessions(identityID string) ([]*Session, bool)
	SaveIdentitySessions(identityID string, sessions []*Session) error

	// === OAuth2 clients ===
	GetClients() ([]*OAuth2Client, bool)
	SaveClients(clients []*OAuth2Client) error

	InvalidateAll()
	Close() error
}
