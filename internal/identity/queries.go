package identity

import "github.com/mmcdole/warden/internal/domain"

// Queries provides synchronous, cache-only reads.
type Queries struct {
	store domain.Store
}

// NewQueries creates a new Queries instance.
func NewQueries(store domain.Store) *Queries {
	return &Queries{store: store}
}

func (q *Queries) GetCachedIdentities() ([]*domain.Identity, bool) {
	return q.store.GetIdentities()
}

func (q *Queries) GetCachedSearch(query string) ([]*domain.Identity, bool) {
	return q.store.GetSearch(query)
}

func (q *Queries) GetCachedSessions() ([]*domain.Session, bool) {
	return q.store.GetSessions()
}

func (q *Queries) GetCachedIdentitySessions(identityID string) ([]*domain.Session, bool) {
	return q.store.GetIdentitySessions(identityID)
}
