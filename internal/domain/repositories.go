package domain

import (
	"context"

	"github.com/mmcdole/warden/internal/pagination"
)

// IdentityRepository: Network reads against the identity service.
// List endpoints return one page plus the raw Link header; callers drive
// pagination through pagination.FetchAll.
type IdentityRepository interface {
	ListIdentities(ctx context.Context, cursor pagination.Cursor, pageSize int) (pagination.Response[*Identity], error)
	GetIdentity(ctx context.Context, id string) (*Identity, error)
	ListSessions(ctx context.Context, cursor pagination.Cursor, pageSize int) (pagination.Response[*Session], error)
	ListIdentitySessions(ctx context.Context, identityID string) ([]*Session, error)
}

// IdentityAdmin: Single-item mutations against the identity service.
// Each call is idempotent if retried.
type IdentityAdmin interface {
	// DeleteIdentity removes an identity; deleting an absent identity succeeds
	DeleteIdentity(ctx context.Context, id string) error

	// RevokeSessions revokes every session of an identity
	RevokeSessions(ctx context.Context, id string) error

	// SetState replaces the identity's state with a single JSON patch
	SetState(ctx context.Context, id string, state IdentityState) error
}

// OAuth2Repository: Network operations against the OAuth2 service
type OAuth2Repository interface {
	ListClients(ctx context.Context, cursor pagination.Cursor, pageSize int) (pagination.Response[*OAuth2Client], error)
	DeleteClient(ctx context.Context, clientID string) error
	IntrospectToken(ctx context.Context, token string) (*Introspection, error)
}
