package bulk

import (
	"context"
	"fmt"

	"github.com/mmcdole/warden/internal/domain"
)

// Executor performs one operation on one entity.
type Executor interface {
	Execute(ctx context.Context, op Operation, id string) error
}

// Dispatcher maps each Operation to its single-item identity admin call.
// It holds no state and does not batch.
type Dispatcher struct {
	admin domain.IdentityAdmin
}

// NewDispatcher creates a dispatcher over the identity admin API.
func NewDispatcher(admin domain.IdentityAdmin) *Dispatcher {
	return &Dispatcher{admin: admin}
}

// Execute runs op against id. Upstream errors are returned unchanged.
func (d *Dispatcher) Execute(ctx context.Context, op Operation, id string) error {
	switch op {
	case OperationDelete:
		return d.admin.DeleteIdentity(ctx, id)
	case OperationRevokeSessions:
		return d.admin.RevokeSessions(ctx, id)
	case OperationActivate:
		return d.admin.SetState(ctx, id, domain.IdentityStateActive)
	case OperationDeactivate:
		return d.admin.SetState(ctx, id, domain.IdentityStateInactive)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownOperation, op)
	}
}
