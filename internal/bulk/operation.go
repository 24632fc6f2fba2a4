package bulk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mmcdole/warden/internal/domain"
)

// ErrUnknownOperation indicates an operation with no registered action.
// Seeing it at runtime is a programming error.
var ErrUnknownOperation = errors.New("unknown bulk operation")

// Operation is the closed set of actions a bulk batch can apply to identities
type Operation int

const (
	OperationUnknown Operation = iota
	OperationDelete
	OperationRevokeSessions
	OperationActivate
	OperationDeactivate
)

// Operations returns every valid operation in display order
func Operations() []Operation {
	return []Operation{
		OperationDelete,
		OperationRevokeSessions,
		OperationActivate,
		OperationDeactivate,
	}
}

// ParseOperation maps a CLI name ("delete", "revoke-sessions", ...) to an Operation
func ParseOperation(name string) (Operation, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, op := range Operations() {
		if op.String() == name {
			return op, nil
		}
	}
	return OperationUnknown, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
}

// Valid reports whether the operation is one of the declared operations
func (op Operation) Valid() bool {
	switch op {
	case OperationDelete, OperationRevokeSessions, OperationActivate, OperationDeactivate:
		return true
	default:
		return false
	}
}

// String returns the CLI name of the operation
func (op Operation) String() string {
	switch op {
	case OperationDelete:
		return "delete"
	case OperationRevokeSessions:
		return "revoke-sessions"
	case OperationActivate:
		return "activate"
	case OperationDeactivate:
		return "deactivate"
	default:
		return "unknown"
	}
}

// Label returns a human-readable verb phrase for confirmation prompts
func (op Operation) Label() string {
	switch op {
	case OperationDelete:
		return "Delete"
	case OperationRevokeSessions:
		return "Revoke sessions of"
	case OperationActivate:
		return "Activate"
	case OperationDeactivate:
		return "Deactivate"
	default:
		return "Unknown"
	}
}

// Destructive reports whether the operation cannot be undone by another operation
func (op Operation) Destructive() bool {
	return op == OperationDelete || op == OperationRevokeSessions
}

// Regions returns the cache regions invalidated once a batch of this
// operation completes.
func (op Operation) Regions() []domain.Region {
	switch op {
	case OperationDelete:
		return []domain.Region{domain.RegionIdentities, domain.RegionIdentitiesSearch, domain.RegionSessions}
	case OperationRevokeSessions:
		return []domain.Region{domain.RegionSessions, domain.RegionIdentitySessions}
	case OperationActivate, OperationDeactivate:
		return []domain.Region{domain.RegionIdentities, domain.RegionIdentitiesSearch}
	default:
		return nil
	}
}
