// Package upstream wires the admin API clients for the identity and OAuth2 services.
package upstream

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/warden/internal/config"
	"github.com/mmcdole/warden/internal/domain"
	"github.com/mmcdole/warden/internal/upstream/hydra"
	"github.com/mmcdole/warden/internal/upstream/kratos"
)

// IdentityBackend combines the read and mutation surfaces of the identity service
type IdentityBackend interface {
	domain.IdentityRepository
	domain.IdentityAdmin
}

// Clients holds one client per upstream service
type Clients struct {
	Identity IdentityBackend
	OAuth2   domain.OAuth2Repository
}

// NewClients creates the admin clients from configuration.
// This factory function abstracts away the concrete backend implementation.
func NewClients(cfg *config.Config, logger *slog.Logger) (*Clients, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if cfg.Identity.URL == "" {
		return nil, fmt.Errorf("identity service URL is required")
	}
	if cfg.OAuth2.URL == "" {
		return nil, fmt.Errorf("oauth2 service URL is required")
	}

	return &Clients{
		Identity: kratos.NewClient(cfg.Identity.URL, cfg.Identity.Token, logger),
		OAuth2:   hydra.NewClient(cfg.OAuth2.URL, cfg.OAuth2.Token, logger),
	}, nil
}
