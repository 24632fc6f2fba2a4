package oauth2

import (
	"context"
	"log/slog"

	"github.com/mmcdole/warden/internal/domain"
	"github.com/mmcdole/warden/internal/introspect"
	"github.com/mmcdole/warden/internal/pagination"
)

// Service orchestrates OAuth2 client + store + introspection operations.
type Service struct {
	repo      domain.OAuth2Repository
	store     domain.Store
	inspected *introspect.Store
	paging    pagination.Limits
	logger    *slog.Logger
}

// NewService creates a new OAuth2 service. Introspection results are recorded in inspected.
func NewService(
	repo domain.OAuth2Repository,
	store domain.Store,
	inspected *introspect.Store,
	paging pagination.Limits,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, store: store, inspected: inspected, paging: paging, logger: logger}
}

func (s *Service) FetchClients(ctx context.Context, onProgress domain.ProgressFunc) ([]*domain.OAuth2Client, domain.FetchSummary, error) {
	res, err := pagination.FetchAll(ctx, s.repo.ListClients, pagination.NewOptions[*domain.OAuth2Client](s.paging, onProgress, s.logger))
	summary := domain.Summarize(res)
	if err != nil {
		s.logger.Error("failed to fetch clients", "error", err, "count", summary.Count)
		return res.Items, summary, err
	}
	if err := s.store.SaveClients(res.Items); err != nil {
		s.logger.Error("failed to save clients", "error", err)
	}
	s.logger.Debug("fetched clients", "count", summary.Count, "pages", summary.Pages)
	return res.Items, summary, nil
}

// LoadClients serves clients from cache, fetching only on a miss
func (s *Service) LoadClients(ctx context.Context, onProgress domain.ProgressFunc) ([]*domain.OAuth2Client, domain.FetchSummary, error) {
	if cached, ok := s.store.GetClients(); ok {
		return cached, domain.FetchSummary{Count: len(cached), Complete: true, FromCache: true}, nil
	}
	return s.FetchClients(ctx, onProgress)
}

func (s *Service) DeleteClient(ctx context.Context, clientID string) error {
	if err := s.repo.DeleteClient(ctx, clientID); err != nil {
		s.logger.Error("failed to delete client", "error", err, "clientID", clientID)
		return err
	}
	s.store.Invalidate(domain.RegionClients)
	s.logger.Info("deleted client", "clientID", clientID)
	return nil
}

// Introspect asks the authorization server about a token and records the result
func (s *Service) Introspect(ctx context.Context, token string) (introspect.Entry, error) {
	result, err := s.repo.IntrospectToken(ctx, token)
	if err != nil {
		s.logger.Error("failed to introspect token", "error", err, "token", introspect.Key(token))
		return introspect.Entry{}, err
	}
	entry := s.inspected.Add(token, result)
	s.logger.Debug("introspected token", "token", entry.Key, "active", result.Active)
	return entry, nil
}

// Inspected returns the tokens introspected so far, newest first
func (s *Service) Inspected() []introspect.Entry {
	return s.inspected.List()
}
