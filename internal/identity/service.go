package identity

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmcdole/warden/internal/domain"
	"github.com/mmcdole/warden/internal/pagination"
)

// Service orchestrates identity client + store operations.
type Service struct {
	repo   domain.IdentityRepository
	store  domain.Store
	paging pagination.Limits
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new identity service.
func NewService(repo domain.IdentityRepository, store domain.Store, paging pagination.Limits, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, store: store, paging: paging, logger: logger, now: time.Now}
}

// FetchIdentities walks every identity page and caches the result.
// Only a complete walk is cached: a page failure or an exhausted page budget
// returns the partial list uncached.
func (s *Service) FetchIdentities(ctx context.Context, onProgress domain.ProgressFunc) ([]*domain.Identity, domain.FetchSummary, error) {
	res, err := pagination.FetchAll(ctx, s.repo.ListIdentities, pagination.NewOptions[*domain.Identity](s.paging, onProgress, s.logger))
	summary := domain.Summarize(res)
	if err != nil {
		s.logger.Error("failed to fetch identities", "error", err, "count", summary.Count)
		return res.Items, summary, err
	}

	if summary.Complete {
		if err := s.store.SaveIdentities(res.Items); err != nil {
			s.logger.Error("failed to save identities", "error", err)
		}
	} else {
		s.logger.Warn("identity walk hit the page budget, not caching", "count", summary.Count, "pages", summary.Pages)
	}
	s.logger.Debug("fetched identities", "count", summary.Count, "pages", summary.Pages, "complete", summary.Complete)
	return res.Items, summary, nil
}

// LoadIdentities serves identities from cache, fetching only on a miss
func (s *Service) LoadIdentities(ctx context.Context, onProgress domain.ProgressFunc) ([]*domain.Identity, domain.FetchSummary, error) {
	if cached, ok := s.store.GetIdentities(); ok {
		s.logger.Debug("identities served from cache", "count", len(cached))
		return cached, domain.FetchSummary{Count: len(cached), Complete: true, FromCache: true}, nil
	}
	return s.FetchIdentities(ctx, onProgress)
}

// FetchIdentity returns a single identity from the upstream
func (s *Service) FetchIdentity(ctx context.Context, id string) (*domain.Identity, error) {
	ident, err := s.repo.GetIdentity(ctx, id)
	if err != nil {
		s.logger.Error("failed to fetch identity", "error", err, "identityID", id)
		return nil, err
	}
	return ident, nil
}

// FetchRecentSessions walks active sessions newest-first and stops at the first
// session that authenticated more than `since` ago. A non-positive since walks
// every page and caches the list when the walk completes.
func (s *Service) FetchRecentSessions(ctx context.Context, since time.Duration, onProgress domain.ProgressFunc) ([]*domain.Session, domain.FetchSummary, error) {
	opts := pagination.NewOptions[*domain.Session](s.paging, onProgress, s.logger)
	windowed := since > 0
	if windowed {
		cutoff := s.now().Add(-since)
		opts.StopPredicate = func(sess *domain.Session) bool {
			return sess.OlderThan(cutoff)
		}
		opts.InOrder = func(prev, next *domain.Session) bool {
			return !next.AuthenticatedAt.After(prev.AuthenticatedAt)
		}
	}

	res, err := pagination.FetchAll(ctx, s.repo.ListSessions, opts)
	summary := domain.Summarize(res)
	if err != nil {
		s.logger.Error("failed to fetch sessions", "error", err, "count", summary.Count)
		return res.Items, summary, err
	}

	if !windowed && summary.Complete {
		if err := s.store.SaveSessions(res.Items); err != nil {
			s.logger.Error("failed to save sessions", "error", err)
		}
	}
	s.logger.Debug("fetched sessions",
		"count", summary.Count,
		"pages", summary.Pages,
		"stoppedEarly", summary.StoppedEarly,
		"since", since,
	)
	return res.Items, summary, nil
}

// FetchIdentitySessions returns and caches the sessions of one identity
func (s *Service) FetchIdentitySessions(ctx context.Context, identityID string) ([]*domain.Session, error) {
	sessions, err := s.repo.ListIdentitySessions(ctx, identityID)
	if err != nil {
		s.logger.Error("failed to fetch identity sessions", "error", err, "identityID", identityID)
		return nil, err
	}
	if err := s.store.SaveIdentitySessions(identityID, sessions); err != nil {
		s.logger.Error("failed to save identity sessions", "error", err, "identityID", identityID)
	}
	s.logger.Debug("fetched identity sessions", "count", len(sessions), "identityID", identityID)
	return sessions, nil
}

// Search ranks identities against a query. Results are cached per normalized query.
func (s *Service) Search(ctx context.Context, query string, onProgress domain.ProgressFunc) ([]*domain.Identity, error) {
	if cached, ok := s.store.GetSearch(query); ok {
		s.logger.Debug("search served from cache", "query", query, "count", len(cached))
		return cached, nil
	}

	identities, summary, err := s.LoadIdentities(ctx, onProgress)
	if err != nil {
		return nil, err
	}

	results := Rank(query, identities)
	if summary.Complete {
		if err := s.store.SaveSearch(query, results); err != nil {
			s.logger.Error("failed to save search results", "error", err, "query", query)
		}
	}
	s.logger.Debug("searched identities", "query", query, "count", len(results))
	return results, nil
}

func (s *Service) Invalidate(region domain.Region) {
	s.store.Invalidate(region)
	s.logger.Info("invalidated cache region", "region", region)
}

func (s *Service) InvalidateAll() {
	s.store.InvalidateAll()
	s.logger.Info("invalidated all cache")
}
