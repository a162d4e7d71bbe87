package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/companyhub/internal/backend"
	"github.com/odyssey-erp/companyhub/internal/shared"
)

// Service assembles the overview from cached sections.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires the dashboard service.
func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger, now: time.Now}
}

// Overview loads every section concurrently. A section that fails is left
// empty and reported in Overview.Errors so the rest of the page still renders.
// refresh bumps the cache version first. The error is non-nil only when the
// backend rejected the token.
func (s *Service) Overview(ctx context.Context, refresh bool) (Overview, error) {
	if refresh {
		if ver, err := s.cache.Bump(ctx); err != nil {
			s.logger.Warn("dashboard cache bump", slog.Any("error", err))
		} else {
			s.logger.Info("dashboard cache bumped", slog.Int64("version", ver))
		}
	}
	ov, errs := s.load(ctx)
	ov.Errors = make(map[string]string, len(errs))
	for section, err := range errs {
		if errors.Is(err, backend.ErrUnauthorized) {
			return ov, err
		}
		if errors.Is(err, context.Canceled) {
			continue
		}
		s.logger.Error("dashboard section", slog.String("section", section), slog.Any("error", err))
		ov.Errors[section] = shared.UserSafeMessage(err)
	}
	ov.Charts = BuildCharts(ov)
	return ov, nil
}

// Warm fills the cache for every section and joins the section failures.
func (s *Service) Warm(ctx context.Context) error {
	_, errs := s.load(ctx)
	joined := make([]error, 0, len(errs))
	for section, err := range errs {
		joined = append(joined, fmt.Errorf("dashboard: %s: %w", section, err))
	}
	return errors.Join(joined...)
}

func (s *Service) load(ctx context.Context) (Overview, map[string]error) {
	ov := Overview{GeneratedAt: s.now()}
	errs := make([]error, len(Sections))

	var g errgroup.Group
	g.Go(func() error {
		errs[0] = s.cache.FetchJSON(ctx, SectionMetrics, &ov.Metrics, func(ctx context.Context) (any, error) {
			return s.repo.Metrics(ctx)
		})
		return nil
	})
	g.Go(func() error {
		errs[1] = s.cache.FetchJSON(ctx, SectionSales, &ov.Sales, func(ctx context.Context) (any, error) {
			return s.repo.Sales(ctx)
		})
		return nil
	})
	g.Go(func() error {
		errs[2] = s.cache.FetchJSON(ctx, SectionProduction, &ov.Production, func(ctx context.Context) (any, error) {
			return s.repo.Production(ctx)
		})
		return nil
	})
	g.Go(func() error {
		errs[3] = s.cache.FetchJSON(ctx, SectionDistribution, &ov.Distribution, func(ctx context.Context) (any, error) {
			return s.repo.Distribution(ctx)
		})
		return nil
	})
	g.Go(func() error {
		errs[4] = s.cache.FetchJSON(ctx, SectionActivities, &ov.Activities, func(ctx context.Context) (any, error) {
			return s.repo.Activities(ctx)
		})
		return nil
	})
	_ = g.Wait()

	failed := make(map[string]error)
	for i, err := range errs {
		if err != nil {
			failed[Sections[i]] = err
		}
	}
	return ov, failed
}
