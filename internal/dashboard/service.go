package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

const (
	seriesMonths   = 12
	topClientLimit = 5
)

// Service assembles the workspace summary, fanning the aggregate
// queries out concurrently and caching the result.
type Service struct {
	repo  Repository
	cache *Cache
}

func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

func (s *Service) Summary(ctx context.Context, scope shared.Scope) (*Summary, error) {
	return s.cache.FetchSummary(ctx, scope.WorkspaceID, func(ctx context.Context) (*Summary, error) {
		return s.build(ctx, scope)
	})
}

func (s *Service) build(ctx context.Context, scope shared.Scope) (*Summary, error) {
	var summary Summary
	g, ctx := errgroup.WithContext(ctx)

	counts := []struct {
		table string
		dest  *int
	}{
		{"clientes", &summary.Clients},
		{"produtos_servicos", &summary.Products},
		{"categorias", &summary.Categories},
		{"orcamentos", &summary.Quotes},
	}
	for _, c := range counts {
		c := c
		g.Go(func() error {
			n, err := s.repo.CountActive(ctx, scope, c.table)
			if err != nil {
				return err
			}
			*c.dest = n
			return nil
		})
	}
	g.Go(func() error {
		totals, err := s.repo.TotalsByStatus(ctx, scope)
		if err != nil {
			return err
		}
		summary.TotalsByStatus = totals
		return nil
	})
	g.Go(func() error {
		series, err := s.repo.MonthlyApproved(ctx, scope, seriesMonths)
		if err != nil {
			return err
		}
		summary.MonthlySeries = series
		return nil
	})
	g.Go(func() error {
		top, err := s.repo.TopClients(ctx, scope, topClientLimit)
		if err != nil {
			return err
		}
		summary.TopClients = top
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &summary, nil
}
