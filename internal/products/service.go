package products

import (
	"context"
	"fmt"

	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

// Service wraps product business rules. Deletion goes through the trash
// lifecycle; this service only deals with active rows.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, req ListRequest) ([]Product, shared.Pagination, error) {
	items, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(req.Page, req.PerPage, total), nil
}

func (s *Service) Get(ctx context.Context, scope shared.Scope, id int64) (*Product, error) {
	return s.repo.Get(ctx, scope, id)
}

func (s *Service) Create(ctx context.Context, scope shared.Scope, form ProductForm) (*Product, error) {
	if !scope.CanEdit() {
		return nil, shared.ErrForbidden
	}
	id, err := s.repo.Create(ctx, scope, form)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return s.repo.Get(ctx, scope, id)
}

func (s *Service) Update(ctx context.Context, scope shared.Scope, id int64, form ProductForm) (*Product, error) {
	if !scope.CanEdit() {
		return nil, shared.ErrForbidden
	}
	if err := s.repo.Update(ctx, scope, id, form); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, scope, id)
}
