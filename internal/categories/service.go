package categories

import (
	"context"
	"fmt"

	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, scope shared.Scope, search string) ([]Category, error) {
	return s.repo.List(ctx, scope, search)
}

func (s *Service) Get(ctx context.Context, scope shared.Scope, id int64) (*Category, error) {
	return s.repo.Get(ctx, scope, id)
}

func (s *Service) Create(ctx context.Context, scope shared.Scope, form CategoryForm) (*Category, error) {
	if !scope.CanEdit() {
		return nil, shared.ErrForbidden
	}
	id, err := s.repo.Create(ctx, scope, form)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return s.repo.Get(ctx, scope, id)
}

func (s *Service) Update(ctx context.Context, scope shared.Scope, id int64, form CategoryForm) (*Category, error) {
	if !scope.CanEdit() {
		return nil, shared.ErrForbidden
	}
	if err := s.repo.Update(ctx, scope, id, form); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, scope, id)
}
