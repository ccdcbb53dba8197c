package workspaces

import (
	"context"
	"fmt"
	"strings"

	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

// Service wraps workspace and membership business rules.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, name string, ownerID int64) (*Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: nome é obrigatório", shared.ErrValidation)
	}
	id, err := s.repo.Create(ctx, name, ownerID)
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) ListMine(ctx context.Context, userID int64) ([]Workspace, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, scope shared.Scope) (*Workspace, error) {
	ws, err := s.repo.Get(ctx, scope.WorkspaceID)
	if err != nil {
		return nil, err
	}
	ws.Level = scope.Level
	return ws, nil
}

func (s *Service) Update(ctx context.Context, scope shared.Scope, name string) (*Workspace, error) {
	if !scope.CanAdminister() {
		return nil, shared.ErrForbidden
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: nome é obrigatório", shared.ErrValidation)
	}
	if err := s.repo.Update(ctx, scope.WorkspaceID, name); err != nil {
		return nil, err
	}
	return s.Get(ctx, scope)
}

func (s *Service) Delete(ctx context.Context, scope shared.Scope) error {
	if !scope.CanAdminister() {
		return shared.ErrForbidden
	}
	return s.repo.Delete(ctx, scope.WorkspaceID)
}

func (s *Service) ListMembers(ctx context.Context, scope shared.Scope) ([]Member, error) {
	return s.repo.ListMembers(ctx, scope.WorkspaceID)
}

// AddMember invites an existing user by email at the given level.
func (s *Service) AddMember(ctx context.Context, scope shared.Scope, email string, level int) error {
	if !scope.CanAdminister() {
		return shared.ErrForbidden
	}
	if level < shared.LevelViewer || level > shared.LevelOwner {
		return fmt.Errorf("%w: nível deve estar entre 1 e 3", shared.ErrValidation)
	}
	userID, err := s.repo.FindUserIDByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	return s.repo.AddMember(ctx, scope.WorkspaceID, userID, level)
}

func (s *Service) UpdateMemberLevel(ctx context.Context, scope shared.Scope, userID int64, level int) error {
	if !scope.CanAdminister() {
		return shared.ErrForbidden
	}
	if level < shared.LevelViewer || level > shared.LevelOwner {
		return fmt.Errorf("%w: nível deve estar entre 1 e 3", shared.ErrValidation)
	}
	ws, err := s.repo.Get(ctx, scope.WorkspaceID)
	if err != nil {
		return err
	}
	// The workspace owner always keeps full access.
	if userID == ws.OwnerID {
		return shared.ErrForbidden
	}
	return s.repo.UpdateMemberLevel(ctx, scope.WorkspaceID, userID, level)
}

func (s *Service) RemoveMember(ctx context.Context, scope shared.Scope, userID int64) error {
	if !scope.CanAdminister() {
		return shared.ErrForbidden
	}
	ws, err := s.repo.Get(ctx, scope.WorkspaceID)
	if err != nil {
		return err
	}
	if userID == ws.OwnerID {
		return shared.ErrForbidden
	}
	return s.repo.RemoveMember(ctx, scope.WorkspaceID, userID)
}
