package trash

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
	"github.com/sky-orcamentos/sky-orcamentos/internal/shared/textutil"
)

// kindOrder fixes the fan-out and empty-trash processing order. Quotes
// are purged before the kinds that may depend on them.
var kindOrder = []Kind{KindCliente, KindOrcamento, KindProduto, KindCategoria}

// emptyOrder purges children before their parents so the active-dependent
// checks see the state left by earlier steps in the same transaction.
var emptyOrder = []Kind{KindOrcamento, KindProduto, KindCategoria, KindCliente}

// Observer receives lifecycle outcomes, e.g. a metrics counter.
type Observer interface {
	ObserveTrashOperation(operation, outcome string)
}

// Service implements the trash lifecycle: soft-delete, restore,
// permanent delete with optional force-cascade, and empty-trash.
type Service struct {
	repo     Repository
	observer Observer
}

func NewService(repo Repository, observer Observer) *Service {
	return &Service{repo: repo, observer: observer}
}

// List returns soft-deleted items of the requested kinds, newest deletion
// first. The search matches display names accent and case insensitively.
// The full trash is returned per call; there is no pagination.
func (s *Service) List(ctx context.Context, scope shared.Scope, search, kindFilter string) ([]Item, error) {
	kinds, err := filterKinds(kindFilter)
	if err != nil {
		return nil, err
	}

	results := make([][]Item, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		i, kind := i, kind
		g.Go(func() error {
			items, err := s.repo.ListByKind(gctx, scope, kind)
			if err != nil {
				return fmt.Errorf("list %s trash: %w", kind, err)
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]Item, 0)
	for _, items := range results {
		for _, it := range items {
			if textutil.Contains(it.Name, search) {
				merged = append(merged, it)
			}
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].DeletedAt.After(merged[j].DeletedAt)
	})
	return merged, nil
}

// Stats aggregates trash counts per kind.
func (s *Service) Stats(ctx context.Context, scope shared.Scope) (Stats, error) {
	return s.repo.Stats(ctx, scope)
}

// SoftDelete moves a row to the trash. Calling it on an already trashed
// row just resets the deletion stamp.
func (s *Service) SoftDelete(ctx context.Context, scope shared.Scope, kind Kind, id int64) error {
	err := s.repo.SoftDelete(ctx, scope, kind, id)
	s.observe("soft_delete", err)
	return err
}

// Restore clears the trash marker. Dependents are never revalidated:
// a restored parent is always consistent because soft-deleting it never
// touched its children.
func (s *Service) Restore(ctx context.Context, scope shared.Scope, kind Kind, id int64) error {
	err := s.repo.Restore(ctx, scope, kind, id)
	s.observe("restore", err)
	return err
}

// DeletePermanently irreversibly removes a trashed row. While dependents
// exist the call fails with a typed ConflictError unless force is set, in
// which case dependents are purged bottom-up, transitively, inside one
// transaction.
func (s *Service) DeletePermanently(ctx context.Context, scope shared.Scope, kind Kind, id int64, force bool) error {
	err := s.deletePermanently(ctx, scope, kind, id, force)
	s.observe("delete_permanently", err)
	return err
}

func (s *Service) deletePermanently(ctx context.Context, scope shared.Scope, kind Kind, id int64, force bool) error {
	trashed, err := s.repo.IsTrashed(ctx, scope, kind, id)
	if err != nil {
		return err
	}
	if !trashed {
		// Only rows already in the trash are eligible for purging.
		return shared.ErrNotFound
	}

	deps, err := s.repo.CountDependents(ctx, scope, kind, id)
	if err != nil {
		return err
	}

	res, err := resolverFor(kind)
	if err != nil {
		return err
	}

	if deps.Total() > 0 && !force {
		if conflict := res.conflict(deps); conflict != nil {
			return conflict
		}
	}

	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if deps.Total() > 0 || kind == KindOrcamento {
			if err := repo.CascadeDelete(ctx, scope, kind, id); err != nil {
				return fmt.Errorf("cascade delete %s %d: %w", kind, id, err)
			}
		}
		if err := repo.HardDelete(ctx, scope, kind, id); err != nil {
			return fmt.Errorf("hard delete %s %d: %w", kind, id, err)
		}
		return nil
	})
}

// EmptyTrash purges every eligible trashed row of the workspace in one
// transaction. Quotes always go (with their items); other kinds are
// skipped while active rows still depend on them — that mixture is left
// for the forced-delete path to resolve.
func (s *Service) EmptyTrash(ctx context.Context, scope shared.Scope) (int, error) {
	purged := 0
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		for _, kind := range emptyOrder {
			ids, err := repo.TrashedIDs(ctx, scope, kind)
			if err != nil {
				return fmt.Errorf("trashed ids %s: %w", kind, err)
			}
			for _, id := range ids {
				if kind == KindOrcamento {
					if err := repo.CascadeDelete(ctx, scope, kind, id); err != nil {
						return fmt.Errorf("cascade %s %d: %w", kind, id, err)
					}
				} else {
					active, err := repo.CountActiveDependents(ctx, scope, kind, id)
					if err != nil {
						return fmt.Errorf("count active dependents %s %d: %w", kind, id, err)
					}
					if active > 0 {
						continue
					}
				}
				if err := repo.HardDelete(ctx, scope, kind, id); err != nil {
					return fmt.Errorf("purge %s %d: %w", kind, id, err)
				}
				purged++
			}
		}
		return nil
	})
	s.observe("empty", err)
	if err != nil {
		return 0, err
	}
	return purged, nil
}

func filterKinds(kindFilter string) ([]Kind, error) {
	switch kindFilter {
	case "", "all":
		return kindOrder, nil
	case "clientes":
		return []Kind{KindCliente}, nil
	case "orcamentos":
		return []Kind{KindOrcamento}, nil
	case "produtos":
		return []Kind{KindProduto}, nil
	case "categorias":
		return []Kind{KindCategoria}, nil
	default:
		return nil, fmt.Errorf("%w: filtro de tipo desconhecido %q", shared.ErrValidation, kindFilter)
	}
}

func (s *Service) observe(operation string, err error) {
	if s.observer == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.observer.ObserveTrashOperation(operation, outcome)
}
