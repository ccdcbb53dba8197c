package trash

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

type fakeRow struct {
	name      string
	trashed   bool
	deletedAt time.Time
}

type fakeOrcamento struct {
	fakeRow
	clienteID *int64
}

type fakeProduto struct {
	fakeRow
	categoriaID *int64
}

type fakeItem struct {
	orcamentoID int64
	produtoID   *int64
}

// fakeRepo is a map-backed Repository covering the dependency graph:
// orcamentos -> clientes, orcamento_itens -> produtos -> categorias.
type fakeRepo struct {
	clientes   map[int64]*fakeRow
	categorias map[int64]*fakeRow
	produtos   map[int64]*fakeProduto
	orcamentos map[int64]*fakeOrcamento
	itens      []fakeItem
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		clientes:   map[int64]*fakeRow{},
		categorias: map[int64]*fakeRow{},
		produtos:   map[int64]*fakeProduto{},
		orcamentos: map[int64]*fakeOrcamento{},
	}
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, f)
}

func (f *fakeRepo) rows(kind Kind) map[int64]*fakeRow {
	switch kind {
	case KindCliente:
		return f.clientes
	case KindCategoria:
		return f.categorias
	case KindProduto:
		out := map[int64]*fakeRow{}
		for id, p := range f.produtos {
			out[id] = &p.fakeRow
		}
		return out
	case KindOrcamento:
		out := map[int64]*fakeRow{}
		for id, o := range f.orcamentos {
			out[id] = &o.fakeRow
		}
		return out
	}
	return nil
}

func (f *fakeRepo) ListByKind(ctx context.Context, scope shared.Scope, kind Kind) ([]Item, error) {
	var items []Item
	for id, row := range f.rows(kind) {
		if !row.trashed {
			continue
		}
		items = append(items, Item{ID: id, Kind: kind, Name: row.name, DeletedAt: row.deletedAt})
	}
	return items, nil
}

func (f *fakeRepo) Stats(ctx context.Context, scope shared.Scope) (Stats, error) {
	var st Stats
	count := func(kind Kind) int {
		n := 0
		for _, row := range f.rows(kind) {
			if row.trashed {
				n++
			}
		}
		return n
	}
	st.Clientes = count(KindCliente)
	st.Orcamentos = count(KindOrcamento)
	st.Produtos = count(KindProduto)
	st.Categorias = count(KindCategoria)
	st.TotalItems = st.Clientes + st.Orcamentos + st.Produtos + st.Categorias
	return st, nil
}

func (f *fakeRepo) find(kind Kind, id int64) *fakeRow {
	return f.rows(kind)[id]
}

func (f *fakeRepo) SoftDelete(ctx context.Context, scope shared.Scope, kind Kind, id int64) error {
	row := f.find(kind, id)
	if row == nil {
		return shared.ErrNotFound
	}
	row.trashed = true
	row.deletedAt = time.Now()
	return nil
}

func (f *fakeRepo) Restore(ctx context.Context, scope shared.Scope, kind Kind, id int64) error {
	row := f.find(kind, id)
	if row == nil || !row.trashed {
		return shared.ErrNotFound
	}
	row.trashed = false
	return nil
}

func (f *fakeRepo) IsTrashed(ctx context.Context, scope shared.Scope, kind Kind, id int64) (bool, error) {
	row := f.find(kind, id)
	if row == nil {
		return false, shared.ErrNotFound
	}
	return row.trashed, nil
}

func (f *fakeRepo) CountDependents(ctx context.Context, scope shared.Scope, kind Kind, id int64) (Dependents, error) {
	var d Dependents
	switch kind {
	case KindCliente:
		for _, o := range f.orcamentos {
			if o.clienteID != nil && *o.clienteID == id {
				if o.trashed {
					d.Deleted++
				} else {
					d.Active++
				}
			}
		}
	case KindCategoria:
		for _, p := range f.produtos {
			if p.categoriaID != nil && *p.categoriaID == id {
				if p.trashed {
					d.Deleted++
				} else {
					d.Active++
				}
			}
		}
	case KindProduto:
		for _, it := range f.itens {
			if it.produtoID != nil && *it.produtoID == id {
				d.Active++
			}
		}
	}
	return d, nil
}

func (f *fakeRepo) CountActiveDependents(ctx context.Context, scope shared.Scope, kind Kind, id int64) (int, error) {
	switch kind {
	case KindCliente:
		n := 0
		for _, o := range f.orcamentos {
			if o.clienteID != nil && *o.clienteID == id && !o.trashed {
				n++
			}
		}
		return n, nil
	case KindCategoria:
		n := 0
		for _, p := range f.produtos {
			if p.categoriaID != nil && *p.categoriaID == id && !p.trashed {
				n++
			}
		}
		return n, nil
	case KindProduto:
		n := 0
		for _, it := range f.itens {
			if it.produtoID == nil || *it.produtoID != id {
				continue
			}
			if o := f.orcamentos[it.orcamentoID]; o != nil && !o.trashed {
				n++
			}
		}
		return n, nil
	}
	return 0, nil
}

func (f *fakeRepo) CascadeDelete(ctx context.Context, scope shared.Scope, kind Kind, id int64) error {
	dropItems := func(keep func(fakeItem) bool) {
		var rest []fakeItem
		for _, it := range f.itens {
			if keep(it) {
				rest = append(rest, it)
			}
		}
		f.itens = rest
	}
	switch kind {
	case KindCliente:
		for oid, o := range f.orcamentos {
			if o.clienteID != nil && *o.clienteID == id {
				dropItems(func(it fakeItem) bool { return it.orcamentoID != oid })
				delete(f.orcamentos, oid)
			}
		}
	case KindCategoria:
		for pid, p := range f.produtos {
			if p.categoriaID != nil && *p.categoriaID == id {
				dropItems(func(it fakeItem) bool { return it.produtoID == nil || *it.produtoID != pid })
				delete(f.produtos, pid)
			}
		}
	case KindProduto:
		dropItems(func(it fakeItem) bool { return it.produtoID == nil || *it.produtoID != id })
	case KindOrcamento:
		dropItems(func(it fakeItem) bool { return it.orcamentoID != id })
	}
	return nil
}

func (f *fakeRepo) HardDelete(ctx context.Context, scope shared.Scope, kind Kind, id int64) error {
	row := f.find(kind, id)
	if row == nil || !row.trashed {
		return shared.ErrNotFound
	}
	switch kind {
	case KindCliente:
		delete(f.clientes, id)
	case KindCategoria:
		delete(f.categorias, id)
	case KindProduto:
		delete(f.produtos, id)
	case KindOrcamento:
		delete(f.orcamentos, id)
	}
	return nil
}

func (f *fakeRepo) TrashedIDs(ctx context.Context, scope shared.Scope, kind Kind) ([]int64, error) {
	var ids []int64
	for id, row := range f.rows(kind) {
		if row.trashed {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type countingObserver struct {
	counts map[string]int
}

func (o *countingObserver) ObserveTrashOperation(operation, outcome string) {
	if o.counts == nil {
		o.counts = map[string]int{}
	}
	o.counts[operation+":"+outcome]++
}

func testScope() shared.Scope {
	return shared.Scope{WorkspaceID: 1, UserID: 10, Level: shared.LevelOwner}
}

func int64Ptr(v int64) *int64 { return &v }

func TestListSearchIsAccentAndCaseInsensitive(t *testing.T) {
	repo := newFakeRepo()
	now := time.Now()
	repo.clientes[1] = &fakeRow{name: "João da Silva", trashed: true, deletedAt: now.Add(-time.Hour)}
	repo.clientes[2] = &fakeRow{name: "Maria", trashed: true, deletedAt: now}
	repo.orcamentos[3] = &fakeOrcamento{fakeRow: fakeRow{name: "Orçamento #7 - João da Silva", trashed: true, deletedAt: now.Add(-time.Minute)}}

	svc := NewService(repo, nil)

	items, err := svc.List(context.Background(), testScope(), "JOAO", "")
	require.NoError(t, err)
	require.Len(t, items, 2)
	// Newest deletion first.
	assert.Equal(t, KindOrcamento, items[0].Kind)
	assert.Equal(t, KindCliente, items[1].Kind)
}

func TestListRejectsUnknownKindFilter(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)
	_, err := svc.List(context.Background(), testScope(), "", "fornecedores")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeletePermanentlyBlocksOnDependentsWithoutForce(t *testing.T) {
	repo := newFakeRepo()
	repo.clientes[1] = &fakeRow{name: "João", trashed: true, deletedAt: time.Now()}
	repo.orcamentos[10] = &fakeOrcamento{fakeRow: fakeRow{name: "Orçamento #1 - João"}, clienteID: int64Ptr(1)}
	repo.orcamentos[11] = &fakeOrcamento{fakeRow: fakeRow{name: "Orçamento #2 - João", trashed: true, deletedAt: time.Now()}, clienteID: int64Ptr(1)}

	svc := NewService(repo, nil)
	err := svc.DeletePermanently(context.Background(), testScope(), KindCliente, 1, false)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, CodeClientHasBudgets, conflict.Code)
	assert.Equal(t, 2, conflict.Details["totalBudgets"])
	assert.Equal(t, 1, conflict.Details["activeBudgets"])
	assert.Equal(t, 1, conflict.Details["deletedBudgets"])

	// Blocked delete must be a complete no-op.
	assert.Contains(t, repo.clientes, int64(1))
	assert.Len(t, repo.orcamentos, 2)
}

func TestDeletePermanentlyForceCascadesTransitively(t *testing.T) {
	repo := newFakeRepo()
	repo.categorias[1] = &fakeRow{name: "Elétrica", trashed: true, deletedAt: time.Now()}
	repo.produtos[20] = &fakeProduto{fakeRow: fakeRow{name: "Tomada"}, categoriaID: int64Ptr(1)}
	repo.orcamentos[30] = &fakeOrcamento{fakeRow: fakeRow{name: "Orçamento #1"}}
	repo.itens = []fakeItem{{orcamentoID: 30, produtoID: int64Ptr(20)}}

	svc := NewService(repo, nil)
	err := svc.DeletePermanently(context.Background(), testScope(), KindCategoria, 1, true)
	require.NoError(t, err)

	assert.NotContains(t, repo.categorias, int64(1))
	assert.Empty(t, repo.produtos, "category products purged with it")
	assert.Empty(t, repo.itens, "line items referencing purged products removed")
	assert.Contains(t, repo.orcamentos, int64(30), "quote itself survives")
}

func TestDeletePermanentlyRequiresTrashedRow(t *testing.T) {
	repo := newFakeRepo()
	repo.clientes[1] = &fakeRow{name: "Ativo"}

	svc := NewService(repo, nil)
	err := svc.DeletePermanently(context.Background(), testScope(), KindCliente, 1, false)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Contains(t, repo.clientes, int64(1))
}

func TestDeletePermanentlyQuoteTakesItemsAlong(t *testing.T) {
	repo := newFakeRepo()
	repo.orcamentos[5] = &fakeOrcamento{fakeRow: fakeRow{name: "Orçamento #5", trashed: true, deletedAt: time.Now()}}
	repo.itens = []fakeItem{{orcamentoID: 5, produtoID: int64Ptr(9)}}

	svc := NewService(repo, nil)
	require.NoError(t, svc.DeletePermanently(context.Background(), testScope(), KindOrcamento, 5, false))

	assert.NotContains(t, repo.orcamentos, int64(5))
	assert.Empty(t, repo.itens)
}

func TestEmptyTrashSkipsEntitiesWithActiveDependents(t *testing.T) {
	repo := newFakeRepo()
	now := time.Now()

	// Trashed quote: always purged, items included.
	repo.orcamentos[1] = &fakeOrcamento{fakeRow: fakeRow{name: "Orçamento #1", trashed: true, deletedAt: now}}
	repo.itens = append(repo.itens, fakeItem{orcamentoID: 1})

	// Trashed category with an active product: must stay.
	repo.categorias[2] = &fakeRow{name: "Elétrica", trashed: true, deletedAt: now}
	repo.produtos[3] = &fakeProduto{fakeRow: fakeRow{name: "Tomada"}, categoriaID: int64Ptr(2)}

	// Trashed client with no active quotes left: goes.
	repo.clientes[4] = &fakeRow{name: "João", trashed: true, deletedAt: now}

	svc := NewService(repo, nil)
	purged, err := svc.EmptyTrash(context.Background(), testScope())
	require.NoError(t, err)
	assert.Equal(t, 2, purged)

	assert.NotContains(t, repo.orcamentos, int64(1))
	assert.Empty(t, repo.itens)
	assert.Contains(t, repo.categorias, int64(2), "category with active product is skipped")
	assert.NotContains(t, repo.clientes, int64(4))
}

func TestEmptyTrashPurgesClientAfterItsTrashedQuotes(t *testing.T) {
	repo := newFakeRepo()
	now := time.Now()
	repo.clientes[1] = &fakeRow{name: "João", trashed: true, deletedAt: now}
	repo.orcamentos[2] = &fakeOrcamento{fakeRow: fakeRow{name: "Orçamento #1 - João", trashed: true, deletedAt: now}, clienteID: int64Ptr(1)}

	svc := NewService(repo, nil)
	purged, err := svc.EmptyTrash(context.Background(), testScope())
	require.NoError(t, err)

	// The quote is purged first, so the client no longer has active
	// dependents by the time its turn comes.
	assert.Equal(t, 2, purged)
	assert.Empty(t, repo.clientes)
	assert.Empty(t, repo.orcamentos)
}

func TestRestoreClearsTrashMarker(t *testing.T) {
	repo := newFakeRepo()
	repo.produtos[1] = &fakeProduto{fakeRow: fakeRow{name: "Tomada", trashed: true, deletedAt: time.Now()}}

	svc := NewService(repo, nil)
	require.NoError(t, svc.Restore(context.Background(), testScope(), KindProduto, 1))
	assert.False(t, repo.produtos[1].trashed)

	err := svc.Restore(context.Background(), testScope(), KindProduto, 99)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestObserverSeesOutcomes(t *testing.T) {
	repo := newFakeRepo()
	repo.clientes[1] = &fakeRow{name: "João"}
	obs := &countingObserver{}

	svc := NewService(repo, obs)
	require.NoError(t, svc.SoftDelete(context.Background(), testScope(), KindCliente, 1))
	require.Error(t, svc.SoftDelete(context.Background(), testScope(), KindCliente, 42))

	assert.Equal(t, 1, obs.counts["soft_delete:ok"])
	assert.Equal(t, 1, obs.counts["soft_delete:error"])
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("cliente")
	require.NoError(t, err)
	assert.Equal(t, KindCliente, kind)

	_, err = ParseKind("fornecedor")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))
}
