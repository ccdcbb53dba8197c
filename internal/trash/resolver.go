package trash

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// resolver encapsulates the dependency semantics of one entity kind: how
// to count rows referencing it and how to purge those rows bottom-up.
// New kinds plug in through the registry instead of a switch.
type resolver interface {
	// countDependents partitions referencing rows by trash state.
	countDependents(ctx context.Context, q dbtx, scope shared.Scope, id int64) (Dependents, error)
	// countActiveDependents counts only rows visible outside the trash.
	countActiveDependents(ctx context.Context, q dbtx, scope shared.Scope, id int64) (int, error)
	// cascadeDelete hard-deletes all dependents (and their dependents),
	// bottom-up, leaving the entity row itself in place.
	cascadeDelete(ctx context.Context, q dbtx, scope shared.Scope, id int64) error
	// conflict builds the typed error blocking an unforced permanent
	// delete, or nil when the kind never blocks.
	conflict(d Dependents) *ConflictError
}

var resolvers = map[Kind]resolver{
	KindCliente:   clienteResolver{},
	KindOrcamento: orcamentoResolver{},
	KindProduto:   produtoResolver{},
	KindCategoria: categoriaResolver{},
}

// kindTables maps entity kinds to their tables.
var kindTables = map[Kind]string{
	KindCliente:   "clientes",
	KindOrcamento: "orcamentos",
	KindProduto:   "produtos_servicos",
	KindCategoria: "categorias",
}

// clienteResolver: orcamentos reference clientes.
type clienteResolver struct{}

func (clienteResolver) countDependents(ctx context.Context, q dbtx, scope shared.Scope, id int64) (Dependents, error) {
	var d Dependents
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE deleted_at IS NULL),
		       COUNT(*) FILTER (WHERE deleted_at IS NOT NULL)
		FROM orcamentos
		WHERE cliente_id = $1 AND workspace_id = $2
	`, id, scope.WorkspaceID).Scan(&d.Active, &d.Deleted)
	return d, err
}

func (clienteResolver) countActiveDependents(ctx context.Context, q dbtx, scope shared.Scope, id int64) (int, error) {
	var n int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM orcamentos
		WHERE cliente_id = $1 AND workspace_id = $2 AND deleted_at IS NULL
	`, id, scope.WorkspaceID).Scan(&n)
	return n, err
}

func (clienteResolver) cascadeDelete(ctx context.Context, q dbtx, scope shared.Scope, id int64) error {
	// Line items before their quotes.
	if _, err := q.Exec(ctx, `
		DELETE FROM orcamento_itens
		WHERE orcamento_id IN (
			SELECT id FROM orcamentos WHERE cliente_id = $1 AND workspace_id = $2
		)
	`, id, scope.WorkspaceID); err != nil {
		return err
	}
	_, err := q.Exec(ctx, `
		DELETE FROM orcamentos WHERE cliente_id = $1 AND workspace_id = $2
	`, id, scope.WorkspaceID)
	return err
}

func (clienteResolver) conflict(d Dependents) *ConflictError {
	return &ConflictError{
		Code:    CodeClientHasBudgets,
		Message: "cliente possui orçamentos vinculados",
		Details: map[string]any{
			"totalBudgets":   d.Total(),
			"activeBudgets":  d.Active,
			"deletedBudgets": d.Deleted,
		},
	}
}

// categoriaResolver: produtos_servicos reference categorias.
type categoriaResolver struct{}

func (categoriaResolver) countDependents(ctx context.Context, q dbtx, scope shared.Scope, id int64) (Dependents, error) {
	var d Dependents
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE deleted_at IS NULL),
		       COUNT(*) FILTER (WHERE deleted_at IS NOT NULL)
		FROM produtos_servicos
		WHERE categoria_id = $1 AND workspace_id = $2
	`, id, scope.WorkspaceID).Scan(&d.Active, &d.Deleted)
	return d, err
}

func (categoriaResolver) countActiveDependents(ctx context.Context, q dbtx, scope shared.Scope, id int64) (int, error) {
	var n int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM produtos_servicos
		WHERE categoria_id = $1 AND workspace_id = $2 AND deleted_at IS NULL
	`, id, scope.WorkspaceID).Scan(&n)
	return n, err
}

func (categoriaResolver) cascadeDelete(ctx context.Context, q dbtx, scope shared.Scope, id int64) error {
	// Transitive: line items referencing the category's products go first.
	if _, err := q.Exec(ctx, `
		DELETE FROM orcamento_itens
		WHERE produto_servico_id IN (
			SELECT id FROM produtos_servicos WHERE categoria_id = $1 AND workspace_id = $2
		)
	`, id, scope.WorkspaceID); err != nil {
		return err
	}
	_, err := q.Exec(ctx, `
		DELETE FROM produtos_servicos WHERE categoria_id = $1 AND workspace_id = $2
	`, id, scope.WorkspaceID)
	return err
}

func (categoriaResolver) conflict(d Dependents) *ConflictError {
	return &ConflictError{
		Code:    CodeCategoryHasProducts,
		Message: "categoria possui produtos/serviços vinculados",
		Details: map[string]any{
			"totalProducts":   d.Total(),
			"activeProducts":  d.Active,
			"deletedProducts": d.Deleted,
		},
	}
}

// produtoResolver: orcamento_itens reference produtos_servicos. Line
// items are owned by their quote, never independently trashed, so no
// active/deleted partition applies.
type produtoResolver struct{}

func (produtoResolver) countDependents(ctx context.Context, q dbtx, scope shared.Scope, id int64) (Dependents, error) {
	var d Dependents
	err := q.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM orcamento_itens i
		JOIN orcamentos o ON o.id = i.orcamento_id
		WHERE i.produto_servico_id = $1 AND o.workspace_id = $2
	`, id, scope.WorkspaceID).Scan(&d.Active)
	return d, err
}

func (produtoResolver) countActiveDependents(ctx context.Context, q dbtx, scope shared.Scope, id int64) (int, error) {
	var n int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM orcamento_itens i
		JOIN orcamentos o ON o.id = i.orcamento_id
		WHERE i.produto_servico_id = $1 AND o.workspace_id = $2 AND o.deleted_at IS NULL
	`, id, scope.WorkspaceID).Scan(&n)
	return n, err
}

func (produtoResolver) cascadeDelete(ctx context.Context, q dbtx, scope shared.Scope, id int64) error {
	_, err := q.Exec(ctx, `
		DELETE FROM orcamento_itens
		WHERE produto_servico_id = $1 AND orcamento_id IN (
			SELECT id FROM orcamentos WHERE workspace_id = $2
		)
	`, id, scope.WorkspaceID)
	return err
}

func (produtoResolver) conflict(d Dependents) *ConflictError {
	return &ConflictError{
		Code:    CodeProductHasBudgetItems,
		Message: "produto/serviço é usado em itens de orçamento",
		Details: map[string]any{
			"totalBudgetItems": d.Total(),
		},
	}
}

// orcamentoResolver: nothing references a quote; its line items always
// cascade unconditionally.
type orcamentoResolver struct{}

func (orcamentoResolver) countDependents(ctx context.Context, q dbtx, scope shared.Scope, id int64) (Dependents, error) {
	return Dependents{}, nil
}

func (orcamentoResolver) countActiveDependents(ctx context.Context, q dbtx, scope shared.Scope, id int64) (int, error) {
	return 0, nil
}

func (orcamentoResolver) cascadeDelete(ctx context.Context, q dbtx, scope shared.Scope, id int64) error {
	_, err := q.Exec(ctx, `
		DELETE FROM orcamento_itens
		WHERE orcamento_id = $1 AND orcamento_id IN (
			SELECT id FROM orcamentos WHERE workspace_id = $2
		)
	`, id, scope.WorkspaceID)
	return err
}

func (orcamentoResolver) conflict(d Dependents) *ConflictError {
	return nil
}
