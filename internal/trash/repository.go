package trash

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sky-orcamentos/sky-orcamentos/internal/platform/db"
	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

// Repository exposes the storage operations of the trash lifecycle. The
// cascade and empty-trash flows run inside WithTx so every mutation in
// one call commits or rolls back together.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error

	ListByKind(ctx context.Context, scope shared.Scope, kind Kind) ([]Item, error)
	Stats(ctx context.Context, scope shared.Scope) (Stats, error)

	SoftDelete(ctx context.Context, scope shared.Scope, kind Kind, id int64) error
	Restore(ctx context.Context, scope shared.Scope, kind Kind, id int64) error
	IsTrashed(ctx context.Context, scope shared.Scope, kind Kind, id int64) (bool, error)

	CountDependents(ctx context.Context, scope shared.Scope, kind Kind, id int64) (Dependents, error)
	CountActiveDependents(ctx context.Context, scope shared.Scope, kind Kind, id int64) (int, error)
	CascadeDelete(ctx context.Context, scope shared.Scope, kind Kind, id int64) error
	HardDelete(ctx context.Context, scope shared.Scope, kind Kind, id int64) error
	TrashedIDs(ctx context.Context, scope shared.Scope, kind Kind) ([]int64, error)
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) ListByKind(ctx context.Context, scope shared.Scope, kind Kind) ([]Item, error) {
	switch kind {
	case KindCliente:
		return r.listClientes(ctx, scope)
	case KindOrcamento:
		return r.listOrcamentos(ctx, scope)
	case KindProduto:
		return r.listProdutos(ctx, scope)
	case KindCategoria:
		return r.listCategorias(ctx, scope)
	default:
		return nil, fmt.Errorf("%w: tipo desconhecido %q", shared.ErrValidation, kind)
	}
}

func (r *repository) listClientes(ctx context.Context, scope shared.Scope) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.nome, c.documento, c.email, c.deleted_at, c.deleted_by, COALESCE(u.name, '')
		FROM clientes c
		LEFT JOIN users u ON u.id = c.deleted_by
		WHERE c.workspace_id = $1 AND c.deleted_at IS NOT NULL
	`, scope.WorkspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		var documento, email pgtype.Text
		var deletedBy pgtype.Int8
		if err := rows.Scan(&it.ID, &it.Name, &documento, &email, &it.DeletedAt, &deletedBy, &it.DeletedByName); err != nil {
			return nil, err
		}
		it.Kind = KindCliente
		applyDeletedBy(&it, deletedBy)
		it.OriginalData = map[string]any{"nome": it.Name}
		if documento.Valid {
			it.OriginalData["documento"] = documento.String
		}
		if email.Valid {
			it.OriginalData["email"] = email.String
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repository) listOrcamentos(ctx context.Context, scope shared.Scope) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT o.id, o.numero, o.cliente_nome, o.status, o.valor_total,
		       o.deleted_at, o.deleted_by, COALESCE(u.name, '')
		FROM orcamentos o
		LEFT JOIN users u ON u.id = o.deleted_by
		WHERE o.workspace_id = $1 AND o.deleted_at IS NOT NULL
	`, scope.WorkspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		var numero int
		var clienteNome, status string
		var total float64
		var deletedBy pgtype.Int8
		if err := rows.Scan(&it.ID, &numero, &clienteNome, &status, &total, &it.DeletedAt, &deletedBy, &it.DeletedByName); err != nil {
			return nil, err
		}
		it.Kind = KindOrcamento
		// Display name is built from the denormalized client snapshot so
		// it survives the client's deletion.
		it.Name = fmt.Sprintf("Orçamento #%d - %s", numero, clienteNome)
		applyDeletedBy(&it, deletedBy)
		it.OriginalData = map[string]any{
			"numero":      numero,
			"clienteNome": clienteNome,
			"status":      status,
			"valorTotal":  total,
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repository) listProdutos(ctx context.Context, scope shared.Scope) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.nome, p.tipo, p.valor, p.deleted_at, p.deleted_by, COALESCE(u.name, '')
		FROM produtos_servicos p
		LEFT JOIN users u ON u.id = p.deleted_by
		WHERE p.workspace_id = $1 AND p.deleted_at IS NOT NULL
	`, scope.WorkspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		var tipo string
		var valor float64
		var deletedBy pgtype.Int8
		if err := rows.Scan(&it.ID, &it.Name, &tipo, &valor, &it.DeletedAt, &deletedBy, &it.DeletedByName); err != nil {
			return nil, err
		}
		it.Kind = KindProduto
		applyDeletedBy(&it, deletedBy)
		it.OriginalData = map[string]any{"nome": it.Name, "tipo": tipo, "valor": valor}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repository) listCategorias(ctx context.Context, scope shared.Scope) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.nome, c.deleted_at, c.deleted_by, COALESCE(u.name, '')
		FROM categorias c
		LEFT JOIN users u ON u.id = c.deleted_by
		WHERE c.workspace_id = $1 AND c.deleted_at IS NOT NULL
	`, scope.WorkspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		var deletedBy pgtype.Int8
		if err := rows.Scan(&it.ID, &it.Name, &it.DeletedAt, &deletedBy, &it.DeletedByName); err != nil {
			return nil, err
		}
		it.Kind = KindCategoria
		applyDeletedBy(&it, deletedBy)
		it.OriginalData = map[string]any{"nome": it.Name}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repository) Stats(ctx context.Context, scope shared.Scope) (Stats, error) {
	var s Stats
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM clientes WHERE workspace_id = $1 AND deleted_at IS NOT NULL),
			(SELECT COUNT(*) FROM orcamentos WHERE workspace_id = $1 AND deleted_at IS NOT NULL),
			(SELECT COUNT(*) FROM produtos_servicos WHERE workspace_id = $1 AND deleted_at IS NOT NULL),
			(SELECT COUNT(*) FROM categorias WHERE workspace_id = $1 AND deleted_at IS NOT NULL)
	`, scope.WorkspaceID).Scan(&s.Clientes, &s.Orcamentos, &s.Produtos, &s.Categorias)
	if err != nil {
		return Stats{}, err
	}
	s.TotalItems = s.Clientes + s.Orcamentos + s.Produtos + s.Categorias
	return s, nil
}

// SoftDelete stamps the trash marker. Re-deleting an already trashed row
// just resets the timestamp.
func (r *repository) SoftDelete(ctx context.Context, scope shared.Scope, kind Kind, id int64) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE `+table+` SET deleted_at = NOW(), deleted_by = $1
		WHERE id = $2 AND workspace_id = $3
	`, scope.UserID, id, scope.WorkspaceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Restore(ctx context.Context, scope shared.Scope, kind Kind, id int64) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE `+table+` SET deleted_at = NULL, deleted_by = NULL
		WHERE id = $1 AND workspace_id = $2 AND deleted_at IS NOT NULL
	`, id, scope.WorkspaceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) IsTrashed(ctx context.Context, scope shared.Scope, kind Kind, id int64) (bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	var trashed bool
	err = r.db.QueryRow(ctx, `
		SELECT deleted_at IS NOT NULL FROM `+table+`
		WHERE id = $1 AND workspace_id = $2
	`, id, scope.WorkspaceID).Scan(&trashed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, shared.ErrNotFound
		}
		return false, err
	}
	return trashed, nil
}

func (r *repository) CountDependents(ctx context.Context, scope shared.Scope, kind Kind, id int64) (Dependents, error) {
	res, err := resolverFor(kind)
	if err != nil {
		return Dependents{}, err
	}
	return res.countDependents(ctx, r.db, scope, id)
}

func (r *repository) CountActiveDependents(ctx context.Context, scope shared.Scope, kind Kind, id int64) (int, error) {
	res, err := resolverFor(kind)
	if err != nil {
		return 0, err
	}
	return res.countActiveDependents(ctx, r.db, scope, id)
}

func (r *repository) CascadeDelete(ctx context.Context, scope shared.Scope, kind Kind, id int64) error {
	res, err := resolverFor(kind)
	if err != nil {
		return err
	}
	return res.cascadeDelete(ctx, r.db, scope, id)
}

// HardDelete removes the row itself; only trashed rows are eligible.
func (r *repository) HardDelete(ctx context.Context, scope shared.Scope, kind Kind, id int64) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		DELETE FROM `+table+`
		WHERE id = $1 AND workspace_id = $2 AND deleted_at IS NOT NULL
	`, id, scope.WorkspaceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) TrashedIDs(ctx context.Context, scope shared.Scope, kind Kind) ([]int64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `
		SELECT id FROM `+table+`
		WHERE workspace_id = $1 AND deleted_at IS NOT NULL
		ORDER BY id
	`, scope.WorkspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func tableFor(kind Kind) (string, error) {
	table, ok := kindTables[kind]
	if !ok {
		return "", fmt.Errorf("%w: tipo desconhecido %q", shared.ErrValidation, kind)
	}
	return table, nil
}

func resolverFor(kind Kind) (resolver, error) {
	res, ok := resolvers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: tipo desconhecido %q", shared.ErrValidation, kind)
	}
	return res, nil
}

func applyDeletedBy(it *Item, deletedBy pgtype.Int8) {
	if deletedBy.Valid {
		it.DeletedBy = &deletedBy.Int64
	}
	if it.DeletedByName == "" {
		it.DeletedByName = "Usuário removido"
	}
}
