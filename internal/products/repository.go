package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

type Repository interface {
	List(ctx context.Context, req ListRequest) ([]Product, int, error)
	Get(ctx context.Context, scope shared.Scope, id int64) (*Product, error)
	Create(ctx context.Context, scope shared.Scope, form ProductForm) (int64, error)
	Update(ctx context.Context, scope shared.Scope, id int64, form ProductForm) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productSelect = `
	SELECT p.id, p.workspace_id, p.nome, p.descricao, p.valor, p.tipo, p.unidade,
	       p.categoria_id, c.nome, p.deleted_at, p.deleted_by, p.created_at, p.updated_at
	FROM produtos_servicos p
	LEFT JOIN categorias c ON c.id = p.categoria_id AND c.deleted_at IS NULL`

func (r *repository) List(ctx context.Context, req ListRequest) ([]Product, int, error) {
	where := `WHERE p.workspace_id = $1 AND p.deleted_at IS NULL`
	args := []interface{}{req.Scope.WorkspaceID}
	argPos := 2

	if req.Search != "" {
		where += fmt.Sprintf(` AND unaccent(p.nome) ILIKE unaccent($%d)`, argPos)
		args = append(args, "%"+req.Search+"%")
		argPos++
	}
	if req.Kind != nil {
		where += fmt.Sprintf(` AND p.tipo = $%d`, argPos)
		args = append(args, *req.Kind)
		argPos++
	}
	if req.CategoryID != nil {
		where += fmt.Sprintf(` AND p.categoria_id = $%d`, argPos)
		args = append(args, *req.CategoryID)
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM produtos_servicos p `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := shared.NewPagination(req.Page, req.PerPage, total)
	query := fmt.Sprintf(`%s %s ORDER BY p.nome LIMIT $%d OFFSET $%d`, productSelect, where, argPos, argPos+1)
	args = append(args, page.PerPage, page.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *p)
	}
	return result, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, scope shared.Scope, id int64) (*Product, error) {
	row := r.pool.QueryRow(ctx, productSelect+`
		WHERE p.id = $1 AND p.workspace_id = $2 AND p.deleted_at IS NULL
	`, id, scope.WorkspaceID)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, scope shared.Scope, form ProductForm) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO produtos_servicos (workspace_id, nome, descricao, valor, tipo,
			unidade, categoria_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id
	`, scope.WorkspaceID, form.Name, form.Description, form.Value, form.Kind,
		form.Unit, form.CategoryID).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, scope shared.Scope, id int64, form ProductForm) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE produtos_servicos
		SET nome = $1, descricao = $2, valor = $3, tipo = $4, unidade = $5,
			categoria_id = $6, updated_at = NOW()
		WHERE id = $7 AND workspace_id = $8 AND deleted_at IS NULL
	`, form.Name, form.Description, form.Value, form.Kind, form.Unit,
		form.CategoryID, id, scope.WorkspaceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var p Product
	var description, categoryName pgtype.Text
	var categoryID pgtype.Int8
	var deletedAt pgtype.Timestamptz
	var deletedBy pgtype.Int8
	err := row.Scan(&p.ID, &p.WorkspaceID, &p.Name, &description, &p.Value, &p.Kind, &p.Unit,
		&categoryID, &categoryName, &deletedAt, &deletedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		p.Description = &description.String
	}
	if categoryID.Valid {
		p.CategoryID = &categoryID.Int64
	}
	if categoryName.Valid {
		p.CategoryName = &categoryName.String
	}
	if deletedAt.Valid {
		p.DeletedAt = &deletedAt.Time
	}
	if deletedBy.Valid {
		p.DeletedBy = &deletedBy.Int64
	}
	return &p, nil
}
