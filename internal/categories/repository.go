package categories

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
	List(ctx context.Context, scope shared.Scope, search string) ([]Category, error)
	Get(ctx context.Context, scope shared.Scope, id int64) (*Category, error)
	Create(ctx context.Context, scope shared.Scope, form CategoryForm) (int64, error)
	Update(ctx context.Context, scope shared.Scope, id int64, form CategoryForm) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, scope shared.Scope, search string) ([]Category, error) {
	query := `
		SELECT id, workspace_id, nome, cor, deleted_at, deleted_by, created_at, updated_at
		FROM categorias
		WHERE workspace_id = $1 AND deleted_at IS NULL`
	args := []interface{}{scope.WorkspaceID}
	if search != "" {
		query += ` AND unaccent(nome) ILIKE unaccent($2)`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY nome`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func (r *repository) Get(ctx context.Context, scope shared.Scope, id int64) (*Category, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, workspace_id, nome, cor, deleted_at, deleted_by, created_at, updated_at
		FROM categorias
		WHERE id = $1 AND workspace_id = $2 AND deleted_at IS NULL
	`, id, scope.WorkspaceID)
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, scope shared.Scope, form CategoryForm) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO categorias (workspace_id, nome, cor, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id
	`, scope.WorkspaceID, form.Name, form.Color).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert categoria: %w", err)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, scope shared.Scope, id int64, form CategoryForm) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE categorias SET nome = $1, cor = $2, updated_at = NOW()
		WHERE id = $3 AND workspace_id = $4 AND deleted_at IS NULL
	`, form.Name, form.Color, id, scope.WorkspaceID)
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

func scanCategory(row rowScanner) (*Category, error) {
	var c Category
	var color pgtype.Text
	var deletedAt pgtype.Timestamptz
	var deletedBy pgtype.Int8
	err := row.Scan(&c.ID, &c.WorkspaceID, &c.Name, &color, &deletedAt, &deletedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if color.Valid {
		c.Color = &color.String
	}
	if deletedAt.Valid {
		c.DeletedAt = &deletedAt.Time
	}
	if deletedBy.Valid {
		c.DeletedBy = &deletedBy.Int64
	}
	return &c, nil
}
