package clients

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
	List(ctx context.Context, req ListRequest) ([]Client, int, error)
	Get(ctx context.Context, scope shared.Scope, id int64) (*Client, error)
	Create(ctx context.Context, scope shared.Scope, form ClientForm) (int64, error)
	Update(ctx context.Context, scope shared.Scope, id int64, form ClientForm) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const clientColumns = `id, workspace_id, nome, documento, email, telefone,
	endereco, cidade, estado, cep, deleted_at, deleted_by, created_at, updated_at`

// List returns active (non-trashed) clients only.
func (r *repository) List(ctx context.Context, req ListRequest) ([]Client, int, error) {
	where := `WHERE workspace_id = $1 AND deleted_at IS NULL`
	args := []interface{}{req.Scope.WorkspaceID}
	argPos := 2

	if req.Search != "" {
		where += fmt.Sprintf(` AND (unaccent(nome) ILIKE unaccent($%d)
			OR documento ILIKE $%d OR email ILIKE $%d)`, argPos, argPos, argPos)
		args = append(args, "%"+req.Search+"%")
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clientes `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := shared.NewPagination(req.Page, req.PerPage, total)
	query := fmt.Sprintf(`SELECT %s FROM clientes %s ORDER BY nome LIMIT $%d OFFSET $%d`,
		clientColumns, where, argPos, argPos+1)
	args = append(args, page.PerPage, page.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *c)
	}
	return result, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, scope shared.Scope, id int64) (*Client, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+clientColumns+`
		FROM clientes
		WHERE id = $1 AND workspace_id = $2 AND deleted_at IS NULL
	`, id, scope.WorkspaceID)
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, scope shared.Scope, form ClientForm) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO clientes (workspace_id, nome, documento, email, telefone,
			endereco, cidade, estado, cep, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id
	`, scope.WorkspaceID, form.Name, form.Document, form.Email, form.Phone,
		form.Address, form.City, form.State, form.PostalCode).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, scope shared.Scope, id int64, form ClientForm) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE clientes
		SET nome = $1, documento = $2, email = $3, telefone = $4,
			endereco = $5, cidade = $6, estado = $7, cep = $8, updated_at = NOW()
		WHERE id = $9 AND workspace_id = $10 AND deleted_at IS NULL
	`, form.Name, form.Document, form.Email, form.Phone,
		form.Address, form.City, form.State, form.PostalCode, id, scope.WorkspaceID)
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

func scanClient(row rowScanner) (*Client, error) {
	var c Client
	var document, email, phone, address, city, state, postal pgtype.Text
	var deletedAt pgtype.Timestamptz
	var deletedBy pgtype.Int8
	err := row.Scan(&c.ID, &c.WorkspaceID, &c.Name, &document, &email, &phone,
		&address, &city, &state, &postal, &deletedAt, &deletedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if document.Valid {
		c.Document = &document.String
	}
	if email.Valid {
		c.Email = &email.String
	}
	if phone.Valid {
		c.Phone = &phone.String
	}
	if address.Valid {
		c.Address = &address.String
	}
	if city.Valid {
		c.City = &city.String
	}
	if state.Valid {
		c.State = &state.String
	}
	if postal.Valid {
		c.PostalCode = &postal.String
	}
	if deletedAt.Valid {
		c.DeletedAt = &deletedAt.Time
	}
	if deletedBy.Valid {
		c.DeletedBy = &deletedBy.Int64
	}
	return &c, nil
}
