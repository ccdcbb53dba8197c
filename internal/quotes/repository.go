package quotes

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

type Repository interface {
	List(ctx context.Context, req ListRequest) ([]Quote, int, error)
	Get(ctx context.Context, scope shared.Scope, id int64) (*Quote, error)
	Create(ctx context.Context, scope shared.Scope, quote *Quote) (int64, error)
	Update(ctx context.Context, scope shared.Scope, id int64, quote *Quote) error
	UpdateStatus(ctx context.Context, scope shared.Scope, id int64, status Status) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const quoteColumns = `
	id, workspace_id, numero, cliente_id, cliente_nome, cliente_documento,
	cliente_email, cliente_telefone, cliente_endereco, status, desconto,
	desconto_tipo, subtotal, total, observacoes, validade, deleted_at,
	deleted_by, created_at, updated_at`

func (r *repository) List(ctx context.Context, req ListRequest) ([]Quote, int, error) {
	where := `WHERE workspace_id = $1 AND deleted_at IS NULL`
	args := []interface{}{req.Scope.WorkspaceID}
	argPos := 2

	if req.Search != "" {
		where += fmt.Sprintf(` AND (unaccent(cliente_nome) ILIKE unaccent($%d) OR numero::text = $%d)`, argPos, argPos+1)
		args = append(args, "%"+req.Search+"%", req.Search)
		argPos += 2
	}
	if req.Status != nil {
		where += fmt.Sprintf(` AND status = $%d`, argPos)
		args = append(args, *req.Status)
		argPos++
	}
	if req.ClientID != nil {
		where += fmt.Sprintf(` AND cliente_id = $%d`, argPos)
		args = append(args, *req.ClientID)
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orcamentos `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := shared.NewPagination(req.Page, req.PerPage, total)
	query := fmt.Sprintf(`SELECT %s FROM orcamentos %s ORDER BY numero DESC LIMIT $%d OFFSET $%d`,
		quoteColumns, where, argPos, argPos+1)
	args = append(args, page.PerPage, page.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *q)
	}
	return result, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, scope shared.Scope, id int64) (*Quote, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+quoteColumns+` FROM orcamentos
		WHERE id = $1 AND workspace_id = $2 AND deleted_at IS NULL
	`, id, scope.WorkspaceID)
	quote, err := scanQuote(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	items, err := r.listItems(ctx, quote.ID)
	if err != nil {
		return nil, err
	}
	quote.Items = items
	return quote, nil
}

func (r *repository) listItems(ctx context.Context, quoteID int64) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, orcamento_id, produto_servico_id, nome, tipo, unidade,
		       quantidade, valor_unitario, desconto, desconto_tipo, total
		FROM orcamento_itens
		WHERE orcamento_id = $1
		ORDER BY id
	`, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		var productID pgtype.Int8
		var discountType pgtype.Text
		if err := rows.Scan(&it.ID, &it.QuoteID, &productID, &it.Name, &it.Kind, &it.Unit,
			&it.Quantity, &it.UnitValue, &it.Discount, &discountType, &it.Total); err != nil {
			return nil, err
		}
		if productID.Valid {
			it.ProductID = &productID.Int64
		}
		if discountType.Valid {
			dt := DiscountType(discountType.String)
			it.DiscountType = &dt
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Create inserts the quote and its items in one transaction. The
// sequential numero is claimed inside the same transaction; soft-deleted
// quotes keep their number so it is never reissued.
func (r *repository) Create(ctx context.Context, scope shared.Scope, quote *Quote) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var number int64
		if err := tx.QueryRow(ctx, `
			SELECT COALESCE(MAX(numero), 0) + 1 FROM orcamentos WHERE workspace_id = $1
		`, scope.WorkspaceID).Scan(&number); err != nil {
			return err
		}

		err := tx.QueryRow(ctx, `
			INSERT INTO orcamentos (workspace_id, numero, cliente_id, cliente_nome,
				cliente_documento, cliente_email, cliente_telefone, cliente_endereco,
				status, desconto, desconto_tipo, subtotal, total, observacoes, validade,
				created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
			RETURNING id
		`, scope.WorkspaceID, number, quote.ClientID, quote.ClientName,
			quote.ClientDocument, quote.ClientEmail, quote.ClientPhone, quote.ClientAddress,
			quote.Status, quote.Discount, quote.DiscountType, quote.Subtotal, quote.Total,
			quote.Notes, quote.ValidUntil).Scan(&id)
		if err != nil {
			return err
		}
		return insertItems(ctx, tx, id, quote.Items)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Update rewrites the mutable columns and replaces the item set. The
// cliente_* snapshot and numero are deliberately left out of the SET
// list.
func (r *repository) Update(ctx context.Context, scope shared.Scope, id int64, quote *Quote) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE orcamentos
			SET desconto = $1, desconto_tipo = $2, subtotal = $3, total = $4,
				observacoes = $5, validade = $6, updated_at = NOW()
			WHERE id = $7 AND workspace_id = $8 AND deleted_at IS NULL
		`, quote.Discount, quote.DiscountType, quote.Subtotal, quote.Total,
			quote.Notes, quote.ValidUntil, id, scope.WorkspaceID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM orcamento_itens WHERE orcamento_id = $1`, id); err != nil {
			return err
		}
		return insertItems(ctx, tx, id, quote.Items)
	})
}

func insertItems(ctx context.Context, tx pgx.Tx, quoteID int64, items []Item) error {
	for _, it := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO orcamento_itens (orcamento_id, produto_servico_id, nome, tipo,
				unidade, quantidade, valor_unitario, desconto, desconto_tipo, total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, quoteID, it.ProductID, it.Name, it.Kind, it.Unit,
			it.Quantity, it.UnitValue, it.Discount, it.DiscountType, it.Total)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, scope shared.Scope, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orcamentos
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND workspace_id = $3 AND deleted_at IS NULL
	`, status, id, scope.WorkspaceID)
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

func scanQuote(row rowScanner) (*Quote, error) {
	var q Quote
	var clientID, deletedBy pgtype.Int8
	var document, email, phone, address, discountType, notes pgtype.Text
	var validUntil, deletedAt pgtype.Timestamptz
	err := row.Scan(&q.ID, &q.WorkspaceID, &q.Number, &clientID, &q.ClientName, &document,
		&email, &phone, &address, &q.Status, &q.Discount,
		&discountType, &q.Subtotal, &q.Total, &notes, &validUntil, &deletedAt,
		&deletedBy, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if clientID.Valid {
		q.ClientID = &clientID.Int64
	}
	if document.Valid {
		q.ClientDocument = &document.String
	}
	if email.Valid {
		q.ClientEmail = &email.String
	}
	if phone.Valid {
		q.ClientPhone = &phone.String
	}
	if address.Valid {
		q.ClientAddress = &address.String
	}
	if discountType.Valid {
		dt := DiscountType(discountType.String)
		q.DiscountType = &dt
	}
	if notes.Valid {
		q.Notes = &notes.String
	}
	if validUntil.Valid {
		q.ValidUntil = &validUntil.Time
	}
	if deletedAt.Valid {
		q.DeletedAt = &deletedAt.Time
	}
	if deletedBy.Valid {
		q.DeletedBy = &deletedBy.Int64
	}
	return &q, nil
}
