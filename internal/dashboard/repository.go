package dashboard

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

type Repository interface {
	CountActive(ctx context.Context, scope shared.Scope, table string) (int, error)
	TotalsByStatus(ctx context.Context, scope shared.Scope) ([]StatusTotal, error)
	MonthlyApproved(ctx context.Context, scope shared.Scope, months int) ([]MonthlyTotal, error)
	TopClients(ctx context.Context, scope shared.Scope, limit int) ([]ClientTotal, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// countTables whitelists the tables CountActive may touch; the table
// name is interpolated into SQL and must never come from user input.
var countTables = map[string]struct{}{
	"clientes":          {},
	"produtos_servicos": {},
	"categorias":        {},
	"orcamentos":        {},
}

func (r *repository) CountActive(ctx context.Context, scope shared.Scope, table string) (int, error) {
	if _, ok := countTables[table]; !ok {
		return 0, shared.ErrValidation
	}
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+table+` WHERE workspace_id = $1 AND deleted_at IS NULL`,
		scope.WorkspaceID).Scan(&count)
	return count, err
}

func (r *repository) TotalsByStatus(ctx context.Context, scope shared.Scope) ([]StatusTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(total), 0)
		FROM orcamentos
		WHERE workspace_id = $1 AND deleted_at IS NULL
		GROUP BY status
		ORDER BY status
	`, scope.WorkspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StatusTotal
	for rows.Next() {
		var st StatusTotal
		if err := rows.Scan(&st.Status, &st.Count, &st.Total); err != nil {
			return nil, err
		}
		result = append(result, st)
	}
	return result, rows.Err()
}

func (r *repository) MonthlyApproved(ctx context.Context, scope shared.Scope, months int) ([]MonthlyTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT to_char(date_trunc('month', created_at), 'YYYY-MM') AS mes, COALESCE(SUM(total), 0)
		FROM orcamentos
		WHERE workspace_id = $1 AND deleted_at IS NULL AND status = 'aprovado'
			AND created_at >= date_trunc('month', NOW()) - make_interval(months => $2 - 1)
		GROUP BY mes
		ORDER BY mes
	`, scope.WorkspaceID, months)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []MonthlyTotal
	for rows.Next() {
		var mt MonthlyTotal
		if err := rows.Scan(&mt.Month, &mt.Total); err != nil {
			return nil, err
		}
		result = append(result, mt)
	}
	return result, rows.Err()
}

func (r *repository) TopClients(ctx context.Context, scope shared.Scope, limit int) ([]ClientTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT cliente_id, cliente_nome, COALESCE(SUM(total), 0) AS aprovado
		FROM orcamentos
		WHERE workspace_id = $1 AND deleted_at IS NULL AND status = 'aprovado'
		GROUP BY cliente_id, cliente_nome
		ORDER BY aprovado DESC
		LIMIT $2
	`, scope.WorkspaceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ClientTotal
	for rows.Next() {
		var ct ClientTotal
		var clientID pgtype.Int8
		if err := rows.Scan(&clientID, &ct.ClientName, &ct.Total); err != nil {
			return nil, err
		}
		if clientID.Valid {
			ct.ClientID = &clientID.Int64
		}
		result = append(result, ct)
	}
	return result, rows.Err()
}
