package importer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

type Repository interface {
	Create(ctx context.Context, job *Job) (int64, error)
	Get(ctx context.Context, scope shared.Scope, id int64) (*Job, error)
	// GetForProcessing loads the job with its raw payload; the worker
	// trusts the workspace recorded on the row.
	GetForProcessing(ctx context.Context, id int64) (*Job, error)
	MarkProcessing(ctx context.Context, id int64) error
	Finish(ctx context.Context, id int64, status Status, total, imported int, rowErrors []RowError) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, job *Job) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO import_jobs (workspace_id, user_id, tipo, arquivo, status, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id
	`, job.WorkspaceID, job.UserID, job.Kind, job.Filename, StatusPending, job.Payload).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Get(ctx context.Context, scope shared.Scope, id int64) (*Job, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, workspace_id, user_id, tipo, arquivo, status, total_linhas,
		       linhas_importadas, erros, created_at, finished_at
		FROM import_jobs
		WHERE id = $1 AND workspace_id = $2
	`, id, scope.WorkspaceID)
	return scanJob(row, false)
}

func (r *repository) GetForProcessing(ctx context.Context, id int64) (*Job, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, workspace_id, user_id, tipo, arquivo, status, total_linhas,
		       linhas_importadas, erros, created_at, finished_at, payload
		FROM import_jobs
		WHERE id = $1
	`, id)
	return scanJob(row, true)
}

func (r *repository) MarkProcessing(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE import_jobs SET status = $1 WHERE id = $2 AND status = $3
	`, StatusProcessing, id, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Finish records the outcome and drops the raw payload.
func (r *repository) Finish(ctx context.Context, id int64, status Status, total, imported int, rowErrors []RowError) error {
	raw, err := json.Marshal(rowErrors)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		UPDATE import_jobs
		SET status = $1, total_linhas = $2, linhas_importadas = $3, erros = $4,
			payload = NULL, finished_at = NOW()
		WHERE id = $5
	`, status, total, imported, raw, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner, withPayload bool) (*Job, error) {
	var job Job
	var rawErrors []byte
	var finishedAt pgtype.Timestamptz
	dest := []any{&job.ID, &job.WorkspaceID, &job.UserID, &job.Kind, &job.Filename,
		&job.Status, &job.TotalRows, &job.Imported, &rawErrors, &job.CreatedAt, &finishedAt}
	if withPayload {
		dest = append(dest, &job.Payload)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if len(rawErrors) > 0 {
		if err := json.Unmarshal(rawErrors, &job.RowErrors); err != nil {
			return nil, err
		}
	}
	if finishedAt.Valid {
		t := finishedAt.Time.In(time.UTC)
		job.FinishedAt = &t
	}
	return &job, nil
}
