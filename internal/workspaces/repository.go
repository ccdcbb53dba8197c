package workspaces

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sky-orcamentos/sky-orcamentos/internal/platform/db"
	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

type Repository interface {
	Create(ctx context.Context, name string, ownerID int64) (int64, error)
	Get(ctx context.Context, id int64) (*Workspace, error)
	ListForUser(ctx context.Context, userID int64) ([]Workspace, error)
	Update(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error

	MemberLevel(ctx context.Context, workspaceID, userID int64) (int, error)
	ListMembers(ctx context.Context, workspaceID int64) ([]Member, error)
	AddMember(ctx context.Context, workspaceID, userID int64, level int) error
	UpdateMemberLevel(ctx context.Context, workspaceID, userID int64, level int) error
	RemoveMember(ctx context.Context, workspaceID, userID int64) error
	FindUserIDByEmail(ctx context.Context, email string) (int64, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

// Create inserts the workspace and its owner membership in one transaction.
func (r *repository) Create(ctx context.Context, name string, ownerID int64) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO workspaces (name, owner_id, created_at, updated_at)
			VALUES ($1, $2, NOW(), NOW())
			RETURNING id
		`, name, ownerID).Scan(&id)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO workspace_members (workspace_id, user_id, level, created_at)
			VALUES ($1, $2, $3, NOW())
		`, id, ownerID, shared.LevelOwner)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Workspace, error) {
	var ws Workspace
	err := r.db.QueryRow(ctx, `
		SELECT id, name, owner_id, created_at, updated_at
		FROM workspaces
		WHERE id = $1
	`, id).Scan(&ws.ID, &ws.Name, &ws.OwnerID, &ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ws, nil
}

func (r *repository) ListForUser(ctx context.Context, userID int64) ([]Workspace, error) {
	rows, err := r.db.Query(ctx, `
		SELECT w.id, w.name, w.owner_id, m.level, w.created_at, w.updated_at
		FROM workspaces w
		JOIN workspace_members m ON m.workspace_id = w.id
		WHERE m.user_id = $1
		ORDER BY w.name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Workspace
	for rows.Next() {
		var ws Workspace
		if err := rows.Scan(&ws.ID, &ws.Name, &ws.OwnerID, &ws.Level, &ws.CreatedAt, &ws.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, ws)
	}
	return result, rows.Err()
}

func (r *repository) Update(ctx context.Context, id int64, name string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE workspaces SET name = $1, updated_at = NOW() WHERE id = $2
	`, name, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the workspace and everything in it. Memberships and
// domain rows cascade through ON DELETE constraints.
func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM workspaces WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) MemberLevel(ctx context.Context, workspaceID, userID int64) (int, error) {
	var level int
	err := r.db.QueryRow(ctx, `
		SELECT level FROM workspace_members WHERE workspace_id = $1 AND user_id = $2
	`, workspaceID, userID).Scan(&level)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrForbidden
		}
		return 0, err
	}
	return level, nil
}

func (r *repository) ListMembers(ctx context.Context, workspaceID int64) ([]Member, error) {
	rows, err := r.db.Query(ctx, `
		SELECT m.workspace_id, m.user_id, u.name, u.email, m.level, m.created_at
		FROM workspace_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.workspace_id = $1
		ORDER BY m.level DESC, u.name
	`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.WorkspaceID, &m.UserID, &m.Name, &m.Email, &m.Level, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *repository) AddMember(ctx context.Context, workspaceID, userID int64, level int) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO workspace_members (workspace_id, user_id, level, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (workspace_id, user_id) DO UPDATE SET level = EXCLUDED.level
	`, workspaceID, userID, level)
	return err
}

func (r *repository) UpdateMemberLevel(ctx context.Context, workspaceID, userID int64, level int) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE workspace_members SET level = $1 WHERE workspace_id = $2 AND user_id = $3
	`, level, workspaceID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) RemoveMember(ctx context.Context, workspaceID, userID int64) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM workspace_members WHERE workspace_id = $1 AND user_id = $2
	`, workspaceID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) FindUserIDByEmail(ctx context.Context, email string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `SELECT id FROM users WHERE email = $1 AND is_active`, email).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return id, nil
}
