package postgres

import (
	"context"

	"github.com/ferdousbhai/echo/internal/errs"
	"github.com/ferdousbhai/echo/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// WorkspaceRepo implements WorkspaceRepository using PostgreSQL.
type WorkspaceRepo struct{ db *DB }

// NewWorkspaceRepo constructs a workspace repository.
func NewWorkspaceRepo(db *DB) *WorkspaceRepo { return &WorkspaceRepo{db: db} }

const (
	insWorkspace = `
INSERT INTO workspaces (id, name, description, created_by, is_public)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at`
	insWorkspaceMember = `
INSERT INTO workspace_members (workspace_id, user_id, role)
VALUES ($1, $2, $3)
RETURNING joined_at`
	insChannel = `
INSERT INTO channels (id, name, description, is_private, created_by, workspace_id, members)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at`
	insChannelMember = `
INSERT INTO channel_members (channel_id, user_id)
VALUES ($1, $2)
ON CONFLICT (channel_id, user_id) DO NOTHING`
)

// CreateWithOwner inserts the workspace, the owner's admin membership and the
// general channel with the owner as its first member in one transaction.
func (r *WorkspaceRepo) CreateWithOwner(
	ctx context.Context, ws *model.Workspace, owner model.WorkspaceMember, general *model.Channel,
) error {
	return r.db.inTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, insWorkspace,
			ws.ID, ws.Name, ws.Description, ws.CreatedBy, ws.IsPublic,
		).Scan(&ws.CreatedAt); err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, insWorkspaceMember,
			owner.WorkspaceID, owner.UserID, string(owner.Role),
		).Scan(&owner.JoinedAt); err != nil {
			if isUniqueViolation(err) {
				return errs.ErrAlreadyExists
			}
			return err
		}
		if err := tx.QueryRow(ctx, insChannel,
			general.ID, general.Name, general.Description, general.IsPrivate,
			general.CreatedBy, general.WorkspaceID, general.Members,
		).Scan(&general.CreatedAt); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, insChannelMember, general.ID, owner.UserID)
		return err
	})
}

// Get selects a workspace by ID.
func (r *WorkspaceRepo) Get(ctx context.Context, id uuid.UUID) (*model.Workspace, error) {
	const q = `
SELECT id, name, description, created_by, is_public, created_at
FROM workspaces WHERE id=$1`
	var ws model.Workspace
	err := r.db.Pool.QueryRow(ctx, q, id).
		Scan(&ws.ID, &ws.Name, &ws.Description, &ws.CreatedBy, &ws.IsPublic, &ws.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &ws, nil
}

// ListForUser selects the user's workspaces together with the user's role in each.
func (r *WorkspaceRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.WorkspaceWithRole, error) {
	const q = `
SELECT w.id, w.name, w.description, w.created_by, w.is_public, w.created_at, m.role
FROM workspace_members m
JOIN workspaces w ON w.id = m.workspace_id
WHERE m.user_id=$1
ORDER BY m.joined_at`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.WorkspaceWithRole
	for rows.Next() {
		var (
			w    model.WorkspaceWithRole
			role string
		)
		if err = rows.Scan(&w.ID, &w.Name, &w.Description, &w.CreatedBy, &w.IsPublic, &w.CreatedAt, &role); err != nil {
			return nil, err
		}
		w.Role = model.Role(role)
		out = append(out, w)
	}
	return out, rows.Err()
}

// GetMember selects a single membership row.
func (r *WorkspaceRepo) GetMember(ctx context.Context, workspaceID, userID uuid.UUID) (*model.WorkspaceMember, error) {
	const q = `
SELECT workspace_id, user_id, role, joined_at
FROM workspace_members WHERE workspace_id=$1 AND user_id=$2`
	var (
		m    model.WorkspaceMember
		role string
	)
	if err := r.db.Pool.QueryRow(ctx, q, workspaceID, userID).Scan(&m.WorkspaceID, &m.UserID, &role, &m.JoinedAt); err != nil {
		return nil, notFound(err)
	}
	m.Role = model.Role(role)
	return &m, nil
}

// ListMembers selects every membership row of a workspace.
func (r *WorkspaceRepo) ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]model.WorkspaceMember, error) {
	const q = `
SELECT workspace_id, user_id, role, joined_at
FROM workspace_members WHERE workspace_id=$1
ORDER BY joined_at`
	rows, err := r.db.Pool.Query(ctx, q, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.WorkspaceMember
	for rows.Next() {
		var (
			m    model.WorkspaceMember
			role string
		)
		if err = rows.Scan(&m.WorkspaceID, &m.UserID, &role, &m.JoinedAt); err != nil {
			return nil, err
		}
		m.Role = model.Role(role)
		out = append(out, m)
	}
	return out, rows.Err()
}
