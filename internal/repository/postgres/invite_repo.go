package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/ferdousbhai/echo/internal/errs"
	"github.com/ferdousbhai/echo/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// InviteRepo implements InviteRepository using PostgreSQL.
type InviteRepo struct{ db *DB }

// NewInviteRepo constructs an invite repository.
func NewInviteRepo(db *DB) *InviteRepo { return &InviteRepo{db: db} }

const inviteCols = `id, workspace_id, invite_code, created_by, expires_at, max_uses, current_uses, is_active, created_at`

func scanInvite(row pgx.Row) (*model.Invite, error) {
	var inv model.Invite
	if err := row.Scan(
		&inv.ID, &inv.WorkspaceID, &inv.Code, &inv.CreatedBy, &inv.ExpiresAt,
		&inv.MaxUses, &inv.CurrentUses, &inv.IsActive, &inv.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create inserts a new invite.
func (r *InviteRepo) Create(ctx context.Context, inv *model.Invite) error {
	const q = `
INSERT INTO workspace_invites (id, workspace_id, invite_code, created_by, expires_at, max_uses, current_uses, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING created_at`
	err := r.db.Pool.QueryRow(ctx, q,
		inv.ID, inv.WorkspaceID, inv.Code, inv.CreatedBy, inv.ExpiresAt, inv.MaxUses, inv.CurrentUses, inv.IsActive,
	).Scan(&inv.CreatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// Get selects an invite by ID.
func (r *InviteRepo) Get(ctx context.Context, id uuid.UUID) (*model.Invite, error) {
	inv, err := scanInvite(r.db.Pool.QueryRow(ctx, `SELECT `+inviteCols+` FROM workspace_invites WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return inv, nil
}

// GetByCode selects an invite by its code.
func (r *InviteRepo) GetByCode(ctx context.Context, code string) (*model.Invite, error) {
	inv, err := scanInvite(r.db.Pool.QueryRow(ctx, `SELECT `+inviteCols+` FROM workspace_invites WHERE invite_code=$1`, code))
	if err != nil {
		return nil, notFound(err)
	}
	return inv, nil
}

// ListActive selects active invites of a workspace, expired ones included.
func (r *InviteRepo) ListActive(ctx context.Context, workspaceID uuid.UUID) ([]model.Invite, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+inviteCols+` FROM workspace_invites WHERE workspace_id=$1 AND is_active ORDER BY created_at`,
		workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Invite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

// Deactivate clears is_active.
func (r *InviteRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE workspace_invites SET is_active=false WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Redeem consumes one use of the invite and enrolls member in one transaction.
// The use counter is bumped by a guarded UPDATE so it can never pass max_uses.
func (r *InviteRepo) Redeem(ctx context.Context, inviteID uuid.UUID, member model.WorkspaceMember, now time.Time) error {
	const bump = `
UPDATE workspace_invites
SET current_uses = current_uses + 1
WHERE id=$1 AND is_active
  AND (expires_at IS NULL OR expires_at >= $2)
  AND (max_uses IS NULL OR current_uses < max_uses)`
	const general = `
SELECT id FROM channels
WHERE workspace_id=$1 AND name=$2
ORDER BY created_at LIMIT 1`

	return r.db.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, bump, inviteID, now)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errs.ErrInvalidState
		}
		if err = tx.QueryRow(ctx, insWorkspaceMember,
			member.WorkspaceID, member.UserID, string(member.Role),
		).Scan(&member.JoinedAt); err != nil {
			if isUniqueViolation(err) {
				return errs.ErrAlreadyExists
			}
			return err
		}
		var channelID uuid.UUID
		err = tx.QueryRow(ctx, general, member.WorkspaceID, model.GeneralChannelName).Scan(&channelID)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil
		case err != nil:
			return err
		}
		tag, err = tx.Exec(ctx, insChannelMember, channelID, member.UserID)
		if err != nil || tag.RowsAffected() == 0 {
			return err
		}
		_, err = tx.Exec(ctx, mirrorMember, channelID, member.UserID)
		return err
	})
}
