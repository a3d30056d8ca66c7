package postgres

import (
	"context"

	"github.com/ferdousbhai/echo/internal/errs"
	"github.com/ferdousbhai/echo/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// DMRepo implements DMRepository using PostgreSQL.
type DMRepo struct{ db *DB }

// NewDMRepo constructs a direct-message repository.
func NewDMRepo(db *DB) *DMRepo { return &DMRepo{db: db} }

const dmCols = `id, participant_a, participant_b, created_by, workspace_id, created_at`

func scanDM(row pgx.Row) (*model.DirectMessage, error) {
	var d model.DirectMessage
	if err := row.Scan(&d.ID, &d.Participants[0], &d.Participants[1], &d.CreatedBy, &d.WorkspaceID, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a DM. Participants must already be sorted.
func (r *DMRepo) Create(ctx context.Context, dm *model.DirectMessage) error {
	const q = `
INSERT INTO direct_messages (id, participant_a, participant_b, created_by, workspace_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at`
	err := r.db.Pool.QueryRow(ctx, q,
		dm.ID, dm.Participants[0], dm.Participants[1], dm.CreatedBy, dm.WorkspaceID,
	).Scan(&dm.CreatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// Get selects a DM by ID.
func (r *DMRepo) Get(ctx context.Context, id uuid.UUID) (*model.DirectMessage, error) {
	d, err := scanDM(r.db.Pool.QueryRow(ctx, `SELECT `+dmCols+` FROM direct_messages WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

// ListForWorkspace selects every DM of a workspace.
func (r *DMRepo) ListForWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.DirectMessage, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+dmCols+` FROM direct_messages WHERE workspace_id=$1 ORDER BY created_at`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DirectMessage
	for rows.Next() {
		d, err := scanDM(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
