package postgres

import (
	"context"

	"github.com/ferdousbhai/echo/internal/errs"
	"github.com/ferdousbhai/echo/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// ChannelRepo implements ChannelRepository using PostgreSQL.
type ChannelRepo struct{ db *DB }

// NewChannelRepo constructs a channel repository.
func NewChannelRepo(db *DB) *ChannelRepo { return &ChannelRepo{db: db} }

const channelCols = `id, name, description, is_private, created_by, workspace_id, members, created_at`

func scanChannel(row pgx.Row) (*model.Channel, error) {
	var c model.Channel
	if err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.IsPrivate, &c.CreatedBy, &c.WorkspaceID, &c.Members, &c.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateWithMember inserts the channel and the creator's membership in one transaction.
func (r *ChannelRepo) CreateWithMember(ctx context.Context, ch *model.Channel, member model.ChannelMember) error {
	return r.db.inTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, insChannel,
			ch.ID, ch.Name, ch.Description, ch.IsPrivate, ch.CreatedBy, ch.WorkspaceID, ch.Members,
		).Scan(&ch.CreatedAt); err != nil {
			if isUniqueViolation(err) {
				return errs.ErrAlreadyExists
			}
			return err
		}
		_, err := tx.Exec(ctx, insChannelMember, member.ChannelID, member.UserID)
		return err
	})
}

// Get selects a channel by ID.
func (r *ChannelRepo) Get(ctx context.Context, id uuid.UUID) (*model.Channel, error) {
	c, err := scanChannel(r.db.Pool.QueryRow(ctx, `SELECT `+channelCols+` FROM channels WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// ListForUser selects channels of a workspace that the user has joined.
func (r *ChannelRepo) ListForUser(ctx context.Context, userID, workspaceID uuid.UUID) ([]model.Channel, error) {
	const q = `
SELECT c.id, c.name, c.description, c.is_private, c.created_by, c.workspace_id, c.members, c.created_at
FROM channel_members m
JOIN channels c ON c.id = m.channel_id
WHERE m.user_id=$1 AND c.workspace_id=$2
ORDER BY c.created_at`
	rows, err := r.db.Pool.Query(ctx, q, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Channel
	for rows.Next() {
		c, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// mirrorMember keeps the legacy members array in step with channel_members.
const mirrorMember = `
UPDATE channels SET members = array_append(members, $2)
WHERE id=$1 AND NOT ($2 = ANY(members))`

// AddMember inserts a membership row and mirrors it into the legacy members array.
// It reports whether a new row was inserted.
func (r *ChannelRepo) AddMember(ctx context.Context, m model.ChannelMember) (added bool, err error) {
	err = r.db.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, insChannelMember, m.ChannelID, m.UserID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		added = true
		_, err = tx.Exec(ctx, mirrorMember, m.ChannelID, m.UserID)
		return err
	})
	return added, err
}

// IsMember reports whether the user has a membership row on the channel.
func (r *ChannelRepo) IsMember(ctx context.Context, channelID, userID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM channel_members WHERE channel_id=$1 AND user_id=$2)`
	var ok bool
	if err := r.db.Pool.QueryRow(ctx, q, channelID, userID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// ListMemberIDs selects the user IDs of the channel's membership rows.
func (r *ChannelRepo) ListMemberIDs(ctx context.Context, channelID uuid.UUID) ([]uuid.UUID, error) {
	const q = `SELECT user_id FROM channel_members WHERE channel_id=$1 ORDER BY joined_at`
	rows, err := r.db.Pool.Query(ctx, q, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err = rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
