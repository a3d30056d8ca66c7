package postgres

import (
	"context"
	"time"

	"github.com/ferdousbhai/echo/internal/errs"
	"github.com/ferdousbhai/echo/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// MessageRepo implements MessageRepository using PostgreSQL.
type MessageRepo struct{ db *DB }

// NewMessageRepo constructs a message repository.
func NewMessageRepo(db *DB) *MessageRepo { return &MessageRepo{db: db} }

const messageCols = `id, content, encryption_key, author_id, channel_id, dm_id, thread_id, is_edited, edited_at, created_at`

func scanMessage(row pgx.Row) (*model.Message, error) {
	var m model.Message
	if err := row.Scan(
		&m.ID, &m.Content, &m.EncryptionKey, &m.AuthorID, &m.ChannelID, &m.DMID,
		&m.ThreadID, &m.IsEdited, &m.EditedAt, &m.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func collectMessages(rows pgx.Rows) ([]model.Message, error) {
	defer rows.Close()
	var out []model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// Create inserts a message.
func (r *MessageRepo) Create(ctx context.Context, m *model.Message) error {
	const q = `
INSERT INTO messages (id, content, encryption_key, author_id, channel_id, dm_id, thread_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at`
	return r.db.Pool.QueryRow(ctx, q,
		m.ID, m.Content, m.EncryptionKey, m.AuthorID, m.ChannelID, m.DMID, m.ThreadID,
	).Scan(&m.CreatedAt)
}

// Get selects a message by ID.
func (r *MessageRepo) Get(ctx context.Context, id uuid.UUID) (*model.Message, error) {
	m, err := scanMessage(r.db.Pool.QueryRow(ctx, `SELECT `+messageCols+` FROM messages WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

// ListTopLevel selects the newest top-level messages of a channel or DM, newest first.
func (r *MessageRepo) ListTopLevel(ctx context.Context, conv model.Conversation, limit int) ([]model.Message, error) {
	var (
		col string
		id  uuid.UUID
	)
	switch {
	case conv.ChannelID != nil:
		col, id = "channel_id", *conv.ChannelID
	case conv.DMID != nil:
		col, id = "dm_id", *conv.DMID
	default:
		return nil, errs.ErrInvalidArgument
	}
	q := `SELECT ` + messageCols + ` FROM messages
WHERE ` + col + `=$1 AND thread_id IS NULL
ORDER BY created_at DESC, seq DESC
LIMIT $2`
	rows, err := r.db.Pool.Query(ctx, q, id, limit)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

// ListThread selects all replies to a parent, oldest first.
func (r *MessageRepo) ListThread(ctx context.Context, parentID uuid.UUID) ([]model.Message, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+messageCols+` FROM messages WHERE thread_id=$1 ORDER BY created_at, seq`, parentID)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

// CountReplies counts replies per parent for the given parent IDs.
func (r *MessageRepo) CountReplies(ctx context.Context, parentIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int, len(parentIDs))
	if len(parentIDs) == 0 {
		return out, nil
	}
	const q = `
SELECT thread_id, COUNT(*)
FROM messages WHERE thread_id = ANY($1)
GROUP BY thread_id`
	rows, err := r.db.Pool.Query(ctx, q, parentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id uuid.UUID
			n  int64
		)
		if err = rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = int(n)
	}
	return out, rows.Err()
}

// Edit replaces the body and key of a message and marks it edited.
func (r *MessageRepo) Edit(ctx context.Context, id uuid.UUID, content, encryptionKey string, editedAt time.Time) error {
	const q = `
UPDATE messages
SET content=$2, encryption_key=$3, is_edited=true, edited_at=$4
WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, content, encryptionKey, editedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes a message row. Replies and reactions are not touched.
func (r *MessageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM messages WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
