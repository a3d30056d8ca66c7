package postgres

import (
	"context"

	"github.com/ferdousbhai/echo/internal/errs"
	"github.com/ferdousbhai/echo/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// ReactionRepo implements ReactionRepository using PostgreSQL.
type ReactionRepo struct{ db *DB }

// NewReactionRepo constructs a reaction repository.
func NewReactionRepo(db *DB) *ReactionRepo { return &ReactionRepo{db: db} }

const reactionCols = `id, message_id, emoji, user_id, created_at`

func scanReaction(row pgx.Row) (*model.Reaction, error) {
	var x model.Reaction
	if err := row.Scan(&x.ID, &x.MessageID, &x.Emoji, &x.UserID, &x.CreatedAt); err != nil {
		return nil, err
	}
	return &x, nil
}

// Create inserts a reaction.
func (r *ReactionRepo) Create(ctx context.Context, x *model.Reaction) error {
	const q = `
INSERT INTO reactions (id, message_id, emoji, user_id)
VALUES ($1, $2, $3, $4)
RETURNING created_at`
	err := r.db.Pool.QueryRow(ctx, q, x.ID, x.MessageID, x.Emoji, x.UserID).Scan(&x.CreatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// Get selects a reaction by ID.
func (r *ReactionRepo) Get(ctx context.Context, id uuid.UUID) (*model.Reaction, error) {
	x, err := scanReaction(r.db.Pool.QueryRow(ctx, `SELECT `+reactionCols+` FROM reactions WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return x, nil
}

// Find selects the reaction of a user with an emoji on a message.
func (r *ReactionRepo) Find(ctx context.Context, messageID uuid.UUID, emoji string, userID uuid.UUID) (*model.Reaction, error) {
	x, err := scanReaction(r.db.Pool.QueryRow(ctx,
		`SELECT `+reactionCols+` FROM reactions WHERE message_id=$1 AND emoji=$2 AND user_id=$3`,
		messageID, emoji, userID))
	if err != nil {
		return nil, notFound(err)
	}
	return x, nil
}

// Delete removes a reaction.
func (r *ReactionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM reactions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ListByMessages selects all reactions on the given messages, oldest first.
func (r *ReactionRepo) ListByMessages(ctx context.Context, messageIDs []uuid.UUID) ([]model.Reaction, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reactionCols+` FROM reactions WHERE message_id = ANY($1) ORDER BY created_at`, messageIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Reaction
	for rows.Next() {
		x, err := scanReaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *x)
	}
	return out, rows.Err()
}
