package repository

import (
	"context"
	"time"

	"github.com/ferdousbhai/echo/internal/model"
	"github.com/gofrs/uuid/v5"
)

// MessageRepository stores messages and thread replies.
type MessageRepository interface {
	// Create inserts a message and fills CreatedAt.
	Create(ctx context.Context, m *model.Message) error
	// Get loads a message by ID.
	Get(ctx context.Context, id uuid.UUID) (*model.Message, error)
	// ListTopLevel returns up to limit newest top-level messages of a conversation, newest first.
	ListTopLevel(ctx context.Context, conv model.Conversation, limit int) ([]model.Message, error)
	// ListThread returns all replies to parentID, oldest first.
	ListThread(ctx context.Context, parentID uuid.UUID) ([]model.Message, error)
	// CountReplies returns reply counts for the given parents; parents without replies are absent.
	CountReplies(ctx context.Context, parentIDs []uuid.UUID) (map[uuid.UUID]int, error)
	// Edit replaces content and key and marks the message edited at editedAt.
	Edit(ctx context.Context, id uuid.UUID, content, encryptionKey string, editedAt time.Time) error
	// Delete removes a message. Replies and reactions are left in place.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReactionRepository stores emoji reactions.
type ReactionRepository interface {
	// Create inserts a reaction; errs.ErrAlreadyExists on a duplicate triple.
	Create(ctx context.Context, r *model.Reaction) error
	// Get loads a reaction by ID.
	Get(ctx context.Context, id uuid.UUID) (*model.Reaction, error)
	// Find loads the reaction for (messageID, emoji, userID).
	Find(ctx context.Context, messageID uuid.UUID, emoji string, userID uuid.UUID) (*model.Reaction, error)
	// Delete removes a reaction by ID.
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByMessages returns all reactions on the given messages.
	ListByMessages(ctx context.Context, messageIDs []uuid.UUID) ([]model.Reaction, error)
}
