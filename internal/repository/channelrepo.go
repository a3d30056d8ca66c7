package repository

import (
	"context"

	"github.com/ferdousbhai/echo/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ChannelRepository stores channels and channel memberships.
type ChannelRepository interface {
	// CreateWithMember inserts the channel and its creator's membership as one unit.
	CreateWithMember(ctx context.Context, ch *model.Channel, member model.ChannelMember) error
	// Get loads a channel by ID.
	Get(ctx context.Context, id uuid.UUID) (*model.Channel, error)
	// ListForUser returns channels of workspaceID that userID is a member of.
	ListForUser(ctx context.Context, userID, workspaceID uuid.UUID) ([]model.Channel, error)
	// AddMember inserts a membership; it reports false when the row already existed.
	AddMember(ctx context.Context, m model.ChannelMember) (bool, error)
	// IsMember reports whether userID has a membership row on channelID.
	IsMember(ctx context.Context, channelID, userID uuid.UUID) (bool, error)
	// ListMemberIDs returns the user IDs of a channel's membership rows.
	ListMemberIDs(ctx context.Context, channelID uuid.UUID) ([]uuid.UUID, error)
}

// DMRepository stores direct-message conversations.
type DMRepository interface {
	// Create inserts a DM; errs.ErrAlreadyExists when the pair already has one.
	Create(ctx context.Context, dm *model.DirectMessage) error
	// Get loads a DM by ID.
	Get(ctx context.Context, id uuid.UUID) (*model.DirectMessage, error)
	// ListForWorkspace returns all DMs of a workspace.
	ListForWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.DirectMessage, error)
}
