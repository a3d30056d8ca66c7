package repository

import (
	"context"
	"time"

	"github.com/ferdousbhai/echo/internal/model"
	"github.com/gofrs/uuid/v5"
)

// WorkspaceRepository stores workspaces and their memberships.
type WorkspaceRepository interface {
	// CreateWithOwner inserts the workspace, its admin member and the general
	// channel with its first member as one unit.
	CreateWithOwner(ctx context.Context, ws *model.Workspace, owner model.WorkspaceMember, general *model.Channel) error
	// Get loads a workspace by ID.
	Get(ctx context.Context, id uuid.UUID) (*model.Workspace, error)
	// ListForUser returns the workspaces userID belongs to, with the user's role.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.WorkspaceWithRole, error)
	// GetMember loads the membership row for (workspaceID, userID).
	GetMember(ctx context.Context, workspaceID, userID uuid.UUID) (*model.WorkspaceMember, error)
	// ListMembers returns every membership row of a workspace.
	ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]model.WorkspaceMember, error)
}

// InviteRepository stores workspace invites.
type InviteRepository interface {
	// Create inserts a new invite.
	Create(ctx context.Context, inv *model.Invite) error
	// Get loads an invite by ID.
	Get(ctx context.Context, id uuid.UUID) (*model.Invite, error)
	// GetByCode loads an invite by its code.
	GetByCode(ctx context.Context, code string) (*model.Invite, error)
	// ListActive returns the active invites of a workspace.
	ListActive(ctx context.Context, workspaceID uuid.UUID) ([]model.Invite, error)
	// Deactivate clears the active flag. Deactivating twice is not an error.
	Deactivate(ctx context.Context, id uuid.UUID) error
	// Redeem consumes one use of the invite at now, inserts member and adds the
	// member to the workspace's general channel when one exists. It returns
	// errs.ErrInvalidState when the invite is no longer redeemable and
	// errs.ErrAlreadyExists when the membership already exists.
	Redeem(ctx context.Context, inviteID uuid.UUID, member model.WorkspaceMember, now time.Time) error
}
