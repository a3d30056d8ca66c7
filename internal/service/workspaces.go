package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgcrypto "github.com/ferdousbhai/echo/internal/crypto"
	"github.com/ferdousbhai/echo/internal/errs"
	"github.com/ferdousbhai/echo/internal/model"
	"github.com/ferdousbhai/echo/internal/notify"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

const (
	generalChannelDescription = "General discussion"
	inviteCodeAttempts        = 3
)

// WorkspaceService manages workspaces, memberships and invites.
type WorkspaceService interface {
	// Create provisions a workspace with the caller as admin and a "general" channel.
	Create(ctx context.Context, caller uuid.UUID, name string, description *string, isPublic bool) (*model.Workspace, error)
	// List returns the caller's workspaces with the caller's role. Order is not meaningful.
	List(ctx context.Context, caller uuid.UUID) ([]model.WorkspaceWithRole, error)
	// Get returns a workspace the caller belongs to, or nil.
	Get(ctx context.Context, caller, workspaceID uuid.UUID) (*model.WorkspaceWithRole, error)
	// CreateInvite issues an invite code. Admin only.
	CreateInvite(ctx context.Context, caller, workspaceID uuid.UUID, maxUses, expiresInDays *int) (*model.Invite, error)
	// GetInviteInfo is the public preview of a redeemable invite, or nil.
	GetInviteInfo(ctx context.Context, code string) (*model.InviteInfo, error)
	// Join redeems an invite and returns the joined workspace ID.
	Join(ctx context.Context, caller uuid.UUID, code string) (uuid.UUID, error)
	// DeactivateInvite disables an invite. Admin of its workspace only; idempotent.
	DeactivateInvite(ctx context.Context, caller, inviteID uuid.UUID) error
	// ListInvites returns active invites, expired ones included. Admin only; empty otherwise.
	ListInvites(ctx context.Context, caller, workspaceID uuid.UUID) ([]model.Invite, error)
}

// WorkspaceServiceImpl implements WorkspaceService.
type WorkspaceServiceImpl struct {
	core
}

// NewWorkspaceService constructs WorkspaceService.
func NewWorkspaceService(r Repos, o Options) *WorkspaceServiceImpl {
	return &WorkspaceServiceImpl{core: newCore(r, o)}
}

// Create inserts the workspace, the admin membership and the general channel in one transaction.
func (s *WorkspaceServiceImpl) Create(
	ctx context.Context, caller uuid.UUID, name string, description *string, isPublic bool,
) (*model.Workspace, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("workspace name: %w", errs.ErrInvalidArgument)
	}

	ws := &model.Workspace{
		ID:          newID(),
		Name:        name,
		Description: description,
		CreatedBy:   caller,
		IsPublic:    isPublic,
	}
	owner := model.WorkspaceMember{WorkspaceID: ws.ID, UserID: caller, Role: model.RoleAdmin}
	desc := generalChannelDescription
	general := &model.Channel{
		ID:          newID(),
		Name:        model.GeneralChannelName,
		Description: &desc,
		CreatedBy:   caller,
		WorkspaceID: &ws.ID,
		Members:     []uuid.UUID{caller},
	}
	if err := s.repos.Workspaces.CreateWithOwner(ctx, ws, owner, general); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	s.log.Info("workspace created", zap.String("workspace", ws.ID.String()), zap.String("by", caller.String()))

	s.publish(ctx,
		event(notify.UserTopic(caller), notify.KindWorkspace, ws.ID),
		event(notify.WorkspaceTopic(ws.ID), notify.KindChannel, general.ID),
	)
	return ws, nil
}

// List returns every workspace the caller has a membership row in.
func (s *WorkspaceServiceImpl) List(ctx context.Context, caller uuid.UUID) ([]model.WorkspaceWithRole, error) {
	if caller == uuid.Nil {
		return nil, nil
	}
	return s.repos.Workspaces.ListForUser(ctx, caller)
}

// Get returns the workspace with the caller's role, or nil for non-members.
func (s *WorkspaceServiceImpl) Get(ctx context.Context, caller, workspaceID uuid.UUID) (*model.WorkspaceWithRole, error) {
	m, err := s.access.WorkspaceMember(ctx, caller, workspaceID)
	if err != nil || m == nil {
		return nil, err
	}
	ws, err := s.repos.Workspaces.Get(ctx, workspaceID)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &model.WorkspaceWithRole{Workspace: *ws, Role: m.Role}, nil
}

// CreateInvite issues a new invite with a random code.
func (s *WorkspaceServiceImpl) CreateInvite(
	ctx context.Context, caller, workspaceID uuid.UUID, maxUses, expiresInDays *int,
) (*model.Invite, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if maxUses != nil && *maxUses < 1 {
		return nil, fmt.Errorf("maxUses must be positive: %w", errs.ErrInvalidArgument)
	}
	if expiresInDays != nil && *expiresInDays < 1 {
		return nil, fmt.Errorf("expiresInDays must be positive: %w", errs.ErrInvalidArgument)
	}
	admin, err := s.access.WorkspaceAdmin(ctx, caller, workspaceID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, fmt.Errorf("only workspace admins can create invites: %w", errs.ErrForbidden)
	}

	inv := &model.Invite{
		WorkspaceID: workspaceID,
		CreatedBy:   caller,
		MaxUses:     maxUses,
		IsActive:    true,
	}
	if expiresInDays != nil {
		exp := s.now().Add(time.Duration(*expiresInDays) * 24 * time.Hour).Truncate(time.Millisecond)
		inv.ExpiresAt = &exp
	}
	for attempt := 1; ; attempt++ {
		inv.ID = newID()
		if inv.Code, err = pkgcrypto.NewInviteCode(); err != nil {
			return nil, err
		}
		err = s.repos.Invites.Create(ctx, inv)
		if !errors.Is(err, errs.ErrAlreadyExists) || attempt == inviteCodeAttempts {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}

	s.publish(ctx, event(notify.WorkspaceTopic(workspaceID), notify.KindInvite, inv.ID))
	return inv, nil
}

// GetInviteInfo returns nil for unknown, inactive, expired or exhausted codes.
func (s *WorkspaceServiceImpl) GetInviteInfo(ctx context.Context, code string) (*model.InviteInfo, error) {
	if code == "" {
		return nil, nil
	}
	inv, err := s.repos.Invites.GetByCode(ctx, code)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !inv.Redeemable(s.now()) {
		return nil, nil
	}
	ws, err := s.repos.Workspaces.Get(ctx, inv.WorkspaceID)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &model.InviteInfo{
		WorkspaceID:          ws.ID,
		WorkspaceName:        ws.Name,
		WorkspaceDescription: ws.Description,
		InviteID:             inv.ID,
		ExpiresAt:            inv.ExpiresAt,
		MaxUses:              inv.MaxUses,
		CurrentUses:          inv.CurrentUses,
	}, nil
}

// Join redeems code for the caller. The use count is bumped, the membership
// inserted and the general channel joined in one transaction.
func (s *WorkspaceServiceImpl) Join(ctx context.Context, caller uuid.UUID, code string) (uuid.UUID, error) {
	if err := requireCaller(caller); err != nil {
		return uuid.Nil, err
	}
	inv, err := s.repos.Invites.GetByCode(ctx, code)
	if isNotFound(err) {
		return uuid.Nil, fmt.Errorf("invalid or expired invite: %w", errs.ErrInvalidState)
	}
	if err != nil {
		return uuid.Nil, err
	}
	now := s.now()
	if !inv.Redeemable(now) {
		return uuid.Nil, fmt.Errorf("invalid, expired or exhausted invite: %w", errs.ErrInvalidState)
	}
	existing, err := s.access.WorkspaceMember(ctx, caller, inv.WorkspaceID)
	if err != nil {
		return uuid.Nil, err
	}
	if existing != nil {
		return uuid.Nil, fmt.Errorf("already a member of this workspace: %w", errs.ErrInvalidState)
	}

	member := model.WorkspaceMember{WorkspaceID: inv.WorkspaceID, UserID: caller, Role: model.RoleMember}
	switch err = s.repos.Invites.Redeem(ctx, inv.ID, member, now); {
	case errors.Is(err, errs.ErrAlreadyExists):
		return uuid.Nil, fmt.Errorf("already a member of this workspace: %w", errs.ErrInvalidState)
	case errors.Is(err, errs.ErrInvalidState):
		return uuid.Nil, fmt.Errorf("invite no longer redeemable: %w", err)
	case err != nil:
		return uuid.Nil, fmt.Errorf("redeem invite: %w", err)
	}
	s.log.Info("invite redeemed",
		zap.String("workspace", inv.WorkspaceID.String()),
		zap.String("invite", inv.ID.String()),
		zap.String("user", caller.String()),
	)

	s.publish(ctx,
		event(notify.WorkspaceTopic(inv.WorkspaceID), notify.KindMember, caller),
		event(notify.UserTopic(caller), notify.KindWorkspace, inv.WorkspaceID),
	)
	return inv.WorkspaceID, nil
}

// DeactivateInvite clears the invite's active flag.
func (s *WorkspaceServiceImpl) DeactivateInvite(ctx context.Context, caller, inviteID uuid.UUID) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	inv, err := s.repos.Invites.Get(ctx, inviteID)
	if err != nil {
		return fmt.Errorf("invite: %w", err)
	}
	admin, err := s.access.WorkspaceAdmin(ctx, caller, inv.WorkspaceID)
	if err != nil {
		return err
	}
	if admin == nil {
		return fmt.Errorf("only workspace admins can deactivate invites: %w", errs.ErrForbidden)
	}
	if !inv.IsActive {
		return nil
	}
	if err := s.repos.Invites.Deactivate(ctx, inviteID); err != nil {
		return fmt.Errorf("deactivate invite: %w", err)
	}
	s.publish(ctx, event(notify.WorkspaceTopic(inv.WorkspaceID), notify.KindInvite, inv.ID))
	return nil
}

// ListInvites returns the workspace's active invites for admins.
func (s *WorkspaceServiceImpl) ListInvites(ctx context.Context, caller, workspaceID uuid.UUID) ([]model.Invite, error) {
	admin, err := s.access.WorkspaceAdmin(ctx, caller, workspaceID)
	if err != nil || admin == nil {
		return nil, err
	}
	return s.repos.Invites.ListActive(ctx, workspaceID)
}
