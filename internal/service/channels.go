package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ferdousbhai/echo/internal/errs"
	"github.com/ferdousbhai/echo/internal/model"
	"github.com/ferdousbhai/echo/internal/notify"
	"github.com/gofrs/uuid/v5"
)

// ChannelService manages channels and channel membership.
type ChannelService interface {
	// List returns workspace channels the caller has joined. Empty for non-members.
	List(ctx context.Context, caller, workspaceID uuid.UUID) ([]model.Channel, error)
	// Create adds a channel with the caller as its first member.
	Create(ctx context.Context, caller uuid.UUID, name string, description *string, isPrivate bool, workspaceID uuid.UUID) (*model.Channel, error)
	// Join adds the caller to a channel of their workspace. Joining twice is a no-op.
	Join(ctx context.Context, caller, channelID uuid.UUID) error
	// Get returns a channel the caller can read, or nil.
	Get(ctx context.Context, caller, channelID uuid.UUID) (*model.Channel, error)
	// Members returns the users with a membership row on the channel.
	Members(ctx context.Context, caller, channelID uuid.UUID) ([]model.User, error)
}

// ChannelServiceImpl implements ChannelService.
type ChannelServiceImpl struct {
	core
}

// NewChannelService constructs ChannelService.
func NewChannelService(r Repos, o Options) *ChannelServiceImpl {
	return &ChannelServiceImpl{core: newCore(r, o)}
}

// List filters on the workspace as well as membership so stale rows from a
// reassigned channel do not leak into another workspace.
func (s *ChannelServiceImpl) List(ctx context.Context, caller, workspaceID uuid.UUID) ([]model.Channel, error) {
	m, err := s.access.WorkspaceMember(ctx, caller, workspaceID)
	if err != nil || m == nil {
		return nil, err
	}
	return s.repos.Channels.ListForUser(ctx, caller, workspaceID)
}

// Create inserts the channel and the creator's membership in one transaction.
func (s *ChannelServiceImpl) Create(
	ctx context.Context, caller uuid.UUID, name string, description *string, isPrivate bool, workspaceID uuid.UUID,
) (*model.Channel, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("channel name: %w", errs.ErrInvalidArgument)
	}
	m, err := s.access.WorkspaceMember(ctx, caller, workspaceID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("not a member of this workspace: %w", errs.ErrForbidden)
	}

	ch := &model.Channel{
		ID:          newID(),
		Name:        name,
		Description: description,
		IsPrivate:   isPrivate,
		CreatedBy:   caller,
		WorkspaceID: &workspaceID,
		Members:     []uuid.UUID{caller},
	}
	if err := s.repos.Channels.CreateWithMember(ctx, ch, model.ChannelMember{ChannelID: ch.ID, UserID: caller}); err != nil {
		return nil, fmt.Errorf("create channel: %w", err)
	}

	s.publish(ctx,
		event(notify.UserTopic(caller), notify.KindChannel, ch.ID),
		event(notify.WorkspaceTopic(workspaceID), notify.KindChannel, ch.ID),
	)
	return ch, nil
}

// Join inserts a membership row unless one exists.
func (s *ChannelServiceImpl) Join(ctx context.Context, caller, channelID uuid.UUID) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	ch, err := s.repos.Channels.Get(ctx, channelID)
	if err != nil {
		return fmt.Errorf("channel: %w", err)
	}
	ok, err := s.access.inChannelWorkspace(ctx, caller, ch)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("not a member of this workspace: %w", errs.ErrForbidden)
	}
	member, err := s.repos.Channels.IsMember(ctx, ch.ID, caller)
	if err != nil {
		return fmt.Errorf("join channel: %w", err)
	}
	if member {
		return nil
	}

	added, err := s.repos.Channels.AddMember(ctx, model.ChannelMember{ChannelID: ch.ID, UserID: caller})
	if err != nil {
		return fmt.Errorf("join channel: %w", err)
	}
	if added {
		s.publish(ctx,
			event(notify.ChannelTopic(ch.ID), notify.KindMember, caller),
			event(notify.UserTopic(caller), notify.KindChannel, ch.ID),
		)
	}
	return nil
}

// Get returns the channel when the caller can read it.
func (s *ChannelServiceImpl) Get(ctx context.Context, caller, channelID uuid.UUID) (*model.Channel, error) {
	ch, err := s.repos.Channels.Get(ctx, channelID)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ok, err := s.access.CanReadChannel(ctx, caller, ch)
	if err != nil || !ok {
		return nil, err
	}
	return ch, nil
}

// Members resolves the channel's membership rows to public user records.
func (s *ChannelServiceImpl) Members(ctx context.Context, caller, channelID uuid.UUID) ([]model.User, error) {
	ch, err := s.Get(ctx, caller, channelID)
	if err != nil || ch == nil {
		return nil, err
	}
	ids, err := s.repos.Channels.ListMemberIDs(ctx, ch.ID)
	if err != nil {
		return nil, err
	}
	users, err := s.repos.Users.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			out = append(out, u.Public())
		}
	}
	return out, nil
}
