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

// UserService exposes the user directory and per-user key material.
type UserService interface {
	// Current returns the caller, or nil when anonymous.
	Current(ctx context.Context, caller uuid.UUID) (*model.User, error)
	// ListWorkspaceUsers returns the other members of a workspace.
	ListWorkspaceUsers(ctx context.Context, caller, workspaceID uuid.UUID) ([]model.User, error)
	// SetupKeys stores or replaces the caller's key pair.
	SetupKeys(ctx context.Context, caller uuid.UUID, publicKey, privateKey string) error
	// GetPublicKey returns any user's public key; ok is false when none is stored.
	GetPublicKey(ctx context.Context, userID uuid.UUID) (key string, ok bool, err error)
	// GetPrivateKey returns the caller's encrypted private key.
	GetPrivateKey(ctx context.Context, caller uuid.UUID) (key string, ok bool, err error)
}

// UserServiceImpl implements UserService.
type UserServiceImpl struct {
	core
}

// NewUserService constructs UserService.
func NewUserService(r Repos, o Options) *UserServiceImpl {
	return &UserServiceImpl{core: newCore(r, o)}
}

func (s *UserServiceImpl) Current(ctx context.Context, caller uuid.UUID) (*model.User, error) {
	if caller == uuid.Nil {
		return nil, nil
	}
	u, err := s.repos.Users.GetByID(ctx, caller)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	pub := u.Public()
	return &pub, nil
}

func (s *UserServiceImpl) ListWorkspaceUsers(ctx context.Context, caller, workspaceID uuid.UUID) ([]model.User, error) {
	m, err := s.access.WorkspaceMember(ctx, caller, workspaceID)
	if err != nil || m == nil {
		return nil, err
	}
	members, err := s.repos.Workspaces.ListMembers(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(members))
	for _, wm := range members {
		if wm.UserID != caller {
			ids = append(ids, wm.UserID)
		}
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

func (s *UserServiceImpl) SetupKeys(ctx context.Context, caller uuid.UUID, publicKey, privateKey string) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if strings.TrimSpace(publicKey) == "" || strings.TrimSpace(privateKey) == "" {
		return fmt.Errorf("both keys are required: %w", errs.ErrInvalidArgument)
	}
	if err := s.repos.Users.UpsertKeys(ctx, model.UserKeys{UserID: caller, PublicKey: publicKey, PrivateKey: privateKey}); err != nil {
		return fmt.Errorf("setup keys: %w", err)
	}
	s.publish(ctx, event(notify.UserTopic(caller), notify.KindKeys, caller))
	return nil
}

func (s *UserServiceImpl) GetPublicKey(ctx context.Context, userID uuid.UUID) (string, bool, error) {
	k, err := s.repos.Users.GetKeys(ctx, userID)
	if isNotFound(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return k.PublicKey, true, nil
}

func (s *UserServiceImpl) GetPrivateKey(ctx context.Context, caller uuid.UUID) (string, bool, error) {
	if caller == uuid.Nil {
		return "", false, nil
	}
	k, err := s.repos.Users.GetKeys(ctx, caller)
	if isNotFound(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return k.PrivateKey, true, nil
}
