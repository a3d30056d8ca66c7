package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ferdousbhai/echo/internal/errs"
	"github.com/ferdousbhai/echo/internal/model"
	"github.com/ferdousbhai/echo/internal/notify"
	"github.com/gofrs/uuid/v5"
)

// DMService manages two-party conversations.
type DMService interface {
	// List returns the caller's DMs in a workspace with resolved participants.
	List(ctx context.Context, caller, workspaceID uuid.UUID) ([]model.DMView, error)
	// GetOrCreate returns the DM between caller and participant, creating it on first use.
	GetOrCreate(ctx context.Context, caller, participantID, workspaceID uuid.UUID) (uuid.UUID, error)
}

// DMServiceImpl implements DMService.
type DMServiceImpl struct {
	core
}

// NewDMService constructs DMService.
func NewDMService(r Repos, o Options) *DMServiceImpl {
	return &DMServiceImpl{core: newCore(r, o)}
}

// List scans the workspace's DMs for those the caller takes part in.
func (s *DMServiceImpl) List(ctx context.Context, caller, workspaceID uuid.UUID) ([]model.DMView, error) {
	m, err := s.access.WorkspaceMember(ctx, caller, workspaceID)
	if err != nil || m == nil {
		return nil, err
	}
	all, err := s.repos.DMs.ListForWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	var mine []model.DirectMessage
	var ids []uuid.UUID
	for _, dm := range all {
		if dm.Has(caller) {
			mine = append(mine, dm)
			ids = append(ids, dm.Participants[0], dm.Participants[1])
		}
	}
	if len(mine) == 0 {
		return nil, nil
	}
	users, err := s.repos.Users.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]model.DMView, 0, len(mine))
	for _, dm := range mine {
		v := model.DMView{DirectMessage: dm}
		for _, id := range dm.Participants {
			if u, ok := users[id]; ok {
				v.Users = append(v.Users, u.Public())
			}
		}
		if u, ok := users[dm.Other(caller)]; ok {
			other := u.Public()
			v.OtherParticipant = &other
		}
		out = append(out, v)
	}
	return out, nil
}

// GetOrCreate is idempotent per unordered pair: participants are stored
// sorted and a lost insert race re-reads the winner.
func (s *DMServiceImpl) GetOrCreate(ctx context.Context, caller, participantID, workspaceID uuid.UUID) (uuid.UUID, error) {
	if err := requireCaller(caller); err != nil {
		return uuid.Nil, err
	}
	if participantID == caller {
		return uuid.Nil, fmt.Errorf("cannot create DM with yourself: %w", errs.ErrInvalidState)
	}
	for _, id := range []uuid.UUID{caller, participantID} {
		m, err := s.access.WorkspaceMember(ctx, id, workspaceID)
		if err != nil {
			return uuid.Nil, err
		}
		if m == nil {
			return uuid.Nil, fmt.Errorf("both users must be members of the workspace: %w", errs.ErrForbidden)
		}
	}

	pair := model.SortedPair(caller, participantID)
	if id, ok, err := s.find(ctx, workspaceID, pair); err != nil || ok {
		return id, err
	}

	dm := &model.DirectMessage{ID: newID(), Participants: pair, CreatedBy: caller, WorkspaceID: workspaceID}
	err := s.repos.DMs.Create(ctx, dm)
	if errors.Is(err, errs.ErrAlreadyExists) {
		id, ok, ferr := s.find(ctx, workspaceID, pair)
		if ferr != nil {
			return uuid.Nil, ferr
		}
		if ok {
			return id, nil
		}
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("create dm: %w", err)
	}

	s.publish(ctx,
		event(notify.UserTopic(pair[0]), notify.KindDM, dm.ID),
		event(notify.UserTopic(pair[1]), notify.KindDM, dm.ID),
	)
	return dm.ID, nil
}

func (s *DMServiceImpl) find(ctx context.Context, workspaceID uuid.UUID, pair [2]uuid.UUID) (uuid.UUID, bool, error) {
	all, err := s.repos.DMs.ListForWorkspace(ctx, workspaceID)
	if err != nil {
		return uuid.Nil, false, err
	}
	for _, dm := range all {
		if model.SortedPair(dm.Participants[0], dm.Participants[1]) == pair {
			return dm.ID, true, nil
		}
	}
	return uuid.Nil, false, nil
}
