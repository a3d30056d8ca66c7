package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ferdousbhai/echo/internal/errs"
	"github.com/ferdousbhai/echo/internal/model"
	"github.com/ferdousbhai/echo/internal/notify"
	"github.com/gofrs/uuid/v5"
)

// ReactionService toggles and aggregates emoji reactions.
type ReactionService interface {
	// Toggle adds the caller's emoji, or removes it when present. It reports whether it removed.
	Toggle(ctx context.Context, caller, messageID uuid.UUID, emoji string) (removed bool, err error)
	// Remove deletes one of the caller's reactions.
	Remove(ctx context.Context, caller, reactionID uuid.UUID) error
	// ListByMessage returns per-emoji tallies from the caller's point of view.
	ListByMessage(ctx context.Context, caller, messageID uuid.UUID) (map[string]model.ReactionSummary, error)
}

// ReactionServiceImpl implements ReactionService.
type ReactionServiceImpl struct {
	core
}

// NewReactionService constructs ReactionService.
func NewReactionService(r Repos, o Options) *ReactionServiceImpl {
	return &ReactionServiceImpl{core: newCore(r, o)}
}

// Toggle flips the (message, emoji, caller) reaction.
func (s *ReactionServiceImpl) Toggle(ctx context.Context, caller, messageID uuid.UUID, emoji string) (bool, error) {
	if err := requireCaller(caller); err != nil {
		return false, err
	}
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return false, fmt.Errorf("emoji: %w", errs.ErrInvalidArgument)
	}
	msg, err := s.repos.Messages.Get(ctx, messageID)
	if err != nil {
		return false, fmt.Errorf("message: %w", err)
	}
	ok, err := s.access.CanReadMessage(ctx, caller, msg)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("no access to message: %w", errs.ErrForbidden)
	}

	removed := false
	existing, err := s.repos.Reactions.Find(ctx, messageID, emoji, caller)
	switch {
	case err == nil:
		if err := s.repos.Reactions.Delete(ctx, existing.ID); err != nil && !isNotFound(err) {
			return false, fmt.Errorf("remove reaction: %w", err)
		}
		removed = true
	case isNotFound(err):
		r := &model.Reaction{ID: newID(), MessageID: messageID, Emoji: emoji, UserID: caller}
		// a concurrent toggle may have inserted the same triple first
		if err := s.repos.Reactions.Create(ctx, r); err != nil && !errors.Is(err, errs.ErrAlreadyExists) {
			return false, fmt.Errorf("add reaction: %w", err)
		}
	default:
		return false, err
	}

	s.publishReaction(ctx, msg)
	return removed, nil
}

// Remove deletes a reaction the caller owns.
func (s *ReactionServiceImpl) Remove(ctx context.Context, caller, reactionID uuid.UUID) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	r, err := s.repos.Reactions.Get(ctx, reactionID)
	if err != nil {
		return fmt.Errorf("reaction: %w", err)
	}
	if r.UserID != caller {
		return fmt.Errorf("not the reaction's owner: %w", errs.ErrForbidden)
	}
	if err := s.repos.Reactions.Delete(ctx, reactionID); err != nil {
		return fmt.Errorf("remove reaction: %w", err)
	}
	if msg, err := s.repos.Messages.Get(ctx, r.MessageID); err == nil {
		s.publishReaction(ctx, msg)
	}
	return nil
}

// ListByMessage is empty when the message is gone or hidden from the caller.
func (s *ReactionServiceImpl) ListByMessage(
	ctx context.Context, caller, messageID uuid.UUID,
) (map[string]model.ReactionSummary, error) {
	empty := map[string]model.ReactionSummary{}
	msg, err := s.repos.Messages.Get(ctx, messageID)
	if isNotFound(err) {
		return empty, nil
	}
	if err != nil {
		return nil, err
	}
	ok, err := s.access.CanReadMessage(ctx, caller, msg)
	if err != nil {
		return nil, err
	}
	if !ok {
		return empty, nil
	}
	rs, err := s.repos.Reactions.ListByMessages(ctx, []uuid.UUID{messageID})
	if err != nil {
		return nil, err
	}
	return model.AggregateReactions(rs, caller), nil
}

func (s *ReactionServiceImpl) publishReaction(ctx context.Context, msg *model.Message) {
	conv, ok, err := s.access.ConversationOf(ctx, msg)
	if err != nil || !ok {
		return
	}
	s.publish(ctx, event(conversationTopic(conv), notify.KindReaction, msg.ID))
}
