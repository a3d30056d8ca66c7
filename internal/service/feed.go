package service

import (
	"context"
	"fmt"

	"github.com/ferdousbhai/echo/internal/errs"
	"github.com/ferdousbhai/echo/internal/notify"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// FeedService streams change events to callers.
type FeedService interface {
	// Watch subscribes to the topics the caller may read. Unreadable topics are
	// dropped; ErrForbidden is returned when none remain.
	Watch(ctx context.Context, caller uuid.UUID, topics []string) (<-chan notify.Event, []string, error)
}

// FeedServiceImpl implements FeedService.
type FeedServiceImpl struct {
	core
	sub notify.Subscriber
}

// NewFeedService constructs FeedService over sub.
func NewFeedService(r Repos, sub notify.Subscriber, o Options) *FeedServiceImpl {
	return &FeedServiceImpl{core: newCore(r, o), sub: sub}
}

// Watch returns the event channel and the topics actually subscribed.
func (s *FeedServiceImpl) Watch(ctx context.Context, caller uuid.UUID, topics []string) (<-chan notify.Event, []string, error) {
	if err := requireCaller(caller); err != nil {
		return nil, nil, err
	}
	allowed := make([]string, 0, len(topics))
	seen := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		ok, err := s.access.CanWatch(ctx, caller, t)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			allowed = append(allowed, t)
		}
	}
	if len(allowed) == 0 {
		return nil, nil, fmt.Errorf("no watchable topics: %w", errs.ErrForbidden)
	}
	if s.sub == nil {
		return nil, nil, fmt.Errorf("change feed not configured: %w", errs.ErrInvalidState)
	}
	ch, err := s.sub.Subscribe(ctx, allowed...)
	if err != nil {
		return nil, nil, fmt.Errorf("subscribe: %w", err)
	}
	s.log.Debug("watch", zap.String("user", caller.String()), zap.Strings("topics", allowed))
	return ch, allowed, nil
}
