// Package service contains Echo's access-controlled operations. Every call
// receives the caller explicitly; uuid.Nil is the anonymous caller. Queries
// degrade to empty results when the caller may not see the data, mutations
// fail with errs.ErrUnauthenticated or errs.ErrForbidden.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/ferdousbhai/echo/internal/errs"
	"github.com/ferdousbhai/echo/internal/notify"
	"github.com/ferdousbhai/echo/internal/repository"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// Repos bundles the repositories the chat services read and write.
type Repos struct {
	Users      repository.UserRepository
	Workspaces repository.WorkspaceRepository
	Invites    repository.InviteRepository
	Channels   repository.ChannelRepository
	DMs        repository.DMRepository
	Messages   repository.MessageRepository
	Reactions  repository.ReactionRepository
}

// Options carries ambient collaborators. Zero values are replaced with no-op defaults.
type Options struct {
	Log  *zap.Logger
	Feed notify.Publisher
	Now  func() time.Time
}

// core is embedded by every chat service.
type core struct {
	repos  Repos
	access *Access
	log    *zap.Logger
	feed   notify.Publisher
	now    func() time.Time
}

func newCore(r Repos, o Options) core {
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return core{repos: r, access: NewAccess(r), log: o.Log, feed: o.Feed, now: o.Now}
}

// publish emits invalidation events. Failures are logged and swallowed:
// the mutation has already been committed.
func (c *core) publish(ctx context.Context, events ...notify.Event) {
	if c.feed == nil || len(events) == 0 {
		return
	}
	at := c.now()
	for i := range events {
		events[i].At = at
	}
	if err := c.feed.Publish(ctx, events...); err != nil {
		c.log.Warn("publish change events", zap.Error(err), zap.Int("events", len(events)))
	}
}

func event(topic, kind string, id uuid.UUID) notify.Event {
	return notify.Event{Topic: topic, Kind: kind, ID: id.String()}
}

func newID() uuid.UUID { return uuid.Must(uuid.NewV4()) }

func isNotFound(err error) bool { return errors.Is(err, errs.ErrNotFound) }

// requireCaller rejects anonymous callers of mutations.
func requireCaller(caller uuid.UUID) error {
	if caller == uuid.Nil {
		return errs.ErrUnauthenticated
	}
	return nil
}
