// Package notify carries invalidation events for live queries. A mutation
// publishes events on the topics it touched; watchers re-run their queries.
package notify

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
)

// Event kinds.
const (
	KindWorkspace = "workspace"
	KindMember    = "member"
	KindInvite    = "invite"
	KindChannel   = "channel"
	KindDM        = "dm"
	KindMessage   = "message"
	KindReaction  = "reaction"
	KindKeys      = "keys"
)

// Event says that something under Topic changed.
type Event struct {
	Topic string    `json:"topic"`
	Kind  string    `json:"kind"`
	ID    string    `json:"id,omitempty"`
	At    time.Time `json:"at"`
}

// Publisher emits events.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// Subscriber delivers events for a set of topics until ctx is done.
// The returned channel is closed when the subscription ends.
type Subscriber interface {
	Subscribe(ctx context.Context, topics ...string) (<-chan Event, error)
}

// Feed is a full change feed.
type Feed interface {
	Publisher
	Subscriber
	Close() error
}

// Topic names.
func WorkspaceTopic(id uuid.UUID) string { return "workspace:" + id.String() }
func ChannelTopic(id uuid.UUID) string   { return "channel:" + id.String() }
func DMTopic(id uuid.UUID) string        { return "dm:" + id.String() }
func UserTopic(id uuid.UUID) string      { return "user:" + id.String() }

// ParseTopic splits a topic into its scope and id.
func ParseTopic(topic string) (scope string, id uuid.UUID, ok bool) {
	for i := 0; i < len(topic); i++ {
		if topic[i] != ':' {
			continue
		}
		id, err := uuid.FromString(topic[i+1:])
		if err != nil {
			return "", uuid.Nil, false
		}
		switch s := topic[:i]; s {
		case "workspace", "channel", "dm", "user":
			return s, id, true
		}
		return "", uuid.Nil, false
	}
	return "", uuid.Nil, false
}
