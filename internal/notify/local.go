package notify

import (
	"context"
	"sync"
)

// Local is an in-process feed used when no broker is configured.
// Slow subscribers drop events rather than block publishers.
type Local struct {
	mu     sync.Mutex
	subs   map[*localSub]struct{}
	closed bool
}

type localSub struct {
	topics map[string]struct{}
	ch     chan Event
}

// NewLocal constructs an in-process feed.
func NewLocal() *Local { return &Local{subs: make(map[*localSub]struct{})} }

// Publish implements Publisher.
func (l *Local) Publish(_ context.Context, events ...Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range events {
		for s := range l.subs {
			if _, ok := s.topics[e.Topic]; !ok {
				continue
			}
			select {
			case s.ch <- e:
			default:
			}
		}
	}
	return nil
}

// Subscribe implements Subscriber.
func (l *Local) Subscribe(ctx context.Context, topics ...string) (<-chan Event, error) {
	s := &localSub{topics: make(map[string]struct{}, len(topics)), ch: make(chan Event, 64)}
	for _, t := range topics {
		s.topics[t] = struct{}{}
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		close(s.ch)
		return s.ch, nil
	}
	l.subs[s] = struct{}{}
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.remove(s)
	}()
	return s.ch, nil
}

func (l *Local) remove(s *localSub) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.subs[s]; ok {
		delete(l.subs, s)
		close(s.ch)
	}
}

// Close ends every subscription.
func (l *Local) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	for s := range l.subs {
		delete(l.subs, s)
		close(s.ch)
	}
	return nil
}
