package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "echo:"

// Redis is a change feed over Redis Pub/Sub.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to redisURL and verifies the connection.
func NewRedis(ctx context.Context, redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &Redis{client: client}, nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client) *Redis { return &Redis{client: client} }

// Publish implements Publisher. Events are sent in one pipeline.
func (r *Redis) Publish(ctx context.Context, events ...Event) error {
	if len(events) == 0 {
		return nil
	}
	pipe := r.client.Pipeline()
	for _, e := range events {
		b, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		pipe.Publish(ctx, channelPrefix+e.Topic, b)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Subscribe implements Subscriber. It returns after Redis confirmed the
// subscription, so events published afterwards are delivered.
func (r *Redis) Subscribe(ctx context.Context, topics ...string) (<-chan Event, error) {
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = channelPrefix + t
	}
	ps := r.client.Subscribe(ctx, names...)
	early, err := awaitSubscribed(ctx, ps, len(names))
	if err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan Event, 64)
	for _, msg := range early {
		if e, ok := decode(msg); ok && len(out) < cap(out) {
			out <- e
		}
	}
	go func() {
		defer close(out)
		defer ps.Close()
		in := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				e, ok := decode(msg)
				if !ok {
					continue
				}
				select {
				case out <- e:
				default:
				}
			}
		}
	}()
	return out, nil
}

type receiver interface {
	Receive(ctx context.Context) (interface{}, error)
}

// awaitSubscribed reads until n subscribe confirmations arrived. Messages
// delivered in between are returned in order.
func awaitSubscribed(ctx context.Context, ps receiver, n int) ([]*redis.Message, error) {
	var early []*redis.Message
	for n > 0 {
		v, err := ps.Receive(ctx)
		if err != nil {
			return nil, err
		}
		switch v := v.(type) {
		case *redis.Subscription:
			if v.Kind == "subscribe" {
				n--
			}
		case *redis.Message:
			early = append(early, v)
		}
	}
	return early, nil
}

func decode(msg *redis.Message) (Event, bool) {
	var e Event
	if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
		return Event{}, false
	}
	if e.Topic == "" {
		e.Topic = strings.TrimPrefix(msg.Channel, channelPrefix)
	}
	return e, true
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// Close closes the client.
func (r *Redis) Close() error { return r.client.Close() }
