// Package changes describes content mutations and fans them out to the
// callbacks the host wires up.
package changes

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/pagecraft/core/internal/pkg/redis"
)

// Channel is the Redis pub/sub channel changes are published on.
const Channel = "pagecraft:changes"

type Kind string

const (
	KindSection Kind = "section"
	KindBlock   Kind = "block"
	KindMenu    Kind = "menu"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Change is one persisted mutation.
type Change struct {
	Kind           Kind   `json:"kind"`
	Action         Action `json:"action"`
	OrganizationID string `json:"organizationId"`
	ID             string `json:"id"`
	Slug           string `json:"slug,omitempty"`
}

// Func receives changes after they were persisted.
type Func func(ctx context.Context, ch Change)

// Notify calls fn when it is set.
func (fn Func) Notify(ctx context.Context, ch Change) {
	if fn != nil {
		fn(ctx, ch)
	}
}

// Fanout calls every non-nil fn in order.
func Fanout(fns ...Func) Func {
	return func(ctx context.Context, ch Change) {
		for _, fn := range fns {
			fn.Notify(ctx, ch)
		}
	}
}

// RedisPublisher publishes each change as JSON on Channel.
func RedisPublisher(client *redis.Client, log *zap.Logger) Func {
	return func(ctx context.Context, ch Change) {
		raw, err := json.Marshal(ch)
		if err != nil {
			return
		}
		if err := client.Publish(ctx, Channel, raw); err != nil {
			log.Warn("publish change failed", zap.String("kind", string(ch.Kind)), zap.String("id", ch.ID), zap.Error(err))
		}
	}
}

// Subscribe calls fn for every change published by any instance until ctx
// is done.
func Subscribe(ctx context.Context, client *redis.Client, log *zap.Logger, fn Func) {
	sub := client.Subscribe(ctx, Channel)
	defer sub.Close()
	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var ch Change
			if err := json.Unmarshal([]byte(msg.Payload), &ch); err != nil {
				log.Warn("malformed change message", zap.Error(err))
				continue
			}
			fn.Notify(ctx, ch)
		}
	}
}
