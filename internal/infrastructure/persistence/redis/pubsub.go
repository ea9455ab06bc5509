package redis

import (
	"context"
	"fmt"

	"github.com/uclouvain/admission-core/internal/infrastructure/messaging"
)

// PubSub adapts the client to messaging.PubSub.
type PubSub struct {
	cache *Cache
}

// NewPubSub creates the adapter.
func NewPubSub(cache *Cache) *PubSub {
	return &PubSub{cache: cache}
}

// Publish implements messaging.PubSub.
func (p *PubSub) Publish(ctx context.Context, channel string, message string) error {
	return p.cache.client.Publish(ctx, channel, message).Err()
}

// Subscribe implements messaging.PubSub. The returned channel is closed
// once ctx is done.
func (p *PubSub) Subscribe(ctx context.Context, channel string) (<-chan messaging.PubSubMessage, error) {
	sub := p.cache.client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	out := make(chan messaging.PubSubMessage)
	go func() {
		defer close(out)
		defer sub.Close()

		in := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- messaging.PubSubMessage{Channel: msg.Channel, Payload: msg.Payload}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
