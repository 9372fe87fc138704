package pubsub

import (
	"context"
	"sync"
)

// PubSub fans values out to every subscriber of a topic. Publish blocks
// until each subscriber has received the value.
type PubSub[T any] struct {
	mu   sync.Mutex
	subs map[string][]chan T
}

func NewPubSub[T any]() *PubSub[T] {
	return &PubSub[T]{
		subs: make(map[string][]chan T),
	}
}

func (ps *PubSub[T]) Subscribe(topic string) <-chan T {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ch := make(chan T)
	ps.subs[topic] = append(ps.subs[topic], ch)
	return ch
}

func (ps *PubSub[T]) Publish(topic string, data T) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	for _, ch := range ps.subs[topic] {
		ch <- data
	}
}

// PublishCtx is Publish with a cancellation escape: delivery to the
// remaining subscribers is abandoned once the context is done. Use it when
// subscribers stop listening on the same context as the publisher.
func (ps *PubSub[T]) PublishCtx(ctx context.Context, topic string, data T) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	for _, ch := range ps.subs[topic] {
		select {
		case ch <- data:
		case <-ctx.Done():
			return
		}
	}
}
