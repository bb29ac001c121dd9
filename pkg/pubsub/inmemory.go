package pubsub

import (
	"context"
	"errors"
	"sync"
)

// InMemoryPubSub delivers messages synchronously to every subscriber in
// subscription order. It is the default event bus when no external transport
// is wired, and the bus used by tests.
type InMemoryPubSub[T any] struct {
	subscribers []Subscriber[T]
	mu          sync.RWMutex
}

func NewInMemoryPubSub[T any]() *InMemoryPubSub[T] {
	return &InMemoryPubSub[T]{}
}

func (p *InMemoryPubSub[T]) Publish(ctx context.Context, message T) error {
	p.mu.RLock()
	subscribers := p.subscribers
	p.mu.RUnlock()

	var errs error
	for _, subscriber := range subscribers {
		errs = errors.Join(errs, subscriber.Handle(ctx, message))
	}
	return errs
}

func (p *InMemoryPubSub[T]) Subscribe(ctx context.Context, subscriber Subscriber[T]) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, subscriber)
	return nil
}

func (p *InMemoryPubSub[T]) Close(ctx context.Context) error {
	return nil
}

// InMemorySubscriber records every message it handles, for tests.
type InMemorySubscriber[T any] struct {
	events []T
	mu     sync.Mutex
}

func NewInMemorySubscriber[T any]() *InMemorySubscriber[T] {
	return &InMemorySubscriber[T]{
		events: make([]T, 0),
	}
}

func (s *InMemorySubscriber[T]) Handle(ctx context.Context, message T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, message)
	return nil
}

// Events returns the recorded messages and resets the subscriber.
func (s *InMemorySubscriber[T]) Events() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.events
	s.events = make([]T, 0)
	return res
}

// compile-time interface assertions
var _ PubSub[string] = (*InMemoryPubSub[string])(nil)
var _ Subscriber[string] = (*InMemorySubscriber[string])(nil)
