// Package events provides small in-process publish/subscribe primitives.
//
// Delivery is synchronous and in subscription order. A subscriber that
// panics is recovered and logged; the remaining subscribers still run.
package events

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Topic is a typed multi-subscriber event channel.
type Topic[T any] struct {
	name   string
	logger *slog.Logger

	mu   sync.RWMutex
	subs []subscriber[T]
}

type subscriber[T any] struct {
	id string
	fn func(T)
}

// NewTopic creates a new topic. A nil logger falls back to slog.Default().
func NewTopic[T any](name string, logger *slog.Logger) *Topic[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Topic[T]{name: name, logger: logger}
}

// Name returns the topic name.
func (t *Topic[T]) Name() string {
	return t.name
}

// Subscribe registers fn and returns a function that removes it. Calling the
// returned function more than once is a no-op.
func (t *Topic[T]) Subscribe(fn func(T)) func() {
	id := uuid.NewString()

	t.mu.Lock()
	t.subs = append(t.subs, subscriber[T]{id: id, fn: fn})
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { t.remove(id) })
	}
}

// Emit delivers value to every current subscriber.
func (t *Topic[T]) Emit(value T) {
	t.mu.RLock()
	subs := make([]subscriber[T], len(t.subs))
	copy(subs, t.subs)
	t.mu.RUnlock()

	for _, s := range subs {
		deliver(t.logger, t.name, func() { s.fn(value) })
	}
}

// Len returns the number of subscribers.
func (t *Topic[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}

func (t *Topic[T]) remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.subs {
		if s.id == id {
			t.subs = append(t.subs[:i], t.subs[i+1:]...)
			return
		}
	}
}

// deliver runs fn inside its own failure boundary.
func deliver(logger *slog.Logger, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Event subscriber panicked", "event", name, "panic", fmt.Sprint(r))
		}
	}()
	fn()
}
