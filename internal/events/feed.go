package events

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// KeyHandler receives the new value written to a key path.
type KeyHandler func(value any, keyPath string)

// Feed dispatches values to subscribers registered for an exact key path,
// in subscription order.
type Feed struct {
	logger *slog.Logger

	mu   sync.RWMutex
	subs map[string][]keySubscriber
}

type keySubscriber struct {
	id string
	fn KeyHandler
}

// NewFeed creates a new key-path feed.
func NewFeed(logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{
		logger: logger,
		subs:   make(map[string][]keySubscriber),
	}
}

// Subscribe registers fn for writes to keyPath. The returned function is idempotent.
func (f *Feed) Subscribe(keyPath string, fn KeyHandler) func() {
	id := uuid.NewString()

	f.mu.Lock()
	f.subs[keyPath] = append(f.subs[keyPath], keySubscriber{id: id, fn: fn})
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { f.remove(keyPath, id) })
	}
}

// Publish delivers value to the subscribers of keyPath.
func (f *Feed) Publish(keyPath string, value any) {
	f.mu.RLock()
	subs := make([]keySubscriber, len(f.subs[keyPath]))
	copy(subs, f.subs[keyPath])
	f.mu.RUnlock()

	for _, s := range subs {
		deliver(f.logger, keyPath, func() { s.fn(value, keyPath) })
	}
}

// Count returns the number of subscribers for keyPath.
func (f *Feed) Count(keyPath string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs[keyPath])
}

func (f *Feed) remove(keyPath, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	subs := f.subs[keyPath]
	for i, s := range subs {
		if s.id == id {
			subs = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(subs) == 0 {
		delete(f.subs, keyPath)
		return
	}
	f.subs[keyPath] = subs
}
