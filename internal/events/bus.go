// Package events provides a small in-process publish/subscribe bus. It
// replaces ad-hoc callback registries: components that need to react to
// session or notification changes subscribe to an injected *Bus instead of
// appending to shared module state.
package events

import "sync"

type Kind int

const (
	// SessionExpired is published when a refresh attempt failed
	// irrecoverably and the stored session was cleared.
	SessionExpired Kind = iota
	// SessionRefreshed is published after a successful silent token refresh.
	SessionRefreshed
	// NotificationsChanged is published after an operation that may have
	// altered the unread notification count.
	NotificationsChanged
)

type Event struct {
	Kind Kind
}

// Bus dispatches events synchronously to all current subscribers.
// The zero value is not usable; create one with NewBus.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]func(Event)
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns a function that removes the
// subscription. fn is invoked on the publisher's goroutine.
func (b *Bus) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(event)
	}
}
