// Package notifier fans console updates out to SSE clients.
package notifier

import (
	"sync"

	"github.com/leapstack-labs/portugo/internal/orchestrator"
	"github.com/leapstack-labs/portugo/internal/stream"
)

// Notifier pings every listener when the console changes. A ping carries no
// data; listeners read the current state themselves, so pings may coalesce.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan struct{}]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan struct{}]struct{}),
	}
}

// Subscribe returns a channel that receives pings.
// The caller must call Unsubscribe when done.
func (n *Notifier) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan struct{}) {
	n.mu.Lock()
	_, ok := n.listeners[ch]
	delete(n.listeners, ch)
	n.mu.Unlock()
	if ok {
		close(ch)
	}
}

// Len returns the number of listeners.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

// Broadcast pings every listener without blocking. A listener whose
// channel is full already has a ping pending.
func (n *Notifier) Broadcast() {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Track broadcasts for every value src publishes.
func Track[T any](n *Notifier, src stream.Source[T]) *stream.Subscription {
	return src.Subscribe(func(T) { n.Broadcast() })
}

// Follow tracks every public stream of o. Releasing the returned set stops
// tracking.
func (n *Notifier) Follow(o *orchestrator.Orchestrator) *stream.Set {
	subs := &stream.Set{}
	subs.Add(
		Track(n, o.Output()),
		Track(n, o.PendingInput()),
		Track(n, o.Running()),
		Track(n, o.Events()),
	)
	return subs
}
