// Package stream provides typed push streams with explicit subscriptions.
package stream

import (
	"sync"
	"sync/atomic"
)

// Source is the subscribe side of a stream.
type Source[T any] interface {
	Subscribe(fn func(T)) *Subscription
}

type listener[T any] struct {
	id     uint64
	fn     func(T)
	active atomic.Bool
}

// Stream delivers published values to every current subscriber in
// subscription order. Listeners run on the publishing goroutine, outside the
// stream's lock, so they may unsubscribe themselves.
type Stream[T any] struct {
	mu        sync.Mutex
	listeners []*listener[T]
	nextID    uint64

	// buffered streams hold values until the first subscriber arrives.
	buffered bool
	started  bool
	pending  []T
	deliver  sync.Mutex
}

// New creates a stream that drops values published with no subscribers.
func New[T any]() *Stream[T] {
	return &Stream[T]{}
}

// NewBuffered creates a stream that holds values published before its first
// subscriber and replays them to it, in order, before any later value.
// Listeners of a buffered stream must not publish to it.
func NewBuffered[T any]() *Stream[T] {
	return &Stream[T]{buffered: true}
}

// Subscribe registers fn and returns the handle that removes it.
func (s *Stream[T]) Subscribe(fn func(T)) *Subscription {
	if s.buffered {
		s.deliver.Lock()
		defer s.deliver.Unlock()
	}

	s.mu.Lock()
	l := &listener[T]{id: s.nextID, fn: fn}
	l.active.Store(true)
	s.nextID++
	s.listeners = append(s.listeners, l)
	replay := s.pending
	s.pending = nil
	s.started = true
	s.mu.Unlock()

	for _, v := range replay {
		if l.active.Load() {
			fn(v)
		}
	}

	return newSubscription(func() { s.remove(l) })
}

func (s *Stream[T]) remove(l *listener[T]) {
	l.active.Store(false)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.listeners {
		if cur == l {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return
		}
	}
}

// Publish delivers v to every subscriber.
func (s *Stream[T]) Publish(v T) {
	if s.buffered {
		s.deliver.Lock()
		defer s.deliver.Unlock()
	}

	s.mu.Lock()
	if s.buffered && !s.started {
		s.pending = append(s.pending, v)
		s.mu.Unlock()
		return
	}
	listeners := make([]*listener[T], len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		if l.active.Load() {
			l.fn(v)
		}
	}
}

// Len returns the number of current subscribers.
func (s *Stream[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// Subscription is a handle to a single subscription.
type Subscription struct {
	once   sync.Once
	cancel func()
}

func newSubscription(cancel func()) *Subscription {
	return &Subscription{cancel: cancel}
}

// Unsubscribe stops delivery. It is safe to call more than once and on a
// nil subscription.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}

// Set groups subscriptions that are released together.
// The zero value is ready to use.
type Set struct {
	mu   sync.Mutex
	subs []*Subscription
}

// Add adds subscriptions to the set.
func (s *Set) Add(subs ...*Subscription) {
	s.mu.Lock()
	s.subs = append(s.subs, subs...)
	s.mu.Unlock()
}

// Release unsubscribes every subscription in the set and empties it.
func (s *Set) Release() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}

// Len returns the number of subscriptions held.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Value is a stream that remembers its last value.
type Value[T any] struct {
	*Stream[T]
	mu      sync.Mutex
	current T
}

// NewValue creates a value stream holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{Stream: New[T](), current: initial}
}

// Set stores x and publishes it.
func (v *Value[T]) Set(x T) {
	v.mu.Lock()
	v.current = x
	v.mu.Unlock()
	v.Publish(x)
}

// Get returns the last stored value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}
