// Package eventbus provides a small in-process publish/subscribe bus used to
// decouple the engine from observers such as the audit log.
package eventbus

import "sync"

// subBuffer bounds how far a subscriber may lag before it starts losing
// events.
const subBuffer = 16

// Bus fans values of one event type out to its subscribers. Delivery is
// best-effort: a subscriber that stops draining loses events rather than
// blocking publishers.
type Bus[T any] struct {
	mu     sync.Mutex
	subs   map[<-chan T]chan T
	closed bool
}

// New creates an empty bus for events of type T.
func New[T any]() *Bus[T] {
	return &Bus[T]{subs: make(map[<-chan T]chan T)}
}

func (b *Bus[T]) Publish(ev T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (b *Bus[T]) Subscribe() <-chan T {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan T, subBuffer)
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = ch
	return ch
}

func (b *Bus[T]) Unsubscribe(sub <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(ch)
	}
}

// Close closes all subscriber channels. Publishing after Close is a no-op.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
