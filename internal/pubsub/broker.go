package pubsub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const defaultBufferSize = 32

// Broker fans out events to every live subscription. Publish never blocks:
// a subscriber whose buffer is full misses the event and the drop is counted.
type Broker[T any] struct {
	mu         sync.RWMutex
	subs       map[chan Event[T]]struct{}
	closed     bool
	bufferSize int
	dropped    atomic.Uint64
	now        func() time.Time
}

// NewBroker creates a broker with the default per-subscriber buffer.
func NewBroker[T any]() *Broker[T] {
	return NewBrokerWithBuffer[T](defaultBufferSize)
}

// NewBrokerWithBuffer creates a broker with a custom per-subscriber buffer.
func NewBrokerWithBuffer[T any](size int) *Broker[T] {
	if size < 0 {
		size = 0
	}
	return &Broker[T]{
		subs:       make(map[chan Event[T]]struct{}),
		bufferSize: size,
		now:        time.Now,
	}
}

// Subscribe registers a new subscription. The channel is closed when ctx is
// done or the broker is closed, whichever happens first.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan Event[T])
		close(ch)
		return ch
	}

	sub := make(chan Event[T], b.bufferSize)
	b.subs[sub] = struct{}{}

	go func() {
		<-ctx.Done()
		b.unsubscribe(sub)
	}()

	return sub
}

func (b *Broker[T]) unsubscribe(sub chan Event[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	close(sub)
}

// Publish delivers payload to all subscribers.
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	b.PublishCount(eventType, payload)
}

// PublishCount is Publish that reports the number of deliveries.
func (b *Broker[T]) PublishCount(eventType EventType, payload T) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return 0
	}

	event := Event[T]{Type: eventType, Payload: payload, Timestamp: b.now()}
	delivered := 0
	for sub := range b.subs {
		select {
		case sub <- event:
			delivered++
		default:
			b.dropped.Add(1)
		}
	}
	return delivered
}

// Close closes every subscription. Later Subscribe calls get a closed channel.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		close(sub)
	}
	b.subs = nil
}

// SubscriberCount returns the number of live subscriptions.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns how many deliveries were skipped because a buffer was full.
func (b *Broker[T]) Dropped() uint64 {
	return b.dropped.Load()
}
