// Package eventbus is a single-producer-multi-consumer broadcast of the
// domain event taxonomy. Delivery is at-least-once per subscriber, in
// registry commit order within a subscriber. A slow subscriber never
// blocks the publisher: each subscriber owns a bounded queue and the bus
// drops and counts when it is full.
package eventbus

import (
	"sync"
	"sync/atomic"

	"paygate/internal/logger"
	"paygate/internal/types"
)

// DefaultBufferSize is the default per-subscriber queue depth.
const DefaultBufferSize = 1024

// Unsubscribe removes a subscription and closes its channel.
type Unsubscribe func()

type subscriber struct {
	name   string
	ch     chan types.Event
	lagged atomic.Uint64
	closed atomic.Bool
}

// Bus fans out Events to named subscribers without ever blocking Publish.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]*subscriber
	log  logger.Logger
}

// New creates an empty Bus.
func New(log logger.Logger) *Bus {
	return &Bus{
		subs: make(map[string]*subscriber),
		log:  log,
	}
}

// Subscribe registers a named subscriber with the given buffer depth (0
// uses DefaultBufferSize). Subscribing twice under the same name replaces
// the previous subscription and closes its channel.
func (b *Bus) Subscribe(name string, buffer int) (<-chan types.Event, Unsubscribe) {
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}

	sub := &subscriber{
		name: name,
		ch:   make(chan types.Event, buffer),
	}

	b.mu.Lock()
	if old, ok := b.subs[name]; ok {
		old.close()
	}
	b.subs[name] = sub
	b.mu.Unlock()

	return sub.ch, func() { b.remove(name, sub) }
}

func (b *Bus) remove(name string, sub *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if current, ok := b.subs[name]; ok && current == sub {
		delete(b.subs, name)
	}
	sub.close()
}

func (s *subscriber) close() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.ch)
	}
}

// Publish fans event out to every current subscriber. Never blocks: a
// subscriber whose queue is full has the event dropped and its
// subscriber.lagged counter incremented.
func (b *Bus) Publish(event types.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		select {
		case sub.ch <- event:
		default:
			sub.lagged.Add(1)
			b.log.Warn("subscriber lagged, dropping event",
				logger.String("subscriber", sub.name),
				logger.String("event_type", string(event.Type)),
				logger.Int64("lagged_total", int64(sub.lagged.Load())),
			)
		}
	}
}

// Lagged returns the current drop counter for a named subscriber, or 0 if
// the subscriber is unknown.
func (b *Bus) Lagged(name string) uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if sub, ok := b.subs[name]; ok {
		return sub.lagged.Load()
	}
	return 0
}

// Close shuts down every current subscriber channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for name, sub := range b.subs {
		sub.close()
		delete(b.subs, name)
	}
}
