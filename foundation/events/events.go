// Package events fans pool activity out to subscribers such as websocket
// clients. A slow subscriber loses messages instead of stalling the pool.
package events

import (
	"fmt"
	"sync"
)

// subscriberBuffer is the number of messages a subscriber can fall behind
// before messages are dropped for it.
const subscriberBuffer = 100

// Events maintains the set of subscribers keyed by a unique id.
type Events struct {
	subs map[string]chan string
	drop map[string]uint64
	mu   sync.Mutex
}

// New constructs an empty set of subscribers.
func New() *Events {
	return &Events{
		subs: make(map[string]chan string),
		drop: make(map[string]uint64),
	}
}

// Subscribe registers the id and returns the channel the events are
// delivered on. Subscribing twice with the same id returns the same channel.
func (evt *Events) Subscribe(id string) <-chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if ch, exists := evt.subs[id]; exists {
		return ch
	}

	ch := make(chan string, subscriberBuffer)
	evt.subs[id] = ch

	return ch
}

// Unsubscribe closes the channel for the id and forgets it.
func (evt *Events) Unsubscribe(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.subs[id]
	if !exists {
		return fmt.Errorf("subscriber %q does not exist", id)
	}

	delete(evt.subs, id)
	delete(evt.drop, id)
	close(ch)

	return nil
}

// Publish delivers the message to every subscriber that has room for it.
func (evt *Events) Publish(msg string) {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.subs {
		select {
		case ch <- msg:
		default:
			evt.drop[id]++
		}
	}
}

// Publishf formats the message and publishes it. Its signature matches the
// event handler the node state accepts.
func (evt *Events) Publishf(format string, args ...any) {
	evt.Publish(fmt.Sprintf(format, args...))
}

// Dropped returns the number of messages the subscriber has missed.
func (evt *Events) Dropped(id string) uint64 {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	return evt.drop[id]
}

// Subscribers returns the number of registered subscribers.
func (evt *Events) Subscribers() int {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	return len(evt.subs)
}

// Shutdown closes and removes every subscriber.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.subs {
		delete(evt.subs, id)
		delete(evt.drop, id)
		close(ch)
	}
}
