package dispatch

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/agent-console/agentstream/internal/event"
	"github.com/agent-console/agentstream/internal/metrics"
)

// Subscriber receives every published event. Subscribers run on the
// publisher's goroutine; a slow subscriber slows the pipeline.
type Subscriber func(event.Event)

type subscription struct {
	id string
	fn Subscriber
}

// Dispatcher fans events out to subscribers synchronously, in registration
// order, on the publishing goroutine. That keeps delivery in the exact order
// of the triggering inputs, which is the contract consumers rely on.
// Implements event.Sink.
type Dispatcher struct {
	mu   sync.RWMutex
	subs []subscription
}

func New() *Dispatcher {
	return &Dispatcher{}
}

// Subscribe registers fn and returns its subscription id.
func (d *Dispatcher) Subscribe(fn Subscriber) string {
	id := uuid.New().String()
	d.mu.Lock()
	d.subs = append(d.subs, subscription{id: id, fn: fn})
	d.mu.Unlock()
	return id
}

// Unsubscribe removes a subscription. No-op on unknown ids. A removal during
// an in-flight delivery takes effect on the next publish.
func (d *Dispatcher) Unsubscribe(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, s := range d.subs {
		if s.id == id {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers ev to every subscriber in registration order. A panic in
// one subscriber is recovered so the rest still receive the event.
func (d *Dispatcher) Publish(ev event.Event) {
	d.mu.RLock()
	subs := make([]subscription, len(d.subs))
	copy(subs, d.subs)
	d.mu.RUnlock()

	metrics.IncEvent(string(ev.Type))

	for _, s := range subs {
		d.deliver(s, ev)
	}
}

// Close drops all subscriptions.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.subs = nil
	d.mu.Unlock()
}

// SubscriberCount reports the current number of subscriptions.
func (d *Dispatcher) SubscriberCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subs)
}

func (d *Dispatcher) deliver(s subscription, ev event.Event) {
	defer func() {
		if r := recover(); r != nil {
			metrics.IncSubscriberPanic()
			log.Printf("[dispatch] subscriber %s panicked on %s: %v", s.id, ev.Type, r)
		}
	}()
	s.fn(ev)
}
