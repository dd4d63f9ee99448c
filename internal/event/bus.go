package event

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc/panics"

	"github.com/Iron-Ham/stagehand/internal/logging"
)

// Wildcard is the pseudo event type used by SubscribeAll.
const Wildcard = "*"

// Handler is a function that handles an event.
type Handler func(Event)

// subscription represents a registered event handler.
type subscription struct {
	id        string
	eventType string
	handler   Handler
}

// Bus is a synchronous pub-sub event bus.
// It allows components to communicate without direct dependencies.
type Bus struct {
	mu            sync.RWMutex
	subscriptions map[string][]subscription // eventType -> subscriptions
	nextID        atomic.Uint64
	logger        *logging.Logger
}

// NewBus creates a new event bus. A nil logger discards handler panics.
func NewBus(logger *logging.Logger) *Bus {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Bus{
		subscriptions: make(map[string][]subscription),
		logger:        logger.WithComponent("event-bus"),
	}
}

// Subscribe registers a handler for a specific event type.
// Returns a subscription ID that can be used to unsubscribe.
// Subscribing the same handler twice yields two IDs and two invocations.
func (b *Bus) Subscribe(eventType string, handler Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.generateID()
	b.subscriptions[eventType] = append(b.subscriptions[eventType], subscription{
		id:        id,
		eventType: eventType,
		handler:   handler,
	})
	return id
}

// SubscribeAll registers a handler for all event types.
// Wildcard handlers run after the handlers subscribed to the exact type.
func (b *Bus) SubscribeAll(handler Handler) string {
	return b.Subscribe(Wildcard, handler)
}

// On subscribes a typed handler to events of type T. The dispatch key is the
// tag returned by the zero value of T, so T must be a value event type.
func On[T Event](b *Bus, fn func(T)) string {
	var zero T
	return b.Subscribe(zero.EventType(), func(e Event) {
		if typed, ok := e.(T); ok {
			fn(typed)
		}
	})
}

// Unsubscribe removes a subscription by ID.
// Returns true if the subscription was found and removed; unknown IDs are a no-op.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subscriptions {
		for i, sub := range subs {
			if sub.id != id {
				continue
			}
			remaining := append(subs[:i], subs[i+1:]...)
			if len(remaining) == 0 {
				delete(b.subscriptions, eventType)
			} else {
				b.subscriptions[eventType] = remaining
			}
			return true
		}
	}
	return false
}

// Publish dispatches an event to all registered handlers on the caller's
// goroutine. Handlers subscribed to the exact event type are called first,
// followed by wildcard handlers, each group in registration order. The handler
// set is snapshotted at the start of the call, so handlers that subscribe or
// unsubscribe during dispatch affect only later publishes. A panicking handler
// is logged and delivery continues.
func (b *Bus) Publish(event Event) {
	if event == nil {
		return
	}
	eventType := event.EventType()

	b.mu.RLock()
	specificSubs := make([]subscription, len(b.subscriptions[eventType]))
	copy(specificSubs, b.subscriptions[eventType])

	wildcardSubs := make([]subscription, len(b.subscriptions[Wildcard]))
	copy(wildcardSubs, b.subscriptions[Wildcard])
	b.mu.RUnlock()

	for _, sub := range specificSubs {
		b.safeCall(sub, event)
	}
	for _, sub := range wildcardSubs {
		b.safeCall(sub, event)
	}
}

// safeCall invokes a handler and recovers from any panic.
func (b *Bus) safeCall(sub subscription, event Event) {
	var pc panics.Catcher
	pc.Try(func() { sub.handler(event) })
	if r := pc.Recovered(); r != nil {
		b.logger.Error("event handler panicked",
			"event_type", event.EventType(),
			"subscription", sub.id,
			"panic", fmt.Sprint(r.Value),
			"stack", string(r.Stack),
		)
	}
}

// generateID creates a unique subscription ID.
func (b *Bus) generateID() string {
	return fmt.Sprintf("sub-%d", b.nextID.Add(1))
}

// Clear removes all subscriptions.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions = make(map[string][]subscription)
}

// SubscriptionCount returns the total number of active subscriptions.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, subs := range b.subscriptions {
		count += len(subs)
	}
	return count
}

// HandlerCount returns the number of handlers subscribed to exactly eventType.
func (b *Bus) HandlerCount(eventType string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions[eventType])
}
