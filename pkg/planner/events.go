package planner

import (
	"sync"
	"time"
)

// EventType discriminates plan lifecycle events
type EventType string

const (
	EventPlanCreated   EventType = "planCreated"
	EventPlanApproved  EventType = "planApproved"
	EventPlanRejected  EventType = "planRejected"
	EventPlanStarted   EventType = "planStarted"
	EventPlanCompleted EventType = "planCompleted"
	EventPlanFailed    EventType = "planFailed"
	EventPlanDeleted   EventType = "planDeleted"
	EventStepApproved  EventType = "stepApproved"
	EventStepRejected  EventType = "stepRejected"
	EventStepCompleted EventType = "stepCompleted"
	EventStepFailed    EventType = "stepFailed"
)

// Event carries a lifecycle notification with the relevant plan/step payload
type Event struct {
	Type      EventType `json:"type"`
	Plan      *Plan     `json:"plan,omitempty"`
	Step      *Step     `json:"step,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EventHandler is a function that handles plan lifecycle events
type EventHandler func(Event)

// Emitter broadcasts plan lifecycle events to subscribers. Delivery is
// synchronous and in registration order.
type Emitter struct {
	mu       sync.RWMutex
	handlers map[uint64]EventHandler
	order    []uint64
	nextID   uint64
}

// NewEmitter creates an event emitter with no subscribers
func NewEmitter() *Emitter {
	return &Emitter{
		handlers: make(map[uint64]EventHandler),
	}
}

// Subscribe registers a handler and returns its unsubscribe function.
// Unsubscription removes exactly the registered handler, even when the same
// function value is registered more than once.
func (e *Emitter) Subscribe(handler EventHandler) func() {
	e.mu.Lock()
	e.nextID++
	subID := e.nextID
	e.handlers[subID] = handler
	e.order = append(e.order, subID)
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if _, ok := e.handlers[subID]; !ok {
			return
		}
		delete(e.handlers, subID)
		for i, id := range e.order {
			if id == subID {
				e.order = append(e.order[:i], e.order[i+1:]...)
				break
			}
		}
	}
}

// Emit delivers an event to every subscriber in registration order
func (e *Emitter) Emit(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}

	e.mu.RLock()
	handlers := make([]EventHandler, 0, len(e.order))
	for _, id := range e.order {
		if h, ok := e.handlers[id]; ok {
			handlers = append(handlers, h)
		}
	}
	e.mu.RUnlock()

	for _, handler := range handlers {
		handler(evt)
	}
}

// SubscriberCount returns the number of active subscribers
func (e *Emitter) SubscriberCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.handlers)
}
