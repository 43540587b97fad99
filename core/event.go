package core

import (
	"sync"
	"time"
)

// EventType classifies events emitted by the protocol and the engine.
type EventType string

const (
	// EventMessageSent fires after a message is enqueued for an agent.
	EventMessageSent EventType = "messageSent"
	// EventMessageBroadcast fires once per broadcast, not once per agent.
	EventMessageBroadcast EventType = "messageBroadcast"
	// EventMessageReceived fires when a message is delivered to an agent
	// registered without a handler; the event is how such messages are
	// consumed. Messages consumed by a handler are dropped without it.
	EventMessageReceived EventType = "messageReceived"
	// EventMessageFailed fires exactly once when a message exhausts its
	// retry budget.
	EventMessageFailed EventType = "messageFailed"
	// EventTaskStatusChanged fires on every task status transition.
	EventTaskStatusChanged EventType = "taskStatusChanged"
	// EventTaskComplete carries the full ExecutionResult of a finished
	// Execute call.
	EventTaskComplete EventType = "taskComplete"
)

// Event is the notification payload delivered to subscribers. Fields beyond
// Type and Timestamp are populated per event type and should be treated as
// read-only.
type Event struct {
	Type      EventType        `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	AgentID   string           `json:"agent_id,omitempty"`
	TaskID    string           `json:"task_id,omitempty"`
	Status    TaskStatus       `json:"status,omitempty"`
	Message   *Message         `json:"message,omitempty"`
	Result    *ExecutionResult `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// NewEvent creates an event of the given type stamped with the current time.
func NewEvent(typ EventType) Event {
	return Event{Type: typ, Timestamp: time.Now().UTC()}
}

// Emitter is an explicit observer registry. Components emit events after
// mutating their state and before returning to the caller, so a subscriber
// observing an event can rely on the mutation being visible.
//
// Callbacks run synchronously on the emitting goroutine; subscribers that
// need to do slow work should hand the event off to their own goroutine.
type Emitter struct {
	mu     sync.RWMutex
	nextID int
	byType map[EventType]map[int]func(Event)
	all    map[int]func(Event)
}

// NewEmitter constructs an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{
		byType: make(map[EventType]map[int]func(Event)),
		all:    make(map[int]func(Event)),
	}
}

// Subscribe registers a callback for one event type and returns a function
// that removes the subscription.
func (e *Emitter) Subscribe(typ EventType, fn func(Event)) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	if e.byType[typ] == nil {
		e.byType[typ] = make(map[int]func(Event))
	}
	e.byType[typ][id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.byType[typ], id)
	}
}

// SubscribeAll registers a callback invoked for every event type.
func (e *Emitter) SubscribeAll(fn func(Event)) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.all[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.all, id)
	}
}

// Emit delivers the event to all matching subscribers synchronously.
func (e *Emitter) Emit(ev Event) {
	e.mu.RLock()
	callbacks := make([]func(Event), 0, len(e.byType[ev.Type])+len(e.all))
	for _, fn := range e.byType[ev.Type] {
		callbacks = append(callbacks, fn)
	}
	for _, fn := range e.all {
		callbacks = append(callbacks, fn)
	}
	e.mu.RUnlock()

	for _, fn := range callbacks {
		fn(ev)
	}
}
