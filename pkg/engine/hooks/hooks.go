// Package hooks is the host's event bus. Handlers are registered by name
// and invoked synchronously on the host loop; a panicking handler is
// logged and swallowed so event delivery is never broken.
package hooks

import (
	"sync"

	"tokencontextmenu/pkg/engine/logging"
)

// Host-driven events the menu module subscribes to.
const (
	EventReady          = "ready"
	EventCloseGame      = "closeGame"
	EventCanvasReady    = "canvasReady"
	EventControlToken   = "controlToken"
	EventUpdateToken    = "updateToken"
	EventDeleteToken    = "deleteToken"
	EventRenderTokenHUD = "renderTokenHUD"
	EventKeyDown        = "keyDown"
)

// Handler receives the arguments passed to Call.
type Handler func(args ...any)

type registration struct {
	id   int
	fn   Handler
	once bool
}

// Bus is a named-event dispatcher.
type Bus struct {
	mu       sync.Mutex
	handlers map[string][]*registration
	nextID   int
}

var log = logging.For("hooks")

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]*registration)}
}

// On registers a handler for the named event and returns its id.
func (b *Bus) On(event string, fn Handler) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.handlers[event] = append(b.handlers[event], &registration{id: b.nextID, fn: fn})
	return b.nextID
}

// Once registers a handler that is removed after its first invocation.
func (b *Bus) Once(event string, fn Handler) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.handlers[event] = append(b.handlers[event], &registration{id: b.nextID, fn: fn, once: true})
	return b.nextID
}

// Off removes the handler with the given id from the named event.
// Removing an unknown id is a no-op.
func (b *Bus) Off(event string, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	regs := b.handlers[event]
	for i, r := range regs {
		if r.id == id {
			b.handlers[event] = append(regs[:i:i], regs[i+1:]...)
			return
		}
	}
}

// Call invokes every handler registered for the named event, in
// registration order. Panics in handlers are logged and swallowed.
func (b *Bus) Call(event string, args ...any) {
	b.mu.Lock()
	regs := make([]*registration, len(b.handlers[event]))
	copy(regs, b.handlers[event])
	var kept []*registration
	for _, r := range b.handlers[event] {
		if !r.once {
			kept = append(kept, r)
		}
	}
	b.handlers[event] = kept
	b.mu.Unlock()

	for _, r := range regs {
		b.invoke(event, r, args)
	}
}

func (b *Bus) invoke(event string, r *registration, args []any) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("event", event).Interface("panic", rec).Msg("hook handler panicked")
		}
	}()
	r.fn(args...)
}

// Reset drops every registered handler. Used on teardown and in tests.
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[string][]*registration)
}

// Default is the process-wide bus shared by the host and the module.
var Default = NewBus()

// On registers fn on the default bus.
func On(event string, fn Handler) int { return Default.On(event, fn) }

// Once registers fn on the default bus for a single invocation.
func Once(event string, fn Handler) int { return Default.Once(event, fn) }

// Off removes a handler from the default bus.
func Off(event string, id int) { Default.Off(event, id) }

// Call dispatches an event on the default bus.
func Call(event string, args ...any) { Default.Call(event, args...) }
