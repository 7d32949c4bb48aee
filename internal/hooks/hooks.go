// Package hooks dispatches Valet lifecycle events to registered handlers,
// including operator-configured shell commands.
package hooks

import (
	"context"
	"sync"

	"github.com/valetapp/valet/internal/logging"
)

// Event names for the hook system.
const (
	EventServerStart    = "server.start"
	EventServerStop     = "server.stop"
	EventTurnCompleted  = "turn.completed"
	EventActionExecuted = "action.executed"
)

// AllEvents lists all known hook event names.
var AllEvents = []string{
	EventServerStart,
	EventServerStop,
	EventTurnCompleted,
	EventActionExecuted,
}

// Payload carries event data to hook handlers.
type Payload struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data,omitempty"`
}

// Handler handles one hook event. Returning an error logs the failure but
// does not stop processing.
type Handler func(ctx context.Context, p Payload) error

// Manager manages hook registrations and dispatches events.
type Manager struct {
	mu       sync.RWMutex
	handlers map[string][]namedHandler
	log      *logging.Logger
}

type namedHandler struct {
	name    string
	handler Handler
}

// NewManager creates a hook manager.
func NewManager(log *logging.Logger) *Manager {
	return &Manager{
		handlers: make(map[string][]namedHandler),
		log:      log.Sub("hooks"),
	}
}

// On registers a handler for the given event. The name identifies the
// handler for logging.
func (m *Manager) On(event, name string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = append(m.handlers[event], namedHandler{name: name, handler: handler})
	m.log.Debug().Str("event", event).Str("handler", name).Msg("hook registered")
}

// Emit dispatches an event to all registered handlers synchronously, in
// registration order. Handler errors are logged and never propagate; a
// failing hook must not break a conversation turn.
func (m *Manager) Emit(ctx context.Context, event string, data map[string]any) {
	m.mu.RLock()
	handlers := make([]namedHandler, len(m.handlers[event]))
	copy(handlers, m.handlers[event])
	m.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	payload := Payload{Event: event, Data: data}

	for _, h := range handlers {
		if err := h.handler(ctx, payload); err != nil {
			m.log.Warn().
				Err(err).
				Str("event", event).
				Str("handler", h.name).
				Msg("hook handler error")
		}
	}
}

// Count returns the number of handlers registered for an event.
func (m *Manager) Count(event string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers[event])
}
