// Package hooks dispatches settings and gateway lifecycle events to named
// handlers.
package hooks

import (
	"context"
	"fmt"
	"sync"

	"github.com/soyeahso/assistloop/internal/logging"
)

// Event names.
const (
	// EventSettingsSaving fires before any key is written. A handler error
	// rejects the save.
	EventSettingsSaving = "settings_saving"
	// EventSettingsSaved fires after every key has been written.
	EventSettingsSaved = "settings_saved"
	EventGatewayStart  = "gateway_start"
	EventGatewayStop   = "gateway_stop"
)

// AllEvents lists every known event name.
var AllEvents = []string{
	EventSettingsSaving,
	EventSettingsSaved,
	EventGatewayStart,
	EventGatewayStop,
}

// Payload carries event data to handlers.
type Payload struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data,omitempty"`
}

// Handler handles one event.
type Handler func(ctx context.Context, p Payload) error

// Manager holds handler registrations.
type Manager struct {
	mu       sync.RWMutex
	handlers map[string][]namedHandler
	log      *logging.Logger
}

type namedHandler struct {
	name    string
	handler Handler
}

// NewManager creates an empty hook manager.
func NewManager(log *logging.Logger) *Manager {
	return &Manager{
		handlers: make(map[string][]namedHandler),
		log:      log.Sub("hooks"),
	}
}

// On registers handler for event under name.
func (m *Manager) On(event, name string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = append(m.handlers[event], namedHandler{name: name, handler: handler})
	m.log.Debug().Str("event", event).Str("handler", name).Msg("hook registered")
}

// Off removes every handler registered under name for event.
func (m *Manager) Off(event, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.handlers[event][:0:0]
	for _, h := range m.handlers[event] {
		if h.name != name {
			kept = append(kept, h)
		}
	}
	m.handlers[event] = kept
}

func (m *Manager) snapshot(event string) []namedHandler {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]namedHandler(nil), m.handlers[event]...)
}

// Emit calls every handler for event in registration order. Errors are
// logged and do not stop later handlers.
func (m *Manager) Emit(ctx context.Context, event string, data map[string]any) {
	payload := Payload{Event: event, Data: data}
	for _, h := range m.snapshot(event) {
		if err := h.handler(ctx, payload); err != nil {
			m.log.Warn().
				Err(err).
				Str("event", event).
				Str("handler", h.name).
				Msg("hook handler error")
		}
	}
}

// Run calls handlers for event in registration order and stops at the
// first error, which is returned wrapped with the handler name.
func (m *Manager) Run(ctx context.Context, event string, data map[string]any) error {
	payload := Payload{Event: event, Data: data}
	for _, h := range m.snapshot(event) {
		if err := h.handler(ctx, payload); err != nil {
			return fmt.Errorf("%s hook %q: %w", event, h.name, err)
		}
	}
	return nil
}

// Count returns how many handlers are registered for event.
func (m *Manager) Count(event string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers[event])
}
