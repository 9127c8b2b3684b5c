package service

import (
	"context"
	"sync"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter — decouples services from whatever hosts the editor
// ─────────────────────────────────────────────────────────────

// Event names published by the engine.
const (
	EventThemeState         = "theme:state"
	EventCompositionChanged = "composition:changed"
	EventDocumentSynced     = "document:synced"
	EventDragRefused        = "drag:refused"
	EventBarrierTimedOut    = "theme:barrier-timeout"
)

// EventEmitter publishes engine events to the host (MCP notifications, CLI
// output, a UI bridge). Services receive this interface so they stay testable
// with a mock emitter.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// NopEmitter drops every event.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, string, any) {}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Named returns the recorded payloads of one event, in emission order.
func (m *MockEmitter) Named(event string) []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []any
	for _, e := range m.Events {
		if e.Event == event {
			out = append(out, e.Data)
		}
	}
	return out
}

func emitterOrNop(e EventEmitter) EventEmitter {
	if e == nil {
		return NopEmitter{}
	}
	return e
}
