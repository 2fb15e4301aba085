package grid

import "context"

// ─────────────────────────────────────────────────────────────
// EventEmitter — decouples the engine from its frontend
// ─────────────────────────────────────────────────────────────

// EventEmitter receives change notifications from the engine. The
// embedding application implements this to drive its UI refresh; the
// engine guarantees exactly one emission per logical operation, so a
// batch of fifty mutations produces one event, never fifty. Emit is
// called with the engine lock held: implementations must not call
// back into the engine synchronously.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// Event names emitted by the engine.
const (
	EventItemsChanged   = "grid:items-changed"
	EventCanvasAdded    = "grid:canvas-added"
	EventCanvasRemoved  = "grid:canvas-removed"
	EventHistoryApplied = "grid:history-applied"
	EventStateImported  = "grid:state-imported"
)

// NoopEmitter discards all events. Used when no frontend is attached.
type NoopEmitter struct{}

func (NoopEmitter) Emit(_ context.Context, _ string, _ any) {}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}
