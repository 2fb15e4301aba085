package grid

import (
	"context"

	"gridboard/internal/domain"
)

// DeleteHook is an optional predicate consulted before an item is
// deleted. Returning false or an error vetoes the deletion, which then
// becomes a pure no-op: no state change, no command, no event. Absent
// hook means "always allow".
type DeleteHook func(ctx context.Context, item domain.GridItem) (bool, error)

// PendingDelete is a delete request whose predicate has not resolved
// yet. Nothing is mutated until Commit; Cancel discards the request.
// Between request and commit other operations may run, so Commit
// re-locates the item and quietly no-ops if it is already gone. A
// PendingDelete belongs to the goroutine that requested it.
type PendingDelete struct {
	engine   *Engine
	canvasID string
	itemID   string
	done     bool
}

// Item returns a snapshot of the item awaiting deletion, or nil if it
// no longer exists.
func (p *PendingDelete) Item() *domain.GridItem {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	item, _, _ := p.engine.state.FindItem(p.itemID)
	if item == nil {
		return nil
	}
	snap := item.Clone()
	return &snap
}

// Commit applies the deletion: removes the item, pushes a DeleteItem
// command capturing the original index, and emits one change event.
// Returns false when the request was cancelled, already committed, or
// the item has disappeared in the meantime.
func (p *PendingDelete) Commit(ctx context.Context) bool {
	if p.done {
		return false
	}
	p.done = true
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	item, index, ok := p.engine.state.RemoveItem(p.canvasID, p.itemID)
	if !ok {
		return false
	}
	p.engine.history.Push(newDeleteItemCommand(p.canvasID, item, index))
	p.engine.emitItemsChanged(ctx, p.canvasID)
	return true
}

// Cancel discards the request without touching any state.
func (p *PendingDelete) Cancel() {
	p.done = true
}

// RequestDelete starts a two-phase deletion of an item. Returns nil
// when the item does not exist. The caller resolves its predicate
// (user confirmation, server round-trip) and then calls Commit or
// Cancel.
func (e *Engine) RequestDelete(itemID string) *PendingDelete {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, canvas, _ := e.state.FindItem(itemID)
	if canvas == nil {
		return nil
	}
	return &PendingDelete{engine: e, canvasID: canvas.ID, itemID: itemID}
}

// DeleteItem deletes an item in one call, running the engine's
// deletion hook first when one is configured. A hook veto or hook
// error aborts the request before any mutation and reports false with
// a nil error — rejection is an answer, not a failure.
func (e *Engine) DeleteItem(ctx context.Context, itemID string) (bool, error) {
	pending := e.RequestDelete(itemID)
	if pending == nil {
		return false, nil
	}
	if e.hook != nil {
		item := pending.Item()
		if item == nil {
			pending.Cancel()
			return false, nil
		}
		allowed, err := e.hook(ctx, *item)
		if err != nil || !allowed {
			pending.Cancel()
			return false, nil
		}
	}
	return pending.Commit(ctx), nil
}
