package grid

import (
	"gridboard/internal/domain"
)

// Command is one reversible unit of change. By the time a command is
// pushed onto the history the mutation has already been applied to the
// state; Redo re-applies it and Undo reverses it exactly, from
// snapshot data captured at construction. Commands hold deep copies,
// never live objects, and receive the state explicitly.
type Command interface {
	Name() string
	Undo(st *State)
	Redo(st *State)
}

// ── AddItem ────────────────────────────────────────────────

type addItemCommand struct {
	canvasID string
	item     domain.GridItem // snapshot including id and zIndex
}

func newAddItemCommand(canvasID string, item domain.GridItem) Command {
	return &addItemCommand{canvasID: canvasID, item: item.Clone()}
}

func (c *addItemCommand) Name() string { return "add-item" }

func (c *addItemCommand) Undo(st *State) {
	st.RemoveItem(c.canvasID, c.item.ID)
}

func (c *addItemCommand) Redo(st *State) {
	// Re-insert the exact snapshot. The zIndex snapshot predates the
	// canvas counter, so monotonicity is preserved.
	st.InsertItem(c.canvasID, c.item.Clone(), -1)
}

// ── DeleteItem ─────────────────────────────────────────────

type deleteItemCommand struct {
	canvasID string
	item     domain.GridItem
	index    int // position in the canvas before deletion
}

func newDeleteItemCommand(canvasID string, item domain.GridItem, index int) Command {
	return &deleteItemCommand{canvasID: canvasID, item: item.Clone(), index: index}
}

func (c *deleteItemCommand) Name() string { return "delete-item" }

func (c *deleteItemCommand) Undo(st *State) {
	st.InsertItem(c.canvasID, c.item.Clone(), c.index)
}

func (c *deleteItemCommand) Redo(st *State) {
	st.RemoveItem(c.canvasID, c.item.ID)
}

// ── MoveItem ───────────────────────────────────────────────

// moveItemCommand is the single command type covering a same-canvas
// drag (source == target, size unchanged), a resize (size changed,
// canvas unchanged) and a cross-canvas move (source != target). The
// full per-viewport layouts are snapshotted on both ends so undo also
// restores the mobile customized flag exactly.
type moveItemCommand struct {
	itemID         string
	sourceCanvasID string
	targetCanvasID string
	sourceLayouts  domain.Layouts
	targetLayouts  domain.Layouts
	sourceIndex    int
	sourceZ        int
	targetZ        int
}

func (c *moveItemCommand) Name() string { return "move-item" }

func (c *moveItemCommand) Undo(st *State) {
	if c.sourceCanvasID == c.targetCanvasID {
		item, _, _ := st.FindItem(c.itemID)
		if item == nil {
			return
		}
		item.Layouts = c.sourceLayouts
		item.ZIndex = c.sourceZ
		return
	}
	item, _, ok := st.RemoveItem(c.targetCanvasID, c.itemID)
	if !ok {
		return
	}
	item.Layouts = c.sourceLayouts
	item.ZIndex = c.sourceZ
	st.InsertItem(c.sourceCanvasID, item, c.sourceIndex)
}

func (c *moveItemCommand) Redo(st *State) {
	if c.sourceCanvasID == c.targetCanvasID {
		item, _, _ := st.FindItem(c.itemID)
		if item == nil {
			return
		}
		item.Layouts = c.targetLayouts
		item.ZIndex = c.targetZ
		return
	}
	item, _, ok := st.RemoveItem(c.sourceCanvasID, c.itemID)
	if !ok {
		return
	}
	item.Layouts = c.targetLayouts
	item.ZIndex = c.targetZ
	st.InsertItem(c.targetCanvasID, item, -1)
}
