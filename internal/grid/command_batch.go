package grid

import (
	"gridboard/internal/domain"
)

// Batch commands capture full item snapshots, not just ids: ids alone
// cannot reconstruct a deleted item's geometry on undo. The per-item
// order inside a batch is preserved, and undo walks it in reverse so
// positional inserts land back at their captured indexes.

// ── BatchAdd ───────────────────────────────────────────────

type batchAddCommand struct {
	items []domain.GridItem // in apply order, ids and z values assigned
}

func newBatchAddCommand(items []domain.GridItem) Command {
	snap := make([]domain.GridItem, len(items))
	for i, it := range items {
		snap[i] = it.Clone()
	}
	return &batchAddCommand{items: snap}
}

func (c *batchAddCommand) Name() string { return "batch-add" }

func (c *batchAddCommand) Undo(st *State) {
	for i := len(c.items) - 1; i >= 0; i-- {
		st.RemoveItem(c.items[i].CanvasID, c.items[i].ID)
	}
}

func (c *batchAddCommand) Redo(st *State) {
	for _, it := range c.items {
		st.InsertItem(it.CanvasID, it.Clone(), -1)
	}
}

// ── BatchDelete ────────────────────────────────────────────

type deletedEntry struct {
	item  domain.GridItem
	index int
}

type batchDeleteCommand struct {
	entries []deletedEntry // in deletion order
}

func (c *batchDeleteCommand) Name() string { return "batch-delete" }

func (c *batchDeleteCommand) Undo(st *State) {
	for i := len(c.entries) - 1; i >= 0; i-- {
		e := c.entries[i]
		st.InsertItem(e.item.CanvasID, e.item.Clone(), e.index)
	}
}

func (c *batchDeleteCommand) Redo(st *State) {
	for _, e := range c.entries {
		st.RemoveItem(e.item.CanvasID, e.item.ID)
	}
}

// ── BatchUpdateConfig ──────────────────────────────────────

type configUpdateEntry struct {
	itemID   string
	canvasID string
	prior    domain.Config
	next     domain.Config
}

type batchUpdateConfigCommand struct {
	entries []configUpdateEntry
}

func (c *batchUpdateConfigCommand) Name() string { return "batch-update-config" }

func (c *batchUpdateConfigCommand) Undo(st *State) {
	for i := len(c.entries) - 1; i >= 0; i-- {
		e := c.entries[i]
		if item, _, _ := st.FindItem(e.itemID); item != nil {
			item.Config = e.prior.Clone()
		}
	}
}

func (c *batchUpdateConfigCommand) Redo(st *State) {
	for _, e := range c.entries {
		if item, _, _ := st.FindItem(e.itemID); item != nil {
			item.Config = e.next.Clone()
		}
	}
}

// ── AddCanvas / RemoveCanvas ───────────────────────────────

type addCanvasCommand struct {
	canvasID string
	name     string
	position int
}

func (c *addCanvasCommand) Name() string { return "add-canvas" }

func (c *addCanvasCommand) Undo(st *State) {
	st.RemoveCanvas(c.canvasID)
}

func (c *addCanvasCommand) Redo(st *State) {
	st.AddCanvas(c.canvasID, c.name, c.position)
}

// removeCanvasCommand snapshots the entire canvas so undo restores the
// exact prior item set, order and z values, counter included.
type removeCanvasCommand struct {
	canvas   domain.Canvas
	position int
}

func (c *removeCanvasCommand) Name() string { return "remove-canvas" }

func (c *removeCanvasCommand) Undo(st *State) {
	st.RestoreCanvas(c.canvas, c.position)
}

func (c *removeCanvasCommand) Redo(st *State) {
	st.RemoveCanvas(c.canvas.ID)
}
