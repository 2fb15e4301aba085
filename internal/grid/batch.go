package grid

import (
	"context"

	"gridboard/internal/domain"
)

// Batch mutation API: each call applies N store mutations, constructs
// exactly one composite command, and emits exactly one change event —
// observers never see a partially-applied batch. Invalid entries are
// skipped and the rest applied, matching the single-item paths'
// validate-and-skip behavior. A batch where nothing applied pushes no
// command and emits nothing.

// ItemSpec describes one item to add in a batch.
type ItemSpec struct {
	Type   string
	Name   string
	Layout domain.Layout
	Config domain.Config
}

// ConfigUpdate describes one config replacement in a batch.
type ConfigUpdate struct {
	ItemID string
	Config domain.Config
}

// AddItemsBatch places multiple items on one canvas as a single
// undoable operation. Returns the items actually placed, in order.
func (e *Engine) AddItemsBatch(ctx context.Context, canvasID string, specs []ItemSpec) []domain.GridItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Canvas(canvasID) == nil {
		return nil
	}
	var placed []domain.GridItem
	for _, spec := range specs {
		def, ok := e.lookupComponent(spec.Type)
		if !ok {
			continue
		}
		if err := def.ValidateConfig(spec.Config); err != nil {
			continue
		}
		layout, feasible := ApplyBoundaryConstraints(def, spec.Layout)
		if !feasible {
			continue
		}
		item := domain.GridItem{
			ID:       newItemID(),
			CanvasID: canvasID,
			Type:     spec.Type,
			Name:     spec.Name,
			ZIndex:   e.state.NextZIndex(canvasID),
			Layouts:  domain.Layouts{Desktop: layout},
			Config:   spec.Config.Clone(),
		}
		e.state.InsertItem(canvasID, item, -1)
		placed = append(placed, item)
	}
	if len(placed) == 0 {
		return nil
	}
	e.history.Push(newBatchAddCommand(placed))
	e.emitItemsChanged(ctx, canvasID)
	return placed
}

// DeleteItemsBatch removes multiple items as a single undoable
// operation. Unknown ids are skipped; when a deletion hook is
// configured each surviving item is offered to it and vetoed items
// stay. The hook runs without the engine lock held, so it may block
// on user confirmation; approved items are re-located before removal
// in case the state changed underneath. Returns the number of items
// removed.
func (e *Engine) DeleteItemsBatch(ctx context.Context, itemIDs []string) int {
	// Snapshot candidates so the hook sees a stable copy.
	e.mu.Lock()
	var candidates []domain.GridItem
	for _, id := range itemIDs {
		if item, _, _ := e.state.FindItem(id); item != nil {
			candidates = append(candidates, item.Clone())
		}
	}
	e.mu.Unlock()

	var approved []string
	for _, item := range candidates {
		if e.hook != nil {
			allowed, err := e.hook(ctx, item)
			if err != nil || !allowed {
				continue
			}
		}
		approved = append(approved, item.ID)
	}
	if len(approved) == 0 {
		return 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	var entries []deletedEntry
	canvasID := ""
	for _, id := range approved {
		item, canvas, _ := e.state.FindItem(id)
		if item == nil {
			continue
		}
		removed, index, ok := e.state.RemoveItem(canvas.ID, id)
		if !ok {
			continue
		}
		if canvasID == "" {
			canvasID = canvas.ID
		}
		entries = append(entries, deletedEntry{item: removed.Clone(), index: index})
	}
	if len(entries) == 0 {
		return 0
	}
	e.history.Push(&batchDeleteCommand{entries: entries})
	e.emitItemsChanged(ctx, canvasID)
	return len(entries)
}

// UpdateItemsBatch replaces the configs of multiple items as a single
// undoable operation. Entries with unknown ids or schema-invalid
// configs are skipped. Returns the number of items updated.
func (e *Engine) UpdateItemsBatch(ctx context.Context, updates []ConfigUpdate) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	var entries []configUpdateEntry
	canvasID := ""
	for _, u := range updates {
		item, canvas, _ := e.state.FindItem(u.ItemID)
		if item == nil {
			continue
		}
		if def, ok := e.lookupComponent(item.Type); ok {
			if err := def.ValidateConfig(u.Config); err != nil {
				continue
			}
		}
		entries = append(entries, configUpdateEntry{
			itemID:   u.ItemID,
			canvasID: canvas.ID,
			prior:    item.Config.Clone(),
			next:     u.Config.Clone(),
		})
		item.Config = u.Config.Clone()
		if canvasID == "" {
			canvasID = canvas.ID
		}
	}
	if len(entries) == 0 {
		return 0
	}
	e.history.Push(&batchUpdateConfigCommand{entries: entries})
	e.emitItemsChanged(ctx, canvasID)
	return len(entries)
}
