package grid

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"gridboard/internal/domain"
)

// Export snapshots the engine's state into the persisted GridExport
// form. The coordinate cache is not part of the export: it derives
// from live container measurements and is rebuilt from scratch after
// an import.
func (e *Engine) Export() domain.GridExport {
	e.mu.Lock()
	defer e.mu.Unlock()
	canvases := make(map[string]domain.ExportCanvas, e.state.CanvasCount())
	order := e.state.CanvasIDs()
	for _, id := range order {
		c := e.state.Canvas(id)
		items := make([]domain.GridItem, len(c.Items))
		for i, it := range c.Items {
			items[i] = it.Clone()
		}
		canvases[id] = domain.ExportCanvas{Name: c.Name, Items: items}
	}
	return domain.GridExport{
		Version:     domain.ExportVersion,
		Canvases:    canvases,
		CanvasOrder: order,
		Viewport:    e.state.Viewport,
		Metadata: domain.ExportMetadata{
			CreatedAt: e.createdAt,
			UpdatedAt: time.Now().UTC(),
		},
	}
}

// ExportJSON serializes the current state.
func (e *Engine) ExportJSON() ([]byte, error) {
	data, err := json.MarshalIndent(e.Export(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return data, nil
}

// Import replaces the engine's state with the exported snapshot. The
// undo history and the coordinate cache are cleared: neither describes
// the restored state. Each canvas's z counter is rebuilt above the
// maximum restored z value so future assignments keep painting on top.
//
// The export is validated before anything is touched: on error the
// live state is unchanged.
func (e *Engine) Import(ctx context.Context, exp domain.GridExport) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if exp.Version != domain.ExportVersion {
		return fmt.Errorf("unsupported export version %d", exp.Version)
	}
	viewport := exp.Viewport
	if viewport == "" {
		viewport = domain.ViewportDesktop
	}
	if !viewport.Valid() {
		return fmt.Errorf("unknown viewport %q", exp.Viewport)
	}
	order, err := resolveCanvasOrder(exp)
	if err != nil {
		return err
	}
	seen := make(map[string]string) // item id -> canvas id
	for canvasID, c := range exp.Canvases {
		for _, it := range c.Items {
			if it.ID == "" {
				return fmt.Errorf("canvas %s: item with empty id", canvasID)
			}
			if prev, dup := seen[it.ID]; dup {
				return fmt.Errorf("duplicate item id %s (canvases %s and %s)", it.ID, prev, canvasID)
			}
			seen[it.ID] = canvasID
		}
	}

	st := NewState()
	st.Viewport = viewport
	for pos, canvasID := range order {
		c := exp.Canvases[canvasID]
		st.AddCanvas(canvasID, c.Name, pos)
		maxZ := -1
		for _, it := range c.Items {
			st.InsertItem(canvasID, it.Clone(), -1)
			if it.ZIndex > maxZ {
				maxZ = it.ZIndex
			}
		}
		st.BumpZCounterTo(canvasID, maxZ+1)
	}
	if len(order) > 0 {
		st.ActiveCanvasID = order[0]
	}

	e.state = st
	e.history.Clear()
	e.transform.Reset()
	if !exp.Metadata.CreatedAt.IsZero() {
		e.createdAt = exp.Metadata.CreatedAt
	}
	e.emitter.Emit(ctx, EventStateImported, map[string]int{"canvases": len(order)})
	return nil
}

// ImportJSON parses and imports a serialized export.
func (e *Engine) ImportJSON(ctx context.Context, data []byte) error {
	var exp domain.GridExport
	if err := json.Unmarshal(data, &exp); err != nil {
		return fmt.Errorf("parse export: %w", err)
	}
	return e.Import(ctx, exp)
}

// resolveCanvasOrder reconciles the export's order list with its
// canvas map. Exports from older writers may omit the order; any
// canvases missing from it are appended in sorted-key order so the
// import stays deterministic.
func resolveCanvasOrder(exp domain.GridExport) ([]string, error) {
	var order []string
	listed := make(map[string]bool, len(exp.CanvasOrder))
	for _, id := range exp.CanvasOrder {
		if _, ok := exp.Canvases[id]; !ok {
			return nil, fmt.Errorf("canvas order references unknown canvas %s", id)
		}
		if listed[id] {
			return nil, fmt.Errorf("canvas %s listed twice in canvas order", id)
		}
		listed[id] = true
		order = append(order, id)
	}
	var missing []string
	for id := range exp.Canvases {
		if !listed[id] {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	return append(order, missing...), nil
}
