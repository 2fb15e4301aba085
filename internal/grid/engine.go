package grid

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"gridboard/internal/domain"
)

// Engine is the layout state and command engine for one builder
// instance. It owns the State, the undo history and the coordinate
// transform, and orchestrates every mutation so that structural
// invariants hold after each completed operation: unique item ids,
// canvas membership, monotonic z-order.
//
// Every operation runs under the engine's lock, so exactly one
// logical mutation (state change + command push + one emission)
// completes before the next begins, no matter how many goroutines
// call in: MCP tool handlers, file-watch reloads and autosave
// snapshots all serialize here. Deletion hooks run outside the lock;
// events are emitted inside it, so emitter implementations must not
// call back into the engine. The engine never touches the DOM; the
// rendering layer feeds container measurements in through the
// Transform.
type Engine struct {
	mu        sync.Mutex
	state     *State
	history   *History
	transform *Transform
	registry  domain.ComponentRegistry
	emitter   EventEmitter
	hook      DeleteHook
	cfg       Config
	createdAt time.Time
}

// Options configures a new Engine. Zero values fall back to defaults:
// DefaultConfig sizing, NoopEmitter, no deletion hook, a
// DefaultHistoryLimit-deep history.
type Options struct {
	Registry     domain.ComponentRegistry
	Emitter      EventEmitter
	DeleteHook   DeleteHook
	Config       Config
	HistoryLimit int
}

// NewEngine creates an Engine with its own State.
func NewEngine(opts Options) *Engine {
	cfg := opts.Config
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	emitter := opts.Emitter
	if emitter == nil {
		emitter = NoopEmitter{}
	}
	return &Engine{
		state:     NewState(),
		history:   NewHistory(opts.HistoryLimit),
		transform: NewTransform(cfg),
		registry:  opts.Registry,
		emitter:   emitter,
		hook:      opts.DeleteHook,
		cfg:       cfg,
		createdAt: time.Now().UTC(),
	}
}

// State exposes the engine's layout state for reads. It is not
// synchronized: callers sharing an engine across goroutines read
// through WithState instead.
func (e *Engine) State() *State { return e.state }

// WithState runs fn with the layout state under the engine's lock, so
// the read cannot interleave with a mutation. fn must not call back
// into the engine and must not retain the state past the call.
func (e *Engine) WithState(fn func(*State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.state)
}

// Transform exposes the coordinate transform. The rendering layer
// calls SetGridSizeCache on it after every container measurement.
func (e *Engine) Transform() *Transform { return e.transform }

// GridConfig returns the engine's grid sizing parameters.
func (e *Engine) GridConfig() Config { return e.cfg }

// Registry returns the component registry, or nil when none was set.
func (e *Engine) Registry() domain.ComponentRegistry { return e.registry }

// ── Canvases ───────────────────────────────────────────────

// AddCanvas creates a new empty canvas and returns its id. The first
// canvas added becomes the active canvas.
func (e *Engine) AddCanvas(ctx context.Context, name string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := uuid.New().String()
	position := e.state.CanvasCount()
	e.state.AddCanvas(id, name, position)
	if e.state.ActiveCanvasID == "" {
		e.state.ActiveCanvasID = id
	}
	e.history.Push(&addCanvasCommand{canvasID: id, name: name, position: position})
	e.emitter.Emit(ctx, EventCanvasAdded, map[string]string{"canvasId": id})
	return id
}

// RemoveCanvas deletes a canvas and everything on it. The removal
// cascades: contained items are snapshotted into the command so undo
// restores the exact prior item set, order and z values. Returns false
// for an unknown id.
func (e *Engine) RemoveCanvas(ctx context.Context, canvasID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.state.Canvas(canvasID)
	if c == nil {
		return false
	}
	snapshot := c.Clone()
	position := e.state.RemoveCanvas(canvasID)
	e.transform.InvalidateCanvas(canvasID)
	e.history.Push(&removeCanvasCommand{canvas: snapshot, position: position})
	e.emitter.Emit(ctx, EventCanvasRemoved, map[string]string{"canvasId": canvasID})
	return true
}

// ── Items ──────────────────────────────────────────────────

// AddItem places a new item on a canvas. The proposed layout is
// clamped through the boundary resolver using the component's size
// constraints; a zero-size proposal takes the component default.
// Returns an error for an unknown canvas, an unknown component type,
// a config that fails the type's schema, or an infeasible placement.
// On failure nothing is mutated and no command is pushed.
func (e *Engine) AddItem(ctx context.Context, canvasID, componentType, name string, proposed domain.Layout, cfg domain.Config) (*domain.GridItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Canvas(canvasID) == nil {
		return nil, fmt.Errorf("unknown canvas %s", canvasID)
	}
	def, ok := e.lookupComponent(componentType)
	if !ok {
		return nil, fmt.Errorf("unknown component type %q", componentType)
	}
	if err := def.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	layout, ok := ApplyBoundaryConstraints(def, proposed)
	if !ok {
		return nil, fmt.Errorf("component %q cannot fit the canvas at minimum size", componentType)
	}

	item := domain.GridItem{
		ID:       newItemID(),
		CanvasID: canvasID,
		Type:     componentType,
		Name:     name,
		ZIndex:   e.state.NextZIndex(canvasID),
		Layouts:  domain.Layouts{Desktop: layout},
		Config:   cfg.Clone(),
	}
	e.state.InsertItem(canvasID, item, -1)
	e.history.Push(newAddItemCommand(canvasID, item))
	e.emitItemsChanged(ctx, canvasID)

	placed, _, _ := e.state.FindItem(item.ID)
	return placed, nil
}

// AddItemAtPixel places a new item at a pixel drop position, converted
// to grid units through the target canvas's cached scale. The size is
// the component default. Requires a primed coordinate cache.
func (e *Engine) AddItemAtPixel(ctx context.Context, canvasID, componentType, name string, pxX, pxY float64) (*domain.GridItem, error) {
	x, err := e.transform.PixelsToGridX(canvasID, pxX)
	if err != nil {
		return nil, err
	}
	y := e.transform.PixelsToGridY(pxY)
	return e.AddItem(ctx, canvasID, componentType, name, domain.Layout{X: x, Y: y}, nil)
}

// MoveItem drags an item to a new position on its own canvas, in the
// current viewport. The position is clamped; the size is untouched. A
// drag that nets zero displacement pushes no command and emits
// nothing. Returns false for an unknown item.
func (e *Engine) MoveItem(ctx context.Context, itemID string, x, y float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	item, canvas, index := e.state.FindItem(itemID)
	if item == nil {
		return false
	}
	before := item.Layouts
	cur := item.Layout(e.state.Viewport)
	nx, ny := ConstrainPositionToCanvas(x, y, cur.Width, cur.Height, CanvasWidthUnits)
	if nx == cur.X && ny == cur.Y {
		return true // aborted gesture: no mutation, no command
	}
	item.SetLayout(e.state.Viewport, domain.Layout{X: nx, Y: ny, Width: cur.Width, Height: cur.Height})
	e.history.Push(&moveItemCommand{
		itemID:         itemID,
		sourceCanvasID: canvas.ID,
		targetCanvasID: canvas.ID,
		sourceLayouts:  before,
		targetLayouts:  item.Layouts,
		sourceIndex:    index,
		sourceZ:        item.ZIndex,
		targetZ:        item.ZIndex,
	})
	e.emitItemsChanged(ctx, canvas.ID)
	return true
}

// ResizeItem applies a proposed position and size to an item on its
// own canvas, clamped through the boundary resolver. A resize that
// changes nothing pushes no command. Returns an error for an unknown
// item or an infeasible size.
func (e *Engine) ResizeItem(ctx context.Context, itemID string, proposed domain.Layout) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	item, canvas, index := e.state.FindItem(itemID)
	if item == nil {
		return fmt.Errorf("unknown item %s", itemID)
	}
	def, ok := e.lookupComponent(item.Type)
	if !ok {
		return fmt.Errorf("unknown component type %q", item.Type)
	}
	layout, feasible := ApplyBoundaryConstraints(def, proposed)
	if !feasible {
		return fmt.Errorf("component %q cannot fit the canvas at minimum size", item.Type)
	}
	before := item.Layouts
	if layout == item.Layout(e.state.Viewport) {
		return nil
	}
	item.SetLayout(e.state.Viewport, layout)
	e.history.Push(&moveItemCommand{
		itemID:         itemID,
		sourceCanvasID: canvas.ID,
		targetCanvasID: canvas.ID,
		sourceLayouts:  before,
		targetLayouts:  item.Layouts,
		sourceIndex:    index,
		sourceZ:        item.ZIndex,
		targetZ:        item.ZIndex,
	})
	e.emitItemsChanged(ctx, canvas.ID)
	return nil
}

// MoveItemToCanvas moves an item to another canvas at a pixel drop
// position. The drop is converted through the *target* canvas's cached
// scale, the carried-over size is kept and only the position is
// re-clamped, and the item receives the target counter's next z value
// so it paints above everything already there. Fails silently (no
// mutation, no command) when the item does not exist; returns an error
// only for an unknown target canvas or an unprimed target cache.
func (e *Engine) MoveItemToCanvas(ctx context.Context, itemID, targetCanvasID string, dropPxX, dropPxY float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Canvas(targetCanvasID) == nil {
		return fmt.Errorf("unknown canvas %s", targetCanvasID)
	}
	item, source, index := e.state.FindItem(itemID)
	if item == nil {
		return nil
	}
	x, err := e.transform.PixelsToGridX(targetCanvasID, dropPxX)
	if err != nil {
		return err
	}
	y := e.transform.PixelsToGridY(dropPxY)

	before := item.Layouts
	sourceZ := item.ZIndex
	cur := item.Layout(e.state.Viewport)
	nx, ny := ConstrainPositionToCanvas(x, y, cur.Width, cur.Height, CanvasWidthUnits)

	moved, _, _ := e.state.RemoveItem(source.ID, itemID)
	moved.SetLayout(e.state.Viewport, domain.Layout{X: nx, Y: ny, Width: cur.Width, Height: cur.Height})
	moved.ZIndex = e.state.NextZIndex(targetCanvasID)
	e.state.InsertItem(targetCanvasID, moved, -1)

	e.history.Push(&moveItemCommand{
		itemID:         itemID,
		sourceCanvasID: source.ID,
		targetCanvasID: targetCanvasID,
		sourceLayouts:  before,
		targetLayouts:  moved.Layouts,
		sourceIndex:    index,
		sourceZ:        sourceZ,
		targetZ:        moved.ZIndex,
	})
	e.emitItemsChanged(ctx, targetCanvasID)
	return nil
}

// UpdateItemConfig replaces an item's config after validating it
// against the component schema.
func (e *Engine) UpdateItemConfig(ctx context.Context, itemID string, cfg domain.Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	item, canvas, _ := e.state.FindItem(itemID)
	if item == nil {
		return fmt.Errorf("unknown item %s", itemID)
	}
	if def, ok := e.lookupComponent(item.Type); ok {
		if err := def.ValidateConfig(cfg); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}
	cmd := &batchUpdateConfigCommand{entries: []configUpdateEntry{{
		itemID:   itemID,
		canvasID: canvas.ID,
		prior:    item.Config.Clone(),
		next:     cfg.Clone(),
	}}}
	item.Config = cfg.Clone()
	e.history.Push(cmd)
	e.emitItemsChanged(ctx, canvas.ID)
	return nil
}

// ── History ────────────────────────────────────────────────

// Undo reverses the most recent operation. No-op on an empty stack.
func (e *Engine) Undo(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	cmd := e.history.Undo(e.state)
	if cmd == nil {
		return false
	}
	e.emitter.Emit(ctx, EventHistoryApplied, map[string]string{"command": cmd.Name(), "direction": "undo"})
	return true
}

// Redo re-applies the most recently undone operation. No-op on an
// empty stack.
func (e *Engine) Redo(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	cmd := e.history.Redo(e.state)
	if cmd == nil {
		return false
	}
	e.emitter.Emit(ctx, EventHistoryApplied, map[string]string{"command": cmd.Name(), "direction": "redo"})
	return true
}

// CanUndo reports whether an undo is available.
func (e *Engine) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanUndo()
}

// CanRedo reports whether a redo is available.
func (e *Engine) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanRedo()
}

// ── Selection & view ───────────────────────────────────────

// SelectItem marks an item as selected; an empty id clears selection.
func (e *Engine) SelectItem(itemID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.SelectedItemID = itemID
	if itemID == "" {
		return
	}
	if _, canvas, _ := e.state.FindItem(itemID); canvas != nil {
		e.state.SelectedCanvasID = canvas.ID
	}
}

// SetActiveCanvas changes the canvas new items default onto.
func (e *Engine) SetActiveCanvas(canvasID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Canvas(canvasID) == nil {
		return false
	}
	e.state.ActiveCanvasID = canvasID
	return true
}

// SetViewport switches between the desktop and mobile layouts.
func (e *Engine) SetViewport(v domain.Viewport) bool {
	if !v.Valid() {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Viewport = v
	return true
}

// SetShowGrid toggles the grid overlay flag.
func (e *Engine) SetShowGrid(show bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.ShowGrid = show
}

// ── helpers ────────────────────────────────────────────────

func newItemID() string { return uuid.New().String() }

func (e *Engine) lookupComponent(componentType string) (domain.ComponentDefinition, bool) {
	if e.registry == nil {
		return domain.ComponentDefinition{}, false
	}
	return e.registry.Lookup(componentType)
}

func (e *Engine) emitItemsChanged(ctx context.Context, canvasID string) {
	e.emitter.Emit(ctx, EventItemsChanged, map[string]string{"canvasId": canvasID})
}
