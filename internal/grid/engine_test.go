package grid_test

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"gridboard/internal/domain"
	"gridboard/internal/grid"
)

func testRegistry() *domain.Registry {
	r := domain.NewRegistry()
	r.Register(headerDef())
	r.Register(domain.ComponentDefinition{
		Type:        "text",
		MinSize:     domain.Size{Width: 2, Height: 1},
		MaxSize:     domain.Size{Width: 100, Height: 200},
		DefaultSize: domain.Size{Width: 20, Height: 10},
		Schema: map[string]domain.ConfigKind{
			"content":  domain.ConfigString,
			"fontSize": domain.ConfigNumber,
			"bold":     domain.ConfigBool,
		},
	})
	return r
}

func newTestEngine(hook grid.DeleteHook) (*grid.Engine, *grid.MockEmitter) {
	em := &grid.MockEmitter{}
	e := grid.NewEngine(grid.Options{Registry: testRegistry(), Emitter: em, DeleteHook: hook})
	return e, em
}

// sameLayoutState compares two exports ignoring timestamps.
func sameLayoutState(a, b domain.GridExport) bool {
	a.Metadata, b.Metadata = domain.ExportMetadata{}, domain.ExportMetadata{}
	return reflect.DeepEqual(a, b)
}

func mustAddItem(t *testing.T, e *grid.Engine, canvasID, typ, name string, l domain.Layout) *domain.GridItem {
	t.Helper()
	item, err := e.AddItem(context.Background(), canvasID, typ, name, l, nil)
	if err != nil {
		t.Fatalf("add %s: %v", name, err)
	}
	return item
}

func TestEngine_PixelDropPlacement(t *testing.T) {
	e, _ := newTestEngine(nil)
	ctx := context.Background()
	c1 := e.AddCanvas(ctx, "Main")
	e.Transform().SetGridSizeCache(c1, 1000, grid.DefaultConfig())

	item, err := e.AddItemAtPixel(ctx, c1, "header", "Header", 100, 200)
	if err != nil {
		t.Fatalf("drop failed: %v", err)
	}
	want := domain.Layout{X: 5, Y: 10, Width: 10, Height: 6}
	if item.Layouts.Desktop != want {
		t.Errorf("layout = %+v, want %+v", item.Layouts.Desktop, want)
	}
}

func TestEngine_AddItemValidation(t *testing.T) {
	e, em := newTestEngine(nil)
	ctx := context.Background()
	c1 := e.AddCanvas(ctx, "Main")
	em.Events = nil

	if _, err := e.AddItem(ctx, "nope", "header", "h", domain.Layout{}, nil); err == nil {
		t.Error("expected error for unknown canvas")
	}
	if _, err := e.AddItem(ctx, c1, "widget", "w", domain.Layout{}, nil); err == nil {
		t.Error("expected error for unknown component type")
	}
	if _, err := e.AddItem(ctx, c1, "text", "t", domain.Layout{}, domain.Config{"nope": 1}); err == nil {
		t.Error("expected error for schema-invalid config")
	}
	if len(em.Events) != 0 {
		t.Errorf("failed adds must not emit, got %d events", len(em.Events))
	}
	if e.CanUndo() {
		t.Error("failed adds must not push commands")
	}
}

func TestEngine_DeleteUndoRestoresIndex(t *testing.T) {
	e, _ := newTestEngine(nil)
	ctx := context.Background()
	c1 := e.AddCanvas(ctx, "Main")

	var ids []string
	for i := 0; i < 4; i++ {
		it := mustAddItem(t, e, c1, "text", fmt.Sprintf("t%d", i), domain.Layout{X: float64(i * 10), Y: 0, Width: 5, Height: 3})
		ids = append(ids, it.ID)
	}
	victim, _, _ := e.State().FindItem(ids[2])
	victimZ := victim.ZIndex

	ok, err := e.DeleteItem(ctx, ids[2])
	if err != nil || !ok {
		t.Fatalf("delete failed: ok=%v err=%v", ok, err)
	}
	if e.State().Canvas(c1).IndexOf(ids[2]) != -1 {
		t.Fatal("item still present after delete")
	}

	if !e.Undo(ctx) {
		t.Fatal("undo failed")
	}
	idx := e.State().Canvas(c1).IndexOf(ids[2])
	if idx != 2 {
		t.Errorf("restored at index %d, want 2", idx)
	}
	restored, _, _ := e.State().FindItem(ids[2])
	if restored.ZIndex != victimZ {
		t.Errorf("restored zIndex %d, want %d", restored.ZIndex, victimZ)
	}
}

func TestEngine_CrossCanvasMove(t *testing.T) {
	e, _ := newTestEngine(nil)
	ctx := context.Background()
	c1 := e.AddCanvas(ctx, "Source")
	c2 := e.AddCanvas(ctx, "Target")
	e.Transform().SetGridSizeCache(c1, 1000, grid.DefaultConfig())
	e.Transform().SetGridSizeCache(c2, 500, grid.DefaultConfig())

	moved := mustAddItem(t, e, c1, "header", "h", domain.Layout{X: 5, Y: 10, Width: 10, Height: 6})
	mustAddItem(t, e, c2, "text", "a", domain.Layout{X: 0, Y: 0, Width: 5, Height: 3})
	mustAddItem(t, e, c2, "text", "b", domain.Layout{X: 10, Y: 0, Width: 5, Height: 3})

	sourceLayout := moved.Layouts.Desktop
	sourceZ := moved.ZIndex
	preCounter := e.State().Canvas(c2).ZIndexCounter

	if err := e.MoveItemToCanvas(ctx, moved.ID, c2, 100, 200); err != nil {
		t.Fatalf("move failed: %v", err)
	}

	got, canvas, _ := e.State().FindItem(moved.ID)
	if canvas.ID != c2 {
		t.Fatalf("item on canvas %s, want %s", canvas.ID, c2)
	}
	if got.CanvasID != c2 {
		t.Errorf("canvasId field %s, want %s", got.CanvasID, c2)
	}
	// Moved items draw the target counter's next value: they paint
	// above every pre-existing target item.
	if got.ZIndex != preCounter {
		t.Errorf("zIndex = %d, want pre-increment counter %d", got.ZIndex, preCounter)
	}
	// 500px container → 2% of 500 = 10 → clamped to min 10 px/unit:
	// drop pixel x=100 lands at grid x=10; y stays 200/20 = 10.
	wantLayout := domain.Layout{X: 10, Y: 10, Width: 10, Height: 6}
	if got.Layouts.Desktop != wantLayout {
		t.Errorf("layout = %+v, want %+v", got.Layouts.Desktop, wantLayout)
	}

	if !e.Undo(ctx) {
		t.Fatal("undo failed")
	}
	back, canvas, idx := e.State().FindItem(moved.ID)
	if canvas.ID != c1 || back.CanvasID != c1 {
		t.Fatal("undo did not restore source canvas membership")
	}
	if idx != 0 {
		t.Errorf("undo restored index %d, want 0", idx)
	}
	if back.Layouts.Desktop != sourceLayout {
		t.Errorf("undo layout = %+v, want %+v", back.Layouts.Desktop, sourceLayout)
	}
	if back.ZIndex != sourceZ {
		t.Errorf("undo zIndex = %d, want %d", back.ZIndex, sourceZ)
	}
}

func TestEngine_MoveItemToCanvas_MissingItemIsSilent(t *testing.T) {
	e, em := newTestEngine(nil)
	ctx := context.Background()
	c1 := e.AddCanvas(ctx, "Main")
	e.Transform().SetGridSizeCache(c1, 1000, grid.DefaultConfig())
	em.Events = nil
	couldUndo := e.CanUndo()

	if err := e.MoveItemToCanvas(ctx, "ghost", c1, 0, 0); err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}
	if len(em.Events) != 0 {
		t.Error("silent failure must not emit")
	}
	if e.CanUndo() != couldUndo {
		t.Error("silent failure must not push a command")
	}
}

func TestEngine_ZeroDisplacementDragPushesNoCommand(t *testing.T) {
	e, em := newTestEngine(nil)
	ctx := context.Background()
	c1 := e.AddCanvas(ctx, "Main")
	item := mustAddItem(t, e, c1, "text", "t", domain.Layout{X: 10, Y: 10, Width: 5, Height: 3})
	before := e.Export()
	em.Events = nil

	if !e.MoveItem(ctx, item.ID, 10, 10) {
		t.Fatal("move reported unknown item")
	}
	if len(em.Events) != 0 {
		t.Error("aborted gesture must not emit")
	}
	if !sameLayoutState(before, e.Export()) {
		t.Error("aborted gesture must not mutate state")
	}
}

func TestEngine_InverseLaw(t *testing.T) {
	e, _ := newTestEngine(nil)
	ctx := context.Background()
	c1 := e.AddCanvas(ctx, "Main")
	item := mustAddItem(t, e, c1, "text", "t", domain.Layout{X: 10, Y: 10, Width: 5, Height: 3})

	before := e.Export()
	if !e.MoveItem(ctx, item.ID, 30, 40) {
		t.Fatal("move failed")
	}
	after := e.Export()

	e.Undo(ctx)
	if !sameLayoutState(e.Export(), before) {
		t.Error("undo(apply(C,S)) != S")
	}
	e.Redo(ctx)
	if !sameLayoutState(e.Export(), after) {
		t.Error("redo(undo(apply(C,S))) != apply(C,S)")
	}
	e.Undo(ctx)
	e.Redo(ctx)
	if !sameLayoutState(e.Export(), after) {
		t.Error("undo/redo cycle is not stable")
	}
}

func TestEngine_ZIndexMonotonicity(t *testing.T) {
	e, _ := newTestEngine(nil)
	ctx := context.Background()
	c1 := e.AddCanvas(ctx, "Main")

	last := -1
	for i := 0; i < 5; i++ {
		it := mustAddItem(t, e, c1, "text", fmt.Sprintf("t%d", i), domain.Layout{X: 0, Y: float64(i * 5), Width: 5, Height: 3})
		if it.ZIndex <= last {
			t.Fatalf("zIndex %d not above previous %d", it.ZIndex, last)
		}
		last = it.ZIndex
	}
}

func TestEngine_StructuralInvariants(t *testing.T) {
	e, _ := newTestEngine(nil)
	ctx := context.Background()
	c1 := e.AddCanvas(ctx, "One")
	c2 := e.AddCanvas(ctx, "Two")
	e.Transform().SetGridSizeCache(c1, 1000, grid.DefaultConfig())
	e.Transform().SetGridSizeCache(c2, 1000, grid.DefaultConfig())

	var ids []string
	for i := 0; i < 6; i++ {
		canvas := c1
		if i%2 == 0 {
			canvas = c2
		}
		it := mustAddItem(t, e, canvas, "text", fmt.Sprintf("t%d", i), domain.Layout{X: float64(i), Y: 0, Width: 5, Height: 3})
		ids = append(ids, it.ID)
	}
	e.MoveItemToCanvas(ctx, ids[0], c1, 50, 50)
	e.DeleteItem(ctx, ids[1])
	e.Undo(ctx)
	e.MoveItem(ctx, ids[2], 40, 40)
	e.Undo(ctx)
	e.Redo(ctx)

	seen := make(map[string]bool)
	for _, cid := range e.State().CanvasIDs() {
		c := e.State().Canvas(cid)
		for i := range c.Items {
			it := c.Items[i]
			if seen[it.ID] {
				t.Errorf("duplicate item id %s", it.ID)
			}
			seen[it.ID] = true
			if it.CanvasID != cid {
				t.Errorf("item %s has canvasId %s but lives on %s", it.ID, it.CanvasID, cid)
			}
		}
	}
	if len(seen) != 6 {
		t.Errorf("expected 6 items, found %d", len(seen))
	}
}

func TestEngine_DeleteHookRejection(t *testing.T) {
	rejectAll := func(_ context.Context, _ domain.GridItem) (bool, error) {
		return false, nil
	}
	e, em := newTestEngine(rejectAll)
	ctx := context.Background()
	c1 := e.AddCanvas(ctx, "Main")
	item := mustAddItem(t, e, c1, "text", "t", domain.Layout{X: 0, Y: 0, Width: 5, Height: 3})
	before := e.Export()
	em.Events = nil

	ok, err := e.DeleteItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("rejection is not an error: %v", err)
	}
	if ok {
		t.Fatal("expected deletion to be vetoed")
	}
	if !sameLayoutState(before, e.Export()) {
		t.Error("vetoed delete must not mutate state")
	}
	if len(em.Events) != 0 {
		t.Error("vetoed delete must not emit")
	}
}

func TestEngine_DeleteHookError(t *testing.T) {
	failing := func(_ context.Context, _ domain.GridItem) (bool, error) {
		return true, fmt.Errorf("backend unreachable")
	}
	e, _ := newTestEngine(failing)
	ctx := context.Background()
	c1 := e.AddCanvas(ctx, "Main")
	item := mustAddItem(t, e, c1, "text", "t", domain.Layout{X: 0, Y: 0, Width: 5, Height: 3})

	ok, err := e.DeleteItem(ctx, item.ID)
	if err != nil || ok {
		t.Fatalf("hook error must read as a no-op rejection, got ok=%v err=%v", ok, err)
	}
	if _, c, _ := e.State().FindItem(item.ID); c == nil {
		t.Fatal("item must survive a hook error")
	}
}

func TestEngine_TwoPhaseDelete(t *testing.T) {
	e, _ := newTestEngine(nil)
	ctx := context.Background()
	c1 := e.AddCanvas(ctx, "Main")
	item := mustAddItem(t, e, c1, "text", "t", domain.Layout{X: 0, Y: 0, Width: 5, Height: 3})

	pending := e.RequestDelete(item.ID)
	if pending == nil {
		t.Fatal("expected pending delete")
	}
	// Nothing happens until commit.
	if _, c, _ := e.State().FindItem(item.ID); c == nil {
		t.Fatal("request alone must not remove the item")
	}
	pending.Cancel()
	if pending.Commit(ctx) {
		t.Fatal("commit after cancel must fail")
	}

	pending = e.RequestDelete(item.ID)
	if !pending.Commit(ctx) {
		t.Fatal("commit failed")
	}
	if _, c, _ := e.State().FindItem(item.ID); c != nil {
		t.Fatal("commit did not remove the item")
	}
	if pending.Commit(ctx) {
		t.Fatal("double commit must fail")
	}
}

func TestEngine_RemoveCanvasCascadesAndRestores(t *testing.T) {
	e, _ := newTestEngine(nil)
	ctx := context.Background()
	c1 := e.AddCanvas(ctx, "Main")
	for i := 0; i < 3; i++ {
		mustAddItem(t, e, c1, "text", fmt.Sprintf("t%d", i), domain.Layout{X: float64(i * 10), Y: 0, Width: 5, Height: 3})
	}
	before := e.Export()

	if !e.RemoveCanvas(ctx, c1) {
		t.Fatal("remove failed")
	}
	if e.State().Canvas(c1) != nil {
		t.Fatal("canvas still present")
	}
	if e.State().ItemCount() != 0 {
		t.Fatal("cascade left items behind")
	}

	if !e.Undo(ctx) {
		t.Fatal("undo failed")
	}
	if !sameLayoutState(before, e.Export()) {
		t.Error("undo did not restore the exact canvas contents")
	}
}

func TestEngine_UpdateItemConfigUndo(t *testing.T) {
	e, _ := newTestEngine(nil)
	ctx := context.Background()
	c1 := e.AddCanvas(ctx, "Main")
	item, err := e.AddItem(ctx, c1, "text", "t", domain.Layout{X: 0, Y: 0, Width: 5, Height: 3},
		domain.Config{"content": "hello"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := e.UpdateItemConfig(ctx, item.ID, domain.Config{"content": "bye", "bold": true}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _, _ := e.State().FindItem(item.ID)
	if got.Config["content"] != "bye" {
		t.Errorf("config not applied: %v", got.Config)
	}

	e.Undo(ctx)
	got, _, _ = e.State().FindItem(item.ID)
	if got.Config["content"] != "hello" {
		t.Errorf("undo did not restore prior config: %v", got.Config)
	}
	if _, ok := got.Config["bold"]; ok {
		t.Error("undo left new key behind")
	}
}

func TestEngine_SelectItemTracksCanvas(t *testing.T) {
	e, _ := newTestEngine(nil)
	ctx := context.Background()
	c1 := e.AddCanvas(ctx, "One")
	c2 := e.AddCanvas(ctx, "Two")
	a := mustAddItem(t, e, c1, "text", "a", domain.Layout{X: 0, Y: 0, Width: 5, Height: 3})
	b := mustAddItem(t, e, c2, "text", "b", domain.Layout{X: 0, Y: 0, Width: 5, Height: 3})

	e.SelectItem(a.ID)
	if e.State().SelectedItemID != a.ID || e.State().SelectedCanvasID != c1 {
		t.Fatalf("selection (%s, %s), want (%s, %s)",
			e.State().SelectedItemID, e.State().SelectedCanvasID, a.ID, c1)
	}

	e.SelectItem(b.ID)
	if e.State().SelectedCanvasID != c2 {
		t.Errorf("selected canvas %s, want %s", e.State().SelectedCanvasID, c2)
	}

	e.SelectItem("")
	if e.State().SelectedItemID != "" {
		t.Errorf("empty id did not clear selection, got %s", e.State().SelectedItemID)
	}
}

func TestEngine_DeleteClearsSelection(t *testing.T) {
	e, _ := newTestEngine(nil)
	ctx := context.Background()
	c1 := e.AddCanvas(ctx, "Main")
	item := mustAddItem(t, e, c1, "text", "a", domain.Layout{X: 0, Y: 0, Width: 5, Height: 3})

	e.SelectItem(item.ID)
	if ok, err := e.DeleteItem(ctx, item.ID); !ok || err != nil {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	if e.State().SelectedItemID != "" {
		t.Errorf("deleting the selected item left selection %s", e.State().SelectedItemID)
	}
}

func TestEngine_SetShowGrid(t *testing.T) {
	e, _ := newTestEngine(nil)
	if !e.State().ShowGrid {
		t.Fatal("grid overlay should default to on")
	}
	e.SetShowGrid(false)
	if e.State().ShowGrid {
		t.Error("SetShowGrid(false) did not stick")
	}
	e.SetShowGrid(true)
	if !e.State().ShowGrid {
		t.Error("SetShowGrid(true) did not stick")
	}
}

// Exercises the engine from several goroutines at once: foreground
// edits, undo, exports and full imports. Run with -race; afterwards
// the structural invariants must still hold because every operation
// serializes on the engine's lock.
func TestEngine_ConcurrentCallers(t *testing.T) {
	e, _ := newTestEngine(nil)
	ctx := context.Background()
	c1 := e.AddCanvas(ctx, "Main")
	e.Transform().SetGridSizeCache(c1, 1000, grid.DefaultConfig())
	mustAddItem(t, e, c1, "text", "seed", domain.Layout{X: 0, Y: 0, Width: 5, Height: 3})
	snapshot, err := e.ExportJSON()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 30; i++ {
				switch w {
				case 0:
					e.AddItem(ctx, c1, "text", "t", domain.Layout{X: 1, Y: 1, Width: 5, Height: 3}, nil)
				case 1:
					e.Undo(ctx)
				case 2:
					e.ExportJSON()
				case 3:
					e.ImportJSON(ctx, snapshot)
				}
			}
		}(w)
	}
	wg.Wait()

	e.WithState(func(st *grid.State) {
		seen := make(map[string]bool)
		for _, cid := range st.CanvasIDs() {
			c := st.Canvas(cid)
			for i := range c.Items {
				it := c.Items[i]
				if seen[it.ID] {
					t.Errorf("duplicate item id %s", it.ID)
				}
				seen[it.ID] = true
				if it.CanvasID != cid {
					t.Errorf("item %s has canvasId %s but lives on %s", it.ID, it.CanvasID, cid)
				}
			}
		}
	})
}
