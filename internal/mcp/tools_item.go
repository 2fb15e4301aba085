package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"gridboard/internal/domain"
	"gridboard/internal/grid"
)

func (s *Server) registerItemTools() {
	// ── add_item ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_item",
		mcp.WithDescription("Add a component item to a canvas at a grid-unit position. Size falls back to the component default when omitted."),
		mcp.WithString("type", mcp.Description("Component type (see list_component_types)"), mcp.Required()),
		mcp.WithString("canvasId", mcp.Description("Canvas ID (optional, defaults to active canvas)")),
		mcp.WithString("name", mcp.Description("Display name for the item")),
		mcp.WithNumber("x", mcp.Description("X position in grid units (default 0)")),
		mcp.WithNumber("y", mcp.Description("Y position in grid units (default 0)")),
		mcp.WithNumber("width", mcp.Description("Width in grid units (0 uses the component default)")),
		mcp.WithNumber("height", mcp.Description("Height in grid units (0 uses the component default)")),
		mcp.WithString("config", mcp.Description("Initial config as a JSON object")),
	), s.handleAddItem)

	// ── add_item_at_pixel ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_item_at_pixel",
		mcp.WithDescription("Add a component item at a pixel drop position. Requires a primed grid cache (set_grid_cache)."),
		mcp.WithString("type", mcp.Description("Component type"), mcp.Required()),
		mcp.WithString("canvasId", mcp.Description("Canvas ID (optional, defaults to active canvas)")),
		mcp.WithString("name", mcp.Description("Display name for the item")),
		mcp.WithNumber("pxX", mcp.Description("Drop X in pixels"), mcp.Required()),
		mcp.WithNumber("pxY", mcp.Description("Drop Y in pixels"), mcp.Required()),
	), s.handleAddItemAtPixel)

	// ── list_items ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_items",
		mcp.WithDescription("List the items on a canvas with their layouts for the current viewport"),
		mcp.WithString("canvasId", mcp.Description("Canvas ID (optional, defaults to active canvas)")),
	), s.handleListItems)

	// ── list_component_types ───────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_component_types",
		mcp.WithDescription("List the registered component types with their size constraints"),
	), s.handleListComponentTypes)

	// ── move_item ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_item",
		mcp.WithDescription("Move an item to a new grid-unit position on its canvas. Undoable."),
		mcp.WithString("itemId", mcp.Description("Item ID"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("New X in grid units"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("New Y in grid units"), mcp.Required()),
	), s.handleMoveItem)

	// ── resize_item ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("resize_item",
		mcp.WithDescription("Resize and reposition an item. The result is clamped to the component's size limits and the canvas. Undoable."),
		mcp.WithString("itemId", mcp.Description("Item ID"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("New X in grid units"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("New Y in grid units"), mcp.Required()),
		mcp.WithNumber("width", mcp.Description("New width in grid units"), mcp.Required()),
		mcp.WithNumber("height", mcp.Description("New height in grid units"), mcp.Required()),
	), s.handleResizeItem)

	// ── move_item_to_canvas ────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_item_to_canvas",
		mcp.WithDescription("Move an item to another canvas at a pixel drop position. The target canvas needs a primed grid cache. Undoable as a single step."),
		mcp.WithString("itemId", mcp.Description("Item ID"), mcp.Required()),
		mcp.WithString("targetCanvasId", mcp.Description("Destination canvas ID"), mcp.Required()),
		mcp.WithNumber("dropPxX", mcp.Description("Drop X in pixels on the target canvas"), mcp.Required()),
		mcp.WithNumber("dropPxY", mcp.Description("Drop Y in pixels on the target canvas"), mcp.Required()),
	), s.handleMoveItemToCanvas)

	// ── update_item_config ─────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_item_config",
		mcp.WithDescription("Replace an item's config. The config is validated against the component schema. Undoable."),
		mcp.WithString("itemId", mcp.Description("Item ID"), mcp.Required()),
		mcp.WithString("config", mcp.Description("New config as a JSON object"), mcp.Required()),
	), s.handleUpdateItemConfig)

	// ── delete_item (destructive) ──────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_item",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete an item from its canvas. Requires user approval. Undoable."),
		mcp.WithString("itemId", mcp.Description("Item ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteItem)

	// ── add_items_batch ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_items_batch",
		mcp.WithDescription("Add several items to one canvas in a single undoable step. Invalid entries are skipped."),
		mcp.WithString("canvasId", mcp.Description("Canvas ID (optional, defaults to active canvas)")),
		mcp.WithString("items", mcp.Description(`JSON array of {"type","name","x","y","width","height","config"}`), mcp.Required()),
	), s.handleAddItemsBatch)

	// ── delete_items_batch (destructive) ───────────────
	s.mcp.AddTool(mcp.NewTool("delete_items_batch",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete several items in a single undoable step. Requires user approval."),
		mcp.WithString("itemIds", mcp.Description("Comma-separated item IDs"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteItemsBatch)

	// ── update_items_batch ─────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_items_batch",
		mcp.WithDescription("Update the configs of several items in a single undoable step. Invalid entries are skipped."),
		mcp.WithString("updates", mcp.Description(`JSON array of {"itemId","config"}`), mcp.Required()),
	), s.handleUpdateItemsBatch)
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleAddItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	componentType, _ := args["type"].(string)
	if componentType == "" {
		return nil, fmt.Errorf("type is required")
	}
	canvasID, err := s.resolveCanvasID(args)
	if err != nil {
		return nil, err
	}
	name, _ := args["name"].(string)

	cfg, err := parseConfigArg(args, "config")
	if err != nil {
		return nil, err
	}

	proposed := domain.Layout{
		X:      getFloat(args, "x", 0),
		Y:      getFloat(args, "y", 0),
		Width:  getFloat(args, "width", 0),
		Height: getFloat(args, "height", 0),
	}
	item, err := s.engine().AddItem(ctx, canvasID, componentType, name, proposed, cfg)
	if err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}
	return jsonResult(item)
}

func (s *Server) handleAddItemAtPixel(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	componentType, _ := args["type"].(string)
	if componentType == "" {
		return nil, fmt.Errorf("type is required")
	}
	canvasID, err := s.resolveCanvasID(args)
	if err != nil {
		return nil, err
	}
	name, _ := args["name"].(string)

	item, err := s.engine().AddItemAtPixel(ctx, canvasID, componentType, name,
		getFloat(args, "pxX", 0), getFloat(args, "pxY", 0))
	if err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}
	return jsonResult(item)
}

func (s *Server) handleListItems(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	canvasID, err := s.resolveCanvasID(args)
	if err != nil {
		return nil, err
	}
	type itemSummary struct {
		ID     string        `json:"id"`
		Type   string        `json:"type"`
		Name   string        `json:"name"`
		ZIndex int           `json:"zIndex"`
		Layout domain.Layout `json:"layout"`
	}
	var out []itemSummary
	found := false
	s.engine().WithState(func(st *grid.State) {
		c := st.Canvas(canvasID)
		if c == nil {
			return
		}
		found = true
		out = make([]itemSummary, 0, len(c.Items))
		for i := range c.Items {
			it := &c.Items[i]
			out = append(out, itemSummary{
				ID:     it.ID,
				Type:   it.Type,
				Name:   it.Name,
				ZIndex: it.ZIndex,
				Layout: it.Layout(st.Viewport),
			})
		}
	})
	if !found {
		return nil, fmt.Errorf("unknown canvas %s", canvasID)
	}
	return jsonResult(out)
}

func (s *Server) handleListComponentTypes(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reg := s.engine().Registry()
	if reg == nil {
		return jsonResult([]any{})
	}
	type typeSummary struct {
		Type        string      `json:"type"`
		Name        string      `json:"name"`
		MinSize     domain.Size `json:"minSize"`
		MaxSize     domain.Size `json:"maxSize"`
		DefaultSize domain.Size `json:"defaultSize"`
	}
	var out []typeSummary
	for _, t := range reg.Types() {
		def, _ := reg.Lookup(t)
		out = append(out, typeSummary{
			Type:        def.Type,
			Name:        def.Name,
			MinSize:     def.MinSize,
			MaxSize:     def.MaxSize,
			DefaultSize: def.DefaultSize,
		})
	}
	return jsonResult(out)
}

func (s *Server) handleMoveItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	itemID, _ := args["itemId"].(string)
	if itemID == "" {
		return nil, fmt.Errorf("itemId is required")
	}
	if !s.engine().MoveItem(ctx, itemID, getFloat(args, "x", 0), getFloat(args, "y", 0)) {
		return nil, fmt.Errorf("unknown item %s", itemID)
	}
	return textResult(fmt.Sprintf("Item %s moved", itemID)), nil
}

func (s *Server) handleResizeItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	itemID, _ := args["itemId"].(string)
	if itemID == "" {
		return nil, fmt.Errorf("itemId is required")
	}
	proposed := domain.Layout{
		X:      getFloat(args, "x", 0),
		Y:      getFloat(args, "y", 0),
		Width:  getFloat(args, "width", 0),
		Height: getFloat(args, "height", 0),
	}
	if err := s.engine().ResizeItem(ctx, itemID, proposed); err != nil {
		return nil, fmt.Errorf("resize item: %w", err)
	}
	return textResult(fmt.Sprintf("Item %s resized", itemID)), nil
}

func (s *Server) handleMoveItemToCanvas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	itemID, _ := args["itemId"].(string)
	targetCanvasID, _ := args["targetCanvasId"].(string)
	if itemID == "" || targetCanvasID == "" {
		return nil, fmt.Errorf("itemId and targetCanvasId are required")
	}
	err := s.engine().MoveItemToCanvas(ctx, itemID, targetCanvasID,
		getFloat(args, "dropPxX", 0), getFloat(args, "dropPxY", 0))
	if err != nil {
		return nil, fmt.Errorf("move item to canvas: %w", err)
	}
	return textResult(fmt.Sprintf("Item %s moved to canvas %s", itemID, targetCanvasID)), nil
}

func (s *Server) handleUpdateItemConfig(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	itemID, _ := args["itemId"].(string)
	if itemID == "" {
		return nil, fmt.Errorf("itemId is required")
	}
	cfg, err := parseConfigArg(args, "config")
	if err != nil {
		return nil, err
	}
	if err := s.engine().UpdateItemConfig(ctx, itemID, cfg); err != nil {
		return nil, fmt.Errorf("update config: %w", err)
	}
	return textResult(fmt.Sprintf("Item %s config updated", itemID)), nil
}

func (s *Server) handleDeleteItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	itemID, _ := args["itemId"].(string)
	if itemID == "" {
		return nil, fmt.Errorf("itemId is required")
	}
	pending := s.engine().RequestDelete(itemID)
	if pending == nil {
		return nil, fmt.Errorf("unknown item %s", itemID)
	}
	item := pending.Item()

	meta := fmt.Sprintf(`{"itemIds":["%s"]}`, itemID)
	approved, err := s.approval.Request("delete_item",
		fmt.Sprintf("Delete %s item %q (%s)", item.Type, item.Name, itemID), meta)
	if err != nil || !approved {
		pending.Cancel()
		return textResult("Action rejected by user"), nil
	}

	if !pending.Commit(ctx) {
		return nil, fmt.Errorf("delete item %s", itemID)
	}
	return textResult(fmt.Sprintf("Item %s deleted", itemID)), nil
}

func (s *Server) handleAddItemsBatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	canvasID, err := s.resolveCanvasID(args)
	if err != nil {
		return nil, err
	}
	raw, _ := args["items"].(string)

	var entries []struct {
		Type   string        `json:"type"`
		Name   string        `json:"name"`
		X      float64       `json:"x"`
		Y      float64       `json:"y"`
		Width  float64       `json:"width"`
		Height float64       `json:"height"`
		Config domain.Config `json:"config"`
	}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("parse items: %w", err)
	}

	specs := make([]grid.ItemSpec, 0, len(entries))
	for _, e := range entries {
		specs = append(specs, grid.ItemSpec{
			Type:   e.Type,
			Name:   e.Name,
			Layout: domain.Layout{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height},
			Config: e.Config,
		})
	}

	added := s.engine().AddItemsBatch(ctx, canvasID, specs)
	return jsonResult(map[string]any{
		"requested": len(specs),
		"added":     len(added),
		"items":     added,
	})
}

func (s *Server) handleDeleteItemsBatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	raw, _ := args["itemIds"].(string)
	ids := splitIDs(raw)
	if len(ids) == 0 {
		return nil, fmt.Errorf("itemIds is required")
	}

	meta := fmt.Sprintf(`{"itemIds":["%s"]}`, strings.Join(ids, `","`))
	approved, err := s.approval.Request("delete_items_batch",
		fmt.Sprintf("Delete %d item(s)", len(ids)), meta)
	if err != nil || !approved {
		return textResult("Action rejected by user"), nil
	}

	deleted := s.engine().DeleteItemsBatch(ctx, ids)
	return textResult(fmt.Sprintf("Deleted %d of %d item(s)", deleted, len(ids))), nil
}

func (s *Server) handleUpdateItemsBatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, _ := req.GetArguments()["updates"].(string)

	var entries []struct {
		ItemID string        `json:"itemId"`
		Config domain.Config `json:"config"`
	}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("parse updates: %w", err)
	}

	updates := make([]grid.ConfigUpdate, 0, len(entries))
	for _, e := range entries {
		updates = append(updates, grid.ConfigUpdate{ItemID: e.ItemID, Config: e.Config})
	}

	applied := s.engine().UpdateItemsBatch(ctx, updates)
	return textResult(fmt.Sprintf("Updated %d of %d item(s)", applied, len(updates))), nil
}

func parseConfigArg(args map[string]any, key string) (domain.Config, error) {
	raw, _ := args[key].(string)
	if raw == "" {
		return nil, nil
	}
	var cfg domain.Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", key, err)
	}
	return cfg, nil
}
