package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"gridboard/internal/domain"
	"gridboard/internal/grid"
)

func (s *Server) registerCanvasTools() {
	// ── set_active_canvas ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_active_canvas",
		mcp.WithDescription("Set the canvas that item tools default to when no canvasId is given"),
		mcp.WithString("canvasId", mcp.Description("Canvas ID"), mcp.Required()),
	), s.handleSetActiveCanvas)

	// ── list_canvases ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_canvases",
		mcp.WithDescription("List all canvases with item counts, in layout order"),
	), s.handleListCanvases)

	// ── add_canvas ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_canvas",
		mcp.WithDescription("Add a new empty canvas"),
		mcp.WithString("name", mcp.Description("Canvas display name")),
	), s.handleAddCanvas)

	// ── remove_canvas (destructive) ────────────────────
	s.mcp.AddTool(mcp.NewTool("remove_canvas",
		mcp.WithDescription("🛑 DESTRUCTIVE: Remove a canvas and every item on it. Requires user approval. Undoable."),
		mcp.WithString("canvasId", mcp.Description("Canvas ID to remove"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRemoveCanvas)

	// ── set_grid_cache ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_grid_cache",
		mcp.WithDescription("Prime the coordinate cache with a measured container width for a canvas. Pixel-based tools require this."),
		mcp.WithString("canvasId", mcp.Description("Canvas ID (optional, defaults to active canvas)")),
		mcp.WithNumber("widthPx", mcp.Description("Measured container width in pixels"), mcp.Required()),
	), s.handleSetGridCache)

	// ── set_viewport ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_viewport",
		mcp.WithDescription("Switch between the desktop and mobile layouts"),
		mcp.WithString("viewport", mcp.Description("One of: desktop, mobile"), mcp.Required()),
	), s.handleSetViewport)
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleSetActiveCanvas(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	canvasID, _ := args["canvasId"].(string)
	if canvasID == "" {
		return nil, fmt.Errorf("canvasId is required")
	}
	if !s.engine().SetActiveCanvas(canvasID) {
		return nil, fmt.Errorf("unknown canvas %s", canvasID)
	}
	s.setActiveCanvas(canvasID)
	return textResult(fmt.Sprintf("Active canvas set to %s", canvasID)), nil
}

func (s *Server) handleListCanvases(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type canvasSummary struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		ItemCount int    `json:"itemCount"`
		Active    bool   `json:"active"`
	}
	var out []canvasSummary
	s.engine().WithState(func(st *grid.State) {
		for _, id := range st.CanvasIDs() {
			c := st.Canvas(id)
			out = append(out, canvasSummary{
				ID:        id,
				Name:      c.Name,
				ItemCount: len(c.Items),
				Active:    id == st.ActiveCanvasID,
			})
		}
	})
	return jsonResult(out)
}

func (s *Server) handleAddCanvas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := req.GetArguments()["name"].(string)
	id := s.engine().AddCanvas(ctx, name)
	if s.getActiveCanvas() == "" {
		s.setActiveCanvas(id)
	}
	return textResult(fmt.Sprintf("Canvas %s created", id)), nil
}

func (s *Server) handleRemoveCanvas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	canvasID, _ := args["canvasId"].(string)
	if canvasID == "" {
		return nil, fmt.Errorf("canvasId is required")
	}
	found := false
	itemCount := 0
	s.engine().WithState(func(st *grid.State) {
		if c := st.Canvas(canvasID); c != nil {
			found = true
			itemCount = len(c.Items)
		}
	})
	if !found {
		return nil, fmt.Errorf("unknown canvas %s", canvasID)
	}

	meta := fmt.Sprintf(`{"canvasIds":["%s"]}`, canvasID)
	approved, err := s.approval.Request("remove_canvas",
		fmt.Sprintf("Remove canvas %s with %d item(s)", canvasID, itemCount), meta)
	if err != nil || !approved {
		return textResult("Action rejected by user"), nil
	}

	if !s.engine().RemoveCanvas(ctx, canvasID) {
		return nil, fmt.Errorf("remove canvas %s", canvasID)
	}
	if s.getActiveCanvas() == canvasID {
		s.setActiveCanvas("")
	}
	return textResult(fmt.Sprintf("Canvas %s removed", canvasID)), nil
}

func (s *Server) handleSetGridCache(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	canvasID, err := s.resolveCanvasID(args)
	if err != nil {
		return nil, err
	}
	widthPx := getFloat(args, "widthPx", 0)
	if widthPx <= 0 {
		return nil, fmt.Errorf("widthPx must be positive")
	}
	tr := s.engine().Transform()
	tr.SetGridSizeCache(canvasID, widthPx, s.engine().GridConfig())

	// Report what the cache now holds, not what was passed in.
	width, err := tr.ContainerWidth(canvasID)
	if err != nil {
		return nil, err
	}
	ppu, err := tr.PixelsPerUnitX(canvasID)
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Canvas %s cached at %.0fpx (%.1f px/unit)", canvasID, width, ppu)), nil
}

func (s *Server) handleSetViewport(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	viewport, _ := req.GetArguments()["viewport"].(string)
	if !s.engine().SetViewport(domain.Viewport(viewport)) {
		return nil, fmt.Errorf("unknown viewport %q", viewport)
	}
	return textResult(fmt.Sprintf("Viewport set to %s", viewport)), nil
}
