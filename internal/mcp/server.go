package mcpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"gridboard/internal/grid"
	"gridboard/internal/service"
)

// Server is the MCP server for the grid builder. It exposes the layout
// engine's operations as tools so AI agents can place, move and batch-
// edit items, drive undo/redo, and manage documents.
type Server struct {
	mcp      *server.MCPServer
	emitter  grid.EventEmitter
	approval *ApprovalQueue
	svc      *service.GridService

	// Active canvas context (set by set_active_canvas tool). Guarded
	// by mu: the stdio server dispatches each tool call on its own
	// goroutine.
	mu             sync.Mutex
	activeCanvasID string
}

// Deps holds all dependencies passed to the MCP server.
type Deps struct {
	Emitter    grid.EventEmitter
	Service    *service.GridService
	ApprovalDB *sql.DB // When set, use SQLite-based approval (standalone mode)
}

// New creates and configures a new MCP server with all tools.
func New(ctx context.Context, deps Deps) *Server {
	approval := NewApprovalQueue(ctx, deps.Emitter)
	if deps.ApprovalDB != nil {
		approval.SetDB(deps.ApprovalDB)
	}
	s := &Server{
		emitter:  deps.Emitter,
		approval: approval,
		svc:      deps.Service,
	}

	s.mcp = server.NewMCPServer(
		"gridboard-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerCanvasTools()
	s.registerItemTools()
	s.registerDocumentTools()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// Approve forwards a user approval to the approval queue.
func (s *Server) Approve(actionID string) {
	s.approval.Approve(actionID)
}

// Reject forwards a user rejection to the approval queue.
func (s *Server) Reject(actionID string) {
	s.approval.Reject(actionID)
}

// ── Helpers ────────────────────────────────────────────────

func (s *Server) engine() *grid.Engine {
	return s.svc.Engine()
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// resolveCanvasID returns the canvasId from tool args or falls back to
// the active canvas.
func (s *Server) resolveCanvasID(args map[string]any) (string, error) {
	if cid, ok := args["canvasId"].(string); ok && cid != "" {
		return cid, nil
	}
	if active := s.getActiveCanvas(); active != "" {
		return active, nil
	}
	return "", fmt.Errorf("no canvasId provided and no active canvas set (use set_active_canvas first)")
}

func (s *Server) getActiveCanvas() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeCanvasID
}

func (s *Server) setActiveCanvas(id string) {
	s.mu.Lock()
	s.activeCanvasID = id
	s.mu.Unlock()
}

// syncActiveCanvas re-reads the engine's active canvas after an
// operation that replaced the whole state (import, open, restore).
func (s *Server) syncActiveCanvas() {
	var active string
	s.engine().WithState(func(st *grid.State) {
		active = st.ActiveCanvasID
	})
	s.setActiveCanvas(active)
}

func getFloat(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return fallback
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}

func boolPtr(v bool) *bool { return &v }
