package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gridboard/internal/domain"
	"gridboard/internal/grid"
	mcpserver "gridboard/internal/mcp"
	"gridboard/internal/service"
	"gridboard/internal/storage"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".local", "share", "gridboard")
	dbPath := filepath.Join(dataDir, "gridboard.db")

	db, err := storage.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	docs := storage.NewDocumentStore(db)
	revs := storage.NewRevisionStore(db)

	emitter := grid.NoopEmitter{}

	engine := grid.NewEngine(grid.Options{
		Registry: builtinRegistry(),
		Emitter:  emitter,
		Config:   grid.DefaultConfig(),
	})

	svc := service.NewGridService(engine, docs, revs, emitter)
	defer svc.Close()

	// Snapshot the open document every five minutes while the server runs.
	if err := svc.StartAutosave(ctx, "@every 5m"); err != nil {
		log.Printf("autosave disabled: %v", err)
	}

	mcpSrv := mcpserver.New(ctx, mcpserver.Deps{
		Emitter:    emitter,
		Service:    svc,
		ApprovalDB: db.Conn(), // Enable SQLite-based approval IPC
	})

	log.Println("[MCP] Starting standalone stdio server...")
	if err := mcpSrv.ServeStdio(); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}

// builtinRegistry registers the stock component palette. Embedding
// applications replace this with their own definitions.
func builtinRegistry() *domain.Registry {
	r := domain.NewRegistry()
	r.Register(domain.ComponentDefinition{
		Type:        "header",
		Name:        "Header",
		MinSize:     domain.Size{Width: 4, Height: 2},
		MaxSize:     domain.Size{Width: 100, Height: 40},
		DefaultSize: domain.Size{Width: 10, Height: 6},
		Schema: map[string]domain.ConfigKind{
			"content":  domain.ConfigString,
			"level":    domain.ConfigNumber,
			"centered": domain.ConfigBool,
		},
	})
	r.Register(domain.ComponentDefinition{
		Type:        "text",
		Name:        "Text",
		MinSize:     domain.Size{Width: 4, Height: 2},
		MaxSize:     domain.Size{Width: 100, Height: 200},
		DefaultSize: domain.Size{Width: 20, Height: 10},
		Schema: map[string]domain.ConfigKind{
			"content":  domain.ConfigString,
			"fontSize": domain.ConfigNumber,
			"bold":     domain.ConfigBool,
		},
	})
	r.Register(domain.ComponentDefinition{
		Type:        "image",
		Name:        "Image",
		MinSize:     domain.Size{Width: 4, Height: 4},
		MaxSize:     domain.Size{Width: 100, Height: 120},
		DefaultSize: domain.Size{Width: 16, Height: 12},
		Schema: map[string]domain.ConfigKind{
			"src": domain.ConfigString,
			"alt": domain.ConfigString,
			"fit": domain.ConfigString,
		},
	})
	r.Register(domain.ComponentDefinition{
		Type:        "button",
		Name:        "Button",
		MinSize:     domain.Size{Width: 4, Height: 2},
		MaxSize:     domain.Size{Width: 40, Height: 8},
		DefaultSize: domain.Size{Width: 8, Height: 3},
		Schema: map[string]domain.ConfigKind{
			"label": domain.ConfigString,
			"href":  domain.ConfigString,
		},
	})
	r.Register(domain.ComponentDefinition{
		Type:        "divider",
		Name:        "Divider",
		MinSize:     domain.Size{Width: 4, Height: 1},
		MaxSize:     domain.Size{Width: 100, Height: 2},
		DefaultSize: domain.Size{Width: 100, Height: 1},
	})
	r.Register(domain.ComponentDefinition{
		Type:        "list",
		Name:        "List",
		MinSize:     domain.Size{Width: 6, Height: 4},
		MaxSize:     domain.Size{Width: 100, Height: 120},
		DefaultSize: domain.Size{Width: 20, Height: 12},
		Schema: map[string]domain.ConfigKind{
			"items":   domain.ConfigList,
			"ordered": domain.ConfigBool,
		},
	})
	return r
}
