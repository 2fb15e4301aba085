package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerDocumentTools() {
	// ── undo / redo ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the most recent layout change"),
	), s.handleUndo)

	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the most recently undone layout change"),
	), s.handleRedo)

	// ── export_layout / import_layout ──────────────────
	s.mcp.AddTool(mcp.NewTool("export_layout",
		mcp.WithDescription("Export the full layout state as JSON"),
	), s.handleExportLayout)

	s.mcp.AddTool(mcp.NewTool("import_layout",
		mcp.WithDescription("🛑 DESTRUCTIVE: Replace the full layout state with an exported JSON snapshot. Requires user approval. Clears undo history."),
		mcp.WithString("data", mcp.Description("Exported layout JSON"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleImportLayout)

	// ── documents ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_document",
		mcp.WithDescription("Create and open a new named document holding the current layout"),
		mcp.WithString("name", mcp.Description("Document name"), mcp.Required()),
	), s.handleCreateDocument)

	s.mcp.AddTool(mcp.NewTool("open_document",
		mcp.WithDescription("Open a saved document, replacing the current layout. Clears undo history."),
		mcp.WithString("documentId", mcp.Description("Document ID"), mcp.Required()),
	), s.handleOpenDocument)

	s.mcp.AddTool(mcp.NewTool("save_document",
		mcp.WithDescription("Save the current layout into the open document and record a revision"),
		mcp.WithString("label", mcp.Description("Revision label (optional)")),
	), s.handleSaveDocument)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List saved documents, most recently updated first"),
	), s.handleListDocuments)

	s.mcp.AddTool(mcp.NewTool("delete_document",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a saved document and all of its revisions. Requires user approval. Not undoable."),
		mcp.WithString("documentId", mcp.Description("Document ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteDocument)

	// ── revisions ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_revisions",
		mcp.WithDescription("List the saved revisions of the open document, newest first"),
	), s.handleListRevisions)

	s.mcp.AddTool(mcp.NewTool("restore_revision",
		mcp.WithDescription("Restore the open document's layout from a saved revision. Clears undo history."),
		mcp.WithString("revisionId", mcp.Description("Revision ID"), mcp.Required()),
	), s.handleRestoreRevision)
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleUndo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.engine().Undo(ctx) {
		return textResult("Nothing to undo"), nil
	}
	return textResult("Undone"), nil
}

func (s *Server) handleRedo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.engine().Redo(ctx) {
		return textResult("Nothing to redo"), nil
	}
	return textResult("Redone"), nil
}

func (s *Server) handleExportLayout(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := s.engine().ExportJSON()
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return textResult(string(data)), nil
}

func (s *Server) handleImportLayout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, _ := req.GetArguments()["data"].(string)
	if data == "" {
		return nil, fmt.Errorf("data is required")
	}

	approved, err := s.approval.Request("import_layout",
		"Replace the entire layout with an imported snapshot", "{}")
	if err != nil || !approved {
		return textResult("Action rejected by user"), nil
	}

	if err := s.engine().ImportJSON(ctx, []byte(data)); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	s.syncActiveCanvas()
	return textResult("Layout imported"), nil
}

func (s *Server) handleCreateDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := req.GetArguments()["name"].(string)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	doc, err := s.svc.CreateDocument(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return jsonResult(doc)
}

func (s *Server) handleOpenDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, _ := req.GetArguments()["documentId"].(string)
	if id == "" {
		return nil, fmt.Errorf("documentId is required")
	}
	if err := s.svc.OpenDocument(ctx, id); err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	s.syncActiveCanvas()
	return textResult(fmt.Sprintf("Document %s opened", id)), nil
}

func (s *Server) handleSaveDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	label, _ := req.GetArguments()["label"].(string)
	if err := s.svc.Save(ctx, label); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return textResult("Document saved"), nil
}

func (s *Server) handleListDocuments(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.svc.ListDocuments()
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return jsonResult(docs)
}

func (s *Server) handleDeleteDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, _ := req.GetArguments()["documentId"].(string)
	if id == "" {
		return nil, fmt.Errorf("documentId is required")
	}

	meta := fmt.Sprintf(`{"documentIds":["%s"]}`, id)
	approved, err := s.approval.Request("delete_document",
		fmt.Sprintf("Delete document %s and its revisions", id), meta)
	if err != nil || !approved {
		return textResult("Action rejected by user"), nil
	}

	if err := s.svc.DeleteDocument(ctx, id); err != nil {
		return nil, fmt.Errorf("delete document: %w", err)
	}
	return textResult(fmt.Sprintf("Document %s deleted", id)), nil
}

func (s *Server) handleListRevisions(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	revs, err := s.svc.ListRevisions()
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	return jsonResult(revs)
}

func (s *Server) handleRestoreRevision(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, _ := req.GetArguments()["revisionId"].(string)
	if id == "" {
		return nil, fmt.Errorf("revisionId is required")
	}
	if err := s.svc.RestoreRevision(ctx, id); err != nil {
		return nil, fmt.Errorf("restore revision: %w", err)
	}
	s.syncActiveCanvas()
	return textResult(fmt.Sprintf("Revision %s restored", id)), nil
}
