package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"gridboard/internal/grid"
	"gridboard/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Grid Service — document lifecycle around the layout engine
// ─────────────────────────────────────────────────────────────

// GridService binds a layout engine to persistent documents: open,
// save, revision history, scheduled autosave and external-change
// watching. The engine stays the single source of truth for layout
// state; the service only moves exported snapshots in and out.
type GridService struct {
	engine  *grid.Engine
	docs    *storage.DocumentStore
	revs    *storage.RevisionStore
	emitter grid.EventEmitter

	mu         sync.Mutex
	documentID string

	// autosave / watcher lifecycle
	cronSched *cron.Cron
	watcher   *fileWatcher
}

// NewGridService creates a GridService.
func NewGridService(engine *grid.Engine, docs *storage.DocumentStore, revs *storage.RevisionStore, emitter grid.EventEmitter) *GridService {
	if emitter == nil {
		emitter = grid.NoopEmitter{}
	}
	return &GridService{engine: engine, docs: docs, revs: revs, emitter: emitter}
}

// Engine returns the underlying layout engine.
func (s *GridService) Engine() *grid.Engine { return s.engine }

// DocumentID returns the id of the open document, or "".
func (s *GridService) DocumentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documentID
}

// CreateDocument persists the engine's current state as a new named
// document and makes it the open document.
func (s *GridService) CreateDocument(ctx context.Context, name string) (*storage.Document, error) {
	data, err := s.engine.ExportJSON()
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	doc := &storage.Document{
		ID:        uuid.New().String(),
		Name:      name,
		StateJSON: string(data),
	}
	if err := s.docs.Create(doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	s.mu.Lock()
	s.documentID = doc.ID
	s.mu.Unlock()
	s.emitter.Emit(ctx, "document:created", map[string]string{"documentId": doc.ID})
	return doc, nil
}

// OpenDocument loads a stored document into the engine and makes it
// the open document. The engine's history and coordinate cache are
// cleared by the import.
func (s *GridService) OpenDocument(ctx context.Context, id string) error {
	doc, err := s.docs.Get(id)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	if err := s.engine.ImportJSON(ctx, []byte(doc.StateJSON)); err != nil {
		return fmt.Errorf("open document %s: %w", id, err)
	}
	s.mu.Lock()
	s.documentID = id
	s.mu.Unlock()
	s.emitter.Emit(ctx, "document:opened", map[string]string{"documentId": id})
	return nil
}

// Save persists the engine's current state into the open document and
// records a revision snapshot under the given label.
func (s *GridService) Save(ctx context.Context, label string) error {
	s.mu.Lock()
	id := s.documentID
	s.mu.Unlock()
	if id == "" {
		return fmt.Errorf("save: no open document")
	}
	data, err := s.engine.ExportJSON()
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if err := s.docs.UpdateState(id, string(data)); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if _, err := s.revs.Add(id, label, string(data)); err != nil {
		return fmt.Errorf("save revision: %w", err)
	}
	s.emitter.Emit(ctx, "document:saved", map[string]string{"documentId": id, "label": label})
	return nil
}

// RestoreRevision loads a revision snapshot of the open document back
// into the engine.
func (s *GridService) RestoreRevision(ctx context.Context, revisionID string) error {
	rev, err := s.revs.Get(revisionID)
	if err != nil {
		return fmt.Errorf("restore revision: %w", err)
	}
	if err := s.engine.ImportJSON(ctx, []byte(rev.SnapshotJSON)); err != nil {
		return fmt.Errorf("restore revision %s: %w", revisionID, err)
	}
	s.emitter.Emit(ctx, "document:revision-restored", map[string]string{"revisionId": revisionID})
	return nil
}

// ListDocuments returns all stored documents.
func (s *GridService) ListDocuments() ([]storage.Document, error) {
	return s.docs.List()
}

// ListRevisions returns the open document's revisions, newest first.
func (s *GridService) ListRevisions() ([]storage.Revision, error) {
	s.mu.Lock()
	id := s.documentID
	s.mu.Unlock()
	if id == "" {
		return nil, fmt.Errorf("list revisions: no open document")
	}
	return s.revs.List(id)
}

// DeleteDocument removes a stored document and its revisions. Deleting
// the open document leaves the engine state in place but detaches it.
func (s *GridService) DeleteDocument(ctx context.Context, id string) error {
	if err := s.docs.Delete(id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	s.mu.Lock()
	if s.documentID == id {
		s.documentID = ""
	}
	s.mu.Unlock()
	s.emitter.Emit(ctx, "document:deleted", map[string]string{"documentId": id})
	return nil
}

// ── Autosave (cron) ────────────────────────────────────────

// StartAutosave schedules periodic saves of the open document using a
// cron expression (e.g. "@every 30s"). Replaces any running schedule.
func (s *GridService) StartAutosave(ctx context.Context, expr string) error {
	c := cron.New()
	_, err := c.AddFunc(expr, func() {
		if s.DocumentID() == "" {
			return
		}
		if err := s.Save(ctx, "autosave"); err != nil {
			log.Printf("autosave: %v", err)
			return
		}
		log.Printf("autosave: saved document %s", s.DocumentID())
	})
	if err != nil {
		return fmt.Errorf("autosave: invalid cron expression %q: %w", expr, err)
	}
	s.StopAutosave()
	c.Start()
	s.mu.Lock()
	s.cronSched = c
	s.mu.Unlock()
	return nil
}

// StopAutosave cancels the autosave schedule, if any.
func (s *GridService) StopAutosave() {
	s.mu.Lock()
	c := s.cronSched
	s.cronSched = nil
	s.mu.Unlock()
	if c != nil {
		c.Stop()
	}
}

// Close stops the autosave schedule and any file watcher.
func (s *GridService) Close() {
	s.StopAutosave()
	s.StopWatching()
}
