package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Revision is one persisted state snapshot of a document.
type Revision struct {
	ID           string    `json:"id"`
	DocumentID   string    `json:"documentId"`
	Label        string    `json:"label"`
	SnapshotJSON string    `json:"snapshotJson"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RevisionStore manages document revision history in SQLite. History
// is linear and pruned to maxRevisions, oldest first.
type RevisionStore struct {
	db           *DB
	maxRevisions int
}

func NewRevisionStore(db *DB) *RevisionStore {
	return &RevisionStore{db: db, maxRevisions: 40}
}

// Add records a new revision snapshot for a document.
func (s *RevisionStore) Add(documentID, label, snapshotJSON string) (*Revision, error) {
	r := &Revision{
		ID:           uuid.New().String(),
		DocumentID:   documentID,
		Label:        label,
		SnapshotJSON: snapshotJSON,
		CreatedAt:    time.Now(),
	}
	_, err := s.db.Conn().Exec(
		`INSERT INTO revisions (id, document_id, label, snapshot_json, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.DocumentID, r.Label, r.SnapshotJSON, r.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert revision: %w", err)
	}

	s.pruneIfNeeded(documentID)
	return r, nil
}

// Get returns one revision by id.
func (s *RevisionStore) Get(id string) (*Revision, error) {
	r := &Revision{}
	err := s.db.Conn().QueryRow(
		`SELECT id, document_id, label, snapshot_json, created_at FROM revisions WHERE id = ?`, id,
	).Scan(&r.ID, &r.DocumentID, &r.Label, &r.SnapshotJSON, &r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get revision: %w", err)
	}
	return r, nil
}

// List returns all revisions of a document, newest first.
func (s *RevisionStore) List(documentID string) ([]Revision, error) {
	rows, err := s.db.Conn().Query(
		`SELECT id, document_id, label, snapshot_json, created_at
		 FROM revisions WHERE document_id = ? ORDER BY created_at DESC`, documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	var revs []Revision
	for rows.Next() {
		var r Revision
		if err := rows.Scan(&r.ID, &r.DocumentID, &r.Label, &r.SnapshotJSON, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		revs = append(revs, r)
	}
	return revs, rows.Err()
}

// ClearDocument removes all revisions of a document.
func (s *RevisionStore) ClearDocument(documentID string) error {
	_, err := s.db.Conn().Exec(`DELETE FROM revisions WHERE document_id = ?`, documentID)
	return err
}

// pruneIfNeeded removes the oldest revisions when the count exceeds
// the store's bound.
func (s *RevisionStore) pruneIfNeeded(documentID string) {
	var count int
	s.db.Conn().QueryRow(`SELECT COUNT(*) FROM revisions WHERE document_id = ?`, documentID).Scan(&count)
	if count <= s.maxRevisions {
		return
	}

	toDelete := count - s.maxRevisions

	// Collect IDs first, then delete — no writes under an open cursor.
	rows, err := s.db.Conn().Query(
		`SELECT id FROM revisions WHERE document_id = ?
		 ORDER BY created_at ASC LIMIT ?`, documentID, toDelete,
	)
	if err != nil {
		return
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	rows.Close()

	for _, id := range ids {
		s.db.Conn().Exec(`DELETE FROM revisions WHERE id = ?`, id)
	}
}
