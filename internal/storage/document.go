package storage

import (
	"fmt"
	"time"
)

// Document is one saved grid document. StateJSON holds the engine's
// exported form verbatim.
type Document struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StateJSON string    `json:"stateJson"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DocumentStore persists grid documents in SQLite.
type DocumentStore struct {
	db *DB
}

func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Create inserts a new document.
func (s *DocumentStore) Create(d *Document) error {
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	_, err := s.db.Conn().Exec(
		`INSERT INTO documents (id, name, state_json, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.StateJSON, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

// Get returns a document by ID.
func (s *DocumentStore) Get(id string) (*Document, error) {
	d := &Document{}
	err := s.db.Conn().QueryRow(
		`SELECT id, name, state_json, created_at, updated_at FROM documents WHERE id = ?`, id,
	).Scan(&d.ID, &d.Name, &d.StateJSON, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

// List returns all documents, most recently updated first.
func (s *DocumentStore) List() ([]Document, error) {
	rows, err := s.db.Conn().Query(
		`SELECT id, name, state_json, created_at, updated_at FROM documents ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Name, &d.StateJSON, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// UpdateState replaces a document's stored state.
func (s *DocumentStore) UpdateState(id, stateJSON string) error {
	_, err := s.db.Conn().Exec(
		`UPDATE documents SET state_json = ?, updated_at = ? WHERE id = ?`,
		stateJSON, time.Now(), id,
	)
	return err
}

// Rename changes a document's display name.
func (s *DocumentStore) Rename(id, name string) error {
	_, err := s.db.Conn().Exec(
		`UPDATE documents SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now(), id,
	)
	return err
}

// Delete removes a document and its revisions.
func (s *DocumentStore) Delete(id string) error {
	_, _ = s.db.Conn().Exec(`DELETE FROM revisions WHERE document_id = ?`, id)
	_, err := s.db.Conn().Exec(`DELETE FROM documents WHERE id = ?`, id)
	return err
}
