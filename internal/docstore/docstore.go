// Package docstore is the document database backing generated apps and the
// host's data inspector. Each logical database is a named partition of one
// SQLite table; sandbox-originated opens go through the storage namespacing
// guard before they reach this package, so names arriving here are final.
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vibeframe/vibeframe/internal/db"
)

// Document is one stored JSON document.
type Document struct {
	ID        string          `json:"_id"`
	Body      json.RawMessage `json:"body"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Store provides access to all logical databases.
type Store struct {
	db *db.DB
}

// NewStore creates a store over the shared database handle.
func NewStore(d *db.DB) *Store {
	return &Store{db: d}
}

// Open returns a handle to a logical database. The database springs into
// existence on first write; Open never fails on a missing name.
func (s *Store) Open(name string) (*Database, error) {
	if name == "" {
		return nil, fmt.Errorf("database name is required")
	}
	return &Database{store: s, name: name}, nil
}

// ListDatabases returns the distinct logical database names with at least
// one document, filtered to the given prefix ("" for all).
func (s *Store) ListDatabases(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT db_name FROM documents WHERE db_name LIKE ? ORDER BY db_name`,
		prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("listing databases: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning database name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Database is a handle to one logical database.
type Database struct {
	store *Store
	name  string
}

// Name returns the (possibly namespaced) database name.
func (d *Database) Name() string { return d.name }

// Put upserts a document. An empty id gets a generated one; the final id
// is returned.
func (d *Database) Put(ctx context.Context, id string, body json.RawMessage) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if len(body) == 0 {
		body = json.RawMessage("{}")
	}
	if !json.Valid(body) {
		return "", fmt.Errorf("document body is not valid JSON")
	}

	_, err := d.store.db.ExecContext(ctx, `
		INSERT INTO documents (db_name, doc_id, body) VALUES (?, ?, ?)
		ON CONFLICT(db_name, doc_id)
		DO UPDATE SET body = excluded.body, updated_at = datetime('now')`,
		d.name, id, string(body))
	if err != nil {
		return "", fmt.Errorf("putting document %s: %w", id, err)
	}
	return id, nil
}

// Get fetches one document. Returns nil when the document does not exist.
func (d *Database) Get(ctx context.Context, id string) (*Document, error) {
	var doc Document
	var body string
	err := d.store.db.QueryRowContext(ctx, `
		SELECT doc_id, body, created_at, updated_at FROM documents
		WHERE db_name = ? AND doc_id = ?`, d.name, id).
		Scan(&doc.ID, &body, &doc.CreatedAt, &doc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting document %s: %w", id, err)
	}
	doc.Body = json.RawMessage(body)
	return &doc, nil
}

// List returns all documents in the database, oldest first.
func (d *Database) List(ctx context.Context) ([]Document, error) {
	rows, err := d.store.db.QueryContext(ctx, `
		SELECT doc_id, body, created_at, updated_at FROM documents
		WHERE db_name = ? ORDER BY created_at, doc_id`, d.name)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var body string
		if err := rows.Scan(&doc.ID, &body, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc.Body = json.RawMessage(body)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Delete removes a document. Deleting a missing document is not an error.
func (d *Database) Delete(ctx context.Context, id string) error {
	_, err := d.store.db.ExecContext(ctx,
		`DELETE FROM documents WHERE db_name = ? AND doc_id = ?`, d.name, id)
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	return nil
}
