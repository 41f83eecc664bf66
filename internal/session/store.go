// Package session persists chat sessions and their navigation identity.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vibeframe/vibeframe/internal/db"
)

// Session is one app-building conversation.
type Session struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	EncodedTitle string    `json:"encoded_title"`
	Prompt       string    `json:"prompt"`
	Code         string    `json:"code,omitempty"`
	Screenshot   string    `json:"screenshot,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity returns the session's navigation identity.
func (s Session) Identity() Identity {
	return Identity{SessionID: s.ID, EncodedTitle: s.EncodedTitle}
}

// Store persists sessions in SQLite.
type Store struct {
	db *db.DB
}

// NewStore creates a session store.
func NewStore(d *db.DB) *Store {
	return &Store{db: d}
}

// Create inserts a new session with a generated id and encoded title.
func (s *Store) Create(ctx context.Context, title, prompt string) (*Session, error) {
	sess := &Session{
		ID:           uuid.NewString(),
		Title:        title,
		EncodedTitle: EncodeTitle(title),
		Prompt:       prompt,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO sessions (id, title, encoded_title, prompt)
		VALUES (?, ?, ?, ?)
		RETURNING created_at, updated_at`,
		sess.ID, sess.Title, sess.EncodedTitle, sess.Prompt).
		Scan(&sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return sess, nil
}

// Get fetches a session by id. Returns nil when it does not exist.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	var sess Session
	var screenshot sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, encoded_title, prompt, code, screenshot, created_at, updated_at
		FROM sessions WHERE id = ?`, id).
		Scan(&sess.ID, &sess.Title, &sess.EncodedTitle, &sess.Prompt,
			&sess.Code, &screenshot, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting session %s: %w", id, err)
	}
	sess.Screenshot = screenshot.String
	return &sess, nil
}

// List returns sessions most recently updated first.
func (s *Store) List(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, encoded_title, prompt, created_at, updated_at
		FROM sessions ORDER BY updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Title, &sess.EncodedTitle,
			&sess.Prompt, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// SaveCode stores the latest generated source for a session.
func (s *Store) SaveCode(ctx context.Context, id, code string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET code = ?, updated_at = datetime('now') WHERE id = ?`,
		code, id)
	if err != nil {
		return fmt.Errorf("saving code for session %s: %w", id, err)
	}
	return nil
}

// SaveScreenshot stores the latest preview screenshot (base64 data URL).
func (s *Store) SaveScreenshot(ctx context.Context, id, data string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET screenshot = ?, updated_at = datetime('now') WHERE id = ?`,
		data, id)
	if err != nil {
		return fmt.Errorf("saving screenshot for session %s: %w", id, err)
	}
	return nil
}
