package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ExportEvent is one copy of a compiled prompt, queued for recording.
type ExportEvent struct {
	SessionKey string
	UserSub    string // empty string = anonymous
	Domain     string
	Subject    string
	Prompt     string
}

// Export is a row in the exports table.
type Export struct {
	ID         string    `db:"id"`
	SessionKey string    `db:"session_key"`
	UserSub    string    `db:"user_sub"`
	Domain     string    `db:"domain"`
	Subject    string    `db:"subject"`
	Prompt     string    `db:"prompt"`
	CreatedAt  time.Time `db:"created_at"`
}

// ExportStats holds export counts for a session.
type ExportStats struct {
	Total   int64 `json:"total"`
	Last7d  int64 `json:"last_7d"`
	Last30d int64 `json:"last_30d"`
}

// ExportStore is the sqlx-backed store for exported prompts.
type ExportStore struct {
	db *sqlx.DB
}

// NewExportStore creates a new ExportStore.
func NewExportStore(db *sqlx.DB) *ExportStore {
	return &ExportStore{db: db}
}

// q rebinds ? placeholders to the driver's native format.
func (s *ExportStore) q(query string) string { return s.db.Rebind(query) }

// Record inserts an export row and returns it.
func (s *ExportStore) Record(ctx context.Context, e ExportEvent) (*Export, error) {
	x := &Export{
		ID:         uuid.New().String(),
		SessionKey: e.SessionKey,
		UserSub:    e.UserSub,
		Domain:     e.Domain,
		Subject:    e.Subject,
		Prompt:     e.Prompt,
		CreatedAt:  time.Now().UTC(),
	}

	var userSub interface{}
	if e.UserSub != "" {
		userSub = e.UserSub
	}

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO exports (id, session_key, user_sub, domain, subject, prompt, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), x.ID, x.SessionKey, userSub, x.Domain, x.Subject, x.Prompt, x.CreatedAt)
	if err != nil {
		return nil, err
	}
	return x, nil
}

// GetByID returns the export with the given id, or ErrNotFound.
func (s *ExportStore) GetByID(ctx context.Context, id string) (*Export, error) {
	var x Export
	err := s.db.GetContext(ctx, &x, s.q(`
		SELECT id, session_key, COALESCE(user_sub, '') AS user_sub, domain, subject, prompt, created_at
		FROM exports WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &x, nil
}

// ListBySession returns the most recent exports for a session, newest first.
func (s *ExportStore) ListBySession(ctx context.Context, sessionKey string, limit int) ([]*Export, error) {
	if limit <= 0 {
		limit = 20
	}
	var exports []*Export
	err := s.db.SelectContext(ctx, &exports, s.q(`
		SELECT id, session_key, COALESCE(user_sub, '') AS user_sub, domain, subject, prompt, created_at
		FROM exports
		WHERE session_key = ?
		ORDER BY created_at DESC
		LIMIT ?
	`), sessionKey, limit)
	if err != nil {
		return nil, err
	}
	return exports, nil
}

// Stats returns total, 7d, and 30d export counts for a session.
func (s *ExportStore) Stats(ctx context.Context, sessionKey string) (ExportStats, error) {
	var stats ExportStats
	now := time.Now().UTC()

	err := s.db.GetContext(ctx, &stats.Total,
		s.q(`SELECT COUNT(*) FROM exports WHERE session_key = ?`), sessionKey)
	if err != nil {
		return stats, err
	}

	err = s.db.GetContext(ctx, &stats.Last7d,
		s.q(`SELECT COUNT(*) FROM exports WHERE session_key = ? AND created_at >= ?`), sessionKey, now.AddDate(0, 0, -7))
	if err != nil {
		return stats, err
	}

	err = s.db.GetContext(ctx, &stats.Last30d,
		s.q(`SELECT COUNT(*) FROM exports WHERE session_key = ? AND created_at >= ?`), sessionKey, now.AddDate(0, 0, -30))
	if err != nil {
		return stats, err
	}

	return stats, nil
}

// CountAll returns the number of recorded exports.
func (s *ExportStore) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM exports`)
	return n, err
}
