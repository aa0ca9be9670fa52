// Package stores implements the core storage interfaces on SQLite.
package stores

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hay-kot/stager/internal/core/journal"
	"github.com/hay-kot/stager/internal/data/db"
)

// JournalStore implements journal.Store using SQLite.
type JournalStore struct {
	db *db.DB
}

var _ journal.Store = (*JournalStore)(nil)

// NewJournalStore creates a new SQLite-backed journal store.
func NewJournalStore(db *db.DB) *JournalStore {
	return &JournalStore{db: db}
}

// StartSession records the start of a review session.
func (s *JournalStore) StartSession(ctx context.Context, file string, pending int, lenient bool) (journal.Session, error) {
	sess := journal.Session{
		ID:        uuid.NewString(),
		File:      file,
		Pending:   pending,
		Lenient:   lenient,
		StartedAt: time.Now(),
	}

	_, err := s.db.Conn().ExecContext(ctx,
		"INSERT INTO sessions (id, file, pending, lenient, started_at) VALUES (?, ?, ?, ?, ?)",
		sess.ID, sess.File, sess.Pending, boolToInt(sess.Lenient), sess.StartedAt.UnixNano(),
	)
	if err != nil {
		return journal.Session{}, fmt.Errorf("failed to start session: %w", err)
	}

	return sess, nil
}

// EndSession stamps the session's end time.
func (s *JournalStore) EndSession(ctx context.Context, id string) error {
	res, err := s.db.Conn().ExecContext(ctx,
		"UPDATE sessions SET ended_at = ? WHERE id = ?",
		time.Now().UnixNano(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	if n == 0 {
		return journal.ErrNotFound
	}
	return nil
}

// GetSession returns a session by ID. Returns journal.ErrNotFound if not found.
func (s *JournalStore) GetSession(ctx context.Context, id string) (journal.Session, error) {
	var (
		sess      journal.Session
		lenient   int
		startedAt int64
		endedAt   sql.NullInt64
	)

	err := s.db.Conn().QueryRowContext(ctx,
		"SELECT id, file, pending, lenient, started_at, ended_at FROM sessions WHERE id = ?", id,
	).Scan(&sess.ID, &sess.File, &sess.Pending, &lenient, &startedAt, &endedAt)
	if IsNotFoundError(err) {
		return journal.Session{}, journal.ErrNotFound
	}
	if err != nil {
		return journal.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	sess.Lenient = lenient != 0
	sess.StartedAt = time.Unix(0, startedAt)
	if endedAt.Valid {
		t := time.Unix(0, endedAt.Int64)
		sess.EndedAt = &t
	}

	return sess, nil
}

// Record stores a decision, assigning its ID and timestamp when unset.
func (s *JournalStore) Record(ctx context.Context, d journal.Decision) (journal.Decision, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	_, err := s.db.Conn().ExecContext(ctx, `
		INSERT INTO decisions (id, session_id, file, row_index, label, saved, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.SessionID, d.File, d.Row, d.Label, boolToInt(d.Saved), d.Error, d.CreatedAt.UnixNano(),
	)
	if err != nil {
		return journal.Decision{}, fmt.Errorf("failed to record decision: %w", err)
	}

	return d, nil
}

// List returns decisions matching f, newest first.
func (s *JournalStore) List(ctx context.Context, f journal.Filter) ([]journal.Decision, error) {
	var (
		where []string
		args  []any
	)
	if f.File != "" {
		where = append(where, "file = ?")
		args = append(args, f.File)
	}
	if f.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, f.SessionID)
	}

	query := "SELECT id, session_id, file, row_index, label, saved, error, created_at FROM decisions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	decisions := make([]journal.Decision, 0)
	for rows.Next() {
		var (
			d         journal.Decision
			saved     int
			createdAt int64
		)
		if err := rows.Scan(&d.ID, &d.SessionID, &d.File, &d.Row, &d.Label, &saved, &d.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		d.Saved = saved != 0
		d.CreatedAt = time.Unix(0, createdAt)
		decisions = append(decisions, d)
	}

	return decisions, rows.Err()
}

// Prune keeps the newest keep decisions and deletes the rest. A keep of zero
// or less deletes nothing.
func (s *JournalStore) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	var deleted int64
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM decisions WHERE id NOT IN (
				SELECT id FROM decisions ORDER BY created_at DESC, rowid DESC LIMIT ?
			)`, keep)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to prune decisions: %w", err)
	}

	return deleted, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
