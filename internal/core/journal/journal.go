// Package journal defines the decision log kept alongside reviewed files.
//
// Every label a reviewer applies is recorded with whether the CSV save
// succeeded, so a failed save can be reconstructed and `stager history` can
// show what happened to a file across sessions.
package journal

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("journal: not found")

// Decision is one label applied to one row.
type Decision struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	File      string    `json:"file"`
	Row       int       `json:"row"`
	Label     string    `json:"label"`
	Saved     bool      `json:"saved"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is one run of the review screen against one file.
type Session struct {
	ID        string     `json:"id"`
	File      string     `json:"file"`
	Pending   int        `json:"pending"` // unlabeled rows when the session started
	Lenient   bool       `json:"lenient"` // file was decoded with the lenient fallback
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// Filter narrows List results. Zero fields match everything.
type Filter struct {
	File      string
	SessionID string
	Limit     int
}

// Store persists sessions and decisions.
type Store interface {
	StartSession(ctx context.Context, file string, pending int, lenient bool) (Session, error)
	EndSession(ctx context.Context, id string) error
	GetSession(ctx context.Context, id string) (Session, error)
	Record(ctx context.Context, d Decision) (Decision, error)
	// List returns decisions newest first.
	List(ctx context.Context, f Filter) ([]Decision, error)
	// Prune deletes all but the newest keep decisions and reports how many
	// were removed.
	Prune(ctx context.Context, keep int) (int64, error)
}
