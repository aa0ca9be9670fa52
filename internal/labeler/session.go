// Package labeler runs one review session against one CSV file. It owns the
// file lock, the loaded table, the review queue and the decision journal, and
// turns engine results into the status line the review screen shows.
package labeler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"github.com/hay-kot/stager/internal/core/journal"
	"github.com/hay-kot/stager/internal/core/label"
	"github.com/hay-kot/stager/internal/core/logging"
	"github.com/hay-kot/stager/internal/core/queue"
	"github.com/hay-kot/stager/internal/core/table"
)

// ErrLocked is returned by Open when another process holds the file's lock.
var ErrLocked = errors.New("file is open in another stager process")

// Options configures a Session.
type Options struct {
	Columns      table.Columns
	StrictLabels bool          // reject categories outside the label set
	Lock         bool          // hold <file>.lock for the life of the session
	Journal      journal.Store // nil disables the decision journal
	MaxEntries   int           // prune the journal to this many decisions on Close; 0 keeps all
}

// Session is an open review of one file.
//
// Session is not safe for concurrent use; the review screen serializes calls.
type Session struct {
	ctx     context.Context
	log     zerolog.Logger
	path    string
	store   *table.Store
	queue   *queue.Queue
	lock    *flock.Flock
	journal journal.Store
	keep    int

	id      string
	lenient bool
	labeled int
	dirty   bool
	status  string
}

// Open locks and loads path and builds the review queue over it. When the
// file cannot be read or lacks the configured columns the error is returned
// and no session exists.
func Open(ctx context.Context, path string, opts Options) (*Session, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	s := &Session{
		path:    abs,
		store:   table.NewStore(abs, opts.Columns),
		journal: opts.Journal,
		keep:    opts.MaxEntries,
	}

	if opts.Lock {
		s.lock = flock.New(abs + ".lock")
		ok, err := s.lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", abs, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s: %w", abs, ErrLocked)
		}
	}

	tbl, err := s.store.Load()
	if err != nil {
		_ = s.unlock()
		return nil, err
	}

	var qopts []queue.Option
	if opts.StrictLabels {
		qopts = append(qopts, queue.WithAllowedLabels(label.Strings()...))
	}
	s.queue = queue.New(tbl, opts.Columns, s.store, qopts...)
	s.lenient = tbl.Lenient

	s.ctx = logging.WithFile(ctx, abs)
	s.startJournal()
	s.log = logging.Component("labeler").With().Ctx(s.ctx).Logger()

	ev := s.log.Info().Int("rows", tbl.Len()).Int("pending", s.queue.Len())
	if s.lenient {
		ev = ev.Bool("lenient", true)
	}
	ev.Msg("file loaded")

	if s.queue.Len() == 0 {
		s.status = "All rows already labeled"
	} else {
		s.status = fmt.Sprintf("Loaded %s. %d unlabeled rows found", filepath.Base(abs), s.queue.Len())
	}

	return s, nil
}

// startJournal opens a journal session. A journal failure never blocks a
// review; the journal is switched off for this session instead.
func (s *Session) startJournal() {
	if s.journal == nil {
		return
	}

	js, err := s.journal.StartSession(s.ctx, s.path, s.queue.Len(), s.lenient)
	if err != nil {
		log := logging.Component("labeler")
		log.Warn().Err(err).Msg("journal unavailable, continuing without it")
		s.journal = nil
		return
	}

	s.id = js.ID
	s.ctx = logging.WithSessionID(s.ctx, js.ID)
}

// Current returns the row under the cursor. ok is false once every row is
// labeled.
func (s *Session) Current() (queue.Item, bool) {
	return s.queue.Current()
}

// Label applies category to the current row and saves the file.
//
// A *queue.ValidationError leaves everything unchanged. A *queue.PersistError
// means the label was kept and the row moved past but the file on disk is
// behind; Save retries the write.
func (s *Session) Label(category string) error {
	item, ok := s.queue.Current()
	if !ok {
		return nil
	}

	err := s.queue.Label(category)

	var validationErr *queue.ValidationError
	if errors.As(err, &validationErr) {
		s.status = fmt.Sprintf("Invalid label %q", category)
		s.log.Warn().Str("label", category).Msg("rejected label")
		return err
	}

	s.labeled++
	s.record(item.Row, category, err)

	var persistErr *queue.PersistError
	if errors.As(err, &persistErr) {
		s.dirty = true
		s.status = "Save failed: " + persistErr.Err.Error()
		s.log.Error().Err(persistErr.Err).Int("row", item.Row).Str("label", category).Msg("save failed")
		return err
	}

	s.dirty = false
	s.log.Debug().Int("row", item.Row).Str("label", category).Msg("labeled")
	if s.queue.Len() == 0 {
		s.status = "Saved. All rows labeled"
	} else {
		s.status = "Saved"
	}
	return err
}

func (s *Session) record(row int, category string, saveErr error) {
	if s.journal == nil {
		return
	}

	d := journal.Decision{
		SessionID: s.id,
		File:      s.path,
		Row:       row,
		Label:     category,
		Saved:     saveErr == nil,
	}
	if saveErr != nil {
		d.Error = saveErr.Error()
	}

	if _, err := s.journal.Record(s.ctx, d); err != nil {
		s.log.Warn().Err(err).Int("row", row).Msg("journal record failed")
	}
}

// Skip moves to the next pending row.
func (s *Session) Skip() { s.queue.Skip() }

// Back moves to the previous pending row.
func (s *Session) Back() { s.queue.Back() }

// Save writes the whole table to disk. It is how a reviewer recovers after a
// failed save.
func (s *Session) Save() error {
	if err := s.store.Save(s.queue.Table()); err != nil {
		s.dirty = true
		s.status = "Save failed: " + err.Error()
		s.log.Error().Err(err).Msg("manual save failed")
		return err
	}

	s.dirty = false
	s.status = "Saved"
	s.log.Info().Msg("manual save")
	return nil
}

// Close ends the journal session, prunes the journal and releases the lock.
// It does not save; a dirty session stays dirty on disk.
func (s *Session) Close() error {
	var errs []error

	if s.dirty {
		s.log.Warn().Msg("closing with unsaved labels")
	}

	if s.journal != nil {
		if err := s.journal.EndSession(s.ctx, s.id); err != nil {
			errs = append(errs, fmt.Errorf("end journal session: %w", err))
		}
		if s.keep > 0 {
			n, err := s.journal.Prune(s.ctx, s.keep)
			if err != nil {
				errs = append(errs, fmt.Errorf("prune journal: %w", err))
			} else if n > 0 {
				s.log.Debug().Int64("deleted", n).Msg("journal pruned")
			}
		}
	}

	if err := s.unlock(); err != nil {
		errs = append(errs, err)
	}

	s.log.Info().Int("labeled", s.labeled).Int("pending", s.queue.Len()).Msg("session closed")
	return errors.Join(errs...)
}

func (s *Session) unlock() error {
	if s.lock == nil {
		return nil
	}
	if err := s.lock.Unlock(); err != nil {
		return fmt.Errorf("unlock %s: %w", s.path, err)
	}
	return nil
}

// Status is the message for the status line.
func (s *Session) Status() string { return s.status }

// Dirty reports whether labels exist in memory that the last save did not
// write.
func (s *Session) Dirty() bool { return s.dirty }

// Path is the absolute path of the file under review.
func (s *Session) Path() string { return s.path }

// ID is the journal session ID, or "" when the journal is off.
func (s *Session) ID() string { return s.id }

// Lenient reports whether the file needed the lenient decoder.
func (s *Session) Lenient() bool { return s.lenient }

// Labeled is the number of labels applied in this session.
func (s *Session) Labeled() int { return s.labeled }

// Remaining is the number of rows still pending.
func (s *Session) Remaining() int { return s.queue.Len() }
