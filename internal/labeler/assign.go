package labeler

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gofrs/flock"

	"github.com/hay-kot/stager/internal/core/journal"
	"github.com/hay-kot/stager/internal/core/label"
	"github.com/hay-kot/stager/internal/core/logging"
	"github.com/hay-kot/stager/internal/core/table"
)

// Assignment sets one row's label outside the review screen.
type Assignment struct {
	Row   int    `json:"row"` // 0-based data row, header excluded
	Label string `json:"label"`
}

// AssignAll writes every assignment into path and saves the file once. Rows
// may already be labeled; an assignment overwrites. Nothing is written when
// any assignment names a missing row, has a blank label or, with
// StrictLabels, an unknown label.
//
// The returned assignments carry the labels as written, in canonical form
// when StrictLabels is set. They are returned even when the save fails.
func AssignAll(ctx context.Context, path string, assignments []Assignment, opts Options) ([]Assignment, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	if opts.Lock {
		fl := flock.New(abs + ".lock")
		ok, err := fl.TryLock()
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", abs, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s: %w", abs, ErrLocked)
		}
		defer func() { _ = fl.Unlock() }()
	}

	store := table.NewStore(abs, opts.Columns)
	tbl, err := store.Load()
	if err != nil {
		return nil, err
	}

	assignments = slices.Clone(assignments)
	for i, a := range assignments {
		if a.Row < 0 || a.Row >= tbl.Len() {
			return nil, fmt.Errorf("assignment %d: row %d out of range (file has %d rows)", i, a.Row, tbl.Len())
		}
		if strings.TrimSpace(a.Label) == "" {
			return nil, fmt.Errorf("assignment %d: label is blank", i)
		}
		if opts.StrictLabels {
			c, err := label.Parse(a.Label)
			if err != nil {
				return nil, fmt.Errorf("assignment %d: %w", i, err)
			}
			assignments[i].Label = c.String()
		}
	}

	for _, a := range assignments {
		tbl.SetCell(a.Row, opts.Columns.Label, a.Label)
	}
	saveErr := store.Save(tbl)

	ctx = logging.WithFile(ctx, abs)
	log := logging.Component("labeler")
	log.Info().Ctx(ctx).Int("count", len(assignments)).Err(saveErr).Msg("assigned labels")

	if opts.Journal != nil {
		recordAssignments(ctx, opts.Journal, abs, assignments, saveErr)
	}

	return assignments, saveErr
}

func recordAssignments(ctx context.Context, store journal.Store, path string, assignments []Assignment, saveErr error) {
	log := logging.Component("labeler")

	sess, err := store.StartSession(ctx, path, 0, false)
	if err != nil {
		log.Warn().Ctx(ctx).Err(err).Msg("journal unavailable")
		return
	}
	ctx = logging.WithSessionID(ctx, sess.ID)

	for _, a := range assignments {
		d := journal.Decision{
			SessionID: sess.ID,
			File:      path,
			Row:       a.Row,
			Label:     a.Label,
			Saved:     saveErr == nil,
		}
		if saveErr != nil {
			d.Error = saveErr.Error()
		}
		if _, err := store.Record(ctx, d); err != nil {
			log.Warn().Ctx(ctx).Err(err).Int("row", a.Row).Msg("journal record failed")
		}
	}

	if err := store.EndSession(ctx, sess.ID); err != nil {
		log.Warn().Ctx(ctx).Err(err).Msg("journal end session failed")
	}
}
