// Package queue tracks which rows of a table still need a label and where the
// reviewer currently is among them.
//
// The pending list is live: labeling the current row removes it, so the entry
// under the cursor is always real unlabeled work and Total only ever shrinks.
package queue

import (
	"strings"

	"github.com/hay-kot/stager/internal/core/table"
)

// Saver persists the full table. table.Store satisfies it.
type Saver interface {
	Save(t *table.Table) error
}

// Item is what the reviewer sees for the row under the cursor.
type Item struct {
	Row      int    // index into the table's rows
	Subject  string // subject column text
	Label    string // label column text, normally "" for pending rows
	Position int    // 1-based position within the pending rows
	Total    int    // number of pending rows
}

// Queue is a cursor over the unlabeled rows of a table.
//
// Queue is not safe for concurrent use. Callers must wait for one call to
// return before issuing the next.
type Queue struct {
	tbl     *table.Table
	cols    table.Columns
	saver   Saver
	allowed map[string]struct{}

	pending []int
	cursor  int
}

// Option configures a Queue.
type Option func(*Queue)

// WithAllowedLabels makes Label reject categories outside labels with a
// ValidationError. Without it any string is written verbatim.
func WithAllowedLabels(labels ...string) Option {
	return func(q *Queue) {
		q.allowed = make(map[string]struct{}, len(labels))
		for _, l := range labels {
			q.allowed[l] = struct{}{}
		}
	}
}

// New scans t once and queues every row whose label cell is blank, in row
// order, with the cursor on the first one.
func New(t *table.Table, cols table.Columns, saver Saver, opts ...Option) *Queue {
	q := &Queue{
		tbl:   t,
		cols:  cols,
		saver: saver,
	}
	for _, opt := range opts {
		opt(q)
	}

	for i := range t.Rows {
		if t.IsBlank(i, cols.Label) {
			q.pending = append(q.pending, i)
		}
	}

	return q
}

// Current returns the row under the cursor. ok is false when nothing is left
// to review.
func (q *Queue) Current() (item Item, ok bool) {
	if len(q.pending) == 0 {
		return Item{}, false
	}

	row := q.pending[q.cursor]
	return Item{
		Row:      row,
		Subject:  q.tbl.Cell(row, q.cols.Subject),
		Label:    q.tbl.Cell(row, q.cols.Label),
		Position: q.cursor + 1,
		Total:    len(q.pending),
	}, true
}

// Label writes category into the current row, saves the table and drops the
// row from the pending list. The cursor stays put, so the next pending row
// slides into view; if the last entry was labeled the cursor moves back one.
//
// When the save fails the label is still kept in memory and the row is still
// removed; the failure is returned as a PersistError so the caller can retry
// the save. Label is a no-op when nothing is pending.
//
// A blank category is always rejected with a ValidationError, since writing
// it would leave the row unlabeled.
func (q *Queue) Label(category string) error {
	if len(q.pending) == 0 {
		return nil
	}

	if strings.TrimSpace(category) == "" {
		return &ValidationError{Category: category}
	}
	if q.allowed != nil {
		if _, ok := q.allowed[category]; !ok {
			return &ValidationError{Category: category}
		}
	}

	row := q.pending[q.cursor]
	q.tbl.SetCell(row, q.cols.Label, category)

	var persistErr error
	if err := q.saver.Save(q.tbl); err != nil {
		persistErr = &PersistError{Row: row, Category: category, Err: err}
	}

	q.pending = append(q.pending[:q.cursor], q.pending[q.cursor+1:]...)
	if q.cursor >= len(q.pending) {
		q.cursor = max(len(q.pending)-1, 0)
	}

	return persistErr
}

// Skip moves to the next pending row. It does not wrap past the last one.
func (q *Queue) Skip() {
	if len(q.pending) == 0 || q.cursor == len(q.pending)-1 {
		return
	}
	q.cursor++
}

// Back moves to the previous pending row. It does not wrap past the first one.
func (q *Queue) Back() {
	if len(q.pending) == 0 || q.cursor == 0 {
		return
	}
	q.cursor--
}

// Len returns the number of rows still pending.
func (q *Queue) Len() int {
	return len(q.pending)
}

// Cursor returns the cursor position. ok is false when nothing is pending.
func (q *Queue) Cursor() (pos int, ok bool) {
	if len(q.pending) == 0 {
		return 0, false
	}
	return q.cursor, true
}

// Pending returns a copy of the pending row indices in review order.
func (q *Queue) Pending() []int {
	out := make([]int, len(q.pending))
	copy(out, q.pending)
	return out
}

// Table returns the table the queue writes labels into.
func (q *Queue) Table() *table.Table {
	return q.tbl
}

// Columns returns the column layout the queue reads and writes.
func (q *Queue) Columns() table.Columns {
	return q.cols
}
