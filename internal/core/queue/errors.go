package queue

import "fmt"

// PersistError reports that a label was applied in memory but the table could
// not be written. The wrapped error is the saver's error, normally a
// *table.WriteError.
type PersistError struct {
	Row      int
	Category string
	Err      error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("row %d labeled %q but not saved: %v", e.Row, e.Category, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// ValidationError reports a category outside the allowed label set. Nothing
// is changed when it is returned.
type ValidationError struct {
	Category string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid category %q", e.Category)
}
