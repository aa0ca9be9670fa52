package table

import "fmt"

// ReadError is returned by Load when the file cannot be opened or parsed.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// SchemaError is returned by Load when the parsed table has too few columns
// to hold the configured subject and label columns.
type SchemaError struct {
	Path     string
	Columns  int
	Required int
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s has %d columns, need at least %d", e.Path, e.Columns, e.Required)
}

// WriteError is returned by Save when any part of the write fails. The file
// at Path keeps its previous contents.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
