package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Load reads the CSV file at path. The first record is the header and every
// cell is kept as text.
//
// Decoding is attempted twice. The strict pass requires valid UTF-8 (an
// optional UTF-8 BOM is stripped) and a uniform field count. If it fails,
// the lenient pass honours UTF-8 and UTF-16 BOMs, replaces invalid bytes,
// tolerates stray quotes and pads short rows. Only when both fail is a
// ReadError returned.
func Load(path string, cols Columns) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	t, strictErr := decodeStrict(raw)
	if strictErr != nil {
		var lenientErr error
		t, lenientErr = decodeLenient(raw)
		if lenientErr != nil {
			return nil, &ReadError{Path: path, Err: errors.Join(strictErr, lenientErr)}
		}
		t.Lenient = true
	}

	if t.Width() < cols.Required() {
		return nil, &SchemaError{Path: path, Columns: t.Width(), Required: cols.Required()}
	}

	return t, nil
}

func decodeStrict(raw []byte) (*Table, error) {
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("strict decode: invalid UTF-8")
	}

	data, err := unicode.UTF8BOM.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("strict decode: %w", err)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = 0

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("strict decode: %w", err)
	}

	return fromRecords(records)
}

func decodeLenient(raw []byte) (*Table, error) {
	data, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
	if err != nil {
		return nil, fmt.Errorf("lenient decode: %w", err)
	}

	text := strings.ToValidUTF8(string(data), string(utf8.RuneError))

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("lenient decode: %w", err)
	}

	t, err := fromRecords(records)
	if err != nil {
		return nil, fmt.Errorf("lenient decode: %w", err)
	}
	return t, nil
}

// fromRecords splits off the header and normalises every row to the header
// width. Short rows are padded; long rows are rejected since there is no
// header to attach the extra cells to.
func fromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no header row")
	}

	header := records[0]
	width := len(header)
	rows := make([][]string, 0, len(records)-1)

	for i, rec := range records[1:] {
		if len(rec) > width {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", i+1, len(rec), width)
		}
		if len(rec) < width {
			padded := make([]string, width)
			copy(padded, rec)
			rec = padded
		}
		rows = append(rows, rec)
	}

	return &Table{Header: header, Rows: rows}, nil
}

// Save rewrites path with the full contents of t as BOM-prefixed UTF-8 CSV.
//
// The table is written to a temporary file in the same directory, synced and
// renamed over path, so a failed save leaves the previous file in place. t is
// never modified.
func Save(t *Table, path string) error {
	if err := writeAtomic(t, path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

func writeAtomic(t *Table, path string) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if err := encode(t, tmp); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func encode(t *Table, f *os.File) error {
	enc := transform.NewWriter(f, unicode.UTF8BOM.NewEncoder())
	w := csv.NewWriter(enc)

	if err := w.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush encoder: %w", err)
	}
	return nil
}
