// Package table loads a CSV file into memory and writes it back.
//
// A Table is read once, mutated in place (only cell values change, rows are
// never added, removed or reordered) and rewritten in full on every Save.
package table

import "strings"

// Columns locates the two columns the review engine reads and writes.
// Both indices are zero-based.
type Columns struct {
	Subject int `yaml:"subject" json:"subject"`
	Label   int `yaml:"label" json:"label"`
}

// DefaultColumns matches the export format the tool was built for:
// column L holds the message text and column M holds the stage.
var DefaultColumns = Columns{Subject: 11, Label: 12}

// Required returns the minimum column count a table must have to contain
// both columns.
func (c Columns) Required() int {
	return max(c.Subject, c.Label) + 1
}

// Table is a header row plus data rows. Every row has exactly len(Header)
// cells. Empty and missing values are both represented as "".
type Table struct {
	Header []string
	Rows   [][]string

	// Lenient is set when the strict decode failed and the permissive
	// fallback produced this table.
	Lenient bool
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Width returns the number of columns.
func (t *Table) Width() int {
	return len(t.Header)
}

// Cell returns the value at row, col or "" when either is out of range.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// SetCell overwrites the value at row, col. A row shorter than col+1 is
// padded with empty cells first. It reports false and changes nothing when
// row does not exist or col is negative.
func (t *Table) SetCell(row, col int, value string) bool {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return false
	}
	if col >= len(t.Rows[row]) {
		t.Rows[row] = append(t.Rows[row], make([]string, col+1-len(t.Rows[row]))...)
	}
	t.Rows[row][col] = value
	return true
}

// IsBlank reports whether the cell at row, col is empty after trimming
// whitespace. Out-of-range cells count as blank.
func (t *Table) IsBlank(row, col int) bool {
	return strings.TrimSpace(t.Cell(row, col)) == ""
}

// CountValues tallies the trimmed values of col across all rows. Blank cells
// are counted under "".
func (t *Table) CountValues(col int) map[string]int {
	counts := make(map[string]int)
	for i := range t.Rows {
		counts[strings.TrimSpace(t.Cell(i, col))]++
	}
	return counts
}
