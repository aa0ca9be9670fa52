package labeler

import (
	"strings"

	"github.com/hay-kot/stager/internal/core/label"
	"github.com/hay-kot/stager/internal/core/table"
)

// Summary describes how far along a file is.
type Summary struct {
	File    string         `json:"file"`
	Rows    int            `json:"rows"`
	Pending int            `json:"pending"`
	Labels  map[string]int `json:"labels"`          // one entry per category, zero included
	Other   int            `json:"other"`           // labeled with text outside the label set
	Lenient bool           `json:"lenient"`         // needed the lenient decoder
	Error   string         `json:"error,omitempty"` // load failure; counts are zero
}

// Summarize loads path read-only and counts its labels. A load failure is
// reported in Summary.Error rather than returned so one bad file does not
// hide the others.
func Summarize(path string, cols table.Columns) Summary {
	s := Summary{File: path, Labels: make(map[string]int, len(label.All()))}
	for _, c := range label.Strings() {
		s.Labels[c] = 0
	}

	tbl, err := table.Load(path, cols)
	if err != nil {
		s.Error = err.Error()
		return s
	}

	s.Rows = tbl.Len()
	s.Lenient = tbl.Lenient

	for value, n := range tbl.CountValues(cols.Label) {
		switch {
		case value == "":
			s.Pending += n
		case label.Valid(value):
			s.Labels[value] += n
		default:
			s.Other += n
		}
	}

	return s
}

// Done reports whether every row is labeled.
func (s Summary) Done() bool {
	return s.Error == "" && s.Pending == 0
}

// Percent is the share of labeled rows, 0-100.
func (s Summary) Percent() float64 {
	if s.Rows == 0 {
		return 100
	}
	return float64(s.Rows-s.Pending) / float64(s.Rows) * 100
}

// IsGlob reports whether arg contains glob metacharacters.
func IsGlob(arg string) bool {
	return strings.ContainsAny(arg, "*?[{")
}
