package labeler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/stager/internal/core/journal"
	"github.com/hay-kot/stager/internal/core/table"
)

func TestAssignAll(t *testing.T) {
	ctx := context.Background()
	path := writeCSV(t, t.TempDir(), "", "Passed", "")
	jrnl := openJournal(t)
	opts := defaultOpts()
	opts.Journal = jrnl

	in := []Assignment{{Row: 0, Label: "auto-reply"}, {Row: 1, Label: "Bounceback"}}
	written, err := AssignAll(ctx, path, in, opts)
	require.NoError(t, err)
	assert.Equal(t, "auto-reply", in[0].Label, "caller's slice is not modified")
	assert.Equal(t, []Assignment{{Row: 0, Label: "Auto-Reply"}, {Row: 1, Label: "Bounceback"}}, written,
		"returned labels match what was written")

	onDisk, err := table.Load(path, cols)
	require.NoError(t, err)
	assert.Equal(t, "Auto-Reply", onDisk.Cell(0, cols.Label), "strict mode normalizes case")
	assert.Equal(t, "Bounceback", onDisk.Cell(1, cols.Label), "already labeled rows are overwritten")
	assert.Equal(t, "", onDisk.Cell(2, cols.Label))

	abs, _ := filepath.Abs(path)
	decisions, err := jrnl.List(ctx, journal.Filter{File: abs})
	require.NoError(t, err)
	require.Len(t, decisions, 2)
	for _, d := range decisions {
		assert.True(t, d.Saved)
	}
}

func TestAssignAll_RejectsBeforeWriting(t *testing.T) {
	tests := []struct {
		name    string
		in      []Assignment
		wantErr string
	}{
		{"row out of range", []Assignment{{Row: 0, Label: "Passed"}, {Row: 9, Label: "Passed"}}, "row 9 out of range"},
		{"negative row", []Assignment{{Row: -1, Label: "Passed"}}, "row -1 out of range"},
		{"unknown label", []Assignment{{Row: 0, Label: "Passed"}, {Row: 1, Label: "Spam"}}, `unknown category "Spam"`},
		{"blank label", []Assignment{{Row: 0, Label: "Passed"}, {Row: 1, Label: "  "}}, "label is blank"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCSV(t, t.TempDir(), "", "")
			before, err := os.ReadFile(path)
			require.NoError(t, err)

			_, err = AssignAll(context.Background(), path, tt.in, defaultOpts())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			after, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, before, after, "file untouched")
		})
	}
}

func TestAssignAll_Locked(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "")

	s, err := Open(context.Background(), path, defaultOpts())
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	_, err = AssignAll(context.Background(), path, []Assignment{{Row: 0, Label: "Passed"}}, defaultOpts())
	assert.ErrorIs(t, err, ErrLocked)
}

func TestSummarize(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "", "Passed", " ", "Passed", "Spam", "Auto-Reply")

	s := Summarize(path, cols)

	assert.Empty(t, s.Error)
	assert.Equal(t, 6, s.Rows)
	assert.Equal(t, 2, s.Pending)
	assert.Equal(t, 2, s.Labels["Passed"])
	assert.Equal(t, 1, s.Labels["Auto-Reply"])
	assert.Equal(t, 0, s.Labels["Reviewing"])
	assert.Contains(t, s.Labels, "Bounceback", "every category is present")
	assert.Equal(t, 1, s.Other)
	assert.False(t, s.Done())
	assert.InDelta(t, 66.66, s.Percent(), 0.1)
}

func TestSummarize_LoadError(t *testing.T) {
	s := Summarize(filepath.Join(t.TempDir(), "missing.csv"), cols)

	assert.NotEmpty(t, s.Error)
	assert.False(t, s.Done())
	assert.Equal(t, 0, s.Rows)
}

func TestIsGlob(t *testing.T) {
	assert.True(t, IsGlob("exports/*.csv"))
	assert.True(t, IsGlob("exports/**/march.csv"))
	assert.False(t, IsGlob("exports/march.csv"))
}
