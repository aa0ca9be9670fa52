package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/stager/internal/core/config"
	"github.com/hay-kot/stager/internal/core/journal"
	"github.com/hay-kot/stager/internal/core/table"
	"github.com/hay-kot/stager/internal/labeler"
	"github.com/hay-kot/stager/internal/printer"
)

var testCols = table.Columns{Subject: 0, Label: 1}

func testFlags(t *testing.T) *Flags {
	t.Helper()
	cfg, err := config.Load("", t.TempDir())
	require.NoError(t, err)
	cfg.Columns = testCols
	return &Flags{Config: cfg, DataDir: cfg.DataDir}
}

func writeExport(t *testing.T, dir, name string, labels ...string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("subject,stage\n")
	for i, l := range labels {
		b.WriteString("msg ")
		b.WriteString(string(rune('a' + i)))
		b.WriteString(",")
		b.WriteString(l)
		b.WriteString("\n")
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

// runApp registers cmds on a fresh root and runs args, returning stdout and
// the printer output.
func runApp(t *testing.T, args []string, cmds ...interface {
	Register(*cli.Command) *cli.Command
},
) (string, string, error) {
	t.Helper()
	var out, errOut, printed bytes.Buffer

	app := &cli.Command{
		Name:           "stager",
		Writer:         &out,
		ErrWriter:      &errOut,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
	for _, c := range cmds {
		app = c.Register(app)
	}

	ctx := printer.NewContext(context.Background(), printer.New(&printed))
	err := app.Run(ctx, append([]string{"stager"}, args...))
	return out.String(), printed.String(), err
}

func TestStatus_JSON(t *testing.T) {
	flags := testFlags(t)
	dir := t.TempDir()
	writeExport(t, dir, "a/march.csv", "", "Passed", "Spam")
	writeExport(t, dir, "b/april.csv", "Bounceback")

	out, _, err := runApp(t, []string{"status", "--json", filepath.Join(dir, "**", "*.csv")}, NewStatusCmd(flags))
	require.NoError(t, err)

	var got []labeler.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)

	assert.Equal(t, "march.csv", filepath.Base(got[0].File))
	assert.Equal(t, 3, got[0].Rows)
	assert.Equal(t, 1, got[0].Pending)
	assert.Equal(t, 1, got[0].Labels["Passed"])
	assert.Equal(t, 1, got[0].Other)

	assert.Equal(t, "april.csv", filepath.Base(got[1].File))
	assert.True(t, got[1].Done())
}

func TestStatus_TableAndMissingFile(t *testing.T) {
	flags := testFlags(t)
	dir := t.TempDir()
	path := writeExport(t, dir, "march.csv", "", "Passed")

	out, _, err := runApp(t, []string{"status", path, filepath.Join(dir, "missing.csv")}, NewStatusCmd(flags))

	var exitErr cli.ExitCoder
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())

	assert.Contains(t, out, "march.csv")
	assert.Contains(t, out, "Auto-Reply")
	assert.Contains(t, out, "50%")
	assert.Contains(t, out, "missing.csv")
	assert.Contains(t, out, "error:")
}

func TestExpandArg(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "x/one.csv")
	writeExport(t, dir, "x/y/two.csv")

	got, err := expandArg(filepath.Join(dir, "**", "*.csv"))
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = expandArg(filepath.Join(dir, "plain.csv"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "plain.csv")}, got, "plain paths are passed through")

	_, err = expandArg(filepath.Join(dir, "*.tsv"))
	assert.ErrorContains(t, err, "no files match")
}

func TestSet(t *testing.T) {
	flags := testFlags(t)
	path := writeExport(t, t.TempDir(), "march.csv", "", "")

	_, printed, err := runApp(t, []string{"set", "--row", "1", "--label", "passed", path}, NewSetCmd(flags))
	require.NoError(t, err)
	assert.Contains(t, printed, "Row 1 of march.csv labeled Passed", "message shows the label as written")

	tbl, err := table.Load(path, testCols)
	require.NoError(t, err)
	assert.Equal(t, "", tbl.Cell(0, testCols.Label))
	assert.Equal(t, "Passed", tbl.Cell(1, testCols.Label))
}

func TestSet_UnknownLabel(t *testing.T) {
	flags := testFlags(t)
	path := writeExport(t, t.TempDir(), "march.csv", "")

	_, _, err := runApp(t, []string{"set", "--row", "0", "--label", "Spam", path}, NewSetCmd(flags))
	assert.ErrorContains(t, err, "unknown category")
}

func TestApply(t *testing.T) {
	flags := testFlags(t)
	dir := t.TempDir()
	path := writeExport(t, dir, "march.csv", "", "", "")
	input := filepath.Join(dir, "labels.json")
	require.NoError(t, os.WriteFile(input, []byte(`[{"row":0,"label":"Reviewing"},{"row":2,"label":"Auto-Reply"}]`), 0o644))

	_, printed, err := runApp(t, []string{"apply", "-f", input, path}, NewApplyCmd(flags))
	require.NoError(t, err)
	assert.Contains(t, printed, "Applied 2 label(s) to march.csv")

	tbl, err := table.Load(path, testCols)
	require.NoError(t, err)
	assert.Equal(t, []string{"Reviewing", "", "Auto-Reply"}, []string{
		tbl.Cell(0, testCols.Label), tbl.Cell(1, testCols.Label), tbl.Cell(2, testCols.Label),
	})

	database, store, err := openJournal(flags.Config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	abs, _ := filepath.Abs(path)
	decisions, err := store.List(context.Background(), journal.Filter{File: abs})
	require.NoError(t, err)
	assert.Len(t, decisions, 2)
}

func TestValidateAssignments(t *testing.T) {
	tests := []struct {
		name    string
		in      []labeler.Assignment
		wantErr string
	}{
		{"empty", nil, "array is empty"},
		{"negative row", []labeler.Assignment{{Row: -2, Label: "Passed"}}, "[0].row"},
		{"duplicate row", []labeler.Assignment{{Row: 1, Label: "Passed"}, {Row: 1, Label: "Reviewing"}}, "duplicate row 1"},
		{"missing label", []labeler.Assignment{{Row: 1}}, "[0].label"},
		{"valid", []labeler.Assignment{{Row: 0, Label: "Passed"}, {Row: 3, Label: "Bounceback"}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAssignments(tt.in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHistory(t *testing.T) {
	flags := testFlags(t)
	path := writeExport(t, t.TempDir(), "march.csv", "", "")

	_, _, err := runApp(t, []string{"set", "--row", "0", "--label", "Passed", path}, NewSetCmd(flags))
	require.NoError(t, err)

	out, _, err := runApp(t, []string{"history", "--json", "--file", path}, NewHistoryCmd(flags))
	require.NoError(t, err)

	var got []journal.Decision
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Passed", got[0].Label)
	assert.True(t, got[0].Saved)

	out, _, err = runApp(t, []string{"history"}, NewHistoryCmd(flags))
	require.NoError(t, err)
	assert.Contains(t, out, "march.csv")
	assert.Contains(t, out, "Passed")
}

func TestHistory_Empty(t *testing.T) {
	flags := testFlags(t)

	out, _, err := runApp(t, []string{"history"}, NewHistoryCmd(flags))
	require.NoError(t, err)
	assert.Contains(t, out, "No decisions recorded")
}

func TestHistory_JournalDisabled(t *testing.T) {
	flags := testFlags(t)
	flags.Config.Journal.Enabled = false

	_, _, err := runApp(t, []string{"history"}, NewHistoryCmd(flags))
	assert.ErrorContains(t, err, "journal is disabled")
}

func TestConfigValidate(t *testing.T) {
	flags := testFlags(t)
	flags.ConfigPath = filepath.Join(t.TempDir(), "config.yaml")
	flags.Config.Lock = false

	out, _, err := runApp(t, []string{"config", "validate", "--format", "json"}, NewConfigValidateCmd(flags))
	require.NoError(t, err)

	var got validateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Valid)
	require.Len(t, got.Warnings, 1)
	assert.Equal(t, "lock", got.Warnings[0].Item)

	_, printed, err := runApp(t, []string{"config", "validate"}, NewConfigValidateCmd(flags))
	require.NoError(t, err)
	assert.Contains(t, printed, "Configuration is valid")
}

func TestConfigValidate_FieldErrors(t *testing.T) {
	flags := testFlags(t)
	flags.ConfigPath = t.TempDir() // a directory, not a file
	flags.Config.Keybindings = map[string][]string{}
	for _, name := range config.BindingNames() {
		flags.Config.Keybindings[name] = []string{"f" + name}
	}

	_, printed, err := runApp(t, []string{"config", "validate"}, NewConfigValidateCmd(flags))

	var exitErr cli.ExitCoder
	require.ErrorAs(t, err, &exitErr)
	assert.Contains(t, printed, "config_file")
	assert.Contains(t, printed, "keybindings")
	assert.Contains(t, printed, "error(s) found")
}
