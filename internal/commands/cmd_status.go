package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/stager/internal/core/label"
	"github.com/hay-kot/stager/internal/labeler"
	"github.com/hay-kot/stager/pkg/iojson"
)

type StatusCmd struct {
	flags *Flags

	// flags
	jsonOutput bool
}

// NewStatusCmd creates a new status command.
func NewStatusCmd(flags *Flags) *StatusCmd {
	return &StatusCmd{flags: flags}
}

// Register adds the status command to the application.
func (cmd *StatusCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "status",
		Usage:     "Show labeling progress for one or more files",
		UsageText: "stager status [--json] <file|glob>...",
		Description: `Reads each file without locking it and reports how many rows are labeled,
per category, and how many are still pending.

Arguments may be globs, including ** for recursive matches. Quote them so the
shell does not expand them first.

Examples:
  stager status exports/march.csv
  stager status 'exports/**/*.csv'`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		ShellComplete: CSVFileCompleter(),
		Action:        cmd.run,
	})

	return app
}

func (cmd *StatusCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("at least one file or glob is required")
	}

	summaries := make([]labeler.Summary, 0, c.Args().Len())
	for _, arg := range c.Args().Slice() {
		files, err := expandArg(arg)
		if err != nil {
			summaries = append(summaries, labeler.Summary{File: arg, Error: err.Error()})
			continue
		}
		for _, f := range files {
			summaries = append(summaries, labeler.Summarize(f, cmd.flags.Config.Columns))
		}
	}

	if cmd.jsonOutput {
		if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, summaries); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintln(c.Root().Writer, statusTable(c.Root().Writer, summaries))
	}

	for _, s := range summaries {
		if s.Error != "" {
			return cli.Exit("", 1)
		}
	}
	return nil
}

// expandArg resolves a glob to its matching files, in lexical order. Plain
// paths are returned as is so a missing file is reported by the loader.
func expandArg(arg string) ([]string, error) {
	if !labeler.IsGlob(arg) {
		return []string{arg}, nil
	}

	matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("bad pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match")
	}
	return matches, nil
}

func statusTable(w io.Writer, summaries []labeler.Summary) string {
	headers := []string{"File", "Rows", "Pending"}
	headers = append(headers, label.Strings()...)
	headers = append(headers, "Other", "Done")

	aligns := []columnAlignment{alignLeft}
	for range len(headers) - 1 {
		aligns = append(aligns, alignRight)
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		name := filepath.Base(s.File)
		if s.Lenient {
			name += " (repaired)"
		}
		if s.Error != "" {
			rows = append(rows, []string{name, "error: " + s.Error})
			continue
		}

		row := []string{name, strconv.Itoa(s.Rows), strconv.Itoa(s.Pending)}
		for _, c := range label.Strings() {
			row = append(row, strconv.Itoa(s.Labels[c]))
		}
		row = append(row, strconv.Itoa(s.Other), fmt.Sprintf("%.0f%%", s.Percent()))
		rows = append(rows, row)
	}

	return renderTable(w, headers, rows, aligns)
}
