package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/stager/internal/labeler"
	"github.com/hay-kot/stager/internal/printer"
	"github.com/hay-kot/stager/pkg/iojson"
)

type ApplyCmd struct {
	flags *Flags
	fr    *iojson.FileReader[[]labeler.Assignment]
}

// NewApplyCmd creates a new apply command.
func NewApplyCmd(flags *Flags) *ApplyCmd {
	return &ApplyCmd{
		flags: flags,
		fr:    &iojson.FileReader[[]labeler.Assignment]{},
	}
}

// Register adds the apply command to the application.
func (cmd *ApplyCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "apply",
		Usage: "Label many rows from JSON input",
		UsageText: `stager apply <file> [options]

Read from stdin:
  echo '[{"row":0,"label":"Passed"}]' | stager apply exports/march.csv

Read from file:
  stager apply exports/march.csv -f labels.json`,
		Description: `Writes a batch of labels into a CSV export and saves it once.

Input JSON schema:
  [
    {"row": 0, "label": "Passed"},
    {"row": 7, "label": "Bounceback"}
  ]

Rows are 0-based data rows, header excluded. Either every assignment is
written or none is: an unknown row, a duplicate row or (with strict_labels)
an unknown label rejects the whole batch.`,
		Flags: []cli.Flag{
			cmd.fr.Flag(),
		},
		ShellComplete: CSVFileCompleter(),
		Action:        cmd.run,
	})

	return app
}

func (cmd *ApplyCmd) run(ctx context.Context, c *cli.Command) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("file argument is required")
	}

	input, err := cmd.fr.Read()
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if err := validateAssignments(input); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	opts, closeJournal := sessionOptions(ctx, cmd.flags.Config)
	defer closeJournal()

	if _, err := labeler.AssignAll(ctx, path, input, opts); err != nil {
		return err
	}

	printer.Ctx(ctx).Successf("Applied %d label(s) to %s", len(input), filepath.Base(path))
	return nil
}

// validateAssignments checks the shape of the input before the file is
// touched. Row range and label checks need the file and happen in AssignAll.
func validateAssignments(in []labeler.Assignment) error {
	if len(in) == 0 {
		return criterio.NewFieldErrors("assignments", fmt.Errorf("array is empty"))
	}

	var errs criterio.FieldErrorsBuilder
	seen := make(map[int]bool, len(in))
	for i, a := range in {
		field := fmt.Sprintf("[%d]", i)

		if a.Row < 0 {
			errs = errs.Append(field+".row", fmt.Errorf("must be zero or positive"))
			continue
		}
		if seen[a.Row] {
			errs = errs.Append(field+".row", fmt.Errorf("duplicate row %d", a.Row))
			continue
		}
		seen[a.Row] = true

		if a.Label == "" {
			errs = errs.Append(field+".label", fmt.Errorf("is required"))
		}
	}

	return errs.ToError()
}
