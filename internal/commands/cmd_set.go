package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/stager/internal/labeler"
	"github.com/hay-kot/stager/internal/printer"
)

type SetCmd struct {
	flags *Flags

	// flags
	row   int
	label string
}

// NewSetCmd creates a new set command.
func NewSetCmd(flags *Flags) *SetCmd {
	return &SetCmd{flags: flags}
}

// Register adds the set command to the application.
func (cmd *SetCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "set",
		Usage:     "Label a single row without opening the review screen",
		UsageText: "stager set <file> --row N --label LABEL",
		Description: `Writes LABEL into the stage column of data row N (0-based, header excluded)
and saves the file. A row that is already labeled is overwritten.

Examples:
  stager set exports/march.csv --row 4 --label Passed`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "row",
				Aliases:     []string{"r"},
				Usage:       "0-based data row index",
				Required:    true,
				Destination: &cmd.row,
			},
			&cli.StringFlag{
				Name:        "label",
				Aliases:     []string{"l"},
				Usage:       "label to write",
				Required:    true,
				Destination: &cmd.label,
			},
		},
		ShellComplete: CSVFileCompleter(),
		Action:        cmd.run,
	})

	return app
}

func (cmd *SetCmd) run(ctx context.Context, c *cli.Command) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("file argument is required")
	}

	opts, closeJournal := sessionOptions(ctx, cmd.flags.Config)
	defer closeJournal()

	written, err := labeler.AssignAll(ctx, path, []labeler.Assignment{{Row: cmd.row, Label: cmd.label}}, opts)
	if err != nil {
		return err
	}

	printer.Ctx(ctx).Successf("Row %d of %s labeled %s", cmd.row, filepath.Base(path), written[0].Label)
	return nil
}
