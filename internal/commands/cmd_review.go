package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/stager/internal/core/styles"
	"github.com/hay-kot/stager/internal/labeler"
	"github.com/hay-kot/stager/internal/printer"
	"github.com/hay-kot/stager/internal/tui"
)

type ReviewCmd struct {
	flags *Flags
}

// NewReviewCmd creates a new review command.
func NewReviewCmd(flags *Flags) *ReviewCmd {
	return &ReviewCmd{flags: flags}
}

// Register adds the review command to the application.
func (cmd *ReviewCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "review",
		Usage:     "Label the unlabeled rows of a CSV export",
		UsageText: "stager review [file]",
		Description: `Opens the review screen on a CSV export and walks through every row whose
stage column is empty. Each label is written back to the file immediately.

Without a file argument a file picker is shown.

Examples:
  stager review exports/march.csv
  stager review`,
		ShellComplete: CSVFileCompleter(),
		Action:        cmd.Run,
	})

	return app
}

// Run opens the review screen. It is also the root command's default action.
func (cmd *ReviewCmd) Run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)
	cfg := cmd.flags.Config

	path := c.Args().First()
	if path == "" {
		picked, err := cmd.pickFile()
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("file picker: %w", err)
		}
		path = picked
	}

	opts, closeJournal := sessionOptions(ctx, cfg)
	defer closeJournal()

	sess, err := labeler.Open(ctx, path, opts)
	if err != nil {
		if errors.Is(err, labeler.ErrLocked) {
			return fmt.Errorf("%w (remove %s.lock if no other stager is running)", err, path)
		}
		return err
	}

	m := tui.New(sess, tui.Options{
		Keybindings: cfg.Keybindings,
		Wrap:        cfg.TUI.Wrap,
		Sidebar:     cfg.TUI.Sidebar,
		Theme:       cfg.TUI.Theme,
	})

	program := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, runErr := program.Run()

	dirty, status := sess.Dirty(), sess.Status()
	labeled, remaining := sess.Labeled(), sess.Remaining()

	if err := sess.Close(); err != nil {
		log.Error().Err(err).Str("file", sess.Path()).Msg("close session")
	}

	if runErr != nil {
		return fmt.Errorf("run review screen: %w", runErr)
	}

	name := filepath.Base(sess.Path())
	p.Successf("Labeled %d row(s) in %s", labeled, name)
	if remaining > 0 {
		p.Infof("%d row(s) still unlabeled", remaining)
	}
	if dirty {
		p.Warnf("Last labels were not saved: %s", status)
	}

	return nil
}

func (cmd *ReviewCmd) pickFile() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	var path string
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewFilePicker().
				Title("Open CSV").
				Description("Pick an export to review").
				CurrentDirectory(wd).
				AllowedTypes([]string{".csv"}).
				Picking(true).
				Value(&path),
		),
	).WithTheme(styles.FormTheme(cmd.flags.Config.TUI.Theme)).Run()
	if err != nil {
		return "", err
	}

	return path, nil
}
