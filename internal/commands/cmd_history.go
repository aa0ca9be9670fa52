package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/stager/internal/core/journal"
	"github.com/hay-kot/stager/pkg/iojson"
)

type HistoryCmd struct {
	flags *Flags

	// flags
	file       string
	session    string
	limit      int
	jsonOutput bool
}

// NewHistoryCmd creates a new history command.
func NewHistoryCmd(flags *Flags) *HistoryCmd {
	return &HistoryCmd{flags: flags}
}

// Register adds the history command to the application.
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "history",
		Usage:     "List recorded labeling decisions",
		UsageText: "stager history [--file F] [--session ID] [--limit N] [--json]",
		Description: `Lists decisions from the journal, newest first. Every label applied in the
review screen or with set/apply is recorded, including ones whose save failed.

The journal is an audit trail only; it is never replayed into a file.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Usage:       "only decisions for this CSV file",
				Destination: &cmd.file,
			},
			&cli.StringFlag{
				Name:        "session",
				Usage:       "only decisions from this session id",
				Destination: &cmd.session,
			},
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "maximum number of decisions (0 for all)",
				Value:       50,
				Destination: &cmd.limit,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *HistoryCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	if !cfg.Journal.Enabled {
		return fmt.Errorf("journal is disabled (journal.enabled: false)")
	}

	filter := journal.Filter{SessionID: cmd.session, Limit: cmd.limit}
	if cmd.file != "" {
		abs, err := filepath.Abs(cmd.file)
		if err != nil {
			return fmt.Errorf("resolve file path: %w", err)
		}
		filter.File = abs
	}

	database, store, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	decisions, err := store.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("list decisions: %w", err)
	}

	if cmd.jsonOutput {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, decisions)
	}

	if len(decisions) == 0 {
		_, _ = fmt.Fprintln(c.Root().Writer, "No decisions recorded")
		return nil
	}

	_, _ = fmt.Fprintln(c.Root().Writer, historyTable(c, decisions))
	return nil
}

func historyTable(c *cli.Command, decisions []journal.Decision) string {
	headers := []string{"Time", "File", "Row", "Label", "Saved", "Session"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft}

	rows := make([][]string, 0, len(decisions))
	for _, d := range decisions {
		saved := "yes"
		if !d.Saved {
			saved = "no: " + d.Error
		}
		rows = append(rows, []string{
			d.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			filepath.Base(d.File),
			strconv.Itoa(d.Row),
			d.Label,
			saved,
			shortID(d.SessionID),
		})
	}

	return renderTable(c.Root().Writer, headers, rows, aligns)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
