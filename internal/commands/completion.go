package commands

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v3"
)

// maxCompletions caps how many files are suggested from a large tree.
const maxCompletions = 200

// CSVFileCompleter suggests CSV files under the working directory as
// positional completions. Set it as the ShellComplete field on any command
// that takes an export path.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func CSVFileCompleter() cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		matches, err := doublestar.FilepathGlob("**/*.csv", doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for i, m := range matches {
			if i == maxCompletions {
				break
			}
			_, _ = fmt.Fprintln(w, m)
		}
	}
}
