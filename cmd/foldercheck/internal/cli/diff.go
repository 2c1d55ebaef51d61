package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/check"
	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/diff"
)

var diffFlags struct {
	json    bool
	unified bool
	context int
}

var diffCmd = &cobra.Command{
	Use:   "diff [dir] <from> [to]",
	Short: "Compare two stored snapshots",
	Long: `Compares two snapshots already stored in the directory, without hashing
anything. Snapshots are named by their 12-digit ID or full file name; when
<to> is omitted the latest snapshot is used.

With three arguments the first is the directory. Otherwise the directory
comes from --dir, the configuration, or the current directory.

--unified prints a unified diff of the two snapshot files instead of the
added/removed report.`,
	Args: cobra.RangeArgs(1, 3),
	RunE: runDiff,
}

func init() {
	addDirFlag(diffCmd)
	diffCmd.Flags().BoolVar(&diffFlags.json, "json", false,
		"Output as JSON")
	diffCmd.Flags().BoolVar(&diffFlags.unified, "unified", false,
		"Print a unified diff")
	diffCmd.Flags().IntVar(&diffFlags.context, "context", diff.DefaultContext,
		"Context lines for --unified")

	rootCmd.AddCommand(diffCmd)
}

// splitDiffArgs separates the optional directory from snapshot references.
func splitDiffArgs(args []string) (dirArgs []string, from, to string) {
	if len(args) == 3 {
		return args[:1], args[1], args[2]
	}
	from = args[0]
	if len(args) == 2 {
		to = args[1]
	}
	return nil, from, to
}

func runDiff(cmd *cobra.Command, args []string) error {
	dirArgs, from, to := splitDiffArgs(args)
	s, err := resolveSettings(cmd, dirArgs)
	if err != nil {
		return err
	}
	checker, err := newChecker(s, nil)
	if err != nil {
		return err
	}

	cmp, err := checker.Compare(from, to)
	if err != nil {
		return wrapRootError(s.root, err)
	}

	out := cmd.OutOrStdout()
	switch {
	case diffFlags.json:
		return outputJSON(out, cmp)
	case diffFlags.unified:
		text, err := diff.Unified(cmp.From, cmp.To, cmp.Previous, cmp.Current, diffFlags.context)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, text)
		return err
	}

	status := check.Changed
	if cmp.Diff.Empty() {
		status = check.NoChange
	}
	return printOutcome(out, &check.Outcome{Status: status, Diff: cmp.Diff}, s.cfg.ColorEnabled())
}
