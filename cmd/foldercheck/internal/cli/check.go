package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/check"
	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/diff"
	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/digest"
	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/scan"
	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/snapshot"
)

var checkFlags struct {
	dir        string
	workers    int
	algorithm  string
	exclude    []string
	json       bool
	noProgress bool
}

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Snapshot a directory and report changes since the last snapshot",
	Long: `Hashes every file under the directory, writes a new
checkresult-YYMMDDhhmmss.txt snapshot into it, and compares it with the
most recent earlier snapshot.

Lines only in the new snapshot are listed under "Newly added:", lines only in
the previous one under "Removed:". A modified file appears in both sections.

Exit status is 0 on success (including no change), 65 when the directory
cannot be read, and 1 on any other failure.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	addCheckFlags(checkCmd)
	rootCmd.AddCommand(checkCmd)
}

// addDirFlag registers --dir, an alternative to the positional directory.
func addDirFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&checkFlags.dir, "dir", "d", "",
		"Directory to check (default: current directory)")
}

// addScanFlags registers the flags that shape a snapshot.
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&checkFlags.workers, "workers", 0,
		"Parallel hashing workers (0 = one per CPU)")
	cmd.Flags().StringVar(&checkFlags.algorithm, "algorithm", string(digest.DefaultAlgorithm),
		fmt.Sprintf("Content digest %v", digest.Algorithms))
	cmd.Flags().StringArrayVar(&checkFlags.exclude, "exclude", nil,
		"Leave paths matching this glob out of the snapshot (repeatable)")
}

func addCheckFlags(cmd *cobra.Command) {
	addDirFlag(cmd)
	addScanFlags(cmd)
	cmd.Flags().BoolVar(&checkFlags.json, "json", false,
		"Output the outcome as JSON")
	cmd.Flags().BoolVar(&checkFlags.noProgress, "no-progress", false,
		"Do not draw the hashing progress counter")
}

// newChecker builds a checker for the resolved settings.
func newChecker(s *settings, progress digest.ProgressFunc) (*check.Checker, error) {
	algorithm, err := digest.ParseAlgorithm(s.cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	if err := scan.ValidateExclude(s.cfg.Exclude); err != nil {
		return nil, err
	}
	return check.New(check.Config{
		FS:        snapshot.DirFS(s.root),
		Workers:   s.cfg.Workers,
		Algorithm: algorithm,
		Exclude:   s.cfg.Exclude,
		Progress:  progress,
	}), nil
}

// wrapRootError names the root when it cannot be read.
func wrapRootError(root string, err error) error {
	if errors.Is(err, scan.ErrRootInaccessible) {
		return &rootError{root: root, err: err}
	}
	return err
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	var progress *progressLine
	if s.cfg.ProgressEnabled() && !checkFlags.json && isTerminal(errOut) {
		progress = &progressLine{w: errOut}
	}

	checker, err := newChecker(s, progress.update)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	outcome, err := checker.Run(ctx)
	progress.finish()
	if err != nil {
		return wrapRootError(s.root, err)
	}

	if checkFlags.json {
		return outputJSON(out, outcome)
	}
	return printOutcome(out, outcome, s.cfg.ColorEnabled())
}

// printOutcome writes the human report for one check.
func printOutcome(w io.Writer, o *check.Outcome, color bool) error {
	bold := func(s string) string {
		if color {
			return boldStyle.Render(s)
		}
		return s
	}

	switch o.Status {
	case check.FirstRun:
		_, err := fmt.Fprintln(w, bold("The first check is done."))
		return err
	case check.NoChange:
		_, err := fmt.Fprintln(w, bold("No change."))
		return err
	default:
		return diff.Report(w, o.Diff, diff.Style{Color: color})
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// progressLine redraws "[done/total]" in place. A nil progressLine is
// inert.
type progressLine struct {
	w     io.Writer
	drawn bool
}

func (p *progressLine) update(done, total int) {
	if p == nil {
		return
	}
	_, _ = fmt.Fprintf(p.w, "Calculating digests...\t[%d/%d]\r", done, total)
	p.drawn = true
}

func (p *progressLine) finish() {
	if p == nil || !p.drawn {
		return
	}
	_, _ = fmt.Fprintln(p.w)
}

func outputJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
