package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/watch"
	"github.com/albertocavalcante/foldercheck/pkg/config"
)

var watchFlags struct {
	debounce int
	verbose  bool
}

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Re-check a directory whenever it changes",
	Long: `Runs a check, then watches the directory and runs another check once
changes have settled for the debounce window. Each check writes a snapshot
and reports what was added or removed since the previous one.

Snapshot files written by the checks themselves do not trigger new checks.

Example output:

  $ foldercheck watch ~/photos

  [09:30:00] checking...
  [09:30:02] ✓ no change (checkresult-230105093000.txt)
  foldercheck: watching 42 directories in /home/me/photos
  foldercheck: ready

  [09:41:17] checking after change to 2023/new.jpg...
  [09:41:17] ~ 1 added, 0 removed since checkresult-230105093000.txt
  Newly added:
  3f...9a ./2023/new.jpg

Press Ctrl+C to stop watching.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	addDirFlag(watchCmd)
	addScanFlags(watchCmd)
	watchCmd.Flags().IntVar(&watchFlags.debounce, "debounce", config.DefaultDebounceMS,
		"Quiet period before re-checking, in milliseconds")
	watchCmd.Flags().BoolVar(&watchFlags.verbose, "verbose", false,
		"Show individual file events")
	watchCmd.Flags().BoolVar(&checkFlags.json, "json", false,
		"Stream JSON events (for tooling integration)")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd, args)
	if err != nil {
		return err
	}
	checker, err := newChecker(s, nil)
	if err != nil {
		return err
	}

	// Include SIGHUP to handle terminal hangup
	ctx, cancel := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	w, err := watch.New(watch.Config{
		Root:     s.root,
		Debounce: time.Duration(s.cfg.Watch.DebounceMS) * time.Millisecond,
		Exclude:  s.cfg.Exclude,
		Logger: watch.NewLogger(watch.LoggerConfig{
			Writer:  cmd.OutOrStdout(),
			Verbose: watchFlags.verbose,
			NoColor: !s.cfg.ColorEnabled(),
			JSON:    checkFlags.json,
		}),
	}, checker)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	return wrapRootError(s.root, w.Run(ctx))
}
