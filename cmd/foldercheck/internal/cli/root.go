// Package cli implements the foldercheck command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/scan"
	"github.com/albertocavalcante/foldercheck/internal/log"
	"github.com/albertocavalcante/foldercheck/pkg/config"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// Process exit codes.
const (
	ExitOK               = 0
	ExitFailure          = 1
	ExitRootInaccessible = 65
)

// globalFlags holds persistent flags that apply to all commands
var globalFlags struct {
	verbosity  int
	logFormat  string
	noColor    bool
	configFile string
}

// rootCmd runs a check when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "foldercheck [dir]",
	Short: "Detect changes in a directory tree between runs",
	Long: `Foldercheck records a digest of every file and empty directory under a
root into a checkresult-YYMMDDhhmmss.txt snapshot kept in that root, and
reports what was added or removed since the previous snapshot.

Running foldercheck without a subcommand is the same as 'foldercheck check'.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCheck,
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "foldercheck %s (%s)\n", Version, GitCommit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	// Global flags (persistent across all commands)
	rootCmd.PersistentFlags().IntVarP(&globalFlags.verbosity, "verbosity", "v", 1,
		"Verbosity level (0=error, 1=warn, 2=info, 3=debug, 4=trace)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.logFormat, "log-format", "text",
		"Log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.noColor, "no-color", false,
		"Disable styled output")
	rootCmd.PersistentFlags().StringVar(&globalFlags.configFile, "config", "",
		"Config file to use instead of <dir>/"+config.ProjectFileName)

	addCheckFlags(rootCmd)

	// Hook to apply flags before command runs
	cobra.OnInitialize(initLogging)
}

// initLogging applies CLI flags to the logger. Commands re-apply logging
// once configuration files are loaded.
func initLogging() {
	log.Init(globalFlags.verbosity, globalFlags.logFormat)
}

var (
	errorLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	boldStyle  = lipgloss.NewStyle().Bold(true)
)

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, scan.ErrRootInaccessible):
		return ExitRootInaccessible
	default:
		return ExitFailure
	}
}

// rootError reports an inaccessible root the way users expect to read it.
type rootError struct {
	root string
	err  error
}

func (e *rootError) Error() string { return e.root + " is not available!" }
func (e *rootError) Unwrap() error { return e.err }

// PrintError writes err to w, styled when color is enabled.
func PrintError(w io.Writer, err error, color bool) {
	label := "error:"
	if color {
		label = errorLabel.Render(label)
	}
	_, _ = fmt.Fprintf(w, "%s %v\n", label, err)
}

// Execute runs the root command and exits with the mapped code on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		PrintError(os.Stderr, err, !globalFlags.noColor && os.Getenv("NO_COLOR") == "")
		os.Exit(ExitCode(err))
	}
}

// RootCmd returns the root command for testing.
func RootCmd() *cobra.Command {
	return rootCmd
}

// settings is the resolved configuration for one command invocation.
type settings struct {
	cfg  *config.Config
	root string
}

// resolveSettings picks the root (argument, --dir, then configuration),
// loads all configuration layers for it and applies changed flags.
func resolveSettings(cmd *cobra.Command, args []string) (*settings, error) {
	root := ""
	if len(args) > 0 {
		root = args[0]
	} else if checkFlags.dir != "" {
		root = checkFlags.dir
	}

	if root == "" {
		pre, err := config.Load(config.LoadOptions{File: globalFlags.configFile})
		if err != nil {
			return nil, err
		}
		root = pre.Root
		if root == "" {
			root = "."
		}
	}

	cfg, err := config.Load(config.LoadOptions{Root: root, File: globalFlags.configFile})
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log.Init(cfg.VerbosityLevel(), cfg.Log.Format)

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	cfg.Root = abs
	return &settings{cfg: cfg, root: abs}, nil
}

// applyFlags overrides configuration with flags the user set explicitly.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("verbosity") {
		v := globalFlags.verbosity
		cfg.Log.Verbosity = &v
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = globalFlags.logFormat
	}
	if flags.Changed("no-color") && globalFlags.noColor {
		f := false
		cfg.Color = &f
	}
	if flags.Changed("workers") {
		cfg.Workers = checkFlags.workers
	}
	if flags.Changed("algorithm") {
		cfg.Algorithm = checkFlags.algorithm
	}
	if flags.Changed("exclude") {
		cfg.Merge(&config.Config{Exclude: checkFlags.exclude})
	}
	if flags.Changed("no-progress") && checkFlags.noProgress {
		f := false
		cfg.Progress = &f
	}
	if flags.Changed("debounce") {
		cfg.Watch.DebounceMS = watchFlags.debounce
	}
}
