package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/digest"
	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/scan"
	"github.com/albertocavalcante/foldercheck/pkg/config"
)

var initFlags struct {
	check  bool
	dryRun bool
	force  bool
}

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a project configuration file",
	Long: `Writes ` + config.ProjectFileName + ` into the directory with the built-in
defaults, adjusted by any --workers, --algorithm or --exclude flags given.

The file lives inside the checked tree, so it is recorded in snapshots like
any other file.

Use --check to verify an existing file without changing it (useful for CI).
Use --dry-run to print the file instead of writing it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	addScanFlags(initCmd)
	initCmd.Flags().BoolVar(&initFlags.check, "check", false,
		"Validate the existing project file (exit 1 if missing or invalid)")
	initCmd.Flags().BoolVar(&initFlags.dryRun, "dry-run", false,
		"Print the file instead of writing it")
	initCmd.Flags().BoolVar(&initFlags.force, "force", false,
		"Overwrite an existing project file")

	rootCmd.AddCommand(initCmd)
}

const projectFileHeader = `# foldercheck project configuration.
# Flags and FOLDERCHECK_* environment variables override these values.

`

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	path := filepath.Join(absDir, config.ProjectFileName)
	out := cmd.OutOrStdout()

	if initFlags.check {
		if err := checkProjectFile(absDir, path); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out, "%s is valid\n", path)
		return err
	}

	cfg := config.NewConfig()
	applyFlags(cmd, cfg)
	if err := validateScanSettings(cfg); err != nil {
		return err
	}
	content, err := renderProjectFile(cfg)
	if err != nil {
		return err
	}

	if initFlags.dryRun {
		_, err := out.Write(content)
		return err
	}

	if err := writeProjectFile(path, content, initFlags.force); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "Wrote %s\n", path)
	return err
}

// renderProjectFile encodes the settings a project file may carry.
func renderProjectFile(cfg *config.Config) ([]byte, error) {
	project := *cfg
	project.Root = ""
	project.Color = nil
	project.Log = config.LogConfig{}

	var buf bytes.Buffer
	buf.WriteString(projectFileHeader)
	if err := toml.NewEncoder(&buf).Encode(project); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

func writeProjectFile(path string, content []byte, force bool) error {
	flag := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// checkProjectFile loads and validates only the project file.
func checkProjectFile(dir, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%s not found (run 'foldercheck init' to create it)", path)
	}
	cfg, err := config.Load(config.LoadOptions{File: path, Root: dir, SkipGlobal: true})
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return validateScanSettings(cfg)
}

func validateScanSettings(cfg *config.Config) error {
	if _, err := digest.ParseAlgorithm(cfg.Algorithm); err != nil {
		return err
	}
	return scan.ValidateExclude(cfg.Exclude)
}
