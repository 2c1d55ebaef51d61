package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var historyFlags struct {
	json bool
}

var historyCmd = &cobra.Command{
	Use:   "history [dir]",
	Short: "List the snapshots stored in a directory",
	Long: `Lists every checkresult-*.txt snapshot in the directory, oldest first,
with its local timestamp, entry count and a content fingerprint. Snapshots
with the same fingerprint have identical content.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	addDirFlag(historyCmd)
	historyCmd.Flags().BoolVar(&historyFlags.json, "json", false,
		"Output as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd, args)
	if err != nil {
		return err
	}
	checker, err := newChecker(s, nil)
	if err != nil {
		return err
	}

	infos, err := checker.History()
	if err != nil {
		return wrapRootError(s.root, err)
	}

	out := cmd.OutOrStdout()
	if historyFlags.json {
		return outputJSON(out, infos)
	}
	if len(infos) == 0 {
		_, err := fmt.Fprintf(out, "No snapshots in %s.\n", s.root)
		return err
	}

	color := s.cfg.ColorEnabled()
	cell := lipgloss.NewStyle().PaddingRight(2)
	header := cell.Bold(color)

	t := table.New().
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Headers("ID", "TIME", "ENTRIES", "FINGERPRINT")

	for _, info := range infos {
		when := "-"
		if !info.Time.IsZero() {
			when = info.Time.Format("2006-01-02 15:04:05")
		}
		t.Row(string(info.ID), when, strconv.Itoa(info.Entries), info.Fingerprint)
	}

	_, err = fmt.Fprintln(out, t.Render())
	return err
}
