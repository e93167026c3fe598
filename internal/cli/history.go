package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/spec-check/internal/history"
)

var historyLimit int

// errHistoryDisabled is returned when no history database is configured.
var errHistoryDisabled = errors.New("run history is disabled: set history_db or pass --history")

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent check runs",
	Long: `Show recent check runs recorded in the history database.

Examples:
  # Last 10 runs
  spec-check history --history .spec-check/history.db

  # Last 3 runs, history_db set in .spec-check.yml
  spec-check history --limit 3
`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of runs to show (0 = all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.HistoryDB == "" {
		return errHistoryDisabled
	}

	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(historyLimit)
	if err != nil {
		return err
	}
	printRuns(cmd.OutOrStdout(), runs)
	return nil
}

func printRuns(out io.Writer, runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return
	}

	fmt.Fprintf(out, "%-36s  %-19s  %6s  %6s  %6s  %7s  %4s\n",
		"RUN", "STARTED", "FILES", "PASS", "ERRORS", "MISSING", "EXIT")
	for _, r := range runs {
		fmt.Fprintf(out, "%-36s  %-19s  %6d  %6d  %6d  %7d  %4d\n",
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Summary.Total,
			r.Summary.Passed,
			r.Summary.Errors(),
			r.Summary.MissingSpec,
			r.ExitCode,
		)
	}
}
