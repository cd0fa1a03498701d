package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tetrlang/internal/platform/tui"
	"github.com/vovakirdan/tetrlang/internal/render"
	"github.com/vovakirdan/tetrlang/internal/storage"
)

var (
	flagHistoryLimit int
	flagHistoryPlain bool
	flagHistoryClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past runs",
	Long: `Show the most recent runs recorded by gen, play, serve and api.

In a terminal the runs are shown in a table; press Enter to replay one.
Use --plain (or a pipe) for plain text.

Examples:
  tetr history
  tetr history --plain --limit 5
  tetr history --clear`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 10, "Number of runs to print in plain mode")
	historyCmd.Flags().BoolVar(&flagHistoryPlain, "plain", false, "Print plain text instead of the table")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "Delete every recorded run")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if cfg.Storage.Path == "" {
		return errors.New("run history is disabled (storage.path is empty)")
	}
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	if flagHistoryClear {
		if err := store.ClearRuns(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		return nil
	}

	w, h, termErr := term.GetSize(int(os.Stdout.Fd()))
	if flagHistoryPlain || termErr != nil {
		return printHistory(cmd.OutOrStdout(), store, flagHistoryLimit)
	}

	run, err := tui.RunHistory(store, w, h)
	if err != nil || run == nil {
		return err
	}

	// Replay the chosen run with the current rules
	res, err := simulate(run.Program)
	if err != nil {
		return err
	}
	return tui.RunReplay(cmd.Context(), run.Program, res, render.New(cfg.Render))
}

func printHistory(w io.Writer, store *storage.Store, limit int) error {
	runs, err := store.RecentRuns(limit)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Recent runs")
	fmt.Fprintln(w)

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded yet.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Run 'tetr gen <program>' to record the first one!")
		return nil
	}

	fmt.Fprintf(w, "  %-5s  %-15s  %-5s  %-5s  %-16s  %s\n", "ID", "Outcome", "Locks", "Lines", "Date", "Program")
	fmt.Fprintf(w, "  %-5s  %-15s  %-5s  %-5s  %-16s  %s\n", "--", "-------", "-----", "-----", "----", "-------")
	for _, r := range runs {
		fmt.Fprintf(w, "  %-5d  %-15s  %-5d  %-5d  %-16s  %s\n",
			r.ID, r.Outcome, r.Locks, r.Lines, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Program)
	}

	stats, err := store.Stats()
	if err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total: %d runs, %d completed, %d lines, best combo %d, best b2b %d\n",
		stats.Runs, stats.Completed, stats.TotalLines, stats.BestCombo, stats.BestB2B)
	return nil
}
