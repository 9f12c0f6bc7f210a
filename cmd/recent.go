package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-stats/internal/report"
	"github.com/pable/go-match-stats/internal/stats"
)

var recentLimit int

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show the most recent matches",
	Args:  cobra.NoArgs,
	RunE:  runRecent,
}

func init() {
	recentCmd.Flags().IntVarP(&recentLimit, "limit", "n", 0, "number of matches (default $MATCHSTATS_RECENT_LIMIT or 10)")
}

func runRecent(_ *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	matches, err := store.ListMatches()
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	if len(matches) == 0 {
		fmt.Println("No matches recorded yet. Add one with 'matchstats match add'.")
		return nil
	}
	n := recentLimit
	if n <= 0 {
		n = cfg.RecentLimit
	}
	report.PrintMatches(os.Stdout, stats.RecentMatches(matches, n))
	return nil
}
