package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-stats/internal/report"
	"github.com/pable/go-match-stats/internal/stats"
)

var trendCmd = &cobra.Command{
	Use:   "trend <player>",
	Short: "Month-by-month win/loss record for a player",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrend,
}

func runTrend(_ *cobra.Command, args []string) error {
	svc, store, err := openService()
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := svc.ResolvePlayer(args[0])
	if err != nil {
		return err
	}
	snap, err := svc.Snapshot()
	if err != nil {
		return err
	}
	months := stats.WinLossByMonth(p.ID, snap.Matches)
	if len(months) == 0 {
		fmt.Printf("No matches found for %s\n", p.Name)
		return nil
	}
	fmt.Printf("\n=== %s: monthly record ===\n\n", p.Name)
	report.PrintMonthly(os.Stdout, months)
	return nil
}
