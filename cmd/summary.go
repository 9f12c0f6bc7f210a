package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-stats/internal/model"
	"github.com/pable/go-match-stats/internal/report"
	"github.com/pable/go-match-stats/internal/stats"
)

var summarySport string

// summaryCmd prints a club-wide overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of all recorded matches",
	Long: `Display aggregate statistics about every stored match:
match count, date range, a per-sport breakdown and every player's record.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&summarySport, "sport", "", "only count this sport")
}

func runSummary(_ *cobra.Command, _ []string) error {
	svc, store, err := openService()
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := svc.Snapshot()
	if err != nil {
		return err
	}
	sports := model.Sports
	if summarySport != "" {
		sport := model.SportType(strings.ToLower(summarySport))
		if !sport.Valid() {
			return fmt.Errorf("unknown sport %q", summarySport)
		}
		sports = []model.SportType{sport}
		snap.Matches = filterSport(snap.Matches, sport)
	}
	if len(snap.Matches) == 0 {
		fmt.Fprintln(os.Stdout, "No matches stored yet. Run 'matchstats match add' to record one.")
		return nil
	}

	first, last := snap.Matches[0].Date, snap.Matches[0].Date
	for _, m := range snap.Matches {
		if m.Date.Before(first) {
			first = m.Date
		}
		if m.Date.After(last) {
			last = m.Date
		}
	}

	fmt.Fprintf(os.Stdout, "\n=== Match Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Matches stored : %d\n", len(snap.Matches))
	fmt.Fprintf(os.Stdout, "  Date range     : %s → %s\n", first.Format("2006-01-02"), last.Format("2006-01-02"))
	fmt.Fprintf(os.Stdout, "  Players        : %d\n", len(snap.Players))

	sportStats := make([]model.SportStats, 0, len(sports))
	for _, s := range sports {
		sportStats = append(sportStats, stats.SportStats(s, snap.Matches, snap.Players))
	}
	fmt.Fprintf(os.Stdout, "\n--- Sports ---\n\n")
	report.PrintSportStats(os.Stdout, sportStats)

	var all []model.PlayerStats
	for _, p := range snap.Players {
		if st := stats.PlayerStats(p.ID, snap.Matches, snap.Players); st.TotalMatches > 0 {
			all = append(all, st)
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].TotalMatches != all[j].TotalMatches {
			return all[i].TotalMatches > all[j].TotalMatches
		}
		return all[i].WinRate > all[j].WinRate
	})
	fmt.Fprintf(os.Stdout, "\n--- Players ---\n\n")
	report.PrintPlayerStats(os.Stdout, all)
	return nil
}
