package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-stats/internal/model"
	"github.com/pable/go-match-stats/internal/report"
	"github.com/pable/go-match-stats/internal/stats"
	"github.com/pable/go-match-stats/internal/tracker"
)

var (
	dashSport   string
	dashPlayers []string
	dashH2H     bool
	dashBySport bool
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Compare players: wins, sets, monthly wins, margins and points",
	Long: `Compare players across the filtered matches.

With no --players every registered player is included. --h2h keeps only
matches in which every selected player took part.`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	dashboardCmd.Flags().StringVar(&dashSport, "sport", "", "padel, badminton or all")
	dashboardCmd.Flags().StringSliceVar(&dashPlayers, "players", nil, "players to compare (ids or names, comma separated)")
	dashboardCmd.Flags().BoolVar(&dashH2H, "h2h", false, "only matches between the selected players")
	dashboardCmd.Flags().BoolVar(&dashBySport, "by-sport", false, "split point totals per sport")
}

func runDashboard(_ *cobra.Command, _ []string) error {
	svc, store, err := openService()
	if err != nil {
		return err
	}
	defer store.Close()

	f, err := dashboardFilter(svc, dashSport, dashPlayers, dashH2H, dashBySport)
	if err != nil {
		return err
	}
	snap, err := svc.Snapshot()
	if err != nil {
		return err
	}
	report.PrintDashboard(os.Stdout, stats.Dashboard(snap.Players, snap.Matches, f))
	return nil
}

func dashboardFilter(svc *tracker.Service, sport string, players []string, h2h, bySport bool) (model.DashboardFilter, error) {
	f := model.DashboardFilter{HeadToHeadOnly: h2h, PointsBySport: bySport}
	if s := strings.ToLower(strings.TrimSpace(sport)); s != "" && s != "all" {
		f.Sport = model.SportType(s)
		if !f.Sport.Valid() {
			return f, fmt.Errorf("unknown sport %q", sport)
		}
	}
	for _, q := range players {
		if strings.TrimSpace(q) == "" {
			continue
		}
		p, err := svc.ResolvePlayer(q)
		if err != nil {
			return f, err
		}
		f.PlayerIDs = append(f.PlayerIDs, p.ID)
	}
	return f, nil
}
