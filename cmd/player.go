package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-stats/internal/model"
	"github.com/pable/go-match-stats/internal/report"
	"github.com/pable/go-match-stats/internal/stats"
	"github.com/pable/go-match-stats/internal/tracker"
)

var (
	playerEmail string
	playerPhone string
	playerName  string
	playerLast  int
)

var playerCmd = &cobra.Command{
	Use:   "player",
	Short: "Manage players and show their statistics",
}

var playerAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a player",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlayerAdd,
}

var playerEditCmd = &cobra.Command{
	Use:   "edit <player>",
	Short: "Change a player's name or contact details",
	Long:  "Change a player's name or contact details. <player> is an id, a name, or an unambiguous part of a name. Only the flags given are changed.",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlayerEdit,
}

var playerRmCmd = &cobra.Command{
	Use:   "rm <player>",
	Short: "Remove a player (recorded matches keep their names)",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlayerRm,
}

var playerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered players",
	Args:  cobra.NoArgs,
	RunE:  runPlayerList,
}

var playerShowCmd = &cobra.Command{
	Use:   "show <player>",
	Short: "Show a player's statistics, monthly record and match history",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlayerShow,
}

func init() {
	playerAddCmd.Flags().StringVar(&playerEmail, "email", "", "contact email")
	playerAddCmd.Flags().StringVar(&playerPhone, "phone", "", "contact phone")

	playerEditCmd.Flags().StringVar(&playerName, "name", "", "new display name")
	playerEditCmd.Flags().StringVar(&playerEmail, "email", "", "new contact email (empty clears it)")
	playerEditCmd.Flags().StringVar(&playerPhone, "phone", "", "new contact phone (empty clears it)")

	playerShowCmd.Flags().IntVar(&playerLast, "last", 10, "number of history entries to show (0 = all)")

	playerCmd.AddCommand(playerAddCmd)
	playerCmd.AddCommand(playerEditCmd)
	playerCmd.AddCommand(playerRmCmd)
	playerCmd.AddCommand(playerListCmd)
	playerCmd.AddCommand(playerShowCmd)
}

func runPlayerAdd(cmd *cobra.Command, args []string) error {
	svc, store, err := openService()
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := svc.AddPlayer(cmd.Context(), tracker.PlayerInput{
		Name:  args[0],
		Email: playerEmail,
		Phone: playerPhone,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Added %s (%s)\n", p.Name, p.ID)
	return nil
}

func runPlayerEdit(cmd *cobra.Command, args []string) error {
	svc, store, err := openService()
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := svc.ResolvePlayer(args[0])
	if err != nil {
		return err
	}
	in := tracker.PlayerInput{Name: p.Name, Email: p.Email, Phone: p.Phone}
	flags := cmd.Flags()
	if flags.Changed("name") {
		in.Name = playerName
	}
	if flags.Changed("email") {
		in.Email = playerEmail
	}
	if flags.Changed("phone") {
		in.Phone = playerPhone
	}

	updated, err := svc.UpdatePlayer(cmd.Context(), p.ID, in)
	if err != nil {
		return err
	}
	fmt.Printf("Updated %s (%s)\n", updated.Name, updated.ID)
	return nil
}

func runPlayerRm(_ *cobra.Command, args []string) error {
	svc, store, err := openService()
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := svc.ResolvePlayer(args[0])
	if err != nil {
		return err
	}
	if err := svc.DeletePlayer(p.ID); err != nil {
		return err
	}
	fmt.Printf("Removed %s (%s)\n", p.Name, p.ID)
	return nil
}

func runPlayerList(_ *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	players, err := store.ListPlayers()
	if err != nil {
		return fmt.Errorf("list players: %w", err)
	}
	if len(players) == 0 {
		fmt.Println("No players yet. Add one with 'matchstats player add <name>'.")
		return nil
	}
	report.PrintPlayers(os.Stdout, players)
	return nil
}

func runPlayerShow(_ *cobra.Command, args []string) error {
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
	printPlayerReport(p.ID, snap, playerLast)
	return nil
}

// printPlayerReport writes the stats, monthly and history tables for one
// player. last limits the history; 0 prints everything.
func printPlayerReport(playerID string, snap model.Snapshot, last int) {
	st := stats.PlayerStats(playerID, snap.Matches, snap.Players)
	report.PrintPlayerStats(os.Stdout, []model.PlayerStats{st})
	if st.TotalMatches == 0 {
		fmt.Println("\nNo matches recorded yet.")
		return
	}

	fmt.Println("\nMonthly record")
	report.PrintMonthly(os.Stdout, stats.WinLossByMonth(playerID, snap.Matches))

	history := stats.PlayerMatchHistory(playerID, snap.Matches)
	if last > 0 && len(history) > last {
		history = history[:last]
	}
	fmt.Printf("\nMatch history (%d of %d)\n", len(history), st.TotalMatches)
	report.PrintMatches(os.Stdout, history)
}
