package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-stats/internal/report"
	"github.com/pable/go-match-stats/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the match database",
	Long: `Run an arbitrary SQL query against the SQLite database and print results as a table.
Only available with the sqlite backend.

Schema overview:
  players(id, name, email, phone, created_at)
  matches(id, sport_type, match_type, player1_id .. player4_id,
    player1_name .. player4_name, winner, date, duration, notes)
  sets(id, match_id, set_order, player1_score, player2_score, winner)

Dates are stored as RFC 3339 text in UTC; winner is 'player1', 'player2' or ''.
Example: matchstats sql "SELECT sport_type, COUNT(*) FROM matches GROUP BY 1"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(_ *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	db, ok := store.(*storage.DB)
	if !ok {
		return fmt.Errorf("sql needs the %s backend (current: %s)", storage.BackendSQLite, backend)
	}
	cols, rows, err := db.QueryRaw(strings.Join(args, " "))
	if err != nil {
		return err
	}
	report.PrintQueryResult(os.Stdout, cols, rows)
	return nil
}
