package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-stats/internal/csvimport"
	"github.com/pable/go-match-stats/internal/model"
	"github.com/pable/go-match-stats/internal/report"
)

var (
	importPlayer1 string
	importPlayer2 string
	importSport   string
	importDryRun  bool
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import singles results from a spreadsheet CSV export",
	Long: `Import one singles match per CSV row. The sheet needs a Date column (D/M/YYYY
or ISO) and "Set 1".."Set 6" columns, each followed by the opponent's score.
Scores in the "Set N" column belong to --player1.

Rows without a date, with non-numeric scores or with a tied set are skipped
and reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importPlayer1, "player1", "", "player whose scores are in the Set N columns")
	importCmd.Flags().StringVar(&importPlayer2, "player2", "", "opponent")
	importCmd.Flags().StringVar(&importSport, "sport", string(model.SportBadminton), "padel or badminton")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "parse and report without saving")
	_ = importCmd.MarkFlagRequired("player1")
	_ = importCmd.MarkFlagRequired("player2")
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	res, err := csvimport.Parse(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}
	for _, s := range res.Skipped {
		fmt.Fprintf(os.Stderr, "  skip line %d: %s\n", s.Line, s.Reason)
	}

	svc, store, err := openService()
	if err != nil {
		return err
	}
	defer store.Close()

	p1, err := svc.ResolvePlayer(importPlayer1)
	if err != nil {
		return fmt.Errorf("--player1: %w", err)
	}
	p2, err := svc.ResolvePlayer(importPlayer2)
	if err != nil {
		return fmt.Errorf("--player2: %w", err)
	}
	opts := csvimport.Options{
		Player1ID: p1.ID,
		Player2ID: p2.ID,
		Sport:     model.SportType(strings.ToLower(importSport)),
	}

	if importDryRun {
		fmt.Printf("%d rows ready, %d skipped (dry run, nothing saved)\n", len(res.Rows), len(res.Skipped))
		return nil
	}
	matches, err := csvimport.Import(cmd.Context(), svc, res.Rows, opts)
	logger.Info("csv imported", "file", args[0], "matches", len(matches), "skipped", len(res.Skipped), "failed", err != nil)
	printImportResult(os.Stdout, matches, p1.Name, p2.Name, len(res.Skipped), err)
	return err
}

// printImportResult reports what was saved. Import stops at the first
// rejected row, so on failure the matches before it are already stored.
func printImportResult(w io.Writer, matches []model.Match, p1, p2 string, skipped int, err error) {
	if err != nil {
		fmt.Fprintf(w, "Import stopped: %d matches (%s vs %s) were saved before the failing row; re-running will add them again\n", len(matches), p1, p2)
	} else {
		fmt.Fprintf(w, "Imported %d matches (%s vs %s), skipped %d rows\n", len(matches), p1, p2, skipped)
	}
	if len(matches) > 0 {
		report.PrintMatches(w, matches)
	}
}
