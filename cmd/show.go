package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-stats/internal/report"
)

var matchShowCmd = &cobra.Command{
	Use:   "show <match-id>",
	Short: "Show a match with its set-by-set scores",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatchShow,
}

func runMatchShow(_ *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	m, err := store.GetMatch(args[0])
	if err != nil {
		return err
	}
	report.PrintMatchDetail(os.Stdout, *m)
	return nil
}
