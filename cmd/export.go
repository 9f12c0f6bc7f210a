package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/pable/go-match-stats/internal/model"
)

var (
	exportOut    string
	restoreForce bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every player and match as JSON",
	Long: `Write the full data set (players, matches and their sets) as one JSON document.
The output can be loaded back with 'matchstats restore', also into the other
backend: matchstats --backend json export | matchstats --backend sqlite restore -`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file|->",
	Short: "Replace all stored data with an exported JSON document",
	Args:  cobra.ExactArgs(1),
	RunE:  runRestore,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	restoreCmd.Flags().BoolVarP(&restoreForce, "force", "f", false, "replace existing data without asking")
}

func runExport(_ *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := store.Load()
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}
	if snap.Players == nil {
		snap.Players = []model.Player{}
	}
	if snap.Matches == nil {
		snap.Matches = []model.Match{}
	}
	b, err := sonic.ConfigDefault.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	b = append(b, '\n')

	if exportOut == "" {
		_, err = os.Stdout.Write(b)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(exportOut), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(exportOut, b, 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Exported %d players and %d matches to %s\n", len(snap.Players), len(snap.Matches), exportOut)
	return nil
}

func runRestore(_ *cobra.Command, args []string) error {
	var (
		b   []byte
		err error
	)
	if args[0] == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}
	var snap model.Snapshot
	if err := sonic.Unmarshal(b, &snap); err != nil {
		return fmt.Errorf("decode export: %w", err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if !restoreForce {
		current, err := store.Load()
		if err != nil {
			return fmt.Errorf("load data: %w", err)
		}
		if len(current.Players) > 0 || len(current.Matches) > 0 {
			fmt.Fprintf(os.Stderr, "%s already holds %d players and %d matches.\n", dataPath(), len(current.Players), len(current.Matches))
			fmt.Fprintf(os.Stderr, "Re-run with --force to replace them.\n")
			return nil
		}
	}
	if err := store.Save(snap); err != nil {
		return fmt.Errorf("save data: %w", err)
	}
	logger.Info("data restored", "players", len(snap.Players), "matches", len(snap.Matches))
	fmt.Fprintf(os.Stdout, "Restored %d players and %d matches\n", len(snap.Players), len(snap.Matches))
	return nil
}
