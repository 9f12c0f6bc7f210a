package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var dropForce bool

// dropCmd deletes the data file of the selected backend.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete all stored players and matches",
	Long:  "Permanently delete the data file of the selected backend. All players and matches are lost; run 'matchstats export' first to keep a copy.",
	Args:  cobra.NoArgs,
	RunE:  runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
}

func runDrop(_ *cobra.Command, _ []string) error {
	path := dataPath()
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", path)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Data file does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove data file: %w", err)
	}
	// sqlite WAL side files
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(path + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", path+suffix, err)
		}
	}
	logger.Info("data dropped", "path", path)
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", path)
	return nil
}
