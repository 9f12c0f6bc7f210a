package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-stats/internal/config"
	"github.com/pable/go-match-stats/internal/logging"
	"github.com/pable/go-match-stats/internal/storage"
	"github.com/pable/go-match-stats/internal/tracker"
)

var (
	cfg    config.Config
	cfgErr error

	dbPath   string
	backend  string
	logLevel string

	logger = logging.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "matchstats",
	Short: "Padel and badminton match tracker",
	Long:  "Record players and padel/badminton results, then explore per-player statistics, head-to-head dashboards and monthly trends.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgErr != nil {
			return cfgErr
		}
		level, err := logging.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger = logging.NewConsole(os.Stderr, level)
		logging.SetDefault(logger)
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cfg, cfgErr = config.Load()

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the data file (default depends on --backend)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", cfg.Backend, "storage backend: sqlite or json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel.String(), "log level: debug, info, warn, error")

	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// dataPath resolves the file the selected backend reads and writes.
func dataPath() string {
	if dbPath != "" {
		return dbPath
	}
	c := cfg
	c.Backend = backend
	return c.DataPath()
}

func openStore() (storage.Store, error) {
	path := dataPath()
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	store, err := storage.OpenStore(backend, path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	logger.Debug("storage opened", "backend", backend, "path", path)
	return store, nil
}

// openService opens the store and wraps it in the tracker. The caller closes
// the returned store.
func openService() (*tracker.Service, storage.Store, error) {
	store, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	return tracker.New(store, logger), store, nil
}
