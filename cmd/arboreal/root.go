package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/yob/arboreal/arboreal"
	"github.com/yob/arboreal/arboreal/stores/badgerstore"
	"github.com/yob/arboreal/arboreal/stores/jsonstore"
	"github.com/yob/arboreal/arboreal/stores/sqlstore"
	"github.com/yob/arboreal/types"
)

var (
	storePath  string
	backend    string
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "arboreal",
	Short: "Arboreal CLI",
	Long:  "Arboreal maintains materialized-path hierarchies over a pluggable backing store.",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&storePath, "store", "s", "", "path to the store file or directory")
	rootCmd.PersistentFlags().StringVarP(&backend, "backend", "b", "", "store backend: json, sqlite or badger")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a yaml config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log engine activity to stderr")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(reparentCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(rebuildCmd)
}

// newLogger builds the CLI's structured logger. Quiet by default;
// --verbose surfaces the engine's debug events.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openHierarchy resolves configuration, opens the selected backend and
// wraps it in the engine. Callers must Close the returned store.
func openHierarchy() (*arboreal.Hierarchy, types.Store, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	if storePath != "" {
		cfg.Store = storePath
	}
	if backend != "" {
		cfg.Backend = backend
	}
	if cfg.Store == "" {
		return nil, nil, fmt.Errorf("store path is required (--store or config file)")
	}

	var store types.Store
	switch cfg.Backend {
	case "", "json":
		store, err = jsonstore.New(cfg.Store)
	case "sqlite":
		store, err = sqlstore.New(cfg.Store)
	case "badger":
		store, err = badgerstore.New(cfg.Store)
	default:
		return nil, nil, fmt.Errorf("unknown backend %q (want json, sqlite or badger)", cfg.Backend)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Backend, err)
	}

	h, err := arboreal.New(store, types.Config{
		Delimiter:        cfg.Delimiter,
		RootsAreSiblings: cfg.RootsAreSiblings,
		Logger:           newLogger(),
	})
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return h, store, nil
}
