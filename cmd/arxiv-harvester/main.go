// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the arxiv-harvester CLI.
// Subcommands search the arXiv API, download PDFs through the concurrent
// orchestrator and manage the local metadata store.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-harvester/internal/config"
	"github.com/pdiddy/arxiv-harvester/internal/logging"
	"github.com/pdiddy/arxiv-harvester/internal/store"
	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// skipConfig marks commands that run without loading the configuration.
const skipConfig = "skip-config"

var (
	// cfg is the effective configuration, loaded before every command.
	cfg types.HarvesterConfig

	// logger is built from cfg.Logging.
	logger    *logrus.Logger
	logCloser io.Closer = nopCloser{}
)

// flagKeys maps command-line flags to the configuration keys they override.
// A flag only takes effect when set explicitly.
var flagKeys = map[string]string{
	"log-level":  "logging.level",
	"log-file":   "logging.log_file",
	"threads":    "download.max_concurrent_downloads",
	"output-dir": "download.output_directory",
	"db":         "storage.database_path",
}

// rootCmd is the base command for the arxiv-harvester CLI.
var rootCmd = &cobra.Command{
	Use:   "arxiv-harvester",
	Short: "Search arXiv and download papers concurrently",
	Long: `arxiv-harvester searches the arXiv API, stores paper metadata in a local
SQLite database and downloads PDFs through a bounded pool of workers.

Configuration comes from arxiv-harvester.yaml (in the working directory or
~/.config/arxiv-harvester), ARXIV_* environment variables and flags.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logCloser.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./arxiv-harvester.yaml or ~/.config/arxiv-harvester/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-file", "", "also append log entries to this file")
	rootCmd.PersistentFlags().String("db", "", "metadata database path")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if _, ok := cmd.Annotations[skipConfig]; ok {
		return nil
	}

	v := config.New()
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding --%s: %w", name, err)
			}
		}
	}

	cfgFile, _ := cmd.Flags().GetString("config")
	loaded, used, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	logger, logCloser, err = logging.Setup(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if used != "" {
		logger.WithField("file", used).Debug("using config file")
	}
	return nil
}

// openStore opens the configured metadata database.
func openStore() (*store.Store, error) {
	return store.Open(cfg.Storage.DatabasePath, logger)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
