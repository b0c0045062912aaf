// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-harvester/internal/download"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove incomplete downloads and compact the database",
	Long: `Cleanup deletes PDF files under the download directory that are too small
to be complete (left behind by crashed or killed runs), then compacts the
metadata database. Use --backup to copy the database first.`,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().String("backup", "", "copy the database to this path before compacting")
	cleanupCmd.Flags().String("output-dir", "", "download directory (default from config)")
	cleanupCmd.Flags().Bool("skip-db", false, "only sweep incomplete files")

	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	backup, _ := cmd.Flags().GetString("backup")
	skipDB, _ := cmd.Flags().GetBool("skip-db")

	if !skipDB {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if backup != "" {
			if err := st.Backup(ctx, backup); err != nil {
				return err
			}
			fmt.Fprintf(out, "Database backed up to %s\n", backup)
		}
		if err := st.Compact(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "Database compacted")
	}

	removed, err := download.CleanupIncomplete(cfg.Download.OutputDirectory, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Removed %d incomplete files from %s\n", removed, cfg.Download.OutputDirectory)
	return nil
}
