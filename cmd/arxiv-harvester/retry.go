// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-harvester/internal/store"
)

var retryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Retry papers in the database that are not downloaded",
	Long: `Retry downloads every paper in the metadata database that has a PDF URL but
no recorded download, for example after an interrupted or partly failed run.`,
	RunE: runRetry,
}

func init() {
	retryCmd.Flags().String("category", "", "only retry papers in this category")
	retryCmd.Flags().Int("limit", 0, "maximum number of papers to retry (0 = all)")
	retryCmd.Flags().Int("threads", 0, "concurrent downloads (default from config)")
	retryCmd.Flags().String("output-dir", "", "download directory (default from config)")

	rootCmd.AddCommand(retryCmd)
}

func runRetry(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	category, _ := cmd.Flags().GetString("category")
	limit, _ := cmd.Flags().GetInt("limit")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	recs, err := st.Records(ctx, store.Filter{Category: category, PendingOnly: true, Limit: limit})
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No failed downloads to retry.")
		return nil
	}
	return fetchAndRecord(ctx, cmd, st, recs, func() bool { return false })
}
