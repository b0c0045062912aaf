// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-harvester/internal/search"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetch recently submitted papers into the database",
	Long: `Update searches for papers submitted in the last few days, newest first,
and adds them to the metadata database. Run download afterwards to fetch the
new PDFs.`,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().Int("days", 7, "look back this many days")
	updateCmd.Flags().StringSlice("category", nil, "categories to update (repeatable; default all)")
	updateCmd.Flags().Int("max-results", 200, "maximum papers per category")

	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	days, _ := cmd.Flags().GetInt("days")
	categories, _ := cmd.Flags().GetStringSlice("category")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	if days <= 0 {
		return fmt.Errorf("--days must be positive, got %d", days)
	}
	if len(categories) == 0 {
		categories = []string{""}
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	client := search.NewClient(cfg.API, logger)
	from := time.Now().UTC().AddDate(0, 0, -days)
	for _, category := range categories {
		q := search.Query{
			Category:   category,
			DateFrom:   from,
			MaxResults: maxResults,
			SortBy:     search.SortSubmittedDate,
			SortOrder:  search.OrderDescending,
		}
		recs, err := client.SearchAll(ctx, q)
		if err != nil {
			return fmt.Errorf("updating %s: %w", orAll(category), err)
		}
		added, err := st.AddRecords(ctx, recs)
		if err != nil {
			return err
		}
		if err := st.AddSearchHistory(ctx, q, len(recs)); err != nil {
			return err
		}
		fmt.Fprintf(out, "%-12s %4d found  %4d new\n", orAll(category), len(recs), added)
	}
	return nil
}

func orAll(category string) string {
	if category == "" {
		return "all"
	}
	return category
}
