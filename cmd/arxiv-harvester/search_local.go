// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-harvester/internal/store"
	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

var searchLocalCmd = &cobra.Command{
	Use:   "search-local <text>",
	Short: "Search papers already stored in the database",
	Long: `Search-local matches text against the title, abstract and authors of
stored papers without contacting arXiv.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearchLocal,
}

func init() {
	searchLocalCmd.Flags().StringSlice("fields", store.DefaultSearchFields, "fields to search: title, abstract, authors")
	searchLocalCmd.Flags().Int("limit", 50, "maximum number of results (0 = no limit)")

	rootCmd.AddCommand(searchLocalCmd)
}

func runSearchLocal(cmd *cobra.Command, args []string) error {
	fields, _ := cmd.Flags().GetStringSlice("fields")
	limit, _ := cmd.Flags().GetInt("limit")
	text := strings.Join(args, " ")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	papers, err := st.SearchLocal(cmd.Context(), text, fields, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Found %d stored papers matching %q\n\n", len(papers), text)
	recs := make([]types.Record, len(papers))
	for i, p := range papers {
		recs[i] = p.Record
	}
	printRecords(out, recs)
	return nil
}
