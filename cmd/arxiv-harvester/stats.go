// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-harvester/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show metadata database statistics",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().Bool("json", false, "output statistics as JSON")

	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	s, err := st.Statistics(cmd.Context())
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	printStatistics(cmd.OutOrStdout(), s)
	return nil
}

func printStatistics(w io.Writer, s store.Statistics) {
	fmt.Fprintln(w, "Database statistics")
	fmt.Fprintf(w, "  %-22s %d\n", "Total papers:", s.Total)
	fmt.Fprintf(w, "  %-22s %d\n", "Downloaded:", s.Downloaded)
	fmt.Fprintf(w, "  %-22s %.1f%%\n", "Download rate:", s.DownloadRate)
	fmt.Fprintf(w, "  %-22s %d\n", "Added in last 30 days:", s.Recent)

	if len(s.TopCategories) > 0 {
		fmt.Fprintln(w, "\nTop categories")
		for _, c := range s.TopCategories {
			fmt.Fprintf(w, "  %-12s %d\n", c.Category, c.Count)
		}
	}
	if len(s.ByYear) > 0 {
		fmt.Fprintln(w, "\nPapers by year")
		for _, y := range s.ByYear {
			fmt.Fprintf(w, "  %-12s %d\n", y.Year, y.Count)
		}
	}
}
