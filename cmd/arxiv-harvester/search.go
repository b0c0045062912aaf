// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-harvester/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search arXiv for papers",
	Long: `Search queries the arXiv API with free text and field filters, stores the
results in the metadata database and prints them as a table. Results can also
be written to a record file for a later download --input.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("query", "", "free-text query over all fields")
	searchCmd.Flags().String("author", "", "filter by author name")
	searchCmd.Flags().String("title", "", "filter by title words")
	searchCmd.Flags().String("abstract", "", "filter by abstract words")
	searchCmd.Flags().String("category", "", "filter by arXiv category (e.g. cs.AI)")
	searchCmd.Flags().String("from", "", "submitted on or after (YYYY-MM-DD)")
	searchCmd.Flags().String("to", "", "submitted on or before (YYYY-MM-DD)")
	searchCmd.Flags().Int("max-results", 50, "maximum number of results")
	searchCmd.Flags().String("sort-by", search.SortRelevance, "relevance, lastUpdatedDate or submittedDate")
	searchCmd.Flags().String("sort-order", search.OrderDescending, "ascending or descending")
	searchCmd.Flags().String("export", "", "write results to a record file (.json, .yaml)")
	searchCmd.Flags().Bool("show-details", false, "print abstract, categories and links for each result")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	q, err := queryFromFlags(cmd)
	if err != nil {
		return err
	}

	client := search.NewClient(cfg.API, logger)
	recs, err := client.SearchAll(ctx, q)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	added, err := st.AddRecords(ctx, recs)
	if err != nil {
		return err
	}
	if err := st.AddSearchHistory(ctx, q, len(recs)); err != nil {
		return err
	}

	fmt.Fprintf(out, "Found %d papers (%d new) for %s\n\n", len(recs), added, q)
	printRecords(out, recs)

	if details, _ := cmd.Flags().GetBool("show-details"); details {
		for _, r := range recs {
			fmt.Fprintf(out, "\n%s  %s\n", r.Identifier, r.Title)
			fmt.Fprintf(out, "  %-12s %v\n", "Authors:", r.Authors)
			fmt.Fprintf(out, "  %-12s %v\n", "Categories:", r.Categories)
			fmt.Fprintf(out, "  %-12s %s\n", "PDF:", r.PDFURL)
			if r.DOI != "" {
				fmt.Fprintf(out, "  %-12s %s\n", "DOI:", r.DOI)
			}
			fmt.Fprintf(out, "  %s\n", truncate(r.Abstract, 300))
		}
	}

	if export, _ := cmd.Flags().GetString("export"); export != "" {
		if err := search.WriteRecords(export, recs); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nWrote %d records to %s\n", len(recs), export)
	}
	return nil
}

func queryFromFlags(cmd *cobra.Command) (search.Query, error) {
	flags := cmd.Flags()
	q := search.Query{}
	q.FreeText, _ = flags.GetString("query")
	q.Author, _ = flags.GetString("author")
	q.Title, _ = flags.GetString("title")
	q.Abstract, _ = flags.GetString("abstract")
	q.Category, _ = flags.GetString("category")
	q.MaxResults, _ = flags.GetInt("max-results")
	q.SortBy, _ = flags.GetString("sort-by")
	q.SortOrder, _ = flags.GetString("sort-order")

	var err error
	if from, _ := flags.GetString("from"); from != "" {
		if q.DateFrom, err = search.ParseDate(from); err != nil {
			return q, err
		}
	}
	if to, _ := flags.GetString("to"); to != "" {
		if q.DateTo, err = search.ParseDate(to); err != nil {
			return q, err
		}
	}
	return q, q.Validate()
}
