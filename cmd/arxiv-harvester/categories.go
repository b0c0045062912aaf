// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-harvester/internal/search"
)

var categoriesCmd = &cobra.Command{
	Use:         "categories [archive]",
	Short:       "List common arXiv category codes",
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{skipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		archive := ""
		if len(args) == 1 {
			archive = args[0]
		}
		cats := search.FilterCategories(archive)
		if len(cats) == 0 {
			return fmt.Errorf("no categories in archive %q", archive)
		}
		out := cmd.OutOrStdout()
		for _, c := range cats {
			fmt.Fprintf(out, "%-16s %s\n", c.Code, c.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}
