// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-harvester/internal/search"
	"github.com/pdiddy/arxiv-harvester/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export stored papers to JSON or YAML",
	Long: `Export writes the stored papers to a file. With a file argument the format
follows its extension. Without one, a file arxiv_papers.<format> is written to
--dir for every format in storage.export_formats.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("dir", ".", "directory for exports when no file is given")
	exportCmd.Flags().String("category", "", "only export papers in this category")
	exportCmd.Flags().Bool("downloaded", false, "only export downloaded papers")
	exportCmd.Flags().String("from", "", "published on or after (YYYY-MM-DD)")
	exportCmd.Flags().String("to", "", "published on or before (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	f := store.Filter{}
	f.Category, _ = flags.GetString("category")
	f.DownloadedOnly, _ = flags.GetBool("downloaded")

	var err error
	from, _ := flags.GetString("from")
	if f.DateFrom, err = search.ParseDate(from); err != nil {
		return err
	}
	to, _ := flags.GetString("to")
	if f.DateTo, err = search.ParseDate(to); err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		dir, _ := flags.GetString("dir")
		for _, format := range cfg.Storage.ExportFormats {
			paths = append(paths, filepath.Join(dir, "arxiv_papers."+format))
		}
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	for _, path := range paths {
		n, err := st.ExportFile(cmd.Context(), path, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d papers to %s\n", n, path)
	}
	return nil
}
