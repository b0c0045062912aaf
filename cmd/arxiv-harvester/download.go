// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-harvester/internal/download"
	"github.com/pdiddy/arxiv-harvester/internal/progress"
	"github.com/pdiddy/arxiv-harvester/internal/search"
	"github.com/pdiddy/arxiv-harvester/internal/store"
	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

var downloadCmd = &cobra.Command{
	Use:   "download [arxiv-ids...]",
	Short: "Download paper PDFs concurrently",
	Long: `Download fetches PDFs for a batch of papers through a bounded worker pool.

Papers come from, in order of preference: arXiv IDs given as arguments, a
record file (--input, JSON or YAML), a fresh search (--query, --category),
or the papers in the database that are not downloaded yet.

Files that already exist and look complete are skipped. Failed downloads
can be retried once at the end of the run.`,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().String("input", "", "record file to download (.json, .yaml)")
	downloadCmd.Flags().String("query", "", "search query whose results are downloaded")
	downloadCmd.Flags().String("category", "", "arXiv category filter (e.g. cs.AI)")
	downloadCmd.Flags().Int("max-results", 50, "maximum number of search results or stored papers")
	downloadCmd.Flags().Int("threads", 0, "concurrent downloads (default from config)")
	downloadCmd.Flags().String("output-dir", "", "download directory (default from config)")
	downloadCmd.Flags().Bool("interactive", false, "choose papers from a list before downloading")
	downloadCmd.Flags().Bool("retry", false, "retry failed downloads without asking")
	downloadCmd.Flags().BoolP("yes", "y", false, "answer yes to every prompt")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	recs, err := downloadSources(ctx, cmd, args, st)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(out, "No papers to download.")
		return nil
	}
	if _, err := st.AddRecords(ctx, recs); err != nil {
		return err
	}

	in := bufio.NewReader(cmd.InOrStdin())
	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		recs, err = selectRecords(in, out, recs)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Fprintln(out, "No papers selected.")
			return nil
		}
	}

	autoRetry, _ := cmd.Flags().GetBool("retry")
	yes, _ := cmd.Flags().GetBool("yes")
	ask := func() bool {
		if autoRetry || yes {
			return true
		}
		return confirm(in, out, "Retry failed downloads?")
	}
	return fetchAndRecord(ctx, cmd, st, recs, ask)
}

// downloadSources collects the records to download from the first source
// the command line names.
func downloadSources(ctx context.Context, cmd *cobra.Command, args []string, st *store.Store) ([]types.Record, error) {
	inputFile, _ := cmd.Flags().GetString("input")
	query, _ := cmd.Flags().GetString("query")
	category, _ := cmd.Flags().GetString("category")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	switch {
	case len(args) > 0:
		client := search.NewClient(cfg.API, logger)
		recs := make([]types.Record, 0, len(args))
		for _, id := range args {
			rec, err := client.Get(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("looking up %s: %w", id, err)
			}
			recs = append(recs, rec)
		}
		return recs, nil

	case inputFile != "":
		return search.ReadRecords(inputFile)

	case query != "" || category != "":
		client := search.NewClient(cfg.API, logger)
		recs, err := client.SearchAll(ctx, search.Query{
			FreeText:   query,
			Category:   category,
			MaxResults: maxResults,
		})
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Found %d papers.\n", len(recs))
		return recs, nil

	default:
		return st.Records(ctx, store.Filter{Category: category, PendingOnly: true, Limit: maxResults})
	}
}

// fetchAndRecord downloads recs, persists every outcome and prints the run
// summary. When some downloads fail and retry returns true, the failures
// are retried once. The command fails if any paper is still missing.
func fetchAndRecord(ctx context.Context, cmd *cobra.Command, st *store.Store, recs []types.Record, retry func() bool) error {
	out := cmd.OutOrStdout()
	orch, fetcher := download.NewFromConfig(cfg.Download, logger)
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		fetcher.OnChunk = chunkLogger(logger)
	}

	fmt.Fprintf(out, "Downloading %d papers to %s with %d workers\n",
		len(recs), cfg.Download.OutputDirectory, cfg.Download.MaxConcurrentDownloads)
	outcomes := runWithProgress(cmd.ErrOrStderr(), "Downloading", len(recs), func(opts download.RunOptions) []types.DownloadOutcome {
		return orch.Run(ctx, recs, opts)
	})
	if err := persistOutcomes(ctx, st, outcomes); err != nil {
		return err
	}
	failed := downloadReport(out, orch, outcomes)

	if len(failed) > 0 && ctx.Err() == nil && retry() {
		outcomes = runWithProgress(cmd.ErrOrStderr(), "Retrying", len(failed), func(opts download.RunOptions) []types.DownloadOutcome {
			return orch.Retry(ctx, failed, recs, opts)
		})
		if err := persistOutcomes(ctx, st, outcomes); err != nil {
			return err
		}
		failed = downloadReport(out, orch, outcomes)
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d paper(s) failed to download", len(failed))
	}
	return nil
}

func runWithProgress(w io.Writer, description string, total int, run func(download.RunOptions) []types.DownloadOutcome) []types.DownloadOutcome {
	reporter := progress.New(total, w, description)
	outcomes := run(download.RunOptions{OnProgress: reporter.Update})
	reporter.Finish()
	return outcomes
}

// persistOutcomes records outcomes even after an interrupt so finished
// downloads are not forgotten.
func persistOutcomes(ctx context.Context, st *store.Store, outcomes []types.DownloadOutcome) error {
	if _, err := st.RecordOutcomes(context.WithoutCancel(ctx), outcomes); err != nil {
		return fmt.Errorf("recording download status: %w", err)
	}
	return nil
}

// chunkLogger returns a ChunkFunc that logs byte progress at debug level
// each time a download crosses another MiB, and once when it reaches its
// declared length.
func chunkLogger(log logrus.FieldLogger) download.ChunkFunc {
	const mib = 1 << 20
	var logged sync.Map
	return func(id string, written, expected int64) {
		prev, _ := logged.Load(id)
		last, _ := prev.(int64)
		done := expected > 0 && written >= expected
		if written/mib <= last && !done {
			return
		}
		log.WithFields(logrus.Fields{"arxiv_id": id, "bytes": written, "expected": expected}).
			Debug("download progress")
		if done {
			logged.Delete(id)
			return
		}
		logged.Store(id, written/mib)
	}
}
