// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/arxiv-harvester/internal/download"
	"github.com/pdiddy/arxiv-harvester/internal/selection"
	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

// maxListedFailures bounds the failure list printed after a run.
const maxListedFailures = 10

// printRecords writes a numbered table of records. Numbers are 1-based so
// they can be fed back as a selection.
func printRecords(w io.Writer, recs []types.Record) {
	fmt.Fprintf(w, "%-4s %-18s %-10s %-24s %s\n", "#", "ARXIV ID", "DATE", "FIRST AUTHOR", "TITLE")
	for i, r := range recs {
		date := ""
		if !r.Published.IsZero() {
			date = r.Published.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%-4d %-18s %-10s %-24s %s\n",
			i+1, r.Identifier, date, truncate(r.FirstAuthor(), 24), truncate(r.Title, 70))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// printSummary writes the statistics of a finished run.
func printSummary(w io.Writer, s types.StatsSnapshot) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Download summary")
	fmt.Fprintf(w, "  %-12s %d\n", "Total:", s.Total)
	fmt.Fprintf(w, "  %-12s %d\n", "Successful:", s.Successful)
	fmt.Fprintf(w, "  %-12s %d\n", "Skipped:", s.Skipped)
	fmt.Fprintf(w, "  %-12s %d\n", "Failed:", s.Failed)
	fmt.Fprintf(w, "  %-12s %.1f%%\n", "Success:", s.SuccessRate)
	fmt.Fprintf(w, "  %-12s %s\n", "Downloaded:", s.FormattedSize)
}

// printFailures lists the first failed outcomes.
func printFailures(w io.Writer, failed []types.DownloadOutcome) {
	if len(failed) == 0 {
		return
	}
	fmt.Fprintf(w, "\nFailed downloads (%d):\n", len(failed))
	for i, o := range failed {
		if i == maxListedFailures {
			fmt.Fprintf(w, "  ... and %d more\n", len(failed)-maxListedFailures)
			break
		}
		fmt.Fprintf(w, "  %-18s %s\n", o.Identifier, o.Error)
	}
}

// selectRecords lists recs and reads a selection line from in until it
// parses. It returns the chosen records in index order, or none when the
// user answers "none" or input ends.
func selectRecords(in *bufio.Reader, out io.Writer, recs []types.Record) ([]types.Record, error) {
	printRecords(out, recs)
	for {
		fmt.Fprintf(out, "\nSelect papers to download (e.g. 1,3,5-7, all, none): ")
		line, err := in.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("reading selection: %w", err)
		}
		expr := strings.TrimSpace(line)
		if expr == "" && err == io.EOF {
			return nil, nil
		}

		indices, perr := selection.Parse(expr, len(recs))
		if perr != nil {
			fmt.Fprintln(out, perr)
			if err == io.EOF {
				return nil, perr
			}
			continue
		}
		chosen := make([]types.Record, 0, len(indices))
		for _, i := range indices {
			chosen = append(chosen, recs[i-1])
		}
		return chosen, nil
	}
}

// confirm asks a yes/no question; anything but y or yes is a no.
func confirm(in *bufio.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	line, _ := in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// downloadReport prints the summary and failures of a run and returns the
// failed outcomes.
func downloadReport(w io.Writer, o *download.Orchestrator, outcomes []types.DownloadOutcome) []types.DownloadOutcome {
	printSummary(w, o.Stats())
	failed := download.Failed(outcomes)
	printFailures(w, failed)
	return failed
}
