// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download fetches PDFs for a batch of records through a bounded
// worker pool, tracks per-run statistics and supports a later retry pass
// over the records that failed.
//
// Per-record problems never escape Run: a missing URL, a transport error,
// an empty body or even a panic inside a worker all become unsuccessful
// outcomes, so the caller always receives one outcome per record.
package download

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/arxiv-harvester/internal/naming"
	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

// ProgressFunc is called once per completed record, in completion order,
// from the goroutine that called Run.
type ProgressFunc func(done, total int, outcome types.DownloadOutcome)

// RunOptions adjusts a single Run or Retry call.
type RunOptions struct {
	// Concurrency overrides the orchestrator's pool size when positive.
	Concurrency int

	// OnProgress observes completions.
	OnProgress ProgressFunc
}

// Orchestrator runs fetches through a bounded worker pool.
type Orchestrator struct {
	fetcher     Fetcher
	concurrency int
	log         logrus.FieldLogger

	mu    sync.Mutex
	stats *Stats
}

// New returns an Orchestrator that runs at most concurrency fetches at once.
func New(fetcher Fetcher, concurrency int, log logrus.FieldLogger) *Orchestrator {
	if concurrency <= 0 {
		concurrency = types.DefaultMaxConcurrent
	}
	if log == nil {
		log = discardLogger()
	}
	return &Orchestrator{
		fetcher:     fetcher,
		concurrency: concurrency,
		log:         log,
		stats:       NewStats(0),
	}
}

// NewFromConfig wires the HTTP client, naming resolver and fetcher described
// by cfg. The fetcher is returned so callers can attach a ChunkFunc.
func NewFromConfig(cfg types.DownloadConfig, log logrus.FieldLogger) (*Orchestrator, *HTTPFetcher) {
	fetcher := NewHTTPFetcher(NewHTTPClient(cfg), naming.NewResolver(cfg), cfg, log)
	return New(fetcher, cfg.MaxConcurrentDownloads, log), fetcher
}

// Stats returns a snapshot of the current or most recent run. It is safe to
// call while a run is in progress.
func (o *Orchestrator) Stats() types.StatsSnapshot {
	o.mu.Lock()
	stats := o.stats
	o.mu.Unlock()
	return stats.Snapshot()
}

// Run downloads every record and returns one outcome per record in
// completion order. Statistics are reset at entry. Run returns only after
// every submitted fetch has finished.
func (o *Orchestrator) Run(ctx context.Context, records []types.Record, opts RunOptions) []types.DownloadOutcome {
	stats := NewStats(len(records))
	o.mu.Lock()
	o.stats = stats
	o.mu.Unlock()

	if len(records) == 0 {
		return []types.DownloadOutcome{}
	}

	workers := opts.Concurrency
	if workers <= 0 {
		workers = o.concurrency
	}
	if workers > len(records) {
		workers = len(records)
	}

	log := o.log.WithFields(logrus.Fields{"run_id": uuid.NewString(), "workers": workers})
	log.Infof("starting download of %d papers", len(records))

	jobs := make(chan types.Record, len(records))
	results := make(chan types.DownloadOutcome, len(records))
	for _, rec := range records {
		jobs <- rec
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				results <- o.safeFetch(ctx, rec, stats, log)
			}
		}()
	}

	outcomes := make([]types.DownloadOutcome, 0, len(records))
	for range records {
		outcome := <-results
		if !outcome.Success {
			stats.RecordFailure()
		}
		outcomes = append(outcomes, outcome)
		if opts.OnProgress != nil {
			opts.OnProgress(len(outcomes), len(records), outcome)
		}
	}
	wg.Wait()

	snap := stats.Snapshot()
	log.WithFields(logrus.Fields{
		"successful": snap.Successful,
		"failed":     snap.Failed,
		"skipped":    snap.Skipped,
	}).Info("download completed")
	return outcomes
}

// safeFetch converts a panic inside the fetcher into a failure outcome so a
// defective worker cannot take down its siblings or lose their results.
func (o *Orchestrator) safeFetch(ctx context.Context, rec types.Record, stats *Stats, log logrus.FieldLogger) (outcome types.DownloadOutcome) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("arxiv_id", rec.Identifier).Errorf("worker fault: %v", r)
			outcome = failure(rec.Identifier, fmt.Errorf("worker fault: %v", r))
		}
	}()
	return o.fetcher.Fetch(ctx, rec, stats)
}

// Retry runs the orchestrator again over the records whose identifiers
// appear in failed. Identifiers missing from records are dropped, as are
// repeated identifiers. With nothing to retry Retry returns an empty slice
// and leaves the statistics of the previous run in place.
func (o *Orchestrator) Retry(ctx context.Context, failed []types.DownloadOutcome, records []types.Record, opts RunOptions) []types.DownloadOutcome {
	byID := make(map[string]types.Record, len(records))
	for _, rec := range records {
		byID[rec.Identifier] = rec
	}

	seen := make(map[string]bool, len(failed))
	var retry []types.Record
	for _, outcome := range failed {
		rec, ok := byID[outcome.Identifier]
		if !ok || seen[outcome.Identifier] {
			continue
		}
		seen[outcome.Identifier] = true
		retry = append(retry, rec)
	}

	if len(retry) == 0 {
		return []types.DownloadOutcome{}
	}
	o.log.Infof("retrying download of %d failed papers", len(retry))
	return o.Run(ctx, retry, opts)
}

// Failed returns the unsuccessful outcomes.
func Failed(outcomes []types.DownloadOutcome) []types.DownloadOutcome {
	var failed []types.DownloadOutcome
	for _, o := range outcomes {
		if !o.Success {
			failed = append(failed, o)
		}
	}
	return failed
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
