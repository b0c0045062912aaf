// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"fmt"
	"sync"

	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

// Stats aggregates counters for one orchestrator run. Every mutation goes
// through mu, so workers may record concurrently.
//
// A skipped download counts as both skipped and successful. Bytes only
// include data transferred during the run, never the size of skipped files.
type Stats struct {
	mu         sync.Mutex
	total      int
	successful int
	failed     int
	skipped    int
	bytes      int64
}

// NewStats returns counters for a run over total records.
func NewStats(total int) *Stats {
	return &Stats{total: total}
}

// RecordSuccess counts one completed transfer of n bytes.
func (s *Stats) RecordSuccess(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.successful++
	s.bytes += n
}

// RecordSkip counts one record satisfied by an existing file.
func (s *Stats) RecordSkip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.successful++
	s.skipped++
}

// RecordFailure counts one failed record.
func (s *Stats) RecordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed++
}

// Snapshot returns a consistent copy of the counters with derived fields.
func (s *Stats) Snapshot() types.StatsSnapshot {
	s.mu.Lock()
	snap := types.StatsSnapshot{
		Total:           s.total,
		Successful:      s.successful,
		Failed:          s.failed,
		Skipped:         s.skipped,
		BytesDownloaded: s.bytes,
	}
	s.mu.Unlock()

	if snap.Total > 0 {
		snap.SuccessRate = float64(snap.Successful) / float64(snap.Total) * 100
	}
	snap.FormattedSize = FormatBytes(snap.BytesDownloaded)
	return snap
}

// FormatBytes renders n with a binary unit ("1.50 MB", "512 bytes").
func FormatBytes(n int64) string {
	const (
		kb = 1 << 10
		mb = 1 << 20
		gb = 1 << 30
	)
	switch {
	case n >= gb:
		return fmt.Sprintf("%.2f GB", float64(n)/gb)
	case n >= mb:
		return fmt.Sprintf("%.2f MB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.2f KB", float64(n)/kb)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
