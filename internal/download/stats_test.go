// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 bytes"},
		{512, "512 bytes"},
		{1023, "1023 bytes"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1 << 20, "1.00 MB"},
		{5*(1<<20) + (1 << 19), "5.50 MB"},
		{3 << 30, "3.00 GB"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBytes(tt.n))
		})
	}
}

func TestStats_Snapshot(t *testing.T) {
	s := NewStats(4)
	s.RecordSuccess(1024)
	s.RecordSkip()
	s.RecordFailure()

	snap := s.Snapshot()

	assert.Equal(t, 4, snap.Total)
	assert.Equal(t, 2, snap.Successful)
	assert.Equal(t, 1, snap.Failed)
	assert.Equal(t, 1, snap.Skipped)
	assert.Equal(t, int64(1024), snap.BytesDownloaded)
	assert.InDelta(t, 50.0, snap.SuccessRate, 0.001)
	assert.Equal(t, "1.00 KB", snap.FormattedSize)
}

func TestStats_ZeroTotal(t *testing.T) {
	snap := NewStats(0).Snapshot()
	assert.Zero(t, snap.SuccessRate)
	assert.Equal(t, "0 bytes", snap.FormattedSize)
}

func TestStats_ConcurrentUpdates(t *testing.T) {
	s := NewStats(300)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(3)
		go func() { defer wg.Done(); s.RecordSuccess(2) }()
		go func() { defer wg.Done(); s.RecordSkip() }()
		go func() { defer wg.Done(); s.RecordFailure() }()
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Equal(t, 200, snap.Successful)
	assert.Equal(t, 100, snap.Skipped)
	assert.Equal(t, 100, snap.Failed)
	assert.Equal(t, int64(200), snap.BytesDownloaded)
}
