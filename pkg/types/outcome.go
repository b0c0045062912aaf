// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DownloadOutcome is the result of one download attempt for one record.
// A skipped download (file already present) is reported as a success with
// Skipped set. Outcomes are built once and never modified.
type DownloadOutcome struct {
	// Identifier is the record's arXiv ID.
	Identifier string `json:"arxiv_id" yaml:"arxiv_id"`

	// Success reports whether the PDF is present locally after the attempt.
	Success bool `json:"success" yaml:"success"`

	// Skipped reports that an existing local file was accepted without a request.
	Skipped bool `json:"skipped,omitempty" yaml:"skipped,omitempty"`

	// Path is the resolved local file, empty on failure.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Error describes the failure, empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// Bytes is the number of bytes written, or the existing size when skipped.
	Bytes int64 `json:"bytes" yaml:"bytes"`

	// CompletedAt is when the attempt finished.
	CompletedAt time.Time `json:"completed_at" yaml:"completed_at"`
}

// StatsSnapshot is a point-in-time copy of a run's statistics.
type StatsSnapshot struct {
	Total           int     `json:"total" yaml:"total"`
	Successful      int     `json:"successful" yaml:"successful"`
	Failed          int     `json:"failed" yaml:"failed"`
	Skipped         int     `json:"skipped" yaml:"skipped"`
	BytesDownloaded int64   `json:"bytes_downloaded" yaml:"bytes_downloaded"`
	SuccessRate     float64 `json:"success_rate" yaml:"success_rate"`
	FormattedSize   string  `json:"formatted_size" yaml:"formatted_size"`
}
