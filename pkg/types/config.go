// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// Default values for every recognized option.
const (
	DefaultAPIBaseURL         = "https://export.arxiv.org/api/query"
	DefaultMaxResultsPerQuery = 100
	DefaultRequestDelay       = 3.0
	DefaultUserAgent          = "arxiv-harvester/0.1"
	DefaultAPITimeout         = 30

	DefaultOutputDirectory = "./downloaded_papers"
	DefaultMaxConcurrent   = 5
	DefaultRetryAttempts   = 3
	DefaultDownloadTimeout = 60
	DefaultFilenamePattern = "{year}_{first_author}_{title}"
	DefaultCategoryFolders = true
	DefaultDatabasePath    = "./arxiv_papers.db"
	DefaultLogLevel        = "info"
)

// APIConfig holds settings for the arXiv search client.
type APIConfig struct {
	// BaseURL is the arXiv query endpoint.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// MaxResultsPerQuery is the page size used when paginating.
	MaxResultsPerQuery int `json:"max_results_per_query" yaml:"max_results_per_query" mapstructure:"max_results_per_query"`

	// RequestDelay is the fixed pause between API requests, in seconds.
	RequestDelay float64 `json:"request_delay" yaml:"request_delay" mapstructure:"request_delay"`

	// UserAgent is sent with every request.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// Timeout is the per-request timeout, in seconds.
	Timeout int `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// Delay returns RequestDelay as a duration.
func (c APIConfig) Delay() time.Duration {
	return time.Duration(c.RequestDelay * float64(time.Second))
}

// RequestTimeout returns Timeout as a duration.
func (c APIConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// DownloadConfig holds settings for the download orchestrator.
type DownloadConfig struct {
	// OutputDirectory is the root for resolved paths.
	OutputDirectory string `json:"output_directory" yaml:"output_directory" mapstructure:"output_directory"`

	// MaxConcurrentDownloads bounds the worker pool.
	MaxConcurrentDownloads int `json:"max_concurrent_downloads" yaml:"max_concurrent_downloads" mapstructure:"max_concurrent_downloads"`

	// RetryAttempts is the transport-level retry count inside the HTTP layer.
	// It is unrelated to the separate retry pass over failed records.
	RetryAttempts int `json:"retry_attempts" yaml:"retry_attempts" mapstructure:"retry_attempts"`

	// Timeout is the per-request timeout, in seconds.
	Timeout int `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// FilenamePattern accepts {year}, {first_author}, {title} and {arxiv_id}.
	FilenamePattern string `json:"filename_pattern" yaml:"filename_pattern" mapstructure:"filename_pattern"`

	// CreateCategoryFolders places each file under its primary category.
	CreateCategoryFolders bool `json:"create_category_folders" yaml:"create_category_folders" mapstructure:"create_category_folders"`

	// UserAgent is sent with every download request.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// RequestTimeout returns Timeout as a duration.
func (c DownloadConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// StorageConfig holds settings for the metadata store.
type StorageConfig struct {
	// DatabasePath is the SQLite database file.
	DatabasePath string `json:"database_path" yaml:"database_path" mapstructure:"database_path"`

	// ExportFormats lists the formats written by the export command (json, yaml).
	ExportFormats []string `json:"export_formats" yaml:"export_formats" mapstructure:"export_formats"`
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// LogFile, when set, receives a copy of every log entry.
	LogFile string `json:"log_file" yaml:"log_file" mapstructure:"log_file"`
}

// HarvesterConfig groups every section of the configuration file.
type HarvesterConfig struct {
	API      APIConfig      `json:"api" yaml:"api" mapstructure:"api"`
	Download DownloadConfig `json:"download" yaml:"download" mapstructure:"download"`
	Storage  StorageConfig  `json:"storage" yaml:"storage" mapstructure:"storage"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// DefaultConfig returns a configuration with every field at its default.
func DefaultConfig() HarvesterConfig {
	return HarvesterConfig{
		API: APIConfig{
			BaseURL:            DefaultAPIBaseURL,
			MaxResultsPerQuery: DefaultMaxResultsPerQuery,
			RequestDelay:       DefaultRequestDelay,
			UserAgent:          DefaultUserAgent,
			Timeout:            DefaultAPITimeout,
		},
		Download: DefaultDownloadConfig(),
		Storage: StorageConfig{
			DatabasePath:  DefaultDatabasePath,
			ExportFormats: []string{"json", "yaml"},
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}
}

// DefaultDownloadConfig returns the download section defaults.
func DefaultDownloadConfig() DownloadConfig {
	return DownloadConfig{
		OutputDirectory:        DefaultOutputDirectory,
		MaxConcurrentDownloads: DefaultMaxConcurrent,
		RetryAttempts:          DefaultRetryAttempts,
		Timeout:                DefaultDownloadTimeout,
		FilenamePattern:        DefaultFilenamePattern,
		CreateCategoryFolders:  DefaultCategoryFolders,
		UserAgent:              DefaultUserAgent,
	}
}

// Validate checks the download section.
func (c DownloadConfig) Validate() error {
	switch {
	case c.OutputDirectory == "":
		return fmt.Errorf("download.output_directory must not be empty")
	case c.MaxConcurrentDownloads <= 0:
		return fmt.Errorf("download.max_concurrent_downloads must be positive, got %d", c.MaxConcurrentDownloads)
	case c.RetryAttempts < 0:
		return fmt.Errorf("download.retry_attempts must be non-negative, got %d", c.RetryAttempts)
	case c.Timeout <= 0:
		return fmt.Errorf("download.timeout must be positive, got %d", c.Timeout)
	case c.FilenamePattern == "":
		return fmt.Errorf("download.filename_pattern must not be empty")
	}
	return nil
}

// Validate checks the api section.
func (c APIConfig) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("api.base_url must not be empty")
	case c.MaxResultsPerQuery <= 0:
		return fmt.Errorf("api.max_results_per_query must be positive, got %d", c.MaxResultsPerQuery)
	case c.RequestDelay < 0:
		return fmt.Errorf("api.request_delay must be non-negative, got %v", c.RequestDelay)
	case c.Timeout <= 0:
		return fmt.Errorf("api.timeout must be positive, got %d", c.Timeout)
	}
	return nil
}

// Validate checks every section.
func (c HarvesterConfig) Validate() error {
	if err := c.API.Validate(); err != nil {
		return err
	}
	if err := c.Download.Validate(); err != nil {
		return err
	}
	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("storage.database_path must not be empty")
	}
	for _, f := range c.Storage.ExportFormats {
		if f != "json" && f != "yaml" {
			return fmt.Errorf("storage.export_formats: unsupported format %q", f)
		}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}
