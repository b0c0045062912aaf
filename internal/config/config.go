// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads the harvester configuration with viper. Values come
// from, in increasing precedence: built-in defaults, the config file,
// environment variables and command-line flags bound by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

const (
	// AppName names the config file and its directory under ~/.config.
	AppName = "arxiv-harvester"

	// EnvPrefix prefixes every environment variable, e.g.
	// ARXIV_DOWNLOAD_MAX_CONCURRENT_DOWNLOADS.
	EnvPrefix = "ARXIV"
)

// envAliases are short environment names accepted alongside the prefixed
// key names.
var envAliases = map[string]string{
	"download.output_directory":         "ARXIV_DOWNLOAD_DIR",
	"download.max_concurrent_downloads": "ARXIV_DOWNLOAD_THREADS",
	"download.retry_attempts":           "ARXIV_DOWNLOAD_RETRIES",
	"download.timeout":                  "ARXIV_DOWNLOAD_TIMEOUT",
	"download.filename_pattern":         "ARXIV_FILENAME_PATTERN",
	"api.base_url":                      "ARXIV_API_BASE_URL",
	"api.max_results_per_query":         "ARXIV_API_MAX_RESULTS",
	"api.request_delay":                 "ARXIV_API_DELAY",
	"api.user_agent":                    "ARXIV_API_USER_AGENT",
	"api.timeout":                       "ARXIV_API_TIMEOUT",
	"storage.database_path":             "ARXIV_DATABASE_PATH",
	"logging.level":                     "ARXIV_LOG_LEVEL",
	"logging.log_file":                  "ARXIV_LOG_FILE",
}

// New returns a viper instance with defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		// The prefixed name stays first so it wins over the alias.
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		v.BindEnv(key, prefixed, env)
	}
	return v
}

// SetDefaults registers every option with its default value.
func SetDefaults(v *viper.Viper) {
	d := types.DefaultConfig()

	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.max_results_per_query", d.API.MaxResultsPerQuery)
	v.SetDefault("api.request_delay", d.API.RequestDelay)
	v.SetDefault("api.user_agent", d.API.UserAgent)
	v.SetDefault("api.timeout", d.API.Timeout)

	v.SetDefault("download.output_directory", d.Download.OutputDirectory)
	v.SetDefault("download.max_concurrent_downloads", d.Download.MaxConcurrentDownloads)
	v.SetDefault("download.retry_attempts", d.Download.RetryAttempts)
	v.SetDefault("download.timeout", d.Download.Timeout)
	v.SetDefault("download.filename_pattern", d.Download.FilenamePattern)
	v.SetDefault("download.create_category_folders", d.Download.CreateCategoryFolders)
	v.SetDefault("download.user_agent", d.Download.UserAgent)

	v.SetDefault("storage.database_path", d.Storage.DatabasePath)
	v.SetDefault("storage.export_formats", d.Storage.ExportFormats)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.log_file", d.Logging.LogFile)
}

// Load reads file, or searches for arxiv-harvester.yaml in the working
// directory and ~/.config/arxiv-harvester when file is empty. A missing
// searched-for file is not an error. The decoded configuration is
// validated. Load returns the config file used, or "" when none was found.
func Load(v *viper.Viper, file string) (types.HarvesterConfig, string, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", AppName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return types.HarvesterConfig{}, "", fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg types.HarvesterConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return types.HarvesterConfig{}, "", fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return types.HarvesterConfig{}, "", fmt.Errorf("invalid config: %w", err)
	}
	return cfg, v.ConfigFileUsed(), nil
}

// Marshal renders cfg as the YAML config file format.
func Marshal(cfg types.HarvesterConfig) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

// WriteDefault writes a config file with every option at its default. An
// existing file is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	data, err := Marshal(types.DefaultConfig())
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
