// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arxiv-harvester.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// isolate keeps a user's own config file out of the search path.
func isolate(t *testing.T, dir string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t, t.TempDir())

	cfg, used, err := Load(New(), "")
	require.NoError(t, err)
	assert.Empty(t, used)
	assert.Equal(t, types.DefaultConfig(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
api:
  request_delay: 0.5
download:
  output_directory: /data/papers
  max_concurrent_downloads: 8
  create_category_folders: false
logging:
  level: debug
`)

	cfg, used, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 0.5, cfg.API.RequestDelay)
	assert.Equal(t, "/data/papers", cfg.Download.OutputDirectory)
	assert.Equal(t, 8, cfg.Download.MaxConcurrentDownloads)
	assert.False(t, cfg.Download.CreateCategoryFolders)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, types.DefaultRetryAttempts, cfg.Download.RetryAttempts, "unset keys keep defaults")
}

func TestLoad_SearchesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "arxiv-harvester.yaml"), []byte("download:\n  retry_attempts: 0\n"), 0o644))
	isolate(t, dir)

	cfg, used, err := Load(New(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, used)
	assert.Equal(t, 0, cfg.Download.RetryAttempts)
}

func TestLoad_Environment(t *testing.T) {
	path := writeConfig(t, "download:\n  max_concurrent_downloads: 8\n")
	t.Setenv("ARXIV_DOWNLOAD_MAX_CONCURRENT_DOWNLOADS", "3")
	t.Setenv("ARXIV_DOWNLOAD_DIR", "/env/papers")
	t.Setenv("ARXIV_API_DELAY", "1.5")
	t.Setenv("ARXIV_LOG_LEVEL", "warn")

	cfg, _, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Download.MaxConcurrentDownloads, "environment beats file")
	assert.Equal(t, "/env/papers", cfg.Download.OutputDirectory)
	assert.Equal(t, 1.5, cfg.API.RequestDelay)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_PrefixedNameBeatsAlias(t *testing.T) {
	isolate(t, t.TempDir())
	t.Setenv("ARXIV_DOWNLOAD_THREADS", "2")
	t.Setenv("ARXIV_DOWNLOAD_MAX_CONCURRENT_DOWNLOADS", "7")

	cfg, _, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Download.MaxConcurrentDownloads)
}

func TestLoad_Invalid(t *testing.T) {
	path := writeConfig(t, "download:\n  max_concurrent_downloads: 0\n")
	_, _, err := Load(New(), path)
	assert.ErrorContains(t, err, "download.max_concurrent_downloads")

	_, _, err = Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config file")
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "arxiv-harvester.yaml")
	require.NoError(t, WriteDefault(path, false))

	cfg, _, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultConfig(), cfg)

	assert.ErrorContains(t, WriteDefault(path, false), "already exists")
	assert.NoError(t, WriteDefault(path, true))
}
