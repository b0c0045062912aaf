// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/arxiv-harvester/internal/search"
	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

func testRecords(n int) []types.Record {
	recs := make([]types.Record, n)
	for i := range recs {
		recs[i] = types.Record{
			Identifier: fmt.Sprintf("2301.%05dv1", i+1),
			Title:      fmt.Sprintf("Paper %d", i+1),
			Authors:    []string{"Ada Lovelace"},
		}
	}
	return recs
}

func TestSelectRecords(t *testing.T) {
	recs := testRecords(5)
	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader("9\n2, 4-5\n"))

	chosen, err := selectRecords(in, &out, recs)
	require.NoError(t, err)
	require.Len(t, chosen, 3)
	assert.Equal(t, "2301.00002v1", chosen[0].Identifier)
	assert.Equal(t, "2301.00005v1", chosen[2].Identifier)
	assert.Contains(t, out.String(), `invalid selection "9"`, "bad input re-prompts")
	assert.Equal(t, 2, strings.Count(out.String(), "Select papers"))
}

func TestSelectRecords_None(t *testing.T) {
	chosen, err := selectRecords(bufio.NewReader(strings.NewReader("none\n")), &bytes.Buffer{}, testRecords(3))
	require.NoError(t, err)
	assert.Empty(t, chosen)
}

func TestSelectRecords_EOF(t *testing.T) {
	chosen, err := selectRecords(bufio.NewReader(strings.NewReader("")), &bytes.Buffer{}, testRecords(3))
	require.NoError(t, err)
	assert.Empty(t, chosen)

	_, err = selectRecords(bufio.NewReader(strings.NewReader("7")), &bytes.Buffer{}, testRecords(3))
	assert.Error(t, err, "invalid final line without newline")
}

func TestConfirm(t *testing.T) {
	for input, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false, "": false} {
		got := confirm(bufio.NewReader(strings.NewReader(input)), &bytes.Buffer{}, "Retry?")
		assert.Equal(t, want, got, "input %q", input)
	}
}

func TestPrintRecords(t *testing.T) {
	var out bytes.Buffer
	recs := testRecords(2)
	recs[1].Title = strings.Repeat("long title ", 20)
	printRecords(&out, recs)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "1    2301.00001v1"))
	assert.True(t, strings.HasSuffix(lines[2], "..."))
}

func TestPrintFailures(t *testing.T) {
	var failed []types.DownloadOutcome
	for i := 0; i < maxListedFailures+2; i++ {
		failed = append(failed, types.DownloadOutcome{Identifier: fmt.Sprintf("id%d", i), Error: "HTTP 404"})
	}
	var out bytes.Buffer
	printFailures(&out, failed)
	assert.Contains(t, out.String(), "Failed downloads (12)")
	assert.Contains(t, out.String(), "... and 2 more")

	out.Reset()
	printFailures(&out, nil)
	assert.Empty(t, out.String())
}

// executeCommand runs the CLI with args and returns stdout.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "arxiv-harvester.yaml")
	data := fmt.Sprintf(`api:
  request_delay: 0
download:
  output_directory: %s
  filename_pattern: "{arxiv_id}"
  create_category_folders: false
  retry_attempts: 0
  timeout: 5
storage:
  database_path: %s
logging:
  level: error
`, filepath.Join(dir, "papers"), filepath.Join(dir, "papers.db"))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestDownloadCommand(t *testing.T) {
	pdf := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 4096)...)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "missing") {
			http.NotFound(w, r)
			return
		}
		w.Write(pdf)
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)

	recs := testRecords(3)
	recs[0].PDFURL = srv.URL + "/pdf/1"
	recs[1].PDFURL = srv.URL + "/pdf/2"
	recs[2].PDFURL = srv.URL + "/pdf/missing"
	input := filepath.Join(dir, "records.json")
	require.NoError(t, search.WriteRecords(input, recs))

	out, err := executeCommand(t, "n\n", "download", "--config", cfgPath, "--input", input)
	assert.ErrorContains(t, err, "1 paper(s) failed to download")
	assert.Contains(t, out, "Successful:  2")
	assert.Contains(t, out, "2301.00003v1")
	assert.Contains(t, out, "Retry failed downloads?")

	files, err := filepath.Glob(filepath.Join(dir, "papers", "*.pdf"))
	require.NoError(t, err)
	assert.Len(t, files, 2)

	out, err = executeCommand(t, "", "stats", "--config", cfgPath, "--json")
	require.NoError(t, err)
	var stats map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.EqualValues(t, 3, stats["total_papers"])
	assert.EqualValues(t, 2, stats["downloaded_papers"])
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "arxiv-harvester dev\n", out)
}

func TestChunkLogger(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	onChunk := chunkLogger(log)

	const total = 3 << 20
	onChunk("a", 8192, total)
	onChunk("a", 1<<20+5, total)
	onChunk("a", 1<<20+10, total)
	onChunk("b", 4096, 4096)
	onChunk("a", total, total)

	entries := hook.AllEntries()
	require.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].Data["arxiv_id"])
	assert.Equal(t, int64(1<<20+5), entries[0].Data["bytes"])
	assert.Equal(t, "b", entries[1].Data["arxiv_id"])
	assert.Equal(t, int64(total), entries[2].Data["bytes"])
}
