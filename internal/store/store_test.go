// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "papers.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecords() []types.Record {
	return []types.Record{
		{
			Identifier:      "1706.03762v7",
			Title:           "Attention Is All You Need",
			Authors:         []string{"Ashish Vaswani", "Noam Shazeer"},
			Abstract:        "The dominant sequence transduction models.",
			PrimaryCategory: "cs.CL",
			Categories:      []string{"cs.CL", "cs.LG"},
			Published:       time.Date(2017, 6, 12, 17, 57, 34, 0, time.UTC),
			PDFURL:          "http://arxiv.org/pdf/1706.03762v7",
		},
		{
			Identifier:      "1810.04805v2",
			Title:           "BERT: Pre-training of Deep Bidirectional Transformers",
			Authors:         []string{"Jacob Devlin"},
			PrimaryCategory: "cs.CL",
			Published:       time.Date(2018, 10, 11, 0, 50, 1, 0, time.UTC),
			PDFURL:          "http://arxiv.org/pdf/1810.04805v2",
		},
		{
			Identifier:      "1512.03385v1",
			Title:           "Deep Residual Learning for Image Recognition",
			Authors:         []string{"Kaiming He"},
			PrimaryCategory: "cs.CV",
			Published:       time.Date(2015, 12, 10, 19, 51, 55, 0, time.UTC),
		},
	}
}

func TestAddRecords(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	added, err := s.AddRecords(ctx, testRecords())
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	added, err = s.AddRecords(ctx, append(testRecords()[:1], types.Record{Title: "no id"}))
	require.NoError(t, err)
	assert.Zero(t, added, "duplicates and records without ID are not new")

	papers, err := s.Papers(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, papers, 3)

	p := papers[0]
	assert.Equal(t, "1810.04805v2", p.Identifier, "newest first")
	assert.Equal(t, []string{"Jacob Devlin"}, p.Authors)
	assert.True(t, p.Published.Equal(testRecords()[1].Published))
	assert.False(t, p.Downloaded)
	assert.False(t, p.CreatedAt.IsZero())

	assert.Equal(t, []string{"cs.CL", "cs.LG"}, papers[1].Categories)
}

func TestAddRecords_DuplicateWithinBatch(t *testing.T) {
	s := openTestStore(t)
	recs := testRecords()
	added, err := s.AddRecords(context.Background(), []types.Record{recs[0], recs[0], recs[1]})
	require.NoError(t, err)
	assert.Equal(t, 2, added)
}

func TestRecordOutcomes(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.AddRecords(ctx, testRecords())
	require.NoError(t, err)

	updated, err := s.RecordOutcomes(ctx, []types.DownloadOutcome{
		{Identifier: "1706.03762v7", Success: true, Path: "/papers/cs.CL/attention.pdf"},
		{Identifier: "1810.04805v2", Error: "HTTP 404"},
		{Identifier: "unknown", Success: true, Path: "/x.pdf"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	downloaded, err := s.Papers(ctx, Filter{DownloadedOnly: true})
	require.NoError(t, err)
	require.Len(t, downloaded, 1)
	assert.Equal(t, "/papers/cs.CL/attention.pdf", downloaded[0].DownloadPath)

	// Re-adding metadata keeps the download status.
	_, err = s.AddRecords(ctx, testRecords())
	require.NoError(t, err)
	downloaded, err = s.Papers(ctx, Filter{DownloadedOnly: true})
	require.NoError(t, err)
	assert.Len(t, downloaded, 1)
}

func TestPapers_Filters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.AddRecords(ctx, testRecords())
	require.NoError(t, err)

	cl, err := s.Papers(ctx, Filter{Category: "cs.CL"})
	require.NoError(t, err)
	assert.Len(t, cl, 2)

	ranged, err := s.Papers(ctx, Filter{
		DateFrom: time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC),
		DateTo:   time.Date(2017, 6, 12, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, ranged, 1, "end date is inclusive")
	assert.Equal(t, "1706.03762v7", ranged[0].Identifier)

	limited, err := s.Papers(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	pending, err := s.Records(ctx, Filter{PendingOnly: true})
	require.NoError(t, err)
	ids := []string{}
	for _, r := range pending {
		ids = append(ids, r.Identifier)
	}
	assert.ElementsMatch(t, []string{"1706.03762v7", "1810.04805v2"}, ids, "records without PDF URL are not pending")
}

func TestSearchLocal(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.AddRecords(ctx, testRecords())
	require.NoError(t, err)

	got, err := s.SearchLocal(ctx, "attention", nil, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1706.03762v7", got[0].Identifier)

	got, err = s.SearchLocal(ctx, "devlin", []string{"authors"}, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1810.04805v2", got[0].Identifier)

	got, err = s.SearchLocal(ctx, "devlin", []string{"title"}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.SearchLocal(ctx, "deep", nil, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = s.SearchLocal(ctx, "100%", nil, 0)
	require.NoError(t, err)
	assert.Empty(t, got, "wildcards in the text are literal")

	_, err = s.SearchLocal(ctx, "x", []string{"doi"}, 0)
	assert.ErrorContains(t, err, "cannot search field")

	_, err = s.SearchLocal(ctx, "  ", nil, 0)
	assert.Error(t, err)
}

func TestStatistics(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	st, err := s.Statistics(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.Total)
	assert.Zero(t, st.DownloadRate)

	_, err = s.AddRecords(ctx, testRecords())
	require.NoError(t, err)
	_, err = s.RecordOutcomes(ctx, []types.DownloadOutcome{{Identifier: "1512.03385v1", Success: true, Path: "a.pdf"}})
	require.NoError(t, err)

	st, err = s.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 1, st.Downloaded)
	assert.InDelta(t, 33.33, st.DownloadRate, 0.01)
	assert.Equal(t, 3, st.Recent)
	assert.Equal(t, []CategoryCount{{"cs.CL", 2}, {"cs.CV", 1}}, st.TopCategories)
	assert.Equal(t, []YearCount{{"2018", 1}, {"2017", 1}, {"2015", 1}}, st.ByYear)
}

func TestSearchHistory(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	params := map[string]any{"query": "attention", "category": "cs.CL"}

	require.NoError(t, s.AddSearchHistory(ctx, params, 10))
	require.NoError(t, s.AddSearchHistory(ctx, params, 12))
	require.NoError(t, s.AddSearchHistory(ctx, map[string]any{"query": "bert"}, 3))

	n, err := s.SearchHistoryCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestExport(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.AddRecords(ctx, testRecords())
	require.NoError(t, err)
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "out", "papers.json")
	n, err := s.ExportFile(ctx, jsonPath, Filter{Category: "cs.CL"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var fromJSON Export
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Equal(t, 2, fromJSON.TotalPapers)
	require.Len(t, fromJSON.Papers, 2)
	assert.Equal(t, "1810.04805v2", fromJSON.Papers[0].Identifier)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	first := raw["papers"].([]any)[0].(map[string]any)
	assert.Equal(t, "1810.04805v2", first["arxiv_id"], "record fields are flattened")

	yamlPath := filepath.Join(dir, "papers.yaml")
	n, err = s.ExportFile(ctx, yamlPath, Filter{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	data, err = os.ReadFile(yamlPath)
	require.NoError(t, err)
	var fromYAML Export
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	assert.Equal(t, 3, fromYAML.TotalPapers)
	assert.Equal(t, "Attention Is All You Need", fromYAML.Papers[1].Title)

	_, err = s.ExportFile(ctx, filepath.Join(dir, "papers.csv"), Filter{})
	assert.ErrorContains(t, err, "unsupported export file")
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.db")
	s, err := Open(path, nil)
	require.NoError(t, err)
	_, err = s.AddRecords(context.Background(), testRecords())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path, nil)
	require.NoError(t, err)
	defer s.Close()
	papers, err := s.Papers(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, papers, 3)
}

func TestBackupAndCompact(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.AddRecords(ctx, testRecords())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "backup", "papers.db.bak")
	require.NoError(t, s.Backup(ctx, path))
	assert.ErrorContains(t, s.Backup(ctx, path), "already exists")
	require.NoError(t, s.Compact(ctx))

	restored, err := Open(path, nil)
	require.NoError(t, err)
	defer restored.Close()
	papers, err := restored.Papers(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, papers, 3)
}
