// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package naming

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

func testRecord() types.Record {
	return types.Record{
		Identifier:      "2301.07041v1",
		Title:           "Attention Is All You Need",
		Authors:         []string{"Ashish Vaswani", "Noam Shazeer"},
		PrimaryCategory: "cs.CL",
		Published:       time.Date(2017, 6, 12, 0, 0, 0, 0, time.UTC),
		PDFURL:          "http://arxiv.org/pdf/2301.07041v1",
	}
}

func newResolver(root, pattern string, folders bool) *Resolver {
	cfg := types.DefaultDownloadConfig()
	cfg.OutputDirectory = root
	cfg.FilenamePattern = pattern
	cfg.CreateCategoryFolders = folders
	return NewResolver(cfg)
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		mutate  func(*types.Record)
		want    string
	}{
		{"default pattern", types.DefaultFilenamePattern, nil, "2017_Ashish_Vaswani_Attention_Is_All_You_Need.pdf"},
		{"id only", "{arxiv_id}", nil, "2301.07041v1.pdf"},
		{"missing year", "{year}-{arxiv_id}", func(r *types.Record) { r.Published = time.Time{} }, "unknown-2301.07041v1.pdf"},
		{"missing author", "{first_author}", func(r *types.Record) { r.Authors = nil }, "unknown.pdf"},
		{"missing title", "{title}", func(r *types.Record) { r.Title = "" }, "untitled.pdf"},
		{"missing id", "{arxiv_id}", func(r *types.Record) { r.Identifier = "" }, "unknown.pdf"},
		{"author punctuation", "{first_author}", func(r *types.Record) { r.Authors = []string{"J. R. Smith-Jones"} }, "J_R_SmithJones.pdf"},
		{"non ascii author", "{first_author}", func(r *types.Record) { r.Authors = []string{"Jürgen Müller"} }, "Jürgen_Müller.pdf"},
		{"literal text kept", "paper {arxiv_id}", nil, "paper_2301.07041v1.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testRecord()
			if tt.mutate != nil {
				tt.mutate(&rec)
			}
			got := newResolver(t.TempDir(), tt.pattern, false).Filename(rec)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilename_StripsPathSeparators(t *testing.T) {
	rec := testRecord()
	rec.Title = "A: B/C"

	got := newResolver(t.TempDir(), "{title}", false).Filename(rec)

	assert.NotContains(t, got, ":")
	assert.NotContains(t, got, "/")
	assert.Equal(t, "A_BC.pdf", got)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"illegal characters", `a<b>c:d"e/f\g|h?i*j`, "a_b_c_d_e_f_g_h_i_j"},
		{"control characters", "ab\x00c\x1fd", "abcd"},
		{"whitespace collapsed", "a  b\t\tc", "a_b_c"},
		{"trailing dots", "name...", "name"},
		{"empty", "", "untitled"},
		{"only dots", "...", "untitled"},
		{"only control", "\x01\x02", "untitled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.input))
		})
	}
}

func TestSanitize_CapsLength(t *testing.T) {
	long := strings.Repeat("é", 400)
	got := Sanitize(long)
	assert.Equal(t, MaxNameLength, len([]rune(got)))

	dotted := strings.Repeat("a", MaxNameLength-1) + ". tail"
	got = Sanitize(dotted)
	assert.Equal(t, strings.Repeat("a", MaxNameLength-1), got, "trailing dot left by truncation is trimmed")
}

func TestPath_CategoryFolders(t *testing.T) {
	root := t.TempDir()
	rec := testRecord()

	path, err := newResolver(root, "{arxiv_id}", true).Path(rec)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "cs.CL", "2301.07041v1.pdf"), path)

	info, err := os.Stat(filepath.Join(root, "cs.CL"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	rec.PrimaryCategory = ""
	path, err = newResolver(root, "{arxiv_id}", true).Path(rec)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "unknown", "2301.07041v1.pdf"), path)
}

func TestPath_NoCategoryFolders(t *testing.T) {
	root := t.TempDir()
	path, err := newResolver(root, "{arxiv_id}", false).Path(testRecord())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "2301.07041v1.pdf"), path)
}

func TestAvailable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paper.pdf")

	assert.Equal(t, path, Available(path), "free path returned unchanged")

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	assert.Equal(t, filepath.Join(dir, "paper_1.pdf"), Available(path))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "paper_1.pdf"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "paper_2.pdf"), []byte("x"), 0o644))
	assert.Equal(t, filepath.Join(dir, "paper_3.pdf"), Available(path))
}

func TestCandidate(t *testing.T) {
	path := filepath.Join("out", "paper.pdf")
	assert.Equal(t, path, Candidate(path, 0))
	assert.Equal(t, filepath.Join("out", "paper_1.pdf"), Candidate(path, 1))
	assert.Equal(t, filepath.Join("out", "paper_12.pdf"), Candidate(path, 12))
}
