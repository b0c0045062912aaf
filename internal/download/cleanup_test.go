// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSized(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), size), 0o644))
}

func TestCleanupIncomplete(t *testing.T) {
	root := t.TempDir()
	writeSized(t, filepath.Join(root, "cs.AI", "small.pdf"), 10)
	writeSized(t, filepath.Join(root, "cs.AI", "EMPTY.PDF"), 0)
	writeSized(t, filepath.Join(root, "cs.LG", "deep", "partial.pdf"), MinValidSize-1)
	writeSized(t, filepath.Join(root, "cs.AI", "complete.pdf"), 4*MinValidSize)
	writeSized(t, filepath.Join(root, "cs.AI", "boundary.pdf"), MinValidSize)
	writeSized(t, filepath.Join(root, "notes.txt"), 5)

	removed, err := CleanupIncomplete(root, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.NoFileExists(t, filepath.Join(root, "cs.AI", "small.pdf"))
	assert.NoFileExists(t, filepath.Join(root, "cs.AI", "EMPTY.PDF"))
	assert.NoFileExists(t, filepath.Join(root, "cs.LG", "deep", "partial.pdf"))
	assert.FileExists(t, filepath.Join(root, "cs.AI", "complete.pdf"))
	assert.FileExists(t, filepath.Join(root, "cs.AI", "boundary.pdf"))
	assert.FileExists(t, filepath.Join(root, "notes.txt"))
}

func TestCleanupIncomplete_MissingRoot(t *testing.T) {
	removed, err := CleanupIncomplete(filepath.Join(t.TempDir(), "absent"), nil)
	assert.NoError(t, err)
	assert.Zero(t, removed)
}

func TestCleanupIncomplete_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeSized(t, filepath.Join(root, "a.pdf"), 1)

	removed, err := CleanupIncomplete(root, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	removed, err = CleanupIncomplete(root, nil)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
