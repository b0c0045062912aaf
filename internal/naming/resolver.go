// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package naming turns record metadata into safe, deterministic file paths
// under the output root and resolves collisions with existing files.
package naming

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

const (
	// MaxNameLength caps a sanitized name, in runes, so the full path stays
	// under the 260 character limit of constrained filesystems.
	MaxNameLength = 150

	// Extension is appended to every resolved file name.
	Extension = ".pdf"

	unknown  = "unknown"
	untitled = "untitled"
)

// Pattern placeholders.
const (
	PlaceholderYear        = "{year}"
	PlaceholderFirstAuthor = "{first_author}"
	PlaceholderTitle       = "{title}"
	PlaceholderArxivID     = "{arxiv_id}"
)

var (
	illegalChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Resolver builds destination paths from records.
type Resolver struct {
	root            string
	pattern         string
	categoryFolders bool
}

// NewResolver returns a Resolver rooted at cfg.OutputDirectory.
func NewResolver(cfg types.DownloadConfig) *Resolver {
	pattern := cfg.FilenamePattern
	if pattern == "" {
		pattern = types.DefaultFilenamePattern
	}
	return &Resolver{
		root:            cfg.OutputDirectory,
		pattern:         pattern,
		categoryFolders: cfg.CreateCategoryFolders,
	}
}

// Root returns the output root.
func (r *Resolver) Root() string { return r.root }

// Filename renders the pattern for rec and returns a sanitized name ending
// in ".pdf". Missing fields render as "unknown" ("untitled" for the title).
func (r *Resolver) Filename(rec types.Record) string {
	year := unknown
	if !rec.Published.IsZero() {
		year = strconv.Itoa(rec.Published.Year())
	}

	id := rec.Identifier
	if id == "" {
		id = unknown
	}

	name := strings.NewReplacer(
		PlaceholderYear, year,
		PlaceholderFirstAuthor, authorToken(rec.FirstAuthor()),
		PlaceholderTitle, titleToken(rec.Title),
		PlaceholderArxivID, id,
	).Replace(r.pattern)

	return Sanitize(name) + Extension
}

// Dir returns the directory a record's file belongs in, creating the
// category subdirectory when category folders are enabled.
func (r *Resolver) Dir(rec types.Record) (string, error) {
	if !r.categoryFolders {
		return r.root, nil
	}
	category := rec.PrimaryCategory
	if category == "" {
		category = unknown
	}
	dir := filepath.Join(r.root, Sanitize(category))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating category directory %s: %w", dir, err)
	}
	return dir, nil
}

// Path returns the preferred destination for rec, before collision handling.
func (r *Resolver) Path(rec types.Record) (string, error) {
	dir, err := r.Dir(rec)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, r.Filename(rec)), nil
}

// Available returns path if nothing exists there, otherwise the first
// sibling "<stem>_N<ext>" (N = 1, 2, ...) that does not exist. The check is
// not atomic with respect to other processes.
func Available(path string) string {
	if !exists(path) {
		return path
	}
	return Sibling(path, 1)
}

// Sibling returns the n-th collision candidate for path, searching upward
// from n until a free name is found.
func Sibling(path string, n int) string {
	for ; ; n++ {
		if candidate := Candidate(path, n); !exists(candidate) {
			return candidate
		}
	}
}

// Candidate returns the n-th name in the collision sequence of path:
// path itself for n = 0, "<stem>_N<ext>" otherwise.
func Candidate(path string, n int) string {
	if n == 0 {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(path, ext), n, ext)
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// Sanitize makes s safe as a single path element on Windows and Unix.
// The result is capped at MaxNameLength runes with trailing dots and spaces
// trimmed. An empty result becomes "untitled".
func Sanitize(s string) string {
	s = illegalChars.ReplaceAllString(s, "_")
	s = whitespace.ReplaceAllString(strings.TrimSpace(s), "_")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	if utf8.RuneCountInString(s) > MaxNameLength {
		s = string([]rune(s)[:MaxNameLength])
	}
	s = strings.TrimRight(s, ". ")

	if s == "" {
		return untitled
	}
	return s
}

// authorToken keeps letters and spaces of an author name and joins the
// words with underscores ("J. Smith-Jones" -> "J_SmithJones").
func authorToken(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	words := strings.Fields(b.String())
	if len(words) == 0 {
		return unknown
	}
	return strings.Join(words, "_")
}

// titleToken keeps word characters, spaces and hyphens of a title and
// joins the words with underscores.
func titleToken(title string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	words := strings.Fields(b.String())
	if len(words) == 0 {
		return untitled
	}
	return strings.Join(words, "_")
}
