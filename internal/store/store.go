// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists paper metadata and download status in SQLite.
// The downloader itself never touches the store: callers add the records
// they fetched from the API and afterwards record the download outcomes.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

// Paper is a stored record plus its download status.
type Paper struct {
	types.Record `yaml:",inline"`

	Downloaded   bool      `json:"downloaded" yaml:"downloaded"`
	DownloadPath string    `json:"download_path,omitempty" yaml:"download_path,omitempty"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"updated_at"`
}

// Filter narrows Papers. Zero values match everything.
type Filter struct {
	Category string
	DateFrom time.Time
	DateTo   time.Time

	// DownloadedOnly keeps papers with a successful download.
	DownloadedOnly bool

	// PendingOnly keeps papers not yet downloaded that have a PDF URL.
	PendingOnly bool

	Limit int
}

// Store manages the metadata database.
type Store struct {
	db  *sql.DB
	log logrus.FieldLogger
}

// Open opens or creates the database at path and ensures the schema.
func Open(path string, log logrus.FieldLogger) (*Store, error) {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, log: log}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			arxiv_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			authors TEXT,
			abstract TEXT,
			published TEXT,
			updated TEXT,
			primary_category TEXT,
			categories TEXT,
			pdf_url TEXT,
			abs_url TEXT,
			doi TEXT,
			comment TEXT,
			downloaded BOOLEAN DEFAULT 0,
			download_path TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS search_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			query_params TEXT,
			query_hash TEXT UNIQUE,
			results_count INTEGER,
			timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_primary_category ON papers(primary_category)`,
		`CREATE INDEX IF NOT EXISTS idx_published ON papers(published)`,
		`CREATE INDEX IF NOT EXISTS idx_downloaded ON papers(downloaded)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// AddRecords upserts metadata for recs and returns how many were new.
// Existing rows keep their download status. Records without an identifier
// are skipped.
func (s *Store) AddRecords(ctx context.Context, recs []types.Record) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	added, duplicates := 0, 0
	for _, rec := range recs {
		if rec.Identifier == "" {
			s.log.Warn("record without arXiv ID, skipping")
			continue
		}

		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM papers WHERE arxiv_id = ?`, rec.Identifier).Scan(&exists)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			added++
		case err != nil:
			return 0, fmt.Errorf("checking %s: %w", rec.Identifier, err)
		default:
			duplicates++
		}

		authors, _ := json.Marshal(nonNil(rec.Authors))
		categories, _ := json.Marshal(nonNil(rec.Categories))
		_, err = tx.ExecContext(ctx, `
			INSERT INTO papers (arxiv_id, title, authors, abstract, published, updated,
				primary_category, categories, pdf_url, abs_url, doi, comment)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(arxiv_id) DO UPDATE SET
				title = excluded.title,
				authors = excluded.authors,
				abstract = excluded.abstract,
				published = excluded.published,
				updated = excluded.updated,
				primary_category = excluded.primary_category,
				categories = excluded.categories,
				pdf_url = excluded.pdf_url,
				abs_url = excluded.abs_url,
				doi = excluded.doi,
				comment = excluded.comment,
				updated_at = CURRENT_TIMESTAMP`,
			rec.Identifier, rec.Title, string(authors), rec.Abstract,
			formatTime(rec.Published), formatTime(rec.Updated),
			rec.PrimaryCategory, string(categories), rec.PDFURL, rec.AbsURL, rec.DOI, rec.Comment,
		)
		if err != nil {
			return 0, fmt.Errorf("saving %s: %w", rec.Identifier, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing records: %w", err)
	}
	s.log.Infof("added %d new papers, updated %d existing", added, duplicates)
	return added, nil
}

// RecordOutcomes stores the download flag and path of each outcome and
// returns the number of rows changed. A failed outcome marks the paper as
// not downloaded. Outcomes for unknown identifiers are ignored.
func (s *Store) RecordOutcomes(ctx context.Context, outcomes []types.DownloadOutcome) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	updated := 0
	for _, o := range outcomes {
		var path sql.NullString
		if o.Success {
			path = sql.NullString{String: o.Path, Valid: true}
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE papers SET downloaded = ?, download_path = ?, updated_at = CURRENT_TIMESTAMP
			WHERE arxiv_id = ?`, o.Success, path, o.Identifier)
		if err != nil {
			return 0, fmt.Errorf("updating download status for %s: %w", o.Identifier, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing download status: %w", err)
	}
	return updated, nil
}

const paperColumns = `arxiv_id, title, authors, abstract, published, updated, primary_category,
	categories, pdf_url, abs_url, doi, comment, downloaded, download_path, created_at, updated_at`

// Papers lists stored papers matching f, newest publication first.
func (s *Store) Papers(ctx context.Context, f Filter) ([]Paper, error) {
	query := `SELECT ` + paperColumns + ` FROM papers WHERE 1=1`
	var args []any
	if f.Category != "" {
		query += ` AND primary_category = ?`
		args = append(args, f.Category)
	}
	if !f.DateFrom.IsZero() {
		query += ` AND published >= ?`
		args = append(args, formatTime(f.DateFrom))
	}
	if !f.DateTo.IsZero() {
		// Inclusive of the whole end day.
		query += ` AND published < ?`
		args = append(args, formatTime(f.DateTo.AddDate(0, 0, 1)))
	}
	if f.DownloadedOnly {
		query += ` AND downloaded = 1`
	}
	if f.PendingOnly {
		query += ` AND downloaded = 0 AND pdf_url != ''`
	}
	query += ` ORDER BY published DESC, arxiv_id`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}
	return s.queryPapers(ctx, query, args...)
}

// Records returns the stored metadata of papers matching f.
func (s *Store) Records(ctx context.Context, f Filter) ([]types.Record, error) {
	papers, err := s.Papers(ctx, f)
	if err != nil {
		return nil, err
	}
	recs := make([]types.Record, len(papers))
	for i, p := range papers {
		recs[i] = p.Record
	}
	return recs, nil
}

// searchableFields maps SearchLocal field names to columns.
var searchableFields = map[string]string{
	"title":    "title",
	"abstract": "abstract",
	"authors":  "authors",
}

// DefaultSearchFields are searched when SearchLocal gets no fields.
var DefaultSearchFields = []string{"title", "abstract", "authors"}

// SearchLocal returns stored papers whose fields contain text, matched
// case-insensitively for ASCII.
func (s *Store) SearchLocal(ctx context.Context, text string, fields []string, limit int) ([]Paper, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("search text is empty")
	}
	if len(fields) == 0 {
		fields = DefaultSearchFields
	}

	pattern := "%" + escapeLike(text) + "%"
	var conditions []string
	var args []any
	for _, f := range fields {
		col, ok := searchableFields[f]
		if !ok {
			return nil, fmt.Errorf("cannot search field %q: want title, abstract or authors", f)
		}
		conditions = append(conditions, col+` LIKE ? ESCAPE '\'`)
		args = append(args, pattern)
	}

	query := `SELECT ` + paperColumns + ` FROM papers WHERE (` + strings.Join(conditions, " OR ") + `) ORDER BY published DESC, arxiv_id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryPapers(ctx, query, args...)
}

// AddSearchHistory records that params returned results records. The same
// parameters are stored once; repeating a search refreshes its count and
// timestamp.
func (s *Store) AddSearchHistory(ctx context.Context, params any, results int) error {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encoding search parameters: %w", err)
	}
	sum := sha256.Sum256(data)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO search_history (query_params, query_hash, results_count)
		VALUES (?, ?, ?)
		ON CONFLICT(query_hash) DO UPDATE SET
			results_count = excluded.results_count,
			timestamp = CURRENT_TIMESTAMP`,
		string(data), hex.EncodeToString(sum[:]), results)
	if err != nil {
		return fmt.Errorf("saving search history: %w", err)
	}
	return nil
}

// SearchHistoryCount returns the number of distinct searches recorded.
func (s *Store) SearchHistoryCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM search_history`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting search history: %w", err)
	}
	return n, nil
}

func (s *Store) queryPapers(ctx context.Context, query string, args ...any) ([]Paper, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var papers []Paper
	for rows.Next() {
		var (
			p                                   Paper
			authors, categories                 sql.NullString
			abstract, published, updated        sql.NullString
			category, pdfURL, absURL, doi, note sql.NullString
			path                                sql.NullString
			created, modified                   sql.NullString
		)
		if err := rows.Scan(&p.Identifier, &p.Title, &authors, &abstract, &published, &updated,
			&category, &categories, &pdfURL, &absURL, &doi, &note,
			&p.Downloaded, &path, &created, &modified); err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		if authors.String != "" {
			json.Unmarshal([]byte(authors.String), &p.Authors)
		}
		if categories.String != "" {
			json.Unmarshal([]byte(categories.String), &p.Categories)
		}
		p.Abstract = abstract.String
		p.Published = parseTime(published.String)
		p.Updated = parseTime(updated.String)
		p.PrimaryCategory = category.String
		p.PDFURL = pdfURL.String
		p.AbsURL = absURL.String
		p.DOI = doi.String
		p.Comment = note.String
		p.DownloadPath = path.String
		p.CreatedAt = parseTime(created.String)
		p.UpdatedAt = parseTime(modified.String)
		papers = append(papers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating papers: %w", err)
	}
	return papers, nil
}

// sqliteTime is the layout of CURRENT_TIMESTAMP.
const sqliteTime = "2006-01-02 15:04:05"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, sqliteTime} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Backup writes a consistent copy of the database to path, which must not
// exist yet.
func (s *Store) Backup(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("backup %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating backup directory: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	s.log.WithField("path", path).Info("database backed up")
	return nil
}

// Compact rebuilds the database file to reclaim free pages.
func (s *Store) Compact(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `VACUUM`); err != nil {
		return fmt.Errorf("compacting database: %w", err)
	}
	return nil
}
