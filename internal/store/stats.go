// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
)

// CategoryCount is the number of stored papers in one primary category.
type CategoryCount struct {
	Category string `json:"category" yaml:"category"`
	Count    int    `json:"count" yaml:"count"`
}

// YearCount is the number of stored papers published in one year.
type YearCount struct {
	Year  string `json:"year" yaml:"year"`
	Count int    `json:"count" yaml:"count"`
}

// Statistics summarizes the collection.
type Statistics struct {
	Total         int             `json:"total_papers" yaml:"total_papers"`
	Downloaded    int             `json:"downloaded_papers" yaml:"downloaded_papers"`
	DownloadRate  float64         `json:"download_rate" yaml:"download_rate"`
	Recent        int             `json:"recent_papers" yaml:"recent_papers"`
	TopCategories []CategoryCount `json:"top_categories" yaml:"top_categories"`
	ByYear        []YearCount     `json:"papers_by_year" yaml:"papers_by_year"`
}

// Statistics computes collection totals, the ten largest categories and
// the ten most recent publication years. Recent counts papers added to the
// store in the last 30 days.
func (s *Store) Statistics(ctx context.Context) (Statistics, error) {
	var st Statistics
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM papers`).Scan(&st.Total); err != nil {
		return st, fmt.Errorf("counting papers: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM papers WHERE downloaded = 1`).Scan(&st.Downloaded); err != nil {
		return st, fmt.Errorf("counting downloaded papers: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM papers WHERE created_at >= datetime('now', '-30 days')`,
	).Scan(&st.Recent); err != nil {
		return st, fmt.Errorf("counting recent papers: %w", err)
	}
	if st.Total > 0 {
		st.DownloadRate = float64(st.Downloaded) / float64(st.Total) * 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT primary_category, COUNT(*) FROM papers
		WHERE primary_category != ''
		GROUP BY primary_category
		ORDER BY COUNT(*) DESC, primary_category
		LIMIT 10`)
	if err != nil {
		return st, fmt.Errorf("grouping by category: %w", err)
	}
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			rows.Close()
			return st, fmt.Errorf("scanning category count: %w", err)
		}
		st.TopCategories = append(st.TopCategories, c)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, `
		SELECT substr(published, 1, 4) AS year, COUNT(*) FROM papers
		WHERE published != ''
		GROUP BY year
		ORDER BY year DESC
		LIMIT 10`)
	if err != nil {
		return st, fmt.Errorf("grouping by year: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var y YearCount
		if err := rows.Scan(&y.Year, &y.Count); err != nil {
			return st, fmt.Errorf("scanning year count: %w", err)
		}
		st.ByYear = append(st.ByYear, y)
	}
	return st, rows.Err()
}
