// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries the arXiv Atom API and turns its entries into
// records for the downloader, and reads and writes record files.
package search

import (
	"fmt"
	"strings"
	"time"
)

// MaxPageSize is the largest max_results the arXiv API accepts per request.
const MaxPageSize = 2000

// Sort fields accepted by the API.
const (
	SortRelevance     = "relevance"
	SortLastUpdated   = "lastUpdatedDate"
	SortSubmittedDate = "submittedDate"
)

// Sort orders accepted by the API.
const (
	OrderAscending  = "ascending"
	OrderDescending = "descending"
)

// Query holds the structured search parameters. Every non-empty field
// narrows the search; an entirely empty query matches everything.
type Query struct {
	FreeText string
	Author   string
	Title    string
	Abstract string
	Category string
	DateFrom time.Time
	DateTo   time.Time

	// MaxResults bounds the number of records returned. Zero means the
	// client's page size.
	MaxResults int

	// Start is the zero-based offset of the first result.
	Start int

	SortBy    string
	SortOrder string
}

// Validate checks the sort options and the date range.
func (q Query) Validate() error {
	switch q.SortBy {
	case "", SortRelevance, SortLastUpdated, SortSubmittedDate:
	default:
		return fmt.Errorf("invalid sort field %q: want %s, %s or %s", q.SortBy, SortRelevance, SortLastUpdated, SortSubmittedDate)
	}
	switch q.SortOrder {
	case "", OrderAscending, OrderDescending:
	default:
		return fmt.Errorf("invalid sort order %q: want %s or %s", q.SortOrder, OrderAscending, OrderDescending)
	}
	if q.MaxResults < 0 || q.Start < 0 {
		return fmt.Errorf("max results and start must not be negative")
	}
	if !q.DateFrom.IsZero() && !q.DateTo.IsZero() && q.DateFrom.After(q.DateTo) {
		return fmt.Errorf("date range is reversed: %s after %s", q.DateFrom.Format(time.DateOnly), q.DateTo.Format(time.DateOnly))
	}
	return nil
}

// String builds the search_query parameter, e.g.
// "all:attention AND cat:cs.CL AND submittedDate:[20170101 TO *]".
func (q Query) String() string {
	var parts []string
	add := func(prefix, value string) {
		if v := strings.TrimSpace(value); v != "" {
			parts = append(parts, prefix+":"+v)
		}
	}
	add("all", q.FreeText)
	add("au", q.Author)
	add("ti", q.Title)
	add("abs", q.Abstract)
	add("cat", q.Category)

	if !q.DateFrom.IsZero() || !q.DateTo.IsZero() {
		from, to := "*", "*"
		if !q.DateFrom.IsZero() {
			from = q.DateFrom.Format("20060102")
		}
		if !q.DateTo.IsZero() {
			to = q.DateTo.Format("20060102")
		}
		parts = append(parts, fmt.Sprintf("submittedDate:[%s TO %s]", from, to))
	}

	if len(parts) == 0 {
		return "all:*"
	}
	return strings.Join(parts, " AND ")
}

// ParseDate parses a YYYY-MM-DD command-line date. The empty string yields
// the zero time.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}
