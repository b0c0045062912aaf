// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/pdiddy/arxiv-harvester/internal/httputil"
	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

// ErrNotFound is returned by Get when the API has no entry for the ID.
var ErrNotFound = errors.New("paper not found")

// Page is one response of the API.
type Page struct {
	Records      []types.Record
	TotalResults int
	StartIndex   int
	ItemsPerPage int
}

// Client queries the arXiv API. Requests are spaced by the configured
// request delay and transient failures are retried.
type Client struct {
	http       *http.Client
	baseURL    string
	userAgent  string
	pageSize   int
	maxRetries int
	limiter    *rate.Limiter
	log        logrus.FieldLogger
}

// NewClient builds a client from the API configuration.
func NewClient(cfg types.APIConfig, log logrus.FieldLogger) *Client {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = types.DefaultAPIBaseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = types.DefaultUserAgent
	}
	pageSize := cfg.MaxResultsPerQuery
	if pageSize <= 0 {
		pageSize = types.DefaultMaxResultsPerQuery
	}

	limit := rate.Inf
	if d := cfg.Delay(); d > 0 {
		limit = rate.Every(d)
	}

	return &Client{
		http:       &http.Client{Timeout: cfg.RequestTimeout()},
		baseURL:    baseURL,
		userAgent:  userAgent,
		pageSize:   min(pageSize, MaxPageSize),
		maxRetries: types.DefaultRetryAttempts,
		limiter:    rate.NewLimiter(limit, 1),
		log:        log,
	}
}

// Search fetches a single page of results for q.
func (c *Client) Search(ctx context.Context, q Query) (Page, error) {
	if err := q.Validate(); err != nil {
		return Page{}, err
	}
	maxResults := q.MaxResults
	if maxResults <= 0 {
		maxResults = c.pageSize
	}

	params := url.Values{}
	params.Set("search_query", q.String())
	params.Set("start", strconv.Itoa(q.Start))
	params.Set("max_results", strconv.Itoa(min(maxResults, MaxPageSize)))
	params.Set("sortBy", orDefault(q.SortBy, SortRelevance))
	params.Set("sortOrder", orDefault(q.SortOrder, OrderDescending))

	c.log.WithField("query", q.String()).Info("searching arXiv")
	return c.fetch(ctx, params)
}

// SearchAll pages through results until q.MaxResults records have been
// collected or the API runs out. Records gathered before a failing page are
// returned together with the error.
func (c *Client) SearchAll(ctx context.Context, q Query) ([]types.Record, error) {
	want := q.MaxResults
	if want <= 0 {
		want = c.pageSize
	}

	var records []types.Record
	start := q.Start
	for len(records) < want {
		page := q
		page.Start = start
		page.MaxResults = min(c.pageSize, want-len(records))

		result, err := c.Search(ctx, page)
		if err != nil {
			return records, fmt.Errorf("fetching results from offset %d: %w", start, err)
		}
		if len(result.Records) == 0 {
			break
		}
		remaining := want - len(records)
		if len(result.Records) > remaining {
			result.Records = result.Records[:remaining]
		}
		records = append(records, result.Records...)
		start += len(result.Records)
		if len(result.Records) < page.MaxResults {
			break
		}
	}
	return records, nil
}

// Get fetches a single paper by arXiv ID.
func (c *Client) Get(ctx context.Context, id string) (types.Record, error) {
	params := url.Values{}
	params.Set("id_list", id)
	params.Set("max_results", "1")

	page, err := c.fetch(ctx, params)
	if err != nil {
		return types.Record{}, err
	}
	if len(page.Records) == 0 {
		return types.Record{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return page.Records[0], nil
}

func (c *Client) fetch(ctx context.Context, params url.Values) (Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Page{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Page{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/atom+xml")

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.maxRetries)
	if err != nil {
		return Page{}, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp); err != nil {
		return Page{}, fmt.Errorf("arXiv API: %w", err)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return Page{}, fmt.Errorf("parsing arXiv response: %w", err)
	}

	page := Page{
		TotalResults: feed.TotalResults,
		StartIndex:   feed.StartIndex,
		ItemsPerPage: feed.ItemsPerPage,
	}
	for _, entry := range feed.Entries {
		rec, ok := entry.record()
		if !ok {
			continue
		}
		page.Records = append(page.Records, rec)
	}
	return page, nil
}

// arXiv Atom feed XML structures.
type atomFeed struct {
	TotalResults int         `xml:"http://a9.com/-/spec/opensearch/1.1/ totalResults"`
	StartIndex   int         `xml:"http://a9.com/-/spec/opensearch/1.1/ startIndex"`
	ItemsPerPage int         `xml:"http://a9.com/-/spec/opensearch/1.1/ itemsPerPage"`
	Entries      []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID              string         `xml:"id"`
	Title           string         `xml:"title"`
	Summary         string         `xml:"summary"`
	Published       string         `xml:"published"`
	Updated         string         `xml:"updated"`
	Authors         []atomAuthor   `xml:"author"`
	Links           []atomLink     `xml:"link"`
	Categories      []atomCategory `xml:"category"`
	PrimaryCategory atomCategory   `xml:"http://arxiv.org/schemas/atom primary_category"`
	Comment         string         `xml:"http://arxiv.org/schemas/atom comment"`
	DOI             string         `xml:"http://arxiv.org/schemas/atom doi"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

func (e atomEntry) record() (types.Record, bool) {
	id := extractArxivID(e.ID)
	if id == "" {
		return types.Record{}, false
	}

	rec := types.Record{
		Identifier: id,
		Title:      foldSpace(e.Title),
		Abstract:   foldSpace(e.Summary),
		Comment:    foldSpace(e.Comment),
		DOI:        strings.TrimSpace(e.DOI),
	}
	for _, a := range e.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			rec.Authors = append(rec.Authors, name)
		}
	}
	for _, c := range e.Categories {
		if c.Term != "" {
			rec.Categories = append(rec.Categories, c.Term)
		}
	}
	rec.PrimaryCategory = e.PrimaryCategory.Term
	if rec.PrimaryCategory == "" && len(rec.Categories) > 0 {
		rec.PrimaryCategory = rec.Categories[0]
	}

	for _, l := range e.Links {
		switch {
		case l.Type == "application/pdf" || l.Title == "pdf":
			rec.PDFURL = l.Href
		case l.Title == "doi":
			if rec.DOI == "" {
				rec.DOI = strings.TrimPrefix(strings.TrimPrefix(l.Href, "http://dx.doi.org/"), "https://doi.org/")
			}
		case strings.Contains(l.Href, "/abs/"):
			rec.AbsURL = l.Href
		}
	}

	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Published)); err == nil {
		rec.Published = t
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Updated)); err == nil {
		rec.Updated = t
	}
	return rec, true
}

// extractArxivID pulls the arXiv ID, version included, from the entry's
// <id> URL (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041v1").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(idURL[idx+len(prefix):])
}

func foldSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
