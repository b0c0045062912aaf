// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the arxiv-harvester pipeline.
// Records flow from the search client (or a record file) into the download
// orchestrator, which returns one DownloadOutcome per record for the metadata
// store to persist.
package types

import "time"

// Record is one bibliographic entry with an associated remote PDF.
// Only Identifier and PDFURL are required by the downloader; every other
// field may be empty.
type Record struct {
	// Identifier is the arXiv ID as returned by the API (e.g. "2301.07041v1").
	Identifier string `json:"arxiv_id" yaml:"arxiv_id"`

	// Title is the paper title with newlines folded.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper summary.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// PrimaryCategory is the arXiv category code (e.g. "cs.AI").
	PrimaryCategory string `json:"primary_category" yaml:"primary_category"`

	// Categories lists every category the paper is filed under.
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`

	// Published is the first submission date.
	Published time.Time `json:"published" yaml:"published"`

	// Updated is the date of the latest revision.
	Updated time.Time `json:"updated,omitempty" yaml:"updated,omitempty"`

	// PDFURL is the remote artifact location.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`

	// AbsURL is the abstract page.
	AbsURL string `json:"abs_url,omitempty" yaml:"abs_url,omitempty"`

	// DOI is the journal DOI when the authors supplied one.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Comment is the free-text author comment (page counts, venue).
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// FirstAuthor returns the first listed author, or "" when there are none.
func (r Record) FirstAuthor() string {
	if len(r.Authors) == 0 {
		return ""
	}
	return r.Authors[0]
}
