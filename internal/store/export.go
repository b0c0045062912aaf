// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

// Export is the document written by ExportJSON and ExportYAML.
type Export struct {
	ExportedAt  time.Time `json:"exported_at" yaml:"exported_at"`
	TotalPapers int       `json:"total_papers" yaml:"total_papers"`
	Papers      []Paper   `json:"papers" yaml:"papers"`
}

// ExportJSON writes the papers matching f to path as indented JSON and
// returns how many were written.
func (s *Store) ExportJSON(ctx context.Context, path string, f Filter) (int, error) {
	doc, err := s.export(ctx, f)
	if err != nil {
		return 0, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshaling JSON: %w", err)
	}
	return doc.TotalPapers, writeFile(path, data)
}

// ExportYAML writes the papers matching f to path as YAML and returns how
// many were written.
func (s *Store) ExportYAML(ctx context.Context, path string, f Filter) (int, error) {
	doc, err := s.export(ctx, f)
	if err != nil {
		return 0, err
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("marshaling YAML: %w", err)
	}
	return doc.TotalPapers, writeFile(path, data)
}

// ExportFile picks ExportJSON or ExportYAML from the extension of path.
func (s *Store) ExportFile(ctx context.Context, path string, f Filter) (int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return s.ExportJSON(ctx, path, f)
	case ".yaml", ".yml":
		return s.ExportYAML(ctx, path, f)
	}
	return 0, fmt.Errorf("unsupported export file %q: want .json, .yaml or .yml", path)
}

func (s *Store) export(ctx context.Context, f Filter) (Export, error) {
	papers, err := s.Papers(ctx, f)
	if err != nil {
		return Export{}, fmt.Errorf("querying for export: %w", err)
	}
	if papers == nil {
		papers = []Paper{}
	}
	return Export{
		ExportedAt:  time.Now().UTC(),
		TotalPapers: len(papers),
		Papers:      papers,
	}, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
