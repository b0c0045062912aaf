// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

// Format names a record file encoding.
type Format string

// Supported record file formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported record file %q: want .json, .yaml or .yml", path)
}

// ReadRecords loads records saved by WriteRecords (or by hand). Records
// without an identifier are rejected.
func ReadRecords(path string) ([]types.Record, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading record file: %w", err)
	}

	var records []types.Record
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &records)
	case FormatYAML:
		err = yaml.Unmarshal(data, &records)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing record file %s: %w", path, err)
	}

	for i, rec := range records {
		if strings.TrimSpace(rec.Identifier) == "" {
			return nil, fmt.Errorf("record %d in %s has no arxiv_id", i+1, path)
		}
	}
	return records, nil
}

// WriteRecords saves records to path in the format given by its extension.
func WriteRecords(path string, records []types.Record) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	if records == nil {
		records = []types.Record{}
	}

	var data []byte
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(records, "", "  ")
	case FormatYAML:
		data, err = yaml.Marshal(records)
	}
	if err != nil {
		return fmt.Errorf("marshaling records: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
