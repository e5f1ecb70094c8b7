// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

const exportLimit = 100000

// ExportYAML writes every recorded exchange matching query (all when
// query is empty) to w as a YAML sequence, newest first.
func (s *Store) ExportYAML(ctx context.Context, query string, w io.Writer) error {
	entries, err := s.exportEntries(ctx, query)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes the same entries as ExportYAML as an indented JSON
// array.
func (s *Store) ExportJSON(ctx context.Context, query string, w io.Writer) error {
	entries, err := s.exportEntries(ctx, query)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

func (s *Store) exportEntries(ctx context.Context, query string) ([]Exchange, error) {
	entries, err := s.Search(ctx, query, exportLimit)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	if entries == nil {
		entries = []Exchange{}
	}
	return entries, nil
}
