// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Format selects an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatDOT  Format = "dot"
)

// Export writes d to w in the given format.
func Export(d *Data, format Format, w io.Writer) error {
	switch format {
	case FormatJSON, "":
		return ExportJSON(d, w)
	case FormatYAML:
		return ExportYAML(d, w)
	case FormatDOT:
		return ExportDOT(d, w)
	default:
		return fmt.Errorf("unsupported format %q: use json, yaml, or dot", format)
	}
}

// ExportJSON writes d as indented JSON.
func ExportJSON(d *Data, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// ExportYAML writes d as YAML.
func ExportYAML(d *Data, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportDOT writes d as an undirected Graphviz graph. Each node's tooltip
// lists its article count.
func ExportDOT(d *Data, w io.Writer) error {
	var b strings.Builder
	b.WriteString("graph termgraph {\n")
	b.WriteString("  node [shape=box, style=rounded];\n")
	for _, n := range d.Nodes {
		fmt.Fprintf(&b, "  %s [label=%s, tooltip=\"%d articles\"];\n",
			strconv.Quote(n.ID), strconv.Quote(n.Label), len(n.Articles))
	}
	for _, e := range d.Edges {
		fmt.Fprintf(&b, "  %s -- %s;\n", strconv.Quote(e.Source), strconv.Quote(e.Target))
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}
