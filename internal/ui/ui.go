// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ui prints reports, term lists and tables for the terminal.
package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/pdiddy/termgraph/internal/graph"
	"github.com/pdiddy/termgraph/pkg/types"
)

// Palette
var (
	Brand  = color.New(color.FgHiGreen, color.Bold)
	Subtle = color.New(color.FgHiBlack)
	Warn   = color.New(color.FgYellow)
	Info   = color.New(color.FgCyan)
	Good   = color.New(color.FgGreen)
	Bad    = color.New(color.FgRed)
)

// Report prints the summary and findings of res. An example payload is
// flagged so it is never mistaken for a real answer.
func Report(w io.Writer, res *types.SearchResult) {
	if res == nil {
		return
	}
	if res.Fallback {
		Warn.Fprintln(w, "! backend unavailable, showing example data")
		fmt.Fprintln(w)
	}
	Brand.Fprintln(w, "Summary")
	fmt.Fprintf(w, "  %s\n", res.Report.Summary)
	if len(res.Report.Findings) > 0 {
		fmt.Fprintln(w)
		Brand.Fprintln(w, "Findings")
		for _, f := range res.Report.Findings {
			fmt.Fprintf(w, "  %s %s\n", Subtle.Sprint("•"), f)
		}
	}
}

// Terms prints one row per node with its degree and article count.
func Terms(w io.Writer, g *graph.Data) {
	if g.Len() == 0 {
		Subtle.Fprintln(w, "  (no terms)")
		return
	}
	rows := make([][]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		rows = append(rows, []string{
			n.Label,
			strconv.Itoa(g.Degree(n.ID)),
			strconv.Itoa(len(n.Articles)),
			strings.Join(g.Neighbors(n.ID), ", "),
		})
	}
	Table(w, []string{"TERM", "DEGREE", "ARTICLES", "RELATED"}, rows)
}

// Articles prints the article links of one node.
func Articles(w io.Writer, n graph.Node) {
	Info.Fprintln(w, n.Label)
	if len(n.Articles) == 0 {
		Subtle.Fprintln(w, "  (no articles)")
		return
	}
	for _, a := range n.Articles {
		fmt.Fprintf(w, "  %s\n    %s\n", a.Title, Subtle.Sprint(a.Link))
	}
}

// Table prints an aligned table. Widths count terminal cells, so accented
// and wide labels line up.
func Table(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(cell))
			}
		}
	}

	var head, sep strings.Builder
	head.WriteString("  ")
	sep.WriteString("  ")
	for i, h := range headers {
		head.WriteString(runewidth.FillRight(h, widths[i]) + "  ")
		sep.WriteString(strings.Repeat("─", widths[i]) + "  ")
	}
	Subtle.Fprintln(w, strings.TrimRight(head.String(), " "))
	Subtle.Fprintln(w, strings.TrimRight(sep.String(), " "))

	for _, row := range rows {
		var line strings.Builder
		line.WriteString("  ")
		for i, cell := range row {
			if i < len(widths) {
				line.WriteString(runewidth.FillRight(cell, widths[i]) + "  ")
			}
		}
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}

// StatusIcon returns a check or a cross.
func StatusIcon(ok bool) string {
	if ok {
		return Good.Sprint("✓")
	}
	return Bad.Sprint("✗")
}
