// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/termgraph/internal/graph"
	"github.com/pdiddy/termgraph/internal/layout"
	"github.com/pdiddy/termgraph/internal/session"
	"github.com/pdiddy/termgraph/internal/ui"
	"github.com/pdiddy/termgraph/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Ask the backend a question and print the report and term graph",
	Long: `Query sends the question to the backend, prints the summary and
findings, and lists the neighborhood of the first term whose label contains
the question text. When the backend fails or returns nothing, a built-in
example is shown instead.

Use --svg to also write a settled force-directed layout as an SVG file, and
--offline to replay the most recent cached answer for the same question.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

// queryOutput is the --json shape.
type queryOutput struct {
	Query    string         `json:"query"`
	Source   session.Source `json:"source"`
	Fallback bool           `json:"fallback"`
	Report   types.Report   `json:"report"`
	Graph    *graph.Data    `json:"graph"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	offline, _ := cmd.Flags().GetBool("offline")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	svgPath, _ := cmd.Flags().GetString("svg")
	term, _ := cmd.Flags().GetString("term")
	width, _ := cmd.Flags().GetFloat64("width")
	height, _ := cmd.Flags().GetFloat64("height")

	ctrl, store, _, err := newController(offline)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}
	defer ctrl.Close()

	ctrl.Resize(layout.Viewport{Width: width, Height: height})
	snap, err := ctrl.Search(context.Background(), question)
	if err != nil {
		return err
	}

	if svgPath != "" {
		if err := writeSVG(snap, svgPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", svgPath)
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(queryOutput{
			Query:    question,
			Source:   snap.Source,
			Fallback: snap.Result.Fallback,
			Report:   snap.Result.Report,
			Graph:    snap.Graph,
		})
	}

	ui.Report(w, snap.Result)
	fmt.Fprintln(w)
	ui.Brand.Fprintln(w, "Terms")
	ui.Terms(w, snap.Graph)
	fmt.Fprintf(w, "\n%s %d terms, %d relations (%s)\n",
		ui.StatusIcon(!snap.Result.Fallback), len(snap.Graph.Nodes), len(snap.Graph.Edges), snap.Source)

	if term != "" {
		n, ok := snap.Graph.Node(term)
		if !ok {
			return fmt.Errorf("term %q is not in the graph", term)
		}
		fmt.Fprintln(w)
		ui.Articles(w, n)
	}
	return nil
}

// writeSVG settles the snapshot's layout, fits it to the viewport and
// writes the scene.
func writeSVG(snap *session.Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	return snap.Do(func(sim *layout.Simulation) error {
		sim.Settle()
		sim.Fit()
		return layout.RenderSVG(sim.Scene(snap.CreatedAt), f)
	})
}

func init() {
	queryCmd.Flags().Bool("json", false, "output the report and graph as JSON")
	queryCmd.Flags().String("term", "", "also list the articles of this term")
	queryCmd.Flags().String("svg", "", "write a laid-out SVG render to this file")
	queryCmd.Flags().Bool("offline", false, "replay the most recent cached answer instead of calling the backend")
	queryCmd.Flags().Float64("width", 1200, "SVG width in pixels")
	queryCmd.Flags().Float64("height", 800, "SVG height in pixels")

	rootCmd.AddCommand(queryCmd)
}
