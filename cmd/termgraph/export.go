// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/termgraph/internal/graph"
	"github.com/pdiddy/termgraph/internal/history"
	"github.com/pdiddy/termgraph/internal/neighborhood"
	"github.com/pdiddy/termgraph/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export [question]",
	Short: "Export the term graph of a cached answer as JSON, YAML or DOT",
	Long: `Export rebuilds the graph of a cached answer without calling the
backend. With a question, the most recent answer to that question is used
and narrowed to its neighborhood exactly as query would show it; without
one, the full graph of the newest cached answer is exported.

DOT output can be rendered with Graphviz.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("output")
	question := strings.Join(args, " ")

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	return withHistory(func(store *history.Store) error {
		records, err := cachedRecords(store, question, cfg.Filter.Policy)
		if err != nil {
			return err
		}
		g := graph.BuildWith(records, graph.BuildOptions{DropSelfLoops: true})
		return writeTo(cmd.OutOrStdout(), out, func(w io.Writer) error {
			return graph.Export(g, graph.Format(format), w)
		})
	})
}

func cachedRecords(store *history.Store, question string, policy types.FilterPolicy) ([]types.TermRecord, error) {
	ctx := context.Background()
	if question != "" {
		ex, err := store.Latest(ctx, question)
		if err != nil {
			return nil, err
		}
		return neighborhood.FilterWith(ex.Result.Records, question, policy), nil
	}

	exs, err := store.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(exs) == 0 {
		return nil, history.ErrNotFound
	}
	return exs[0].Result.Records, nil
}

func init() {
	exportCmd.Flags().String("format", "json", "output format: json, yaml or dot")
	exportCmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")

	rootCmd.AddCommand(exportCmd)
}
