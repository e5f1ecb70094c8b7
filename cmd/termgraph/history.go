// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/termgraph/internal/history"
	"github.com/pdiddy/termgraph/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect cached backend answers (list, search, export, prune)",
	Long: `History manages the local SQLite cache of backend answers. Every
successful query is recorded; query --offline and serve --offline replay
from it. Layout state is never stored.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent exchanges, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(store *history.Store) error {
			limit, _ := cmd.Flags().GetInt("limit")
			exs, err := store.List(context.Background(), limit)
			if err != nil {
				return err
			}
			return formatHistory(cmd, exs)
		})
	},
}

// --- search subcommand ---

var historySearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over questions, reports and term labels",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(store *history.Store) error {
			limit, _ := cmd.Flags().GetInt("limit")
			exs, err := store.Search(context.Background(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			return formatHistory(cmd, exs)
		})
	},
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export [query]",
	Short: "Export cached exchanges to YAML or JSON",
	Long: `Export writes every cached exchange (or those matching a full-text
query) to stdout, or to --output when given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("output")
		query := strings.Join(args, " ")

		return withHistory(func(store *history.Store) error {
			return writeTo(cmd.OutOrStdout(), out, func(w io.Writer) error {
				switch format {
				case "yaml", "":
					return store.ExportYAML(context.Background(), query, w)
				case "json":
					return store.ExportJSON(context.Background(), query, w)
				default:
					return fmt.Errorf("unsupported format %q: use yaml or json", format)
				}
			})
		})
	},
}

// --- prune subcommand ---

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest cached exchanges",
	RunE: func(cmd *cobra.Command, args []string) error {
		keep, _ := cmd.Flags().GetInt("keep")
		return withHistory(func(store *history.Store) error {
			n, err := store.Prune(context.Background(), keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d exchange(s)\n", n)
			return nil
		})
	},
}

// --- shared helpers ---

func withHistory(fn func(*history.Store) error) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	cfg.History.Enabled = true
	store, err := history.NewStore(cfg.History)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func formatHistory(cmd *cobra.Command, exs []history.Exchange) error {
	w := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(exs)
	}
	if len(exs) == 0 {
		fmt.Fprintln(w, "No exchanges found.")
		return nil
	}

	rows := make([][]string, 0, len(exs))
	for _, ex := range exs {
		rows = append(rows, []string{
			ex.ID[:8],
			ex.CreatedAt.Local().Format("2006-01-02 15:04"),
			truncate(ex.Question, 48),
			fmt.Sprintf("%d", len(ex.Result.Records)),
		})
	}
	ui.Table(w, []string{"ID", "WHEN", "QUESTION", "TERMS"}, rows)
	fmt.Fprintf(w, "\n%d exchange(s)\n", len(exs))
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// writeTo runs fn against path, or against def when path is empty.
func writeTo(def io.Writer, path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(def)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func init() {
	historyListCmd.Flags().Int("limit", 0, "maximum results (0 = history.max_results)")
	historyListCmd.Flags().Bool("json", false, "output exchanges as JSON")

	historySearchCmd.Flags().Int("limit", 0, "maximum results (0 = history.max_results)")
	historySearchCmd.Flags().Bool("json", false, "output exchanges as JSON")

	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	historyExportCmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")

	historyPruneCmd.Flags().Int("keep", 100, "number of newest exchanges to keep")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyPruneCmd)

	rootCmd.AddCommand(historyCmd)
}
