// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/termgraph/internal/server"
)

// frameInterval is how often the served simulation is stepped.
const frameInterval = 16 * time.Millisecond

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the interactive graph viewer",
	Long: `Serve starts an HTTP server with a browser viewer: a search box, the
report panel and the force-directed graph. Nodes can be dragged (and stay
pinned where they are dropped), the view panned and zoomed, and clicking a
node lists its articles.

The JSON API behind the viewer is under /api; Prometheus metrics are at
/metrics.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	offline, _ := cmd.Flags().GetBool("offline")
	ctrl, store, cfg, err := newController(offline)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}
	defer ctrl.Close()

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go ctrl.Run(ctx, frameInterval)

	if initial, _ := cmd.Flags().GetString("query"); initial != "" {
		go ctrl.Search(context.WithoutCancel(ctx), initial)
	}

	return server.New(ctrl, cfg.Server, logger).ListenAndServe(ctx)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().Bool("offline", false, "answer searches from cached history only")
	serveCmd.Flags().String("query", "", "run this search at startup")

	rootCmd.AddCommand(serveCmd)
}
