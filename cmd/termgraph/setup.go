// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/termgraph/internal/backend"
	"github.com/pdiddy/termgraph/internal/graph"
	"github.com/pdiddy/termgraph/internal/history"
	"github.com/pdiddy/termgraph/internal/session"
	"github.com/pdiddy/termgraph/pkg/types"
)

// openHistory opens the exchange history, or returns nil when it is
// disabled.
func openHistory(cfg types.HistoryConfig) (*history.Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	return history.NewStore(cfg)
}

// newController wires the backend client, the history store and the
// layout settings into a search controller. The caller closes the
// returned store when it is non-nil.
func newController(offline bool) (*session.Controller, *history.Store, types.Config, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, nil, types.Config{}, err
	}
	store, err := openHistory(cfg.History)
	if err != nil {
		return nil, nil, types.Config{}, err
	}

	opts := session.Options{
		History: store,
		Offline: offline,
		Layout:  cfg.Layout,
		Filter:  cfg.Filter,
		Logger:  logger,
	}
	opts.OnNodeClick = func(n graph.Node) {
		logger.Debug("node clicked", zap.String("term", n.Label), zap.Int("articles", len(n.Articles)))
	}
	if !offline {
		opts.Backend = backend.New(cfg.Backend, backendToken, logger)
	}
	return session.New(opts), store, cfg, nil
}
