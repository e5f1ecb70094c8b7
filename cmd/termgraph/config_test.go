// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/termgraph/pkg/types"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetEnvPrefix("TERMGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	require.NoError(t, registerDefaults(v, types.DefaultConfig()))
	return v
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(newTestViper(t))
	require.NoError(t, err)
	assert.Equal(t, types.DefaultConfig().Backend.Endpoint, cfg.Backend.Endpoint)
	assert.Equal(t, types.PolicyFirst, cfg.Filter.Policy)
	assert.Equal(t, 500*time.Millisecond, cfg.Layout.SettleDelay)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("TERMGRAPH_BACKEND_ENDPOINT", "http://backend.test/api/query_json")
	t.Setenv("TERMGRAPH_FILTER_POLICY", "best")
	t.Setenv("TERMGRAPH_LAYOUT_PADDING", "10")

	cfg, err := loadConfig(newTestViper(t))
	require.NoError(t, err)
	assert.Equal(t, "http://backend.test/api/query_json", cfg.Backend.Endpoint)
	assert.Equal(t, types.PolicyBest, cfg.Filter.Policy)
	assert.Equal(t, 10.0, cfg.Layout.Padding)
}

func TestLoadConfigFile(t *testing.T) {
	v := newTestViper(t)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
backend:
  k_chunks: 8
layout:
  max_zoom: 6
server:
  addr: ":9090"
`)))

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Backend.KChunks)
	assert.Equal(t, 6.0, cfg.Layout.MaxZoom)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, types.DefaultConfig().Layout.MinZoom, cfg.Layout.MinZoom)
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("TERMGRAPH_FILTER_POLICY", "longest")
	_, err := loadConfig(newTestViper(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
