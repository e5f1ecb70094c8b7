// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// BreakerConfig tunes the circuit breaker wrapped around backend calls.
type BreakerConfig struct {
	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32 `json:"max_requests" yaml:"max_requests" mapstructure:"max_requests"`

	// Interval is the cyclic period after which closed-state counts reset.
	Interval time.Duration `json:"interval" yaml:"interval" mapstructure:"interval"`

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// FailureThreshold is the failure ratio that trips the breaker.
	FailureThreshold float64 `json:"failure_threshold" yaml:"failure_threshold" mapstructure:"failure_threshold" validate:"gte=0,lte=1"`

	// MinRequests is the number of requests needed before the ratio counts.
	MinRequests uint32 `json:"min_requests" yaml:"min_requests" mapstructure:"min_requests"`
}

// BackendConfig holds settings for the question-answering backend client.
type BackendConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Endpoint is the full URL of the query endpoint
	// (e.g. "http://localhost:8000/api/query_json").
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint" validate:"required,url"`

	// KChunks is the number of context chunks the backend retrieves (default 5).
	KChunks int `json:"k_chunks" yaml:"k_chunks" mapstructure:"k_chunks" validate:"gt=0"`

	// MaxRetries bounds retries on 429/503 responses (default 2; 0 selects
	// the transport default of 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0"`

	Breaker BreakerConfig `json:"breaker" yaml:"breaker" mapstructure:"breaker"`
}

// LayoutConfig holds the constants of the force simulation, the view
// transform and the renderer.
type LayoutConfig struct {
	// Padding is the screen-space margin every node projection stays inside.
	Padding float64 `json:"padding" yaml:"padding" mapstructure:"padding" validate:"gte=0"`

	MinZoom  float64 `json:"min_zoom" yaml:"min_zoom" mapstructure:"min_zoom" validate:"gt=0"`
	MaxZoom  float64 `json:"max_zoom" yaml:"max_zoom" mapstructure:"max_zoom" validate:"gtfield=MinZoom"`
	ZoomStep float64 `json:"zoom_step" yaml:"zoom_step" mapstructure:"zoom_step" validate:"gt=1"`

	// ZoomDuration is the length of the zoom-in/zoom-out animation.
	ZoomDuration time.Duration `json:"zoom_duration" yaml:"zoom_duration" mapstructure:"zoom_duration" validate:"gte=0"`

	// FitMargin is the screen-space margin kept around the fitted bounding box.
	FitMargin float64 `json:"fit_margin" yaml:"fit_margin" mapstructure:"fit_margin" validate:"gte=0"`

	// SettleDelay is how long after a load the automatic fit waits.
	SettleDelay time.Duration `json:"settle_delay" yaml:"settle_delay" mapstructure:"settle_delay" validate:"gte=0"`

	// CooldownTicks is the tick budget armed by a load.
	CooldownTicks int `json:"cooldown_ticks" yaml:"cooldown_ticks" mapstructure:"cooldown_ticks" validate:"gte=0"`

	// ReheatTicks is the tick budget re-armed by a drag.
	ReheatTicks int `json:"reheat_ticks" yaml:"reheat_ticks" mapstructure:"reheat_ticks" validate:"gte=0"`

	Repulsion      float64 `json:"repulsion" yaml:"repulsion" mapstructure:"repulsion" validate:"gte=0"`
	SpringLength   float64 `json:"spring_length" yaml:"spring_length" mapstructure:"spring_length" validate:"gt=0"`
	SpringStrength float64 `json:"spring_strength" yaml:"spring_strength" mapstructure:"spring_strength" validate:"gte=0"`
	Centering      float64 `json:"centering" yaml:"centering" mapstructure:"centering" validate:"gte=0"`
	VelocityDecay  float64 `json:"velocity_decay" yaml:"velocity_decay" mapstructure:"velocity_decay" validate:"gte=0,lte=1"`

	// LegibleZoom is the zoom at and above which nodes render as label pills.
	LegibleZoom float64 `json:"legible_zoom" yaml:"legible_zoom" mapstructure:"legible_zoom" validate:"gt=0"`

	// FontSize is the label font size in screen pixels at zoom 1.
	FontSize float64 `json:"font_size" yaml:"font_size" mapstructure:"font_size" validate:"gt=0"`

	// DotRadius is the screen radius of a collapsed node.
	DotRadius float64 `json:"dot_radius" yaml:"dot_radius" mapstructure:"dot_radius" validate:"gt=0"`

	// MinHitSize is the smallest side of any node hit area, in screen pixels.
	MinHitSize float64 `json:"min_hit_size" yaml:"min_hit_size" mapstructure:"min_hit_size" validate:"gte=0"`

	// ClickSlop is how far a pointer may travel and still count as a click.
	ClickSlop float64 `json:"click_slop" yaml:"click_slop" mapstructure:"click_slop" validate:"gte=0"`
}

// FilterPolicy selects how the neighborhood filter chooses among several
// matching labels.
type FilterPolicy string

const (
	// PolicyFirst takes the first matching label in input order.
	PolicyFirst FilterPolicy = "first"

	// PolicyBest prefers an exact match, then the shortest label, then the
	// lexicographically smallest.
	PolicyBest FilterPolicy = "best"
)

// FilterConfig holds settings for the neighborhood filter.
type FilterConfig struct {
	Policy FilterPolicy `json:"policy" yaml:"policy" mapstructure:"policy" validate:"oneof=first best"`
}

// HistoryConfig holds settings for the local exchange history.
type HistoryConfig struct {
	// Enabled controls whether backend exchanges are recorded.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Dir is the directory holding history.db.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir" validate:"required_if=Enabled true"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results" validate:"gte=0"`
}

// ServerConfig holds settings for the HTTP viewer.
type ServerConfig struct {
	Addr           string   `json:"addr" yaml:"addr" mapstructure:"addr" validate:"required"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// Config groups every component configuration.
type Config struct {
	Backend BackendConfig `json:"backend" yaml:"backend" mapstructure:"backend"`
	Layout  LayoutConfig  `json:"layout" yaml:"layout" mapstructure:"layout"`
	Filter  FilterConfig  `json:"filter" yaml:"filter" mapstructure:"filter"`
	History HistoryConfig `json:"history" yaml:"history" mapstructure:"history"`
	Server  ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
}

// DefaultLayoutConfig returns the layout constants used when no config file
// overrides them.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		Padding:        24,
		MinZoom:        0.4,
		MaxZoom:        4,
		ZoomStep:       1.25,
		ZoomDuration:   300 * time.Millisecond,
		FitMargin:      40,
		SettleDelay:    500 * time.Millisecond,
		CooldownTicks:  120,
		ReheatTicks:    30,
		Repulsion:      2000,
		SpringLength:   120,
		SpringStrength: 0.05,
		Centering:      0.01,
		VelocityDecay:  0.6,
		LegibleZoom:    0.8,
		FontSize:       12,
		DotRadius:      5,
		MinHitSize:     16,
		ClickSlop:      4,
	}
}

// DefaultConfig returns the full default configuration.
func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   60 * time.Second,
				UserAgent: "termgraph/0.1",
			},
			Endpoint:   "http://localhost:8000/api/query_json",
			KChunks:    5,
			MaxRetries: 2,
			Breaker: BreakerConfig{
				MaxRequests:      1,
				Interval:         30 * time.Second,
				Timeout:          60 * time.Second,
				FailureThreshold: 0.6,
				MinRequests:      3,
			},
		},
		Layout: DefaultLayoutConfig(),
		Filter: FilterConfig{Policy: PolicyFirst},
		History: HistoryConfig{
			Enabled:    true,
			Dir:        ".termgraph",
			MaxResults: 20,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
				"http://localhost:5173",
			},
		},
	}
}

var validate = validator.New()

// Validate checks every section against its struct tags.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
