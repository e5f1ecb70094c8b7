// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package backend talks to the question-answering service that produces
// the report and the term records behind each graph.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/pdiddy/termgraph/internal/httputil"
	"github.com/pdiddy/termgraph/internal/metrics"
	"github.com/pdiddy/termgraph/pkg/types"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 16 << 20

// ErrDecode wraps failures to parse a 2xx response body.
var ErrDecode = errors.New("decoding backend response")

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned HTTP %d", e.Code)
	}
	return fmt.Sprintf("backend returned HTTP %d: %s", e.Code, e.Body)
}

// Querier fetches a search result for a question. Client implements it.
type Querier interface {
	Query(ctx context.Context, question string) (*types.SearchResult, error)
}

// Client is the HTTP client for the backend query endpoint.
type Client struct {
	HTTP  *http.Client
	Token string

	cfg types.BackendConfig
	log *zap.Logger
	cb  *gobreaker.CircuitBreaker
}

// New returns a client for cfg. token is sent as a bearer token when
// non-empty. log may be nil.
func New(cfg types.BackendConfig, token string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	bc := cfg.Breaker
	c := &Client{
		HTTP:  &http.Client{Timeout: cfg.Timeout},
		Token: token,
		cfg:   cfg,
		log:   log,
	}
	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "backend",
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bc.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= bc.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return c
}

// BreakerState reports the circuit breaker state ("closed", "half-open"
// or "open").
func (c *Client) BreakerState() string { return c.cb.State().String() }

type queryRequest struct {
	Question string `json:"question"`
	KChunks  int    `json:"k_chunks"`
}

// Query posts question to the backend and decodes the answer. Any failure
// yields a nil result, a logged diagnostic and the error. Non-2xx statuses
// are reported as *StatusError; an open breaker as gobreaker.ErrOpenState.
func (c *Client) Query(ctx context.Context, question string) (*types.SearchResult, error) {
	start := time.Now()
	v, err := c.cb.Execute(func() (any, error) {
		return c.query(ctx, question)
	})
	metrics.BackendDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.BackendRequests.WithLabelValues(outcome(err)).Inc()
		c.log.Warn("backend query failed",
			zap.String("endpoint", c.cfg.Endpoint),
			zap.String("question", question),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}
	metrics.BackendRequests.WithLabelValues("ok").Inc()
	res := v.(*types.SearchResult)
	c.log.Debug("backend query answered",
		zap.String("question", question),
		zap.Int("records", len(res.Records)),
		zap.Int("findings", len(res.Report.Findings)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func (c *Client) query(ctx context.Context, question string) (*types.SearchResult, error) {
	body, err := json.Marshal(queryRequest{Question: question, KChunks: c.cfg.KChunks})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.cfg.MaxRetries, c.log)
	if err != nil {
		return nil, fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var res types.SearchResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&res); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return &res, nil
}

func outcome(err error) string {
	var se *StatusError
	switch {
	case errors.As(err, &se):
		return "status"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "open"
	case errors.Is(err, ErrDecode):
		return "decode"
	default:
		return "transport"
	}
}
