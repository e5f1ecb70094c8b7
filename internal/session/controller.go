// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session owns the displayed query: it fetches a result, narrows
// it to the queried neighborhood, builds the graph and loads a fresh
// layout, then publishes all of it as one snapshot.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/termgraph/internal/backend"
	"github.com/pdiddy/termgraph/internal/graph"
	"github.com/pdiddy/termgraph/internal/history"
	"github.com/pdiddy/termgraph/internal/layout"
	"github.com/pdiddy/termgraph/internal/metrics"
	"github.com/pdiddy/termgraph/internal/neighborhood"
	"github.com/pdiddy/termgraph/pkg/types"
)

var (
	// ErrStale is returned by Search when a newer search started before
	// this one finished. Its result was discarded.
	ErrStale = errors.New("search superseded")

	// ErrClosed is returned by Search after Close.
	ErrClosed = errors.New("controller closed")
)

// Options configures a Controller. Backend may be nil only when Offline is
// set; History may be nil.
type Options struct {
	Backend backend.Querier
	History *history.Store
	Offline bool

	Layout types.LayoutConfig
	Filter types.FilterConfig

	// OnNodeClick is called, under the snapshot lock, for every node click.
	OnNodeClick func(graph.Node)

	Logger *zap.Logger
	Now    func() time.Time
}

// Controller serialises searches into snapshots. Snapshot is safe to call
// from any goroutine; readers see either the old or the new snapshot.
type Controller struct {
	opts Options
	log  *zap.Logger

	gen    atomic.Uint64
	closed atomic.Bool
	snap   atomic.Pointer[Snapshot]

	swapMu sync.Mutex

	vpMu sync.Mutex
	vp   layout.Viewport
}

// New returns a controller showing an empty graph.
func New(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &Controller{opts: opts, log: opts.Logger}
	c.snap.Store(c.newSnapshot("", 0, SourceNone, nil, graph.Build(nil), layout.Viewport{}))
	return c
}

// Snapshot returns the currently displayed snapshot. It is never nil.
func (c *Controller) Snapshot() *Snapshot {
	return c.snap.Load()
}

// Resize records the viewport size for this and every later snapshot.
func (c *Controller) Resize(vp layout.Viewport) {
	c.swapMu.Lock()
	defer c.swapMu.Unlock()

	c.vpMu.Lock()
	c.vp = vp
	c.vpMu.Unlock()

	c.Snapshot().resize(vp)
}

func (c *Controller) viewport() layout.Viewport {
	c.vpMu.Lock()
	defer c.vpMu.Unlock()
	return c.vp
}

// Search runs one query end to end and publishes its snapshot. Backend
// failures never surface as errors: the result degrades to a recorded
// exchange or the built-in example. Search fails only with ErrStale when
// superseded or ErrClosed after Close.
func (c *Controller) Search(ctx context.Context, query string) (*Snapshot, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	gen := c.gen.Add(1)

	res, src := c.fetch(ctx, query)
	if res.IsEmpty() {
		c.log.Info("showing example graph", zap.String("query", query))
		res, src = backend.Fallback(), SourceFallback
	}

	records := neighborhood.FilterWith(res.Records, query, c.opts.Filter.Policy)
	g := graph.BuildWith(records, graph.BuildOptions{DropSelfLoops: true})
	vp := c.viewport()
	snap := c.newSnapshot(query, gen, src, res, g, vp)

	c.swapMu.Lock()
	defer c.swapMu.Unlock()
	if c.closed.Load() {
		return nil, ErrClosed
	}
	if c.gen.Load() != gen {
		metrics.StaleResults.Inc()
		c.log.Debug("discarding stale result", zap.String("query", query), zap.Uint64("generation", gen))
		return nil, fmt.Errorf("%w: %q", ErrStale, query)
	}
	// A Resize may have landed while the snapshot was being built.
	if cur := c.viewport(); cur != vp {
		snap.resize(cur)
	}
	c.snap.Store(snap)

	metrics.Searches.WithLabelValues(string(src)).Inc()
	metrics.GraphSize.WithLabelValues("nodes").Set(float64(len(g.Nodes)))
	metrics.GraphSize.WithLabelValues("edges").Set(float64(len(g.Edges)))
	c.log.Info("search complete",
		zap.String("query", query),
		zap.String("source", string(src)),
		zap.Int("records", len(res.Records)),
		zap.Int("nodes", len(g.Nodes)),
		zap.Int("edges", len(g.Edges)),
	)
	return snap, nil
}

// fetch returns the raw result for query and where it came from. A nil
// result means nothing usable was found.
func (c *Controller) fetch(ctx context.Context, query string) (*types.SearchResult, Source) {
	if !c.opts.Offline && c.opts.Backend != nil {
		res, err := c.opts.Backend.Query(ctx, query)
		if err == nil && !res.IsEmpty() {
			c.record(ctx, query, res)
			return res, SourceBackend
		}
	}
	if c.opts.History == nil {
		return nil, SourceNone
	}
	ex, err := c.opts.History.Latest(ctx, query)
	if err != nil {
		if !errors.Is(err, history.ErrNotFound) {
			c.log.Warn("history lookup failed", zap.String("query", query), zap.Error(err))
		}
		return nil, SourceNone
	}
	c.log.Info("replaying recorded exchange",
		zap.String("query", query),
		zap.String("exchange", ex.ID),
		zap.Time("recorded_at", ex.CreatedAt),
	)
	return &ex.Result, SourceHistory
}

func (c *Controller) record(ctx context.Context, query string, res *types.SearchResult) {
	if c.opts.History == nil {
		return
	}
	if _, err := c.opts.History.Record(ctx, query, res); err != nil {
		c.log.Warn("recording exchange failed", zap.String("query", query), zap.Error(err))
	}
}

func (c *Controller) newSnapshot(query string, gen uint64, src Source, res *types.SearchResult, g *graph.Data, vp layout.Viewport) *Snapshot {
	now := c.opts.Now()
	s := &Snapshot{
		Query:      query,
		Generation: gen,
		Source:     src,
		CreatedAt:  now,
		Result:     res,
		Graph:      g,
		sim:        layout.New(g, c.opts.Layout, vp, now),
	}
	s.input = layout.NewInteraction(s.sim, func(n graph.Node) {
		s.selected = &n
		if c.opts.OnNodeClick != nil {
			c.opts.OnNodeClick(n)
		}
	})
	return s
}

// Run steps the current snapshot every frame until ctx is done.
func (c *Controller) Run(ctx context.Context, frame time.Duration) {
	t := time.NewTicker(frame)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.Snapshot().Step(c.opts.Now())
		}
	}
}

// Close invalidates every in-flight search. Their results are dropped
// when they arrive.
func (c *Controller) Close() {
	c.closed.Store(true)
	c.gen.Add(1)
}
