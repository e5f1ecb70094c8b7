// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pdiddy/termgraph/internal/graph"
	"github.com/pdiddy/termgraph/pkg/types"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

var vp800 = Viewport{Width: 800, Height: 600}

func rec(label string, rels ...string) types.TermRecord {
	return types.TermRecord{Label: label, Relations: rels}
}

func newSim(t *testing.T, vp Viewport, records ...types.TermRecord) *Simulation {
	t.Helper()
	return New(graph.Build(records), types.DefaultLayoutConfig(), vp, t0)
}

func assertInBounds(t *testing.T, s *Simulation) {
	t.Helper()
	r, ok := s.Bounds()
	require.True(t, ok)
	for _, id := range s.order {
		p, _ := s.ScreenPosition(id)
		assert.True(t, r.Contains(p, 1e-6), "node %s at %v outside %v", id, p, r)
	}
}

// --- state machine ---

func TestTransition(t *testing.T) {
	tests := []struct {
		from Control
		ev   Event
		want Control
	}{
		{Free, DragStart, Dragging},
		{Pinned, DragStart, Dragging},
		{Dragging, DragStart, Dragging},
		{Dragging, DragEnd, Pinned},
		{Free, DragEnd, Free},
		{Pinned, DragEnd, Pinned},
		{Pinned, Unpin, Free},
		{Dragging, Unpin, Dragging},
		{Free, Unpin, Free},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%d", tt.from, tt.ev), func(t *testing.T) {
			assert.Equal(t, tt.want, Transition(tt.from, tt.ev))
		})
	}
}

// --- viewport failure semantics ---

func TestUnmeasuredViewportIsNoop(t *testing.T) {
	s := newSim(t, Viewport{}, rec("a", "b"), rec("b"))
	before, _ := s.Position("a")

	assert.False(t, s.Tick())
	assert.Equal(t, types.DefaultLayoutConfig().CooldownTicks, s.TicksLeft())
	s.ClampAll()
	assert.False(t, s.Fit())
	assert.Empty(t, s.Scene(t0.Add(time.Hour)).Nodes)
	_, hit := s.HitTest(r2.Vec{})
	assert.False(t, hit)
	assert.ErrorIs(t, s.ApplyDrag("a", r2.Vec{X: 1, Y: 1}), ErrNoViewport)

	after, _ := s.Position("a")
	assert.Equal(t, before, after)
	assert.True(t, s.FitPending())

	s.Resize(Viewport{Width: 0, Height: 300})
	assert.False(t, s.Tick())
}

func TestEmptyGraph(t *testing.T) {
	s := New(nil, types.DefaultLayoutConfig(), vp800, t0)
	assert.True(t, s.Tick())
	assert.False(t, s.Fit())
	sc := s.Scene(t0)
	assert.Empty(t, sc.Nodes)
	assert.Empty(t, sc.Edges)
}

// --- cooldown ---

func TestCooldownIsBounded(t *testing.T) {
	s := newSim(t, vp800, rec("a", "b", "c"), rec("b", "c"), rec("c"))
	n := s.Settle()
	assert.Equal(t, types.DefaultLayoutConfig().CooldownTicks, n)
	assert.False(t, s.Active())

	frozen, _ := s.Position("a")
	assert.False(t, s.Tick())
	after, _ := s.Position("a")
	assert.Equal(t, frozen, after)
}

func TestSpringsPullConnectedNodesTogether(t *testing.T) {
	s := newSim(t, vp800, rec("a", "b"), rec("b"), rec("c"))
	s.bodies["a"].Pos = r2.Vec{X: -300, Y: 0}
	s.bodies["b"].Pos = r2.Vec{X: 300, Y: 0}
	s.Settle()

	pa, _ := s.Position("a")
	pb, _ := s.Position("b")
	assert.Less(t, r2.Norm(r2.Sub(pa, pb)), 600.0)
}

// --- clamping ---

func TestClampToNearestBoundary(t *testing.T) {
	s := newSim(t, vp800, rec("a"))
	pad := s.cfg.Padding

	tests := []struct {
		name string
		pos  r2.Vec
		want r2.Vec
	}{
		{"beyond right and top", r2.Vec{X: 1000, Y: -1000}, r2.Vec{X: 800 - pad, Y: pad}},
		{"beyond left", r2.Vec{X: -900, Y: 10}, r2.Vec{X: pad, Y: 310}},
		{"beyond bottom", r2.Vec{X: 0, Y: 400}, r2.Vec{X: 400, Y: 600 - pad}},
		{"inside", r2.Vec{X: 5, Y: 5}, r2.Vec{X: 405, Y: 305}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.bodies["a"].Pos = tt.pos
			s.ClampAll()
			got, _ := s.ScreenPosition("a")
			assert.Equal(t, tt.want, got)

			once, _ := s.Position("a")
			require.NoError(t, s.Clamp("a"))
			twice, _ := s.Position("a")
			assert.Equal(t, once, twice)
		})
	}
}

func TestClampIdempotentUnderScaledView(t *testing.T) {
	s := newSim(t, vp800, rec("a"))
	s.view = View{K: 1.7, T: r2.Vec{X: 13.3, Y: 7.1}}
	s.bodies["a"].Pos = r2.Vec{X: 9000, Y: 9000}

	s.ClampAll()
	got, _ := s.ScreenPosition("a")
	assert.InDelta(t, 800-s.cfg.Padding, got.X, 1e-9)
	assert.InDelta(t, 600-s.cfg.Padding, got.Y, 1e-9)

	once, _ := s.Position("a")
	for i := 0; i < 3; i++ {
		s.ClampAll()
	}
	again, _ := s.Position("a")
	assert.Equal(t, once, again)
}

func TestClampUpdatesPin(t *testing.T) {
	s := newSim(t, vp800, rec("a"))
	require.NoError(t, s.ApplyDrag("a", r2.Vec{X: 100, Y: 100}))
	require.NoError(t, s.EndDrag("a"))

	s.Pan(r2.Vec{X: 2000, Y: 0})
	s.ClampAll()

	b, _ := s.Body("a")
	require.NotNil(t, b.Pin)
	assert.Equal(t, b.Pos, *b.Pin)
	sp := s.View().Project(*b.Pin)
	assert.InDelta(t, 800-s.cfg.Padding, sp.X, 1e-9)
}

func TestInvariantHoldsEveryTick(t *testing.T) {
	var records []types.TermRecord
	for i := 0; i < 30; i++ {
		records = append(records, rec(fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", (i+1)%30)))
	}
	s := newSim(t, Viewport{Width: 200, Height: 150}, records...)
	for s.Tick() {
		assertInBounds(t, s)
	}

	s.Resize(Viewport{Width: 120, Height: 90})
	s.reheat("n0")
	for s.Tick() {
		assertInBounds(t, s)
	}
}

func TestDegenerateViewportCollapsesToMidline(t *testing.T) {
	s := newSim(t, Viewport{Width: 30, Height: 30}, rec("a"), rec("b"))
	s.Tick()
	for _, id := range []string{"a", "b"} {
		p, _ := s.ScreenPosition(id)
		assert.InDelta(t, 15, p.X, 1e-9)
		assert.InDelta(t, 15, p.Y, 1e-9)
	}
}

// --- drag ---

func TestDragTracksPointerAndPins(t *testing.T) {
	s := newSim(t, vp800, rec("a", "b"), rec("b", "c"), rec("c"))
	s.Settle()

	for _, p := range []r2.Vec{{X: 100, Y: 120}, {X: 640, Y: 410}, {X: 333.5, Y: 77.25}} {
		require.NoError(t, s.ApplyDrag("a", p))
		got, _ := s.ScreenPosition("a")
		assert.InDelta(t, p.X, got.X, 1e-9)
		assert.InDelta(t, p.Y, got.Y, 1e-9)
	}

	require.NoError(t, s.ApplyDrag("a", r2.Vec{X: 5, Y: 900}))
	got, _ := s.ScreenPosition("a")
	assert.InDelta(t, s.cfg.Padding, got.X, 1e-9)
	assert.InDelta(t, 600-s.cfg.Padding, got.Y, 1e-9)

	b, _ := s.Body("a")
	assert.Equal(t, Dragging, b.Control)

	require.NoError(t, s.EndDrag("a"))
	released, _ := s.Position("a")

	require.True(t, s.Tick())
	after, _ := s.Position("a")
	assert.Equal(t, released, after)

	b, _ = s.Body("a")
	assert.Equal(t, Pinned, b.Control)
	require.NotNil(t, b.Pin)
}

func TestPinnedNodeIsNotPushed(t *testing.T) {
	s := newSim(t, vp800, rec("a", "b"), rec("b"))
	require.NoError(t, s.BeginDrag("a"))
	require.NoError(t, s.EndDrag("a"))
	pinned, _ := s.Position("a")
	startB, _ := s.Position("b")

	s.Settle()
	endA, _ := s.Position("a")
	endB, _ := s.Position("b")
	assert.Equal(t, pinned, endA)
	assert.NotEqual(t, startB, endB)
}

func TestDragReheatIsLocal(t *testing.T) {
	s := newSim(t, vp800, rec("a", "b"), rec("b"), rec("c"))
	s.Settle()
	c0, _ := s.Position("c")

	require.NoError(t, s.ApplyDrag("a", r2.Vec{X: 150, Y: 150}))
	assert.Equal(t, s.cfg.ReheatTicks, s.TicksLeft())
	assert.Equal(t, map[string]bool{"a": true, "b": true}, s.active)

	s.Settle()
	c1, _ := s.Position("c")
	assert.Equal(t, c0, c1)
	assert.Nil(t, s.active)
}

func TestUnpin(t *testing.T) {
	s := newSim(t, vp800, rec("a"))
	require.NoError(t, s.ApplyDrag("a", r2.Vec{X: 300, Y: 300}))
	require.NoError(t, s.Unpin("a"))
	b, _ := s.Body("a")
	assert.Equal(t, Dragging, b.Control, "pointer keeps ownership while dragging")

	require.NoError(t, s.EndDrag("a"))
	require.NoError(t, s.Unpin("a"))
	b, _ = s.Body("a")
	assert.Equal(t, Free, b.Control)
	assert.Nil(t, b.Pin)
}

func TestUnknownNode(t *testing.T) {
	s := newSim(t, vp800, rec("a"))
	assert.ErrorIs(t, s.ApplyDrag("zzz", r2.Vec{}), ErrUnknownNode)
	assert.ErrorIs(t, s.BeginDrag("zzz"), ErrUnknownNode)
	assert.ErrorIs(t, s.EndDrag("zzz"), ErrUnknownNode)
	assert.ErrorIs(t, s.Unpin("zzz"), ErrUnknownNode)
	assert.ErrorIs(t, s.Clamp("zzz"), ErrUnknownNode)
}

// --- view transform ---

func TestFitFramesBoundingBox(t *testing.T) {
	s := newSim(t, vp800, rec("a"), rec("b"))
	s.bodies["a"].Pos = r2.Vec{X: -100, Y: -50}
	s.bodies["b"].Pos = r2.Vec{X: 100, Y: 50}

	require.True(t, s.Fit())
	assert.InDelta(t, 3.6, s.View().K, 1e-12)
	a, _ := s.ScreenPosition("a")
	b, _ := s.ScreenPosition("b")
	assert.InDelta(t, 40, a.X, 1e-9)
	assert.InDelta(t, 760, b.X, 1e-9)
	assert.InDelta(t, 300, (a.Y+b.Y)/2, 1e-9)
}

func TestFitRespectsZoomRange(t *testing.T) {
	s := newSim(t, vp800, rec("a"), rec("b"))
	s.bodies["a"].Pos = r2.Vec{X: 0, Y: 0}
	s.bodies["b"].Pos = r2.Vec{X: 1, Y: 1}
	s.Fit()
	assert.Equal(t, s.cfg.MaxZoom, s.View().K)

	s.bodies["b"].Pos = r2.Vec{X: 1e6, Y: 1e6}
	s.Fit()
	assert.Equal(t, s.cfg.MinZoom, s.View().K)

	one := newSim(t, vp800, rec("solo"))
	one.Fit()
	assert.Equal(t, 1.0, one.View().K)
}

func TestFitRunsAfterSettleDelay(t *testing.T) {
	s := newSim(t, vp800, rec("a", "b"), rec("b"))
	s.Advance(t0)
	assert.True(t, s.FitPending())
	s.Advance(t0.Add(s.cfg.SettleDelay))
	assert.False(t, s.FitPending())

	late := newSim(t, Viewport{}, rec("a"))
	late.Advance(t0.Add(time.Hour))
	assert.True(t, late.FitPending())
	late.Resize(vp800)
	late.Advance(t0.Add(time.Hour))
	assert.False(t, late.FitPending())
}

func TestZoomAnimates(t *testing.T) {
	s := newSim(t, vp800, rec("a"))
	s.fitPending = false
	s.ZoomIn(t0)
	assert.Equal(t, 1.0, s.View().K)

	s.Advance(t0.Add(s.cfg.ZoomDuration / 2))
	mid := s.View().K
	assert.Greater(t, mid, 1.0)
	assert.Less(t, mid, 1.25)

	s.Advance(t0.Add(s.cfg.ZoomDuration))
	assert.InDelta(t, 1.25, s.View().K, 1e-12)

	for i := 0; i < 20; i++ {
		s.ZoomOut(t0.Add(time.Second))
	}
	s.Advance(t0.Add(2 * time.Second))
	assert.InDelta(t, s.cfg.MinZoom, s.View().K, 1e-12)
}

func TestZoomAtKeepsAnchor(t *testing.T) {
	s := newSim(t, vp800, rec("a"))
	s.fitPending = false
	anchor := r2.Vec{X: 120, Y: 480}
	before := s.View().Unproject(anchor)
	s.ZoomAt(anchor, 2, t0)
	s.Advance(t0.Add(time.Second))
	after := s.View().Unproject(anchor)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
	assert.InDelta(t, 2, s.View().K, 1e-12)
}

// --- scene ---

func TestSceneSwitchesBetweenPillAndDot(t *testing.T) {
	s := newSim(t, vp800, rec("IA generativa"))
	s.fitPending = false

	sc := s.Scene(t0)
	require.Len(t, sc.Nodes, 1)
	n := sc.Nodes[0]
	assert.Equal(t, Pill, n.Shape)
	assert.InDelta(t, 13*12*cellWidth+1.6*12, n.Size.X, 1e-9)
	assert.InDelta(t, 1.8*12, n.Size.Y, 1e-9)
	assert.True(t, n.Contains(r2.Add(n.Center, r2.Vec{X: n.Size.X/2 - 1})))

	s.SetZoom(0.5)
	sc = s.Scene(t0)
	n = sc.Nodes[0]
	assert.Equal(t, Dot, n.Shape)
	assert.Equal(t, r2.Vec{X: 10, Y: 10}, n.Size)
	assert.Equal(t, r2.Vec{X: 16, Y: 16}, n.Hit)

	id, ok := s.HitTest(r2.Add(n.Center, r2.Vec{X: 7.5}))
	assert.True(t, ok)
	assert.Equal(t, "IA generativa", id)
	_, ok = s.HitTest(r2.Add(n.Center, r2.Vec{X: 9}))
	assert.False(t, ok)
}

func TestPillWidthCountsWideRunes(t *testing.T) {
	s := newSim(t, vp800, rec("微小重力"), rec("abcd"))
	s.fitPending = false
	sc := s.Scene(t0)
	assert.Greater(t, sc.Nodes[0].Size.X, sc.Nodes[1].Size.X)
}

func TestSceneSkipsSelfLoops(t *testing.T) {
	s := newSim(t, vp800, rec("a", "a", "b"), rec("b"))
	sc := s.Scene(t0)
	require.Len(t, sc.Edges, 1)
	assert.Equal(t, "a", sc.Edges[0].Source)
	assert.Equal(t, "b", sc.Edges[0].Target)
}

func TestRenderSVG(t *testing.T) {
	s := newSim(t, vp800, rec("<b>", "c"), rec("c"))
	s.Settle()
	var buf bytes.Buffer
	require.NoError(t, RenderSVG(s.Scene(t0.Add(time.Second)), &buf))
	out := buf.String()
	assert.Contains(t, out, `<svg xmlns="http://www.w3.org/2000/svg" width="800" height="600"`)
	assert.Contains(t, out, "<line ")
	assert.Contains(t, out, "&lt;b&gt;")
	assert.NotContains(t, out, "<b>")
}
