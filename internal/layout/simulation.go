// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout drives a force-directed simulation of a graph inside a
// bounded viewport and turns pointer input into drag, pan, zoom and click
// events.
//
// A Simulation is a plain value owned by its caller. It is not safe for
// concurrent use; callers serialise access the way a UI thread would.
package layout

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pdiddy/termgraph/internal/graph"
	"github.com/pdiddy/termgraph/pkg/types"
)

var (
	// ErrUnknownNode is returned for node IDs absent from the loaded graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrNoViewport is returned by operations that need a measured viewport.
	ErrNoViewport = errors.New("viewport not measured")
)

const (
	initialRadius = 10
	alphaMin      = 0.001
	reheatAlpha   = 0.3

	// clampEpsilon absorbs the rounding of a project/unproject round trip
	// so that clamping a clamped position changes nothing.
	clampEpsilon = 1e-7
)

// Body is the simulation-owned state of one node.
type Body struct {
	ID      string
	Pos     r2.Vec
	Vel     r2.Vec
	Pin     *r2.Vec
	Control Control
}

// Simulation owns the physical and view state of one loaded graph.
type Simulation struct {
	cfg  types.LayoutConfig
	data *graph.Data

	order  []string
	bodies map[string]*Body
	edges  []graph.Edge

	viewport Viewport
	view     View
	viewSet  bool
	anim     *animation

	alpha      float64
	alphaDecay float64
	ticksLeft  int

	// active limits integration to a drag neighborhood during a reheat.
	// Nil means every node.
	active map[string]bool

	fitPending bool
	fitAt      time.Time
}

// New loads data into a fresh simulation. Nodes start on a deterministic
// spiral in input order, the cooldown budget is armed, and a fit is
// scheduled SettleDelay after now. vp may be the zero Viewport.
func New(data *graph.Data, cfg types.LayoutConfig, vp Viewport, now time.Time) *Simulation {
	if data == nil {
		data = graph.Build(nil)
	}
	s := &Simulation{
		cfg:    cfg,
		data:   data,
		bodies: make(map[string]*Body, len(data.Nodes)),
		view:   Identity,
	}

	golden := math.Pi * (3 - math.Sqrt(5))
	for i, n := range data.Nodes {
		r := initialRadius * math.Sqrt(0.5+float64(i))
		a := float64(i) * golden
		s.order = append(s.order, n.ID)
		s.bodies[n.ID] = &Body{
			ID:  n.ID,
			Pos: r2.Vec{X: r * math.Cos(a), Y: r * math.Sin(a)},
		}
	}
	for _, e := range data.Edges {
		if e.IsSelfLoop() {
			continue
		}
		s.edges = append(s.edges, e)
	}

	s.alpha = 1
	if cfg.CooldownTicks > 0 {
		s.alphaDecay = 1 - math.Pow(alphaMin, 1/float64(cfg.CooldownTicks))
	}
	s.ticksLeft = cfg.CooldownTicks
	s.fitPending = true
	s.fitAt = now.Add(cfg.SettleDelay)

	s.Resize(vp)
	return s
}

// Data returns the graph the simulation was loaded with.
func (s *Simulation) Data() *graph.Data { return s.data }

// Config returns the layout constants in use.
func (s *Simulation) Config() types.LayoutConfig { return s.cfg }

// Viewport returns the last observed viewport.
func (s *Simulation) Viewport() Viewport { return s.viewport }

// View returns the current view transform.
func (s *Simulation) View() View { return s.view }

// Body returns a copy of the body for id.
func (s *Simulation) Body(id string) (Body, bool) {
	b, ok := s.bodies[id]
	if !ok {
		return Body{}, false
	}
	out := *b
	if b.Pin != nil {
		p := *b.Pin
		out.Pin = &p
	}
	return out, true
}

// Position returns the simulation-space position of id.
func (s *Simulation) Position(id string) (r2.Vec, bool) {
	b, ok := s.bodies[id]
	if !ok {
		return r2.Vec{}, false
	}
	return b.Pos, true
}

// ScreenPosition returns the screen-space projection of id.
func (s *Simulation) ScreenPosition(id string) (r2.Vec, bool) {
	p, ok := s.Position(id)
	if !ok {
		return r2.Vec{}, false
	}
	return s.view.Project(p), true
}

// Active reports whether ticks remain in the current budget.
func (s *Simulation) Active() bool { return s.ticksLeft > 0 }

// TicksLeft returns the remaining tick budget.
func (s *Simulation) TicksLeft() int { return s.ticksLeft }

// Resize records a new viewport. The first valid size centers the
// simulation origin on screen. Nodes are not moved until the next tick or
// drag.
func (s *Simulation) Resize(vp Viewport) {
	s.viewport = vp
	if vp.Valid() && !s.viewSet {
		s.view = View{K: 1, T: vp.Center()}
		s.viewSet = true
	}
}

// Tick advances the simulation by one step and clamps every node into the
// viewport. It returns false without doing anything when the budget is
// spent or the viewport is unknown.
func (s *Simulation) Tick() bool {
	if s.ticksLeft <= 0 || !s.viewport.Valid() {
		return false
	}
	s.ticksLeft--

	s.applyForces()
	s.integrate()
	s.ClampAll()

	s.alpha *= 1 - s.alphaDecay
	if s.ticksLeft == 0 {
		s.active = nil
	}
	return true
}

// Settle runs ticks until the budget is spent and returns how many ran.
func (s *Simulation) Settle() int {
	n := 0
	for s.Tick() {
		n++
	}
	return n
}

func (s *Simulation) applyForces() {
	a := s.alpha
	cfg := s.cfg

	if cfg.Repulsion > 0 {
		for i := 0; i < len(s.order); i++ {
			bi := s.bodies[s.order[i]]
			for j := i + 1; j < len(s.order); j++ {
				bj := s.bodies[s.order[j]]
				d := r2.Sub(bj.Pos, bi.Pos)
				d2 := r2.Norm2(d)
				if d2 < 1 {
					d2 = 1
				}
				f := r2.Scale(cfg.Repulsion*a/d2, d)
				bi.Vel = r2.Sub(bi.Vel, f)
				bj.Vel = r2.Add(bj.Vel, f)
			}
		}
	}

	for _, e := range s.edges {
		ba, bb := s.bodies[e.Source], s.bodies[e.Target]
		d := r2.Sub(bb.Pos, ba.Pos)
		dist := r2.Norm(d)
		if dist == 0 {
			continue
		}
		f := r2.Scale((dist-cfg.SpringLength)*cfg.SpringStrength*a/dist, d)
		ba.Vel = r2.Add(ba.Vel, f)
		bb.Vel = r2.Sub(bb.Vel, f)
	}

	if cfg.Centering > 0 {
		for _, id := range s.order {
			b := s.bodies[id]
			b.Vel = r2.Sub(b.Vel, r2.Scale(cfg.Centering*a, b.Pos))
		}
	}
}

func (s *Simulation) integrate() {
	keep := 1 - s.cfg.VelocityDecay
	for _, id := range s.order {
		b := s.bodies[id]
		if b.Pin != nil {
			b.Pos = *b.Pin
			b.Vel = r2.Vec{}
			continue
		}
		if s.active != nil && !s.active[id] {
			b.Vel = r2.Vec{}
			continue
		}
		b.Vel = r2.Scale(keep, b.Vel)
		b.Pos = r2.Add(b.Pos, b.Vel)
	}
}

// reheat re-arms the budget after a drag. While the load cooldown is still
// running every node keeps moving; otherwise only the dragged node's
// neighborhood is integrated.
func (s *Simulation) reheat(id string) {
	if s.cfg.ReheatTicks <= 0 {
		return
	}
	if s.ticksLeft > 0 && s.active == nil {
		s.ticksLeft = max(s.ticksLeft, s.cfg.ReheatTicks)
		return
	}
	if s.active == nil {
		s.active = map[string]bool{}
	}
	s.active[id] = true
	for _, n := range s.data.Neighbors(id) {
		s.active[n] = true
	}
	s.ticksLeft = max(s.ticksLeft, s.cfg.ReheatTicks)
	s.alpha = math.Max(s.alpha, reheatAlpha)
}

func (s *Simulation) body(id string) (*Body, error) {
	b, ok := s.bodies[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	return b, nil
}
