// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pdiddy/termgraph/internal/graph"
)

// PointerKind classifies a pointer event.
type PointerKind string

const (
	PointerDown  PointerKind = "down"
	PointerMove  PointerKind = "move"
	PointerUp    PointerKind = "up"
	PointerWheel PointerKind = "wheel"
)

// PointerEvent is one pointer input in screen coordinates. DeltaY is the
// wheel delta; negative values zoom in.
type PointerEvent struct {
	Kind   PointerKind `json:"type"`
	Pos    r2.Vec      `json:"pos"`
	DeltaY float64     `json:"delta_y,omitempty"`
}

// gesture tracks one press between down and up.
type gesture struct {
	node     string
	start    r2.Vec
	last     r2.Vec
	dragging bool
	moved    bool
}

// Interaction turns pointer events into drags, pans, wheel zooms and node
// clicks on a Simulation.
type Interaction struct {
	sim     *Simulation
	onClick func(graph.Node)
	g       *gesture
}

// NewInteraction routes pointer events to sim. onClick may be nil.
func NewInteraction(sim *Simulation, onClick func(graph.Node)) *Interaction {
	return &Interaction{sim: sim, onClick: onClick}
}

// Handle processes one event. It returns the clicked node when the event
// completes a click.
func (in *Interaction) Handle(ev PointerEvent, now time.Time) (*graph.Node, error) {
	s := in.sim
	switch ev.Kind {
	case PointerDown:
		// A press while a drag is live means its release was lost.
		if in.Dragging() {
			if err := s.EndDrag(in.g.node); err != nil {
				return nil, err
			}
		}
		in.g = &gesture{start: ev.Pos, last: ev.Pos}
		if id, ok := s.HitTest(ev.Pos); ok {
			in.g.node = id
		}
		return nil, nil

	case PointerMove:
		g := in.g
		if g == nil {
			return nil, nil
		}
		if r2.Norm(r2.Sub(ev.Pos, g.start)) > s.cfg.ClickSlop {
			g.moved = true
		}
		if g.node == "" {
			s.Pan(r2.Sub(ev.Pos, g.last))
			g.last = ev.Pos
			return nil, nil
		}
		g.last = ev.Pos
		if !g.moved {
			return nil, nil
		}
		g.dragging = true
		return nil, s.ApplyDrag(g.node, ev.Pos)

	case PointerUp:
		g := in.g
		in.g = nil
		if g == nil || g.node == "" {
			return nil, nil
		}
		if g.dragging {
			return nil, s.EndDrag(g.node)
		}
		if g.moved {
			return nil, nil
		}
		n, ok := s.data.Node(g.node)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownNode, g.node)
		}
		if in.onClick != nil {
			in.onClick(n)
		}
		return &n, nil

	case PointerWheel:
		switch {
		case ev.DeltaY < 0:
			s.ZoomAt(ev.Pos, s.cfg.ZoomStep, now)
		case ev.DeltaY > 0:
			s.ZoomAt(ev.Pos, 1/s.cfg.ZoomStep, now)
		}
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown pointer event %q", ev.Kind)
	}
}

// Dragging reports whether a node drag is in progress.
func (in *Interaction) Dragging() bool {
	return in.g != nil && in.g.dragging
}
