// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"fmt"
	"math"
	"time"

	"github.com/mattn/go-runewidth"
	"gonum.org/v1/gonum/spatial/r2"
)

// Shape is the drawn representation of a node.
type Shape int

const (
	// Pill is a rounded label box sized to the label text.
	Pill Shape = iota
	// Dot is a plain circle used below the legibility zoom.
	Dot
)

func (s Shape) String() string {
	if s == Dot {
		return "dot"
	}
	return "pill"
}

// MarshalText encodes the shape by name.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a shape name written by MarshalText.
func (s *Shape) UnmarshalText(b []byte) error {
	switch string(b) {
	case "pill":
		*s = Pill
	case "dot":
		*s = Dot
	default:
		return fmt.Errorf("unknown shape %q", b)
	}
	return nil
}

// cellWidth is the advance of one terminal cell as a fraction of the font size.
const cellWidth = 0.6

// NodeShape is one node in screen space. For a Pill, Size is the box; for a
// Dot, Size is the circle's bounding square. Hit is the clickable area,
// never smaller than MinHitSize on either side.
type NodeShape struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Shape  Shape   `json:"shape"`
	Center r2.Vec  `json:"center"`
	Size   r2.Vec  `json:"size"`
	Hit    r2.Vec  `json:"hit"`
	Font   float64 `json:"font,omitempty"`
	Pinned bool    `json:"pinned"`
}

// Contains reports whether the screen point p falls inside the hit area.
func (n NodeShape) Contains(p r2.Vec) bool {
	d := r2.Sub(p, n.Center)
	if n.Shape == Dot {
		r := n.Hit.X / 2
		return r2.Norm2(d) <= r*r
	}
	return math.Abs(d.X) <= n.Hit.X/2 && math.Abs(d.Y) <= n.Hit.Y/2
}

// EdgeShape is one edge segment in screen space.
type EdgeShape struct {
	Source string `json:"source"`
	Target string `json:"target"`
	From   r2.Vec `json:"from"`
	To     r2.Vec `json:"to"`
}

// Scene is everything a renderer needs to draw one frame.
type Scene struct {
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Zoom   float64     `json:"zoom"`
	Edges  []EdgeShape `json:"edges"`
	Nodes  []NodeShape `json:"nodes"`
}

// Scene advances time-driven view state to now and returns the draw list
// in paint order. Without a viewport it returns an empty scene.
func (s *Simulation) Scene(now time.Time) Scene {
	s.Advance(now)
	if !s.viewport.Valid() {
		return Scene{}
	}

	sc := Scene{
		Width:  s.viewport.Width,
		Height: s.viewport.Height,
		Zoom:   s.view.K,
		Edges:  make([]EdgeShape, 0, len(s.edges)),
		Nodes:  make([]NodeShape, 0, len(s.order)),
	}
	for _, e := range s.edges {
		sc.Edges = append(sc.Edges, EdgeShape{
			Source: e.Source,
			Target: e.Target,
			From:   s.view.Project(s.bodies[e.Source].Pos),
			To:     s.view.Project(s.bodies[e.Target].Pos),
		})
	}
	for i, id := range s.order {
		b := s.bodies[id]
		sc.Nodes = append(sc.Nodes, s.nodeShape(s.data.Nodes[i].Label, b))
	}
	return sc
}

func (s *Simulation) nodeShape(label string, b *Body) NodeShape {
	ns := NodeShape{
		ID:     b.ID,
		Label:  label,
		Center: s.view.Project(b.Pos),
		Pinned: b.Pin != nil,
	}
	minHit := s.cfg.MinHitSize

	if s.view.K < s.cfg.LegibleZoom {
		d := 2 * s.cfg.DotRadius
		ns.Shape = Dot
		ns.Size = r2.Vec{X: d, Y: d}
		h := math.Max(d, minHit)
		ns.Hit = r2.Vec{X: h, Y: h}
		return ns
	}

	font := s.cfg.FontSize * s.view.K
	cells := float64(runewidth.StringWidth(label))
	ns.Shape = Pill
	ns.Font = font
	ns.Size = r2.Vec{
		X: cells*font*cellWidth + 1.6*font,
		Y: 1.8 * font,
	}
	ns.Hit = r2.Vec{X: math.Max(ns.Size.X, minHit), Y: math.Max(ns.Size.Y, minHit)}
	return ns
}

// HitTest returns the topmost node whose hit area contains the screen
// point p.
func (s *Simulation) HitTest(p r2.Vec) (string, bool) {
	if !s.viewport.Valid() {
		return "", false
	}
	for i := len(s.order) - 1; i >= 0; i-- {
		b := s.bodies[s.order[i]]
		if s.nodeShape(s.data.Nodes[i].Label, b).Contains(p) {
			return b.ID, true
		}
	}
	return "", false
}
