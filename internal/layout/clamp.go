// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import "gonum.org/v1/gonum/spatial/r2"

// Bounds returns the screen rectangle node projections must stay inside,
// and false when the viewport is not measured.
func (s *Simulation) Bounds() (Rect, bool) {
	if !s.viewport.Valid() {
		return Rect{}, false
	}
	return s.viewport.inset(s.cfg.Padding), true
}

// ClampAll moves every node whose projection leaves Bounds back to the
// nearest in-bounds point. It is a no-op without a viewport and
// idempotent otherwise.
func (s *Simulation) ClampAll() {
	r, ok := s.Bounds()
	if !ok {
		return
	}
	for _, id := range s.order {
		s.clampBody(s.bodies[id], r)
	}
}

// Clamp applies ClampAll's rule to one node.
func (s *Simulation) Clamp(id string) error {
	b, err := s.body(id)
	if err != nil {
		return err
	}
	if r, ok := s.Bounds(); ok {
		s.clampBody(b, r)
	}
	return nil
}

func (s *Simulation) clampBody(b *Body, r Rect) {
	sp := s.view.Project(b.Pos)
	if r.Contains(sp, clampEpsilon) {
		return
	}
	b.Pos = s.view.Unproject(r.Clamp(sp))
	if b.Pin != nil {
		p := b.Pos
		b.Pin = &p
	}
}

// ClampPoint returns the in-bounds screen point nearest to p. Without a
// viewport p is returned unchanged.
func (s *Simulation) ClampPoint(p r2.Vec) r2.Vec {
	r, ok := s.Bounds()
	if !ok {
		return p
	}
	return r.Clamp(p)
}
