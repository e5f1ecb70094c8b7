// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
)

// Advance brings time-driven view state up to now: it steps a running
// zoom animation and performs the scheduled fit once the settle delay has
// passed and a viewport is known.
func (s *Simulation) Advance(now time.Time) {
	if s.anim != nil {
		v, done := s.anim.at(now)
		s.view = v
		if done {
			s.anim = nil
		}
	}
	if s.fitPending && !now.Before(s.fitAt) && s.viewport.Valid() {
		s.Fit()
	}
}

// FitPending reports whether an automatic fit is still scheduled.
func (s *Simulation) FitPending() bool { return s.fitPending }

// ScheduleFit arranges for Fit to run once now+SettleDelay has passed.
func (s *Simulation) ScheduleFit(now time.Time) {
	s.fitPending = true
	s.fitAt = now.Add(s.cfg.SettleDelay)
}

// Fit sets zoom and pan so that the bounding box of every node, plus
// FitMargin on each side, fills the viewport. The zoom stays within
// [MinZoom, MaxZoom]. It returns false without a viewport or nodes.
func (s *Simulation) Fit() bool {
	if !s.viewport.Valid() || len(s.order) == 0 {
		return false
	}
	s.fitPending = false
	s.anim = nil

	lo := s.bodies[s.order[0]].Pos
	hi := lo
	for _, id := range s.order[1:] {
		p := s.bodies[id].Pos
		lo = r2.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y)}
		hi = r2.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y)}
	}
	size := r2.Sub(hi, lo)
	availW := s.viewport.Width - 2*s.cfg.FitMargin
	availH := s.viewport.Height - 2*s.cfg.FitMargin

	k := math.Inf(1)
	if size.X > 0 && availW > 0 {
		k = availW / size.X
	}
	if size.Y > 0 && availH > 0 {
		k = math.Min(k, availH/size.Y)
	}
	if math.IsInf(k, 1) {
		k = 1
	}
	k = s.clampZoom(k)

	mid := r2.Scale(0.5, r2.Add(lo, hi))
	s.view = View{K: k, T: r2.Sub(s.viewport.Center(), r2.Scale(k, mid))}
	s.viewSet = true
	return true
}

// ZoomIn multiplies the zoom by ZoomStep about the viewport center,
// animating over ZoomDuration.
func (s *Simulation) ZoomIn(now time.Time) {
	s.ZoomAt(s.viewport.Center(), s.cfg.ZoomStep, now)
}

// ZoomOut divides the zoom by ZoomStep about the viewport center.
func (s *Simulation) ZoomOut(now time.Time) {
	s.ZoomAt(s.viewport.Center(), 1/s.cfg.ZoomStep, now)
}

// ZoomAt scales the zoom by factor, keeping the screen point anchor fixed.
// Repeated calls during an animation compound on its target.
func (s *Simulation) ZoomAt(anchor r2.Vec, factor float64, now time.Time) {
	if factor <= 0 || math.IsNaN(factor) {
		return
	}
	s.Advance(now)
	base := s.view
	if s.anim != nil {
		base = s.anim.to
	}
	target := base.zoomAbout(s.clampZoom(base.K*factor), anchor)
	s.anim = &animation{from: s.view, to: target, start: now, dur: s.cfg.ZoomDuration}
	s.Advance(now)
}

// SetZoom jumps to zoom k about the viewport center without animating.
func (s *Simulation) SetZoom(k float64) {
	s.anim = nil
	s.view = s.view.zoomAbout(s.clampZoom(k), s.viewport.Center())
}

// Pan shifts the view by a screen-space delta. A running zoom animation is
// cut short at its current frame.
func (s *Simulation) Pan(delta r2.Vec) {
	s.anim = nil
	s.view.T = r2.Add(s.view.T, delta)
}

func (s *Simulation) clampZoom(k float64) float64 {
	lo, hi := s.cfg.MinZoom, s.cfg.MaxZoom
	if lo <= 0 {
		lo = math.SmallestNonzeroFloat64
	}
	if hi < lo {
		hi = lo
	}
	return math.Min(math.Max(k, lo), hi)
}
