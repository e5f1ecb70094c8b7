// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
)

// Viewport is the measured size of the drawing surface in screen pixels.
// The zero value means "not yet measured".
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether the viewport has a usable, positive size.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0 &&
		!math.IsInf(v.Width, 0) && !math.IsInf(v.Height, 0)
}

// Center returns the screen-space center of the viewport.
func (v Viewport) Center() r2.Vec {
	return r2.Vec{X: v.Width / 2, Y: v.Height / 2}
}

// Rect is an axis-aligned screen rectangle.
type Rect struct {
	Min, Max r2.Vec
}

// Contains reports whether p lies inside r, widened by eps on every side.
func (r Rect) Contains(p r2.Vec, eps float64) bool {
	return p.X >= r.Min.X-eps && p.X <= r.Max.X+eps &&
		p.Y >= r.Min.Y-eps && p.Y <= r.Max.Y+eps
}

// Clamp returns the point of r nearest to p.
func (r Rect) Clamp(p r2.Vec) r2.Vec {
	return r2.Vec{
		X: math.Min(math.Max(p.X, r.Min.X), r.Max.X),
		Y: math.Min(math.Max(p.Y, r.Min.Y), r.Max.Y),
	}
}

// inset returns the viewport rectangle shrunk by pad on every side. When
// pad exceeds half a dimension that dimension collapses to its midline.
func (v Viewport) inset(pad float64) Rect {
	r := Rect{
		Min: r2.Vec{X: pad, Y: pad},
		Max: r2.Vec{X: v.Width - pad, Y: v.Height - pad},
	}
	if r.Min.X > r.Max.X {
		r.Min.X, r.Max.X = v.Width/2, v.Width/2
	}
	if r.Min.Y > r.Max.Y {
		r.Min.Y, r.Max.Y = v.Height/2, v.Height/2
	}
	return r
}

// View maps simulation space to screen space: screen = sim*K + T.
type View struct {
	K float64 `json:"k"`
	T r2.Vec  `json:"t"`
}

// Identity is the view with zoom 1 and no pan.
var Identity = View{K: 1}

// Project maps a simulation-space point to screen space.
func (v View) Project(p r2.Vec) r2.Vec {
	return r2.Add(r2.Scale(v.K, p), v.T)
}

// Unproject maps a screen-space point to simulation space.
func (v View) Unproject(s r2.Vec) r2.Vec {
	return r2.Scale(1/v.K, r2.Sub(s, v.T))
}

// zoomAbout returns the view at zoom k that keeps the simulation point under
// the screen point anchor in place.
func (v View) zoomAbout(k float64, anchor r2.Vec) View {
	sim := v.Unproject(anchor)
	return View{K: k, T: r2.Sub(anchor, r2.Scale(k, sim))}
}

// animation interpolates between two views with a cubic ease-out.
type animation struct {
	from, to View
	start    time.Time
	dur      time.Duration
}

func (a *animation) at(now time.Time) (View, bool) {
	if a.dur <= 0 || !now.Before(a.start.Add(a.dur)) {
		return a.to, true
	}
	p := float64(now.Sub(a.start)) / float64(a.dur)
	if p < 0 {
		p = 0
	}
	e := 1 - math.Pow(1-p, 3)
	return View{
		K: a.from.K + (a.to.K-a.from.K)*e,
		T: r2.Add(a.from.T, r2.Scale(e, r2.Sub(a.to.T, a.from.T))),
	}, false
}
