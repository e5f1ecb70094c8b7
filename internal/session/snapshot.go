// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"sync"
	"time"

	"github.com/pdiddy/termgraph/internal/graph"
	"github.com/pdiddy/termgraph/internal/layout"
	"github.com/pdiddy/termgraph/pkg/types"
)

// Source says where a snapshot's result came from.
type Source string

const (
	SourceNone     Source = "none"
	SourceBackend  Source = "backend"
	SourceHistory  Source = "history"
	SourceFallback Source = "fallback"
)

// Snapshot is everything displayed for one query. The exported fields are
// immutable once published; the simulation is reached through Do, which
// serialises access to it.
type Snapshot struct {
	Query      string
	Generation uint64
	Source     Source
	CreatedAt  time.Time
	Result     *types.SearchResult
	Graph      *graph.Data

	mu       sync.Mutex
	sim      *layout.Simulation
	input    *layout.Interaction
	selected *graph.Node
}

// Do runs fn with exclusive access to the snapshot's simulation.
func (s *Snapshot) Do(fn func(sim *layout.Simulation) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.sim)
}

func (s *Snapshot) resize(vp layout.Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sim.Resize(vp)
}

// Pointer routes one pointer event through the snapshot's interaction
// handler and returns the clicked node, if any.
func (s *Snapshot) Pointer(ev layout.PointerEvent, now time.Time) (*graph.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input.Handle(ev, now)
}

// Selected returns the node most recently clicked in this snapshot.
func (s *Snapshot) Selected() (graph.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return graph.Node{}, false
	}
	return *s.selected, true
}

// Step ticks the simulation once and advances time-driven view state. It
// reports whether anything is still moving.
func (s *Snapshot) Step(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticked := s.sim.Tick()
	s.sim.Advance(now)
	return ticked || s.sim.FitPending()
}

// Scene returns the draw list at now.
func (s *Snapshot) Scene(now time.Time) layout.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Scene(now)
}
