// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// BeginDrag hands id to the pointer: the node is pinned where it stands
// and the simulation is reheated around it.
func (s *Simulation) BeginDrag(id string) error {
	b, err := s.body(id)
	if err != nil {
		return err
	}
	b.Control = Transition(b.Control, DragStart)
	p := b.Pos
	b.Pin = &p
	b.Vel = r2.Vec{}
	s.reheat(id)
	return nil
}

// ApplyDrag moves id to the simulation-space projection of the screen
// point, clamped into the viewport, and pins it there. A node that is not
// already dragging starts a drag first.
func (s *Simulation) ApplyDrag(id string, screen r2.Vec) error {
	if !s.viewport.Valid() {
		return fmt.Errorf("dragging %q: %w", id, ErrNoViewport)
	}
	b, err := s.body(id)
	if err != nil {
		return err
	}
	if b.Control != Dragging {
		if err := s.BeginDrag(id); err != nil {
			return err
		}
	}

	b.Pos = s.view.Unproject(screen)
	b.Vel = r2.Vec{}
	s.clampBody(b, s.viewport.inset(s.cfg.Padding))
	p := b.Pos
	b.Pin = &p
	s.reheat(id)
	return nil
}

// EndDrag releases the pointer. The node stays pinned at its last position.
func (s *Simulation) EndDrag(id string) error {
	b, err := s.body(id)
	if err != nil {
		return err
	}
	b.Control = Transition(b.Control, DragEnd)
	return nil
}

// Unpin returns a pinned node to the simulation. The viewer never calls
// it; pins last until the graph is rebuilt.
func (s *Simulation) Unpin(id string) error {
	b, err := s.body(id)
	if err != nil {
		return err
	}
	next := Transition(b.Control, Unpin)
	if next == Free {
		b.Pin = nil
		s.reheat(id)
	}
	b.Control = next
	return nil
}
