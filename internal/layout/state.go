// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

// Control says who owns a node's position.
type Control int

const (
	// Free nodes are moved by the force simulation.
	Free Control = iota
	// Dragging nodes follow the pointer and are pinned while they do.
	Dragging
	// Pinned nodes stay at their pin. They push neighbors but are never pushed.
	Pinned
)

func (c Control) String() string {
	switch c {
	case Free:
		return "free"
	case Dragging:
		return "dragging"
	case Pinned:
		return "pinned"
	default:
		return "unknown"
	}
}

// Event is an input to the per-node control state machine.
type Event int

const (
	// DragStart hands a node to the pointer.
	DragStart Event = iota
	// DragEnd releases the pointer and leaves the node pinned.
	DragEnd
	// Unpin returns a pinned node to the simulation.
	Unpin
)

// Transition returns the control state that follows c on ev. Events that
// make no sense in c leave it unchanged: a drag that never started cannot
// end, and a node under the pointer cannot be unpinned.
func Transition(c Control, ev Event) Control {
	switch ev {
	case DragStart:
		return Dragging
	case DragEnd:
		if c == Dragging {
			return Pinned
		}
	case Unpin:
		if c == Pinned {
			return Free
		}
	}
	return c
}
