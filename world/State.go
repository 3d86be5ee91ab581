package world

import "fmt"

// Position is a cell on the grid
type Position struct {
	X, Y int
}

// InBounds returns whether the position lies on a grid of the given
// width and height
func (p Position) InBounds(width, height int) bool {
	return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height
}

// Move returns the position reached by taking action a from p. Moves off
// the grid leave the position unchanged.
func (p Position) Move(a Action, width, height int) Position {
	dx, dy := a.Delta()
	next := Position{p.X + dx, p.Y + dy}
	if !next.InBounds(width, height) {
		return p
	}
	return next
}

// Manhattan returns the L1 distance between two positions
func (p Position) Manhattan(q Position) int {
	return abs(p.X-q.X) + abs(p.Y-q.Y)
}

// index returns the row-major index of p on a grid of width w
func (p Position) index(w int) int {
	return p.Y*w + p.X
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// StateKey is a hashable representation of a State used for tabular
// lookups
type StateKey uint64

// State is a snapshot of both agents' positions. States are values and
// are never mutated after construction.
type State struct {
	Player   Position
	Opponent Position
}

// InBounds returns whether both agents lie on a grid of the given width
// and height
func (s State) InBounds(width, height int) bool {
	return s.Player.InBounds(width, height) &&
		s.Opponent.InBounds(width, height)
}

// Validate returns an error wrapping ErrOutOfBounds if either agent lies
// off the grid
func (s State) Validate(width, height int) error {
	if !s.InBounds(width, height) {
		return fmt.Errorf("validate: %w: state %v on %dx%d grid",
			ErrOutOfBounds, s, width, height)
	}
	return nil
}

// Key returns the StateKey of s on a grid of the given width and height.
// The key is a bijection between in-bounds states and
// [0, (width*height)^2), so distinct states never share a key.
func (s State) Key(width, height int) StateKey {
	cells := width * height
	return StateKey(s.Player.index(width)*cells + s.Opponent.index(width))
}

// FromKey inverts State.Key
func FromKey(k StateKey, width, height int) State {
	cells := StateKey(width * height)
	p, o := int(k/cells), int(k%cells)
	return State{
		Player:   Position{p % width, p / width},
		Opponent: Position{o % width, o / width},
	}
}

// NumStates returns the number of distinct states on a grid of the given
// width and height
func NumStates(width, height int) int {
	cells := width * height
	return cells * cells
}

func (s State) String() string {
	return fmt.Sprintf("State | Player: %v  |  Opponent: %v", s.Player,
		s.Opponent)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
