// Package world defines the vocabulary shared by the two-agent grid world
// and the agents acting in it: actions, positions, states, hidden types,
// and observations.
package world

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAction is returned when an action outside of the action
	// set is submitted
	ErrInvalidAction = errors.New("invalid action")

	// ErrOutOfBounds is returned when a position lies outside the grid
	ErrOutOfBounds = errors.New("position out of bounds")
)

// Action is a discrete move on the grid
type Action int

const (
	Stay Action = iota
	Left
	Right
	Up
	Down
)

// NumActions is the number of actions available to each agent
const NumActions int = 5

// Actions returns all actions ordered by index
func Actions() []Action {
	return []Action{Stay, Left, Right, Up, Down}
}

// Valid returns whether the action is in the action set
func (a Action) Valid() bool {
	return a >= 0 && int(a) < NumActions
}

// Validate returns an error wrapping ErrInvalidAction if a is not in the
// action set
func (a Action) Validate() error {
	if !a.Valid() {
		return fmt.Errorf("validate: %w: %d not in [0, %d)", ErrInvalidAction,
			int(a), NumActions)
	}
	return nil
}

// Delta returns the change in (x, y) caused by the action. Up increases y
// and Down decreases it.
func (a Action) Delta() (dx, dy int) {
	switch a {
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	case Up:
		return 0, 1
	case Down:
		return 0, -1
	}
	return 0, 0
}

func (a Action) String() string {
	switch a {
	case Stay:
		return "Stay"
	case Left:
		return "Left"
	case Right:
		return "Right"
	case Up:
		return "Up"
	case Down:
		return "Down"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}
