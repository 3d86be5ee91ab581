// Package environment outlines the interfaces and structs needed to
// implement two-agent grid environments
package environment

import (
	"errors"
	"image"

	"github.com/samuelfneumann/latentgrid/timestep"
	"github.com/samuelfneumann/latentgrid/world"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() world.State
}

// Task implements the reward scheme of the player given the opponent's
// hidden type
type Task interface {
	// GetReward returns the player's reward for the transition
	// prev -> next
	GetReward(prev, next world.State) float64

	// AtGoal returns whether s satisfies the task's goal condition
	AtGoal(s world.State) bool
}

// Ender determines when episodes end
type Ender interface {
	// End returns whether the episode should end on the argument
	// timestep. If so, End also marks the timestep as the last.
	End(t *timestep.TimeStep) bool
}

// Environment implements a simulated, simultaneous-move environment
// with two agents
type Environment interface {
	Reset() (timestep.TimeStep, error)

	// Step applies both actions as a single atomic transition and
	// returns the next timestep and whether the episode has ended
	Step(player, opponent world.Action) (timestep.TimeStep, bool, error)

	// Render draws the current state without modifying it
	Render() image.Image

	Dims() (width, height int)
}

// ErrEpisodeOver is returned when stepping an environment whose current
// episode has already ended
var ErrEpisodeOver = errors.New("episode over")
