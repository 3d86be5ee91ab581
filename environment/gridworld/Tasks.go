package gridworld

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/samuelfneumann/latentgrid/environment"
	"github.com/samuelfneumann/latentgrid/world"
)

// CaptureDistance is the Manhattan distance at or below which the
// opponent is considered to have caught, or been caught by, the player.
// With the collision rules of Resolve both agents never share a cell on
// grids with more than one cell, so capture means being adjacent.
const CaptureDistance int = 1

// Rewards used by the default tasks
const (
	CaptureReward  float64 = 1.0
	TimeStepReward float64 = 0.1
)

// Capture represents the task of being caught by (or catching) the
// opponent. The sign of the reward depends on whether capture is
// desirable for the player.
type Capture struct {
	captureReward  float64
	timeStepReward float64
	distance       int
}

// NewCapture returns a new Capture task. The player receives
// captureReward on any transition ending in capture and timeStepReward on
// every other transition.
func NewCapture(captureReward, timeStepReward float64, distance int) (*Capture,
	error) {
	if distance < 0 {
		return nil, fmt.Errorf("newCapture: distance cannot be negative, "+
			"got %d", distance)
	}
	return &Capture{captureReward, timeStepReward, distance}, nil
}

// NewEvade returns the task faced by the player when the opponent chases
// it: being captured is penalized and every tick survived is rewarded.
func NewEvade() *Capture {
	return &Capture{-CaptureReward, TimeStepReward, CaptureDistance}
}

// NewCatch returns the task faced by the player when the opponent flees:
// capture is rewarded and every tick without capture is penalized.
func NewCatch() *Capture {
	return &Capture{CaptureReward, -TimeStepReward, CaptureDistance}
}

// GetReward returns the reward for the transition into next
func (c *Capture) GetReward(_, next world.State) float64 {
	if c.AtGoal(next) {
		return c.captureReward
	}
	return c.timeStepReward
}

// AtGoal returns whether the agents are within capture distance
func (c *Capture) AtGoal(s world.State) bool {
	return s.Player.Manhattan(s.Opponent) <= c.distance
}

// Min returns the minimum reward attainable in the Task
func (c *Capture) Min() float64 {
	return floats.Min([]float64{c.captureReward, c.timeStepReward})
}

// Max returns the maximum reward attainable in the Task
func (c *Capture) Max() float64 {
	return floats.Max([]float64{c.captureReward, c.timeStepReward})
}

func (c *Capture) String() string {
	return fmt.Sprintf("Capture | Distance: %d  |  Capture Reward: %.2f  |  "+
		"Step Reward: %.2f", c.distance, c.captureReward, c.timeStepReward)
}

// Hidden types of the default opponents
const (
	Chaser world.HiddenType = 0
	Evader world.HiddenType = 1
)

// Tasks maps hidden types to the task the player faces against an
// opponent of that type
type Tasks map[world.HiddenType]environment.Task

// DefaultTasks returns the player's tasks against the default opponents:
// evade a chaser, catch an evader
func DefaultTasks() Tasks {
	return Tasks{
		Chaser: NewEvade(),
		Evader: NewCatch(),
	}
}

// For returns the task for hidden type z
func (t Tasks) For(z world.HiddenType) (environment.Task, error) {
	task, ok := t[z]
	if !ok {
		return nil, fmt.Errorf("for: no task registered for %v", z)
	}
	return task, nil
}
