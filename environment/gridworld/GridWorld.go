// Package gridworld implements a 2D gridworld in which a player and an
// opponent move simultaneously
package gridworld

import (
	"fmt"

	"github.com/samuelfneumann/latentgrid/environment"
	ts "github.com/samuelfneumann/latentgrid/timestep"
	"github.com/samuelfneumann/latentgrid/world"
)

// Config holds the geometry and episode bookkeeping of a GridWorld
type Config struct {
	Width, Height int

	// Horizon is the maximum number of ticks in an episode
	Horizon int

	// ViewRadius is how many cells the player sees in each direction
	ViewRadius int

	// CellSize is the side length of a cell in rendered frames, in
	// pixels
	CellSize int

	// TerminateOnCapture ends episodes when the task's goal condition
	// holds. Otherwise episodes always run until the horizon.
	TerminateOnCapture bool
}

// Default configuration values
const (
	DefaultViewRadius int = 2
	DefaultCellSize   int = 32
)

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Width < 1 || c.Height < 1 {
		return fmt.Errorf("validate: grid must be at least 1x1, got %dx%d",
			c.Width, c.Height)
	}
	if c.Horizon < 1 {
		return fmt.Errorf("validate: horizon must be positive, got %d",
			c.Horizon)
	}
	if c.ViewRadius < 0 {
		return fmt.Errorf("validate: view radius cannot be negative, got %d",
			c.ViewRadius)
	}
	if c.CellSize < 1 {
		return fmt.Errorf("validate: cell size must be positive, got %d",
			c.CellSize)
	}
	return nil
}

// GridWorld represents a two-agent gridworld environment.
//
// Both agents act simultaneously: Step receives both actions and applies
// them as a single transition, so neither agent can react to the other's
// choice on the same tick. GridWorld tracks the opponent's previous cell
// so that the player's partial image can show which way it moved.
type GridWorld struct {
	environment.Task
	environment.Starter
	config      Config
	ender       environment.Ender
	state       world.State
	trail       world.Position // opponent position on the previous tick
	currentStep ts.TimeStep
}

// New creates a new GridWorld with the given task and start-state
// distribution. The environment is reset before it is returned, and the
// first timestep is returned with it.
func New(c Config, t environment.Task, s environment.Starter) (*GridWorld,
	ts.TimeStep, error) {
	if err := c.Validate(); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %w", err)
	}
	if t == nil || s == nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: task and starter " +
			"cannot be nil")
	}

	enders := environment.Enders{}
	if c.TerminateOnCapture {
		enders = append(enders, environment.NewGoalEnder(t))
	}
	enders = append(enders, environment.NewStepLimit(c.Horizon))

	g := &GridWorld{
		Task:    t,
		Starter: s,
		config:  c,
		ender:   enders,
	}

	step, err := g.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %w", err)
	}
	return g, step, nil
}

// Reset resets the environment to a starting state sampled from its
// Starter and returns the first timestep of the new episode
func (g *GridWorld) Reset() (ts.TimeStep, error) {
	start := g.Start()
	if err := start.Validate(g.config.Width, g.config.Height); err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %w", err)
	}

	g.state = start
	g.trail = start.Opponent

	startStep := ts.New(ts.First, 0, g.Observe(), 0)
	g.currentStep = startStep
	return startStep, nil
}

// Step applies the player's and opponent's actions simultaneously. Both
// actions are validated before the environment is modified, so an
// invalid action leaves the environment untouched.
func (g *GridWorld) Step(player, opponent world.Action) (ts.TimeStep, bool,
	error) {
	if err := player.Validate(); err != nil {
		return ts.TimeStep{}, false, fmt.Errorf("step: player: %w", err)
	}
	if err := opponent.Validate(); err != nil {
		return ts.TimeStep{}, false, fmt.Errorf("step: opponent: %w", err)
	}
	if g.currentStep.Last() {
		return ts.TimeStep{}, true, fmt.Errorf("step: %w",
			environment.ErrEpisodeOver)
	}

	prev := g.state
	next := Resolve(prev, player, opponent, g.config.Width, g.config.Height)

	reward := g.GetReward(prev, next)
	g.trail = prev.Opponent
	g.state = next

	step := ts.New(ts.Mid, reward, g.Observe(), g.currentStep.Number+1)
	last := g.ender.End(&step)
	g.currentStep = step

	return step, last, nil
}

// Resolve returns the state reached when the player and opponent take
// actions pa and oa simultaneously in state s.
//
// Each agent first computes its target cell; a move off the grid targets
// the agent's current cell. If both agents target the same cell, or each
// targets the other's current cell (they would cross paths), neither
// agent moves. Otherwise both agents move. An agent may enter the cell
// the other agent leaves on the same tick.
func Resolve(s world.State, pa, oa world.Action, width,
	height int) world.State {
	player := s.Player.Move(pa, width, height)
	opponent := s.Opponent.Move(oa, width, height)

	if player == opponent {
		return s
	}
	if player == s.Opponent && opponent == s.Player {
		return s
	}
	return world.State{Player: player, Opponent: opponent}
}

// Observe returns the current observation
func (g *GridWorld) Observe() world.Observation {
	w, h := g.Dims()
	return world.Observation{
		Key:   g.state.Key(w, h),
		State: g.state,
		Image: world.Egocentric(g.state, g.trail, w, h, g.config.ViewRadius),
	}
}

// State returns the current state
func (g *GridWorld) State() world.State {
	return g.state
}

// Trail returns the opponent's position on the previous tick
func (g *GridWorld) Trail() world.Position {
	return g.trail
}

// CurrentTimeStep returns the last timestep returned by the environment
func (g *GridWorld) CurrentTimeStep() ts.TimeStep {
	return g.currentStep
}

// Config returns the environment's configuration
func (g *GridWorld) Config() Config {
	return g.config
}

// Dims gets the width and height of the GridWorld
func (g *GridWorld) Dims() (width, height int) {
	return g.config.Width, g.config.Height
}

func (g *GridWorld) String() string {
	str := "GridWorld | Player: %v  |  Opponent: %v  |  Bounds: (%d, %d)"
	return fmt.Sprintf(str, g.state.Player, g.state.Opponent,
		g.config.Width, g.config.Height)
}
