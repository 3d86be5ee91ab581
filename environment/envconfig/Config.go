// Package envconfig provides configuration structs for configuring
// gridworld environments with default parameters and tasks. Environment
// configurations in this package are JSON serializable.
package envconfig

import (
	"encoding/json"
	"fmt"
	"os"

	env "github.com/samuelfneumann/latentgrid/environment"
	"github.com/samuelfneumann/latentgrid/environment/gridworld"
	ts "github.com/samuelfneumann/latentgrid/timestep"
	"github.com/samuelfneumann/latentgrid/world"
)

// StartName stores the start-state distributions that can be configured
// with this package
type StartName string

// Start-state distributions available for configuration
const (
	// Corner starts the player in the bottom left corner and the
	// opponent in the top right corner
	Corner StartName = "Corner"

	// Uniform samples both agents uniformly over distinct cells
	Uniform StartName = "Uniform"
)

// Config implements a specific configuration of a gridworld
type Config struct {
	Width              int
	Height             int
	Horizon            int
	ViewRadius         int
	CellSize           int
	TerminateOnCapture bool
	Start              StartName
}

// Default returns the configuration of the reference run: a 5x5 grid
// with a horizon of 100 ticks
func Default() Config {
	return Config{
		Width:      5,
		Height:     5,
		Horizon:    100,
		ViewRadius: gridworld.DefaultViewRadius,
		CellSize:   gridworld.DefaultCellSize,
		Start:      Corner,
	}
}

// GridWorld returns the gridworld configuration described by the Config
func (c Config) GridWorld() gridworld.Config {
	return gridworld.Config{
		Width:              c.Width,
		Height:             c.Height,
		Horizon:            c.Horizon,
		ViewRadius:         c.ViewRadius,
		CellSize:           c.CellSize,
		TerminateOnCapture: c.TerminateOnCapture,
	}
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if err := c.GridWorld().Validate(); err != nil {
		return err
	}
	switch c.Start {
	case Corner, Uniform:
		return nil
	}
	return fmt.Errorf("validate: no such start distribution %q", c.Start)
}

// Starter returns the start-state distribution described by the Config
func (c Config) Starter(seed uint64) (env.Starter, error) {
	switch c.Start {
	case Corner:
		return env.NewCornerStart(c.Width, c.Height)

	case Uniform:
		return env.NewCategoricalStarter(c.Width, c.Height, seed)
	}
	return nil, fmt.Errorf("starter: no such start distribution %q", c.Start)
}

// Create returns the environment described by the Config in which the
// player faces an opponent of hidden type z, as well as the first
// timestep of the environment. The player's reward is taken from the
// task registered for z.
func (c Config) Create(z world.HiddenType, tasks gridworld.Tasks,
	seed uint64) (*gridworld.GridWorld, ts.TimeStep, error) {
	if err := c.Validate(); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %w", err)
	}

	task, err := tasks.For(z)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %w", err)
	}

	s, err := c.Starter(seed)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %w", err)
	}

	return gridworld.New(c.GridWorld(), task, s)
}

// Load reads a JSON encoded Config from a file. Fields missing from the
// file keep their default values.
func Load(path string) (Config, error) {
	c := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load: could not read config: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("load: could not decode config: %w", err)
	}
	return c, c.Validate()
}
