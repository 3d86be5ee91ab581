package environment

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/latentgrid/world"
)

// SingleStart always starts episodes in the same state
type SingleStart struct {
	state world.State
}

// NewSingleStart returns a new SingleStart. The two agents must start on
// the grid and on different cells unless the grid has a single cell.
func NewSingleStart(s world.State, width, height int) (*SingleStart, error) {
	if err := s.Validate(width, height); err != nil {
		return nil, fmt.Errorf("newSingleStart: %w", err)
	}
	if s.Player == s.Opponent && width*height > 1 {
		return nil, fmt.Errorf("newSingleStart: agents cannot share cell %v",
			s.Player)
	}
	return &SingleStart{s}, nil
}

// NewCornerStart returns a SingleStart with the player in the bottom left
// corner and the opponent in the top right corner
func NewCornerStart(width, height int) (*SingleStart, error) {
	s := world.State{
		Player:   world.Position{X: 0, Y: 0},
		Opponent: world.Position{X: width - 1, Y: height - 1},
	}
	return NewSingleStart(s, width, height)
}

// Start returns the starting state
func (s *SingleStart) Start() world.State {
	return s.state
}

// CategoricalStarter samples starting states uniformly over all pairs of
// distinct cells using a categorical distribution over the grid's cells
type CategoricalStarter struct {
	width, height int
	rand          distuv.Categorical
}

// NewCategoricalStarter returns a new CategoricalStarter for a grid of
// the given width and height
func NewCategoricalStarter(width, height int, seed uint64) (*CategoricalStarter,
	error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("newCategoricalStarter: invalid dimensions "+
			"%dx%d", width, height)
	}
	source := rand.NewSource(seed)

	// Create the weights for the uniform categorical distribution
	weights := make([]float64, width*height)
	for j := range weights {
		weights[j] = 1.0 / float64(len(weights))
	}

	return &CategoricalStarter{
		width:  width,
		height: height,
		rand:   distuv.NewCategorical(weights, source),
	}, nil
}

// Start returns a starting state. The opponent is resampled until it lies
// on a different cell than the player on grids with more than one cell.
func (c *CategoricalStarter) Start() world.State {
	player := c.cell()
	opponent := c.cell()
	for opponent == player && c.width*c.height > 1 {
		opponent = c.cell()
	}
	return world.State{Player: player, Opponent: opponent}
}

func (c *CategoricalStarter) cell() world.Position {
	i := int(c.rand.Rand())
	return world.Position{X: i % c.width, Y: i / c.width}
}
