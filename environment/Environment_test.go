package environment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuelfneumann/latentgrid/timestep"
	"github.com/samuelfneumann/latentgrid/world"
)

func TestStepLimit(t *testing.T) {
	limit := NewStepLimit(3)

	step := timestep.New(timestep.Mid, 0, world.Observation{}, 2)
	assert.False(t, limit.End(&step))
	assert.False(t, step.Last())

	step = timestep.New(timestep.Mid, 0, world.Observation{}, 3)
	assert.True(t, limit.End(&step))
	assert.True(t, step.Last())
	assert.Equal(t, timestep.Timeout, step.EndType())
}

func TestCategoricalStarterDistinctCells(t *testing.T) {
	s, err := NewCategoricalStarter(2, 2, 7)
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		start := s.Start()
		require.True(t, start.InBounds(2, 2))
		require.NotEqual(t, start.Player, start.Opponent)
	}
}

func TestCategoricalStarterSingleCell(t *testing.T) {
	s, err := NewCategoricalStarter(1, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, world.State{}, s.Start())
}

func TestSingleStart(t *testing.T) {
	s, err := NewCornerStart(5, 4)
	require.NoError(t, err)
	assert.Equal(t, world.Position{X: 4, Y: 3}, s.Start().Opponent)

	_, err = NewSingleStart(world.State{Opponent: world.Position{X: 9}}, 5, 5)
	assert.ErrorIs(t, err, world.ErrOutOfBounds)

	_, err = NewSingleStart(world.State{}, 5, 5)
	assert.Error(t, err)

	_, err = NewCornerStart(1, 1)
	assert.NoError(t, err)
}

func TestEnders(t *testing.T) {
	atOrigin := func(s world.State) bool { return s.Player == world.Position{} }
	enders := Enders{
		NewFunctionEnder(atOrigin, timestep.TerminalStateReached),
		NewStepLimit(10),
	}

	step := timestep.New(timestep.Mid, 0, world.Observation{}, 1)
	assert.True(t, enders.End(&step))
	assert.Equal(t, timestep.TerminalStateReached, step.EndType())
}
