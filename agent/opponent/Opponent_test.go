package opponent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuelfneumann/latentgrid/world"
)

// stayer never moves
type stayer struct{}

func (stayer) Act(world.State, int, int) world.Action { return world.Stay }
func (stayer) String() string                         { return "Stay" }

func TestChaseAndEvade(t *testing.T) {
	s := world.State{
		Player:   world.Position{X: 0, Y: 0},
		Opponent: world.Position{X: 2, Y: 2},
	}

	// Left and Down both close the distance; Left has the lower index
	assert.Equal(t, world.Left, Chase{}.Act(s, 5, 5))

	// Right and Up both open the distance; Right has the lower index
	assert.Equal(t, world.Right, Evade{}.Act(s, 5, 5))

	// In the far corner the evader has nowhere to go
	corner := world.State{
		Player:   world.Position{X: 0, Y: 0},
		Opponent: world.Position{X: 4, Y: 4},
	}
	assert.Equal(t, world.Stay, Evade{}.Act(corner, 5, 5))
}

func TestTakeActionGreedy(t *testing.T) {
	o, err := New(5, 5, DefaultBehaviors(), 1)
	require.NoError(t, err)

	s := world.State{
		Player:   world.Position{X: 0, Y: 0},
		Opponent: world.Position{X: 2, Y: 2},
	}
	for i := 0; i < 50; i++ {
		a, err := o.TakeAction(s, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, world.Left, a)

		a, err = o.TakeAction(s, 1, 0)
		require.NoError(t, err)
		assert.Equal(t, world.Right, a)
	}
}

func TestTakeActionExplores(t *testing.T) {
	o, err := New(5, 5, DefaultBehaviors(), 3)
	require.NoError(t, err)

	s := world.State{
		Player:   world.Position{X: 0, Y: 0},
		Opponent: world.Position{X: 2, Y: 2},
	}
	counts := make(map[world.Action]int)
	for i := 0; i < 1000; i++ {
		a, err := o.TakeAction(s, 0, 1.0)
		require.NoError(t, err)
		require.True(t, a.Valid())
		counts[a]++
	}
	assert.Len(t, counts, world.NumActions)
}

func TestTakeActionSeeded(t *testing.T) {
	s := world.State{
		Player:   world.Position{X: 1, Y: 0},
		Opponent: world.Position{X: 3, Y: 2},
	}
	run := func() []world.Action {
		o, err := New(5, 5, DefaultBehaviors(), 42)
		require.NoError(t, err)

		actions := make([]world.Action, 100)
		for i := range actions {
			actions[i], err = o.TakeAction(s, world.HiddenType(i%2), 0.5)
			require.NoError(t, err)
		}
		return actions
	}
	assert.Equal(t, run(), run())
}

func TestTakeActionErrors(t *testing.T) {
	o, err := New(3, 3, DefaultBehaviors(), 1)
	require.NoError(t, err)

	s := world.State{Opponent: world.Position{X: 2, Y: 2}}
	_, err = o.TakeAction(s, 5, 0)
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = o.TakeAction(s, 0, 1.5)
	assert.Error(t, err)

	_, err = o.TakeAction(world.State{Opponent: world.Position{X: 3}}, 0, 0)
	assert.ErrorIs(t, err, world.ErrOutOfBounds)
}

func TestNewRejectsIndistinguishableTypes(t *testing.T) {
	_, err := New(5, 5, Behaviors{0: Chase{}, 1: Chase{}}, 1)
	assert.ErrorIs(t, err, ErrIndistinguishable)

	_, err = New(1, 1, DefaultBehaviors(), 1)
	assert.ErrorIs(t, err, ErrIndistinguishable)

	// Any finite enumeration of distinguishable types is allowed
	o, err := New(4, 4, Behaviors{0: Chase{}, 1: Evade{}, 7: stayer{}}, 1)
	require.NoError(t, err)
	b, ok := o.Behavior(7)
	assert.True(t, ok)
	assert.Equal(t, "Stay", b.String())
	assert.Equal(t, []world.HiddenType{0, 1, 7}, o.Types())

	_, err = New(4, 4, Behaviors{}, 1)
	assert.Error(t, err)
}

func TestTypes(t *testing.T) {
	b := Behaviors{3: Chase{}, 0: Evade{}, 1: stayer{}}
	assert.Equal(t, []world.HiddenType{0, 1, 3}, b.Types())
}
