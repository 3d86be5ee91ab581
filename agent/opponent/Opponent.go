// Package opponent implements the opponent policy. The opponent's
// behaviour is selected by a hidden type which the player does not
// observe at evaluation time.
package opponent

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/latentgrid/agent"
	"github.com/samuelfneumann/latentgrid/world"
)

var _ agent.Opponent = (*Opponent)(nil)

var (
	// ErrUnknownType is returned when an opponent is asked to act with
	// a hidden type it has no behaviour for
	ErrUnknownType = errors.New("unknown hidden type")

	// ErrIndistinguishable is returned when two hidden types would act
	// identically in every state, leaving nothing for the player's
	// classifier to detect
	ErrIndistinguishable = errors.New("indistinguishable hidden types")
)

// Behaviors maps hidden types to opponent behaviours
type Behaviors map[world.HiddenType]Behavior

// DefaultBehaviors returns the behaviours of the reference run: type 0
// chases the player and type 1 flees from it
func DefaultBehaviors() Behaviors {
	return Behaviors{0: Chase{}, 1: Evade{}}
}

// Types returns the hidden types with registered behaviours in
// increasing order
func (b Behaviors) Types() []world.HiddenType {
	types := make([]world.HiddenType, 0, len(b))
	for z := range b {
		types = append(types, z)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Opponent implements the opponent policy: with probability ε a uniform
// random action, otherwise the action prescribed by the behaviour of the
// hidden type. Aside from its random number generator an Opponent keeps
// no state between calls.
type Opponent struct {
	width, height int
	behaviors     Behaviors
	rng           *rand.Rand
}

// New creates a new Opponent on a grid of the given width and height.
//
// New returns an error wrapping ErrIndistinguishable if any two hidden
// types prescribe the same action in every state of the grid.
func New(width, height int, behaviors Behaviors, seed uint64) (*Opponent,
	error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("new: invalid dimensions %dx%d", width, height)
	}
	if len(behaviors) == 0 {
		return nil, fmt.Errorf("new: no behaviours given")
	}
	for z, b := range behaviors {
		if b == nil {
			return nil, fmt.Errorf("new: nil behaviour for %v", z)
		}
	}
	if err := distinguishable(width, height, behaviors); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	return &Opponent{
		width:     width,
		height:    height,
		behaviors: behaviors,
		rng:       rand.New(rand.NewSource(seed)),
	}, nil
}

// TakeAction returns the opponent's action in state s given its hidden
// type z and exploration rate epsilon
func (o *Opponent) TakeAction(s world.State, z world.HiddenType,
	epsilon float64) (world.Action, error) {
	b, ok := o.behaviors[z]
	if !ok {
		return 0, fmt.Errorf("takeAction: %w: %v", ErrUnknownType, z)
	}
	if epsilon < 0 || epsilon > 1 {
		return 0, fmt.Errorf("takeAction: epsilon must be in [0, 1], got %v",
			epsilon)
	}
	if err := s.Validate(o.width, o.height); err != nil {
		return 0, fmt.Errorf("takeAction: %w", err)
	}

	if o.rng.Float64() < epsilon {
		return world.Action(o.rng.Intn(world.NumActions)), nil
	}
	return b.Act(s, o.width, o.height), nil
}

// Behavior returns the behaviour of hidden type z
func (o *Opponent) Behavior(z world.HiddenType) (Behavior, bool) {
	b, ok := o.behaviors[z]
	return b, ok
}

// Types returns the hidden types the Opponent can act as, in increasing
// order
func (o *Opponent) Types() []world.HiddenType {
	return o.behaviors.Types()
}

// distinguishable ensures that every pair of hidden types prescribes
// different actions in at least one state with the agents on distinct
// cells
func distinguishable(width, height int, behaviors Behaviors) error {
	types := behaviors.Types()
	for i := 0; i < len(types); i++ {
		for j := i + 1; j < len(types); j++ {
			if !differ(width, height, behaviors[types[i]],
				behaviors[types[j]]) {
				return fmt.Errorf("%w: %v and %v act identically on a %dx%d "+
					"grid", ErrIndistinguishable, types[i], types[j], width,
					height)
			}
		}
	}
	return nil
}

func differ(width, height int, a, b Behavior) bool {
	for k := 0; k < world.NumStates(width, height); k++ {
		s := world.FromKey(world.StateKey(k), width, height)
		if s.Player == s.Opponent {
			continue
		}

		// Compare where the opponent ends up, since two actions that
		// both bump into a wall are not observably different
		next := func(bh Behavior) world.Position {
			return s.Opponent.Move(bh.Act(s, width, height), width, height)
		}
		if next(a) != next(b) {
			return true
		}
	}
	return false
}
