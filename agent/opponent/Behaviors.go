package opponent

import (
	"github.com/samuelfneumann/latentgrid/world"
)

// Behavior is the fixed rule an opponent of some hidden type follows
// when it does not explore
type Behavior interface {
	Act(s world.State, width, height int) world.Action
	String() string
}

// Chase moves the opponent to the cell closest to the player in
// Manhattan distance. Ties go to the lowest action index.
type Chase struct{}

// Act implements the Behavior interface
func (Chase) Act(s world.State, width, height int) world.Action {
	return best(s, width, height, func(d, best int) bool { return d < best })
}

func (Chase) String() string { return "Chase" }

// Evade moves the opponent to the cell furthest from the player in
// Manhattan distance. Ties go to the lowest action index.
type Evade struct{}

// Act implements the Behavior interface
func (Evade) Act(s world.State, width, height int) world.Action {
	return best(s, width, height, func(d, best int) bool { return d > best })
}

func (Evade) String() string { return "Evade" }

// best returns the first action whose resulting distance to the player
// is strictly better than that of every lower-indexed action
func best(s world.State, width, height int,
	better func(d, best int) bool) world.Action {
	actions := world.Actions()
	bestAction := actions[0]
	bestDist := s.Opponent.Move(bestAction, width, height).Manhattan(s.Player)

	for _, a := range actions[1:] {
		d := s.Opponent.Move(a, width, height).Manhattan(s.Player)
		if better(d, bestDist) {
			bestAction, bestDist = a, d
		}
	}
	return bestAction
}
