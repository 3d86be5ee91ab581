// Package agent defines the interfaces of the agents which act in the
// two-agent grid world.
//
// A Player is composed of a Policy, which chooses actions given the
// opponent's hidden type, a Learner, which updates the values the Policy
// acts on, and an Inferrer, which estimates the hidden type when it is
// not known.
package agent

import "github.com/samuelfneumann/latentgrid/world"

// Record is a single image observation labelled with the hidden type of
// the opponent faced when it was observed
type Record struct {
	Image world.Image
	Type  world.HiddenType
}

// Policy selects the player's actions
type Policy interface {
	// TakeAction selects an action in obs against an opponent of type z,
	// acting uniformly at random with probability epsilon
	TakeAction(obs world.Observation, z world.HiddenType,
		epsilon float64) (world.Action, error)
}

// Learner implements a learning algorithm that defines how the values a
// Policy acts on are updated
type Learner interface {
	// Learn updates the value of taking a in state old against an
	// opponent of type z, which lead to state next and reward
	Learn(reward, discount float64, old, next world.StateKey,
		a world.Action, z world.HiddenType) error

	// LearnTerminal is Learn for transitions into terminal states
	LearnTerminal(reward float64, old world.StateKey, a world.Action,
		z world.HiddenType) error
}

// Inferrer learns to estimate the opponent's hidden type from image
// observations
type Inferrer interface {
	// UpdateData records labelled observations to learn from
	UpdateData(records ...Record) error

	// TrainClassifier fits the estimator on all recorded data
	TrainClassifier() error

	InferType(obs world.Observation) (world.HiddenType, error)

	// InferAndAct selects an action for the inferred hidden type
	InferAndAct(obs world.Observation, epsilon float64) (world.Action,
		world.HiddenType, error)
}

// Player is the learning agent of the grid world
type Player interface {
	Policy
	Learner
	Inferrer

	// Types returns the hidden types the Player can act against
	Types() []world.HiddenType

	// Dims returns the dimensions of the grid the Player acts in
	Dims() (width, height int)

	// Data returns the number of recorded observations
	Data() int
}

// Opponent is the non-learning agent of the grid world whose behaviour
// is governed by a hidden type
type Opponent interface {
	TakeAction(s world.State, z world.HiddenType,
		epsilon float64) (world.Action, error)

	// Types returns the hidden types the Opponent can act as
	Types() []world.HiddenType
}
