package environment

import (
	"github.com/samuelfneumann/latentgrid/timestep"
	"github.com/samuelfneumann/latentgrid/world"
)

// FunctionEnder ends an episode whenever a function of the underlying
// environment state returns true.
type FunctionEnder struct {
	end     func(world.State) bool
	endType timestep.EndType
}

// NewFunctionEnder returns a new FunctionEnder which ends episodes with
// end type endType when f returns true.
func NewFunctionEnder(f func(world.State) bool, endType timestep.EndType) Ender {
	return &FunctionEnder{f, endType}
}

// End determines whether or not the current episode should be ended. If
// it should, End marks the timestep as the last with the appropriate
// ending type.
func (f *FunctionEnder) End(t *timestep.TimeStep) bool {
	if f.end(t.Observation.State) {
		t.SetEnd(f.endType)
		return true
	}
	return false
}

// NewGoalEnder returns an Ender which ends episodes whenever the task's
// goal condition holds
func NewGoalEnder(task Task) Ender {
	return NewFunctionEnder(task.AtGoal, timestep.TerminalStateReached)
}

// Enders combines multiple Enders. The first Ender to end the episode
// determines its end type.
type Enders []Ender

// End implements the Ender interface
func (e Enders) End(t *timestep.TimeStep) bool {
	for _, ender := range e {
		if ender.End(t) {
			return true
		}
	}
	return false
}
