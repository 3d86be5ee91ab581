package player

import (
	"fmt"

	"github.com/samuelfneumann/latentgrid/world"
)

// Key indexes a single action value
type Key struct {
	State  world.StateKey
	Action world.Action
	Type   world.HiddenType
}

// ValueTable stores tabular action values keyed by state, action, and
// hidden type. Entries which have never been set have value 0.
//
// Only the Player owning the table may change its values.
type ValueTable struct {
	values map[Key]float64
}

// NewValueTable returns a new, empty ValueTable
func NewValueTable() *ValueTable {
	return &ValueTable{values: make(map[Key]float64)}
}

// Get returns the value of taking action a in state s against an
// opponent of type z
func (v *ValueTable) Get(s world.StateKey, a world.Action,
	z world.HiddenType) float64 {
	return v.values[Key{s, a, z}]
}

// Values returns the values of all actions in state s against an
// opponent of type z, indexed by action
func (v *ValueTable) Values(s world.StateKey, z world.HiddenType) []float64 {
	values := make([]float64, world.NumActions)
	for _, a := range world.Actions() {
		values[a] = v.Get(s, a, z)
	}
	return values
}

// Max returns the greedy action in state s against an opponent of type
// z and its value. Ties are broken in favour of the lowest action.
func (v *ValueTable) Max(s world.StateKey, z world.HiddenType) (world.Action,
	float64) {
	best := world.Action(0)
	bestValue := v.Get(s, best, z)
	for _, a := range world.Actions()[1:] {
		if value := v.Get(s, a, z); value > bestValue {
			best, bestValue = a, value
		}
	}
	return best, bestValue
}

// Len returns the number of entries which have been set
func (v *ValueTable) Len() int {
	return len(v.values)
}

func (v *ValueTable) String() string {
	return fmt.Sprintf("ValueTable | Entries: %d", v.Len())
}

func (v *ValueTable) set(k Key, value float64) {
	v.values[k] = value
}
