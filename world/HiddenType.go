package world

import "fmt"

// HiddenType is the latent parameter z which governs the opponent's
// behaviour. It is known to the player during training only.
type HiddenType int

func (z HiddenType) String() string {
	return fmt.Sprintf("z=%d", int(z))
}

// IndexOf returns the index of z in types, or -1 if z is not present
func IndexOf(types []HiddenType, z HiddenType) int {
	for i, t := range types {
		if t == z {
			return i
		}
	}
	return -1
}
