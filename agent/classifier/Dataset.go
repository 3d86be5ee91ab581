package classifier

import (
	"fmt"
)

// Example is a single labelled feature vector
type Example struct {
	Features []float64
	Label    int
}

// Dataset is a collection of labelled examples
type Dataset []Example

// Classes returns the number of distinct labels in the dataset
func (d Dataset) Classes() int {
	seen := make(map[int]struct{})
	for _, ex := range d {
		seen[ex.Label] = struct{}{}
	}
	return len(seen)
}

// Counts returns the number of examples of each label
func (d Dataset) Counts() map[int]int {
	counts := make(map[int]int)
	for _, ex := range d {
		counts[ex.Label]++
	}
	return counts
}

// Check returns an error wrapping ErrInsufficientData if the dataset is
// empty, or holds a single class when labels > 1
func (d Dataset) Check(labels int) error {
	if len(d) == 0 {
		return fmt.Errorf("check: %w: no examples", ErrInsufficientData)
	}
	if labels > 1 && d.Classes() < 2 {
		return fmt.Errorf("check: %w: %d examples of a single class with %d "+
			"classes configured", ErrInsufficientData, len(d), labels)
	}
	return nil
}

// validate ensures every example has the right shape and a label in
// [0, labels)
func (d Dataset) validate(inputs, labels int) error {
	if err := d.Check(labels); err != nil {
		return err
	}
	for i, ex := range d {
		if len(ex.Features) != inputs {
			return fmt.Errorf("example %d has %d features, expected %d", i,
				len(ex.Features), inputs)
		}
		if ex.Label < 0 || ex.Label >= labels {
			return fmt.Errorf("example %d has label %d outside [0, %d)", i,
				ex.Label, labels)
		}
	}
	return nil
}
