// Package experiment implements the training and evaluation loops which
// pit a player against an opponent of a given hidden type
package experiment

import (
	"fmt"
	"image"

	"github.com/samuelfneumann/latentgrid/experiment/checkpointer"
	"github.com/samuelfneumann/latentgrid/experiment/tracker"
)

// Config represents a configuration of an experiment.
//
// At the start of every training episode the exploration rate is
// multiplied by EpsilonDecay, so that the first episode explores with
// Epsilon * EpsilonDecay. The same exploration rate is used by both the
// player and the opponent. Evaluation uses EvalEpsilon for both.
type Config struct {
	Episodes     int
	EvalEpisodes int
	Discount     float64
	Epsilon      float64
	EpsilonDecay float64
	EvalEpsilon  float64
}

// DefaultConfig returns the configuration of the reference run
func DefaultConfig() Config {
	return Config{
		Episodes:     250,
		EvalEpisodes: 1,
		Discount:     0.7,
		Epsilon:      0.9,
		EpsilonDecay: 0.9,
		EvalEpsilon:  0.0,
	}
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Episodes < 0 || c.EvalEpisodes < 0 {
		return fmt.Errorf("validate: episodes cannot be negative")
	}
	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("validate: discount must be in [0, 1], got %v",
			c.Discount)
	}
	for _, e := range []float64{c.Epsilon, c.EpsilonDecay, c.EvalEpsilon} {
		if e < 0 || e > 1 {
			return fmt.Errorf("validate: exploration rates and decay must "+
				"be in [0, 1], got %v", e)
		}
	}
	return nil
}

// Recorder records the rendered frames of episodes
type Recorder interface {
	Frame(img image.Image)
	EndEpisode(name string) error
}

// Hooks are the optional observers of an experiment
type Hooks struct {
	Trackers      []tracker.Tracker
	Checkpointers []checkpointer.Checkpointer
	Recorder      Recorder
}
