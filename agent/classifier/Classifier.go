// Package classifier implements supervised classifiers which map a
// partial image observation to an estimate of the opponent's hidden type.
//
// Classifiers are swappable: the player agent only depends on the
// Classifier interface, and the concrete algorithm is chosen through a
// Config.
package classifier

import (
	"encoding"
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData is returned when a classifier is fit on no
	// data, or on data containing a single class when more than one
	// class is configured
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNotFitted is returned when predicting with a classifier which
	// has not been fit
	ErrNotFitted = errors.New("classifier not fitted")
)

// Kind is the type of a classifier
type Kind string

const (
	SoftmaxKind Kind = "Softmax"
	MLPKind     Kind = "MLP"
)

// Classifier maps feature vectors to one of a fixed number of labels.
// Labels are the integers [0, labels).
type Classifier interface {
	// Fit fits the classifier on data, replacing any previous fit. If
	// Fit fails, the previous fit remains valid.
	Fit(data Dataset) error

	// Predict returns the predicted label of features
	Predict(features []float64) (int, error)

	// Kind returns the type of the classifier
	Kind() Kind

	// Fitted reports whether the classifier can predict
	Fitted() bool

	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// Config represents a configuration for creating a classifier
type Config struct {
	Kind         Kind
	LearningRate float64
	Epochs       int

	// Hidden is the number of units in each hidden layer of an MLP.
	// It is ignored by other kinds.
	Hidden []int

	// Seed seeds weight initialization of an MLP
	Seed uint64
}

// DefaultConfig returns the default classifier configuration
func DefaultConfig() Config {
	return Config{
		Kind:         SoftmaxKind,
		LearningRate: 0.5,
		Epochs:       300,
	}
}

// DefaultMLPConfig returns a default configuration for MLP classifiers
func DefaultMLPConfig() Config {
	return Config{
		Kind:         MLPKind,
		LearningRate: 0.01,
		Epochs:       50,
		Hidden:       []int{32},
	}
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.LearningRate <= 0 {
		return fmt.Errorf("validate: learning rate must be positive, got %v",
			c.LearningRate)
	}
	if c.Epochs < 1 {
		return fmt.Errorf("validate: epochs must be positive, got %d",
			c.Epochs)
	}
	switch c.Kind {
	case SoftmaxKind:
		return nil

	case MLPKind:
		for _, h := range c.Hidden {
			if h < 1 {
				return fmt.Errorf("validate: hidden layers must have "+
					"positive width, got %v", c.Hidden)
			}
		}
		return nil
	}
	return fmt.Errorf("validate: no such classifier %q", c.Kind)
}

// New returns an unfitted classifier described by c, for feature vectors
// of length inputs and the given number of labels
func New(c Config, inputs, labels int) (Classifier, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	if inputs < 1 || labels < 1 {
		return nil, fmt.Errorf("new: need at least one input and label, "+
			"got %d inputs and %d labels", inputs, labels)
	}

	switch c.Kind {
	case MLPKind:
		return NewMLP(inputs, labels, c.Hidden, c.LearningRate, c.Epochs,
			c.Seed), nil
	default:
		return NewSoftmax(inputs, labels, c.LearningRate, c.Epochs), nil
	}
}

// Accuracy returns the fraction of data that c labels correctly
func Accuracy(c Classifier, data Dataset) (float64, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("accuracy: %w", ErrInsufficientData)
	}

	correct := 0
	for _, ex := range data {
		label, err := c.Predict(ex.Features)
		if err != nil {
			return 0, fmt.Errorf("accuracy: %w", err)
		}
		if label == ex.Label {
			correct++
		}
	}
	return float64(correct) / float64(len(data)), nil
}
