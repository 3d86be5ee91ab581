package classifier

import (
	"bytes"
	"encoding/gob"
	"fmt"
	mathrand "math/rand"
	"sync"

	"github.com/patrikeh/go-deep"
	"github.com/patrikeh/go-deep/training"
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/floats"
)

// MLP implements a multi-class multi-layer perceptron classifier with
// ReLU hidden layers and a softmax output layer, trained with SGD on the
// cross-entropy loss.
//
// Fits are reproducible: weight initialization is seeded, and the
// trainer, which shuffles examples with the global math/rand source, is
// run with that source seeded from the classifier's seed. Fits are
// serialized across all MLPs while the global source is in use.
type MLP struct {
	inputs, labels int
	hidden         []int
	learningRate   float64
	epochs         int
	seed           uint64

	network *deep.Neural
}

// trainMu guards the global math/rand source during training
var trainMu sync.Mutex

// Default SGD parameters
const (
	mlpMomentum float64 = 0.9
	mlpWeightSD float64 = 0.1
)

// NewMLP returns a new, unfitted MLP classifier
func NewMLP(inputs, labels int, hidden []int, learningRate float64,
	epochs int, seed uint64) *MLP {
	h := make([]int, len(hidden))
	copy(h, hidden)

	return &MLP{
		inputs:       inputs,
		labels:       labels,
		hidden:       h,
		learningRate: learningRate,
		epochs:       epochs,
		seed:         seed,
	}
}

// newNetwork creates a network whose weights are drawn from a zero-mean
// normal distribution seeded by seed
func (m *MLP) newNetwork(seed uint64) *deep.Neural {
	rng := rand.New(rand.NewSource(seed))

	layout := make([]int, 0, len(m.hidden)+1)
	layout = append(layout, m.hidden...)
	layout = append(layout, m.labels)

	return deep.NewNeural(&deep.Config{
		Inputs:     m.inputs,
		Layout:     layout,
		Activation: deep.ActivationReLU,
		Mode:       deep.ModeMultiClass,
		Loss:       deep.LossCrossEntropy,
		Weight: func() float64 {
			return rng.NormFloat64() * mlpWeightSD
		},
		Bias: true,
	})
}

// Fit implements the Classifier interface
func (m *MLP) Fit(data Dataset) error {
	if err := data.validate(m.inputs, m.labels); err != nil {
		return fmt.Errorf("fit: %w", err)
	}

	examples := make(training.Examples, 0, len(data))
	for _, ex := range data {
		response := make([]float64, m.labels)
		response[ex.Label] = 1.0

		features := make([]float64, len(ex.Features))
		copy(features, ex.Features)
		examples = append(examples, training.Example{
			Input:    features,
			Response: response,
		})
	}

	network := m.newNetwork(m.seed)
	solver := training.NewSGD(m.learningRate, mlpMomentum, 0.0, false)
	trainer := training.NewTrainer(solver, 0)

	trainMu.Lock()
	mathrand.Seed(int64(m.seed))
	trainer.Train(network, examples, nil, m.epochs)
	trainMu.Unlock()

	m.network = network
	return nil
}

// Probabilities returns the predicted probability of each label
func (m *MLP) Probabilities(features []float64) ([]float64, error) {
	if !m.Fitted() {
		return nil, fmt.Errorf("probabilities: %w", ErrNotFitted)
	}
	if len(features) != m.inputs {
		return nil, fmt.Errorf("probabilities: expected %d features, got %d",
			m.inputs, len(features))
	}
	return m.network.Predict(features), nil
}

// Predict implements the Classifier interface. Ties go to the lowest
// label.
func (m *MLP) Predict(features []float64) (int, error) {
	probs, err := m.Probabilities(features)
	if err != nil {
		return 0, fmt.Errorf("predict: %w", err)
	}
	return floats.MaxIdx(probs), nil
}

// Kind implements the Classifier interface
func (m *MLP) Kind() Kind {
	return MLPKind
}

// Fitted implements the Classifier interface
func (m *MLP) Fitted() bool {
	return m.network != nil
}

// mlpState is the gob encoded form of an MLP classifier
type mlpState struct {
	Inputs, Labels int
	Hidden         []int
	LearningRate   float64
	Epochs         int
	Seed           uint64
	Weights        [][][]float64
}

// MarshalBinary implements the encoding.BinaryMarshaler interface
func (m *MLP) MarshalBinary() ([]byte, error) {
	state := mlpState{
		Inputs:       m.inputs,
		Labels:       m.labels,
		Hidden:       m.hidden,
		LearningRate: m.learningRate,
		Epochs:       m.epochs,
		Seed:         m.seed,
	}
	if m.Fitted() {
		state.Weights = m.network.Dump().Weights
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return nil, fmt.Errorf("marshalBinary: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface
func (m *MLP) UnmarshalBinary(data []byte) error {
	var state mlpState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return fmt.Errorf("unmarshalBinary: %w", err)
	}
	if len(state.Weights) != 0 && len(state.Weights) != len(state.Hidden)+1 {
		return fmt.Errorf("unmarshalBinary: have %d weight layers, expected "+
			"%d", len(state.Weights), len(state.Hidden)+1)
	}

	m.inputs, m.labels = state.Inputs, state.Labels
	m.hidden = state.Hidden
	m.learningRate, m.epochs = state.LearningRate, state.Epochs
	m.seed = state.Seed
	m.network = nil

	if len(state.Weights) > 0 {
		network := m.newNetwork(m.seed)
		network.ApplyWeights(state.Weights)
		m.network = network
	}
	return nil
}
