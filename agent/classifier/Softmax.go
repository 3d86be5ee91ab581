package classifier

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Softmax implements multinomial logistic regression trained by full
// batch gradient descent on the cross-entropy loss. Weights are
// initialized to zero, so fitting is deterministic.
type Softmax struct {
	inputs, labels int
	learningRate   float64
	epochs         int

	// weights has one row per label; the last column is the bias
	weights *mat.Dense
}

// NewSoftmax returns a new, unfitted Softmax classifier
func NewSoftmax(inputs, labels int, learningRate float64,
	epochs int) *Softmax {
	return &Softmax{
		inputs:       inputs,
		labels:       labels,
		learningRate: learningRate,
		epochs:       epochs,
	}
}

// Fit implements the Classifier interface
func (s *Softmax) Fit(data Dataset) error {
	if err := data.validate(s.inputs, s.labels); err != nil {
		return fmt.Errorf("fit: %w", err)
	}

	n := len(data)
	cols := s.inputs + 1

	// Design matrix with a trailing bias column, and one-hot targets
	x := mat.NewDense(n, cols, nil)
	y := mat.NewDense(n, s.labels, nil)
	for i, ex := range data {
		row := x.RawRowView(i)
		copy(row, ex.Features)
		row[s.inputs] = 1.0
		y.Set(i, ex.Label, 1.0)
	}

	weights := mat.NewDense(s.labels, cols, nil)
	probs := mat.NewDense(n, s.labels, nil)
	grad := mat.NewDense(s.labels, cols, nil)
	scale := s.learningRate / float64(n)

	for e := 0; e < s.epochs; e++ {
		probs.Mul(x, weights.T())
		for i := 0; i < n; i++ {
			softmax(probs.RawRowView(i))
		}

		// ∇W = (P - Y)ᵀ X / n
		probs.Sub(probs, y)
		grad.Mul(probs.T(), x)
		grad.Scale(scale, grad)
		weights.Sub(weights, grad)
	}

	s.weights = weights
	return nil
}

// Probabilities returns the predicted probability of each label
func (s *Softmax) Probabilities(features []float64) ([]float64, error) {
	if !s.Fitted() {
		return nil, fmt.Errorf("probabilities: %w", ErrNotFitted)
	}
	if len(features) != s.inputs {
		return nil, fmt.Errorf("probabilities: expected %d features, got %d",
			s.inputs, len(features))
	}

	x := make([]float64, s.inputs+1)
	copy(x, features)
	x[s.inputs] = 1.0

	logits := mat.NewVecDense(s.labels, nil)
	logits.MulVec(s.weights, mat.NewVecDense(len(x), x))

	probs := mat.Col(nil, 0, logits)
	softmax(probs)
	return probs, nil
}

// Predict implements the Classifier interface. Ties go to the lowest
// label.
func (s *Softmax) Predict(features []float64) (int, error) {
	probs, err := s.Probabilities(features)
	if err != nil {
		return 0, fmt.Errorf("predict: %w", err)
	}
	return floats.MaxIdx(probs), nil
}

// Kind implements the Classifier interface
func (s *Softmax) Kind() Kind {
	return SoftmaxKind
}

// Fitted implements the Classifier interface
func (s *Softmax) Fitted() bool {
	return s.weights != nil
}

// softmaxState is the gob encoded form of a Softmax classifier
type softmaxState struct {
	Inputs, Labels int
	LearningRate   float64
	Epochs         int
	Weights        []byte
}

// MarshalBinary implements the encoding.BinaryMarshaler interface
func (s *Softmax) MarshalBinary() ([]byte, error) {
	state := softmaxState{
		Inputs:       s.inputs,
		Labels:       s.labels,
		LearningRate: s.learningRate,
		Epochs:       s.epochs,
	}
	if s.Fitted() {
		w, err := s.weights.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("marshalBinary: %w", err)
		}
		state.Weights = w
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return nil, fmt.Errorf("marshalBinary: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface
func (s *Softmax) UnmarshalBinary(data []byte) error {
	var state softmaxState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return fmt.Errorf("unmarshalBinary: %w", err)
	}

	var weights *mat.Dense
	if len(state.Weights) > 0 {
		weights = &mat.Dense{}
		if err := weights.UnmarshalBinary(state.Weights); err != nil {
			return fmt.Errorf("unmarshalBinary: %w", err)
		}
		if r, c := weights.Dims(); r != state.Labels || c != state.Inputs+1 {
			return fmt.Errorf("unmarshalBinary: weights have shape (%d, %d), "+
				"expected (%d, %d)", r, c, state.Labels, state.Inputs+1)
		}
	}

	s.inputs, s.labels = state.Inputs, state.Labels
	s.learningRate, s.epochs = state.LearningRate, state.Epochs
	s.weights = weights
	return nil
}

// softmax replaces logits by their softmax in place
func softmax(logits []float64) {
	floats.AddConst(-floats.Max(logits), logits)
	for i, v := range logits {
		logits[i] = math.Exp(v)
	}
	floats.Scale(1/floats.Sum(logits), logits)
}
