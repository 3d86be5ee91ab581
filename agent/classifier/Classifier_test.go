package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

const (
	testInputs = 6
	testLabels = 2
)

// separable returns n examples per label where label l has a large value
// in feature l, perturbed by small noise on every feature
func separable(n int, seed uint64) Dataset {
	rng := rand.New(rand.NewSource(seed))
	data := make(Dataset, 0, n*testLabels)
	for i := 0; i < n; i++ {
		for label := 0; label < testLabels; label++ {
			features := make([]float64, testInputs)
			for j := range features {
				features[j] = rng.Float64() * 0.2
			}
			features[label] += 1.0
			data = append(data, Example{Features: features, Label: label})
		}
	}
	return data
}

func configs() map[string]Config {
	mlp := DefaultMLPConfig()
	mlp.LearningRate = 0.05
	mlp.Epochs = 100
	mlp.Seed = 3

	return map[string]Config{
		"softmax": DefaultConfig(),
		"mlp":     mlp,
	}
}

func TestSeparable(t *testing.T) {
	for name, c := range configs() {
		t.Run(name, func(t *testing.T) {
			model, err := New(c, testInputs, testLabels)
			require.NoError(t, err)
			assert.Equal(t, c.Kind, model.Kind())

			require.NoError(t, model.Fit(separable(50, 1)))
			assert.True(t, model.Fitted())

			acc, err := Accuracy(model, separable(50, 2))
			require.NoError(t, err)
			assert.GreaterOrEqual(t, acc, 0.95)
		})
	}
}

func TestInsufficientData(t *testing.T) {
	for name, c := range configs() {
		t.Run(name, func(t *testing.T) {
			model, err := New(c, testInputs, testLabels)
			require.NoError(t, err)

			assert.ErrorIs(t, model.Fit(nil), ErrInsufficientData)

			var single Dataset
			for _, ex := range separable(10, 1) {
				if ex.Label == 0 {
					single = append(single, ex)
				}
			}
			assert.ErrorIs(t, model.Fit(single), ErrInsufficientData)
			assert.False(t, model.Fitted())

			_, err = model.Predict(make([]float64, testInputs))
			assert.ErrorIs(t, err, ErrNotFitted)
		})
	}
}

func TestFailedFitKeepsModel(t *testing.T) {
	model, err := New(DefaultConfig(), testInputs, testLabels)
	require.NoError(t, err)
	require.NoError(t, model.Fit(separable(20, 1)))

	test := separable(5, 9)
	before := make([]int, len(test))
	for i, ex := range test {
		before[i], err = model.Predict(ex.Features)
		require.NoError(t, err)
	}

	bad := Dataset{{Features: []float64{1}, Label: 0}, {Features: []float64{1}, Label: 1}}
	assert.Error(t, model.Fit(bad))
	assert.ErrorIs(t, model.Fit(nil), ErrInsufficientData)

	for i, ex := range test {
		label, err := model.Predict(ex.Features)
		require.NoError(t, err)
		assert.Equal(t, before[i], label)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	for name, c := range configs() {
		t.Run(name, func(t *testing.T) {
			model, err := New(c, testInputs, testLabels)
			require.NoError(t, err)
			require.NoError(t, model.Fit(separable(30, 4)))

			data, err := model.MarshalBinary()
			require.NoError(t, err)

			restored, err := New(c, testInputs, testLabels)
			require.NoError(t, err)
			require.NoError(t, restored.UnmarshalBinary(data))
			require.True(t, restored.Fitted())

			for _, ex := range separable(20, 5) {
				want, err := model.Predict(ex.Features)
				require.NoError(t, err)
				got, err := restored.Predict(ex.Features)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestSeededFit(t *testing.T) {
	for name, c := range configs() {
		t.Run(name, func(t *testing.T) {
			var fits [][]byte
			for i := 0; i < 2; i++ {
				model, err := New(c, testInputs, testLabels)
				require.NoError(t, err)
				require.NoError(t, model.Fit(separable(30, 2)))

				data, err := model.MarshalBinary()
				require.NoError(t, err)
				fits = append(fits, data)
			}
			assert.Equal(t, fits[0], fits[1])
		})
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.NoError(t, DefaultMLPConfig().Validate())

	bad := []Config{
		{Kind: SoftmaxKind, LearningRate: 0, Epochs: 1},
		{Kind: SoftmaxKind, LearningRate: 0.1, Epochs: 0},
		{Kind: MLPKind, LearningRate: 0.1, Epochs: 1, Hidden: []int{0}},
		{Kind: "Forest", LearningRate: 0.1, Epochs: 1},
	}
	for _, c := range bad {
		assert.Error(t, c.Validate(), "%+v", c)
	}

	_, err := New(DefaultConfig(), 0, 2)
	assert.Error(t, err)
}

func TestDataset(t *testing.T) {
	data := separable(3, 1)
	assert.Equal(t, 2, data.Classes())
	assert.Equal(t, map[int]int{0: 3, 1: 3}, data.Counts())
	assert.NoError(t, data.Check(2))
	assert.NoError(t, data[:1].Check(1))
}
