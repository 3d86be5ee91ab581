package plot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReturns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots", "returns.html")
	err := Returns(path, "Training returns",
		Series{Name: "z=0", Values: []float64{1, 0.5, 2}},
		Series{Name: "z=1", Values: []float64{-1, 0}},
	)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Training returns")
	assert.Contains(t, string(data), "z=1")

	assert.Error(t, Returns(path, "empty"))
}
