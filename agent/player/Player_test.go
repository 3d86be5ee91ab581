package player

import (
	"encoding/gob"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/latentgrid/agent"
	"github.com/samuelfneumann/latentgrid/agent/classifier"
	"github.com/samuelfneumann/latentgrid/world"
)

const (
	width, height = 5, 5
	radius        = 2
)

func newPlayer(t *testing.T) *Player {
	t.Helper()
	p, err := New(DefaultConfig(), width, height, radius)
	require.NoError(t, err)
	return p
}

func observe(s world.State, trail world.Position) world.Observation {
	return world.Observation{
		Key:   s.Key(width, height),
		State: s,
		Image: world.Egocentric(s, trail, width, height, radius),
	}
}

func key(px, py, ox, oy int) world.StateKey {
	return world.State{
		Player:   world.Position{X: px, Y: py},
		Opponent: world.Position{X: ox, Y: oy},
	}.Key(width, height)
}

// records returns images in which type 0 opponents sit to the right of
// the player and type 1 opponents sit above it
func records() []agent.Record {
	var out []agent.Record
	for x := 0; x < width-1; x++ {
		for y := 0; y < height-1; y++ {
			p := world.Position{X: x, Y: y}
			right := world.State{Player: p, Opponent: world.Position{X: x + 1, Y: y}}
			above := world.State{Player: p, Opponent: world.Position{X: x, Y: y + 1}}
			out = append(out,
				agent.Record{Image: observe(right, right.Opponent).Image, Type: 0},
				agent.Record{Image: observe(above, above.Opponent).Image, Type: 1},
			)
		}
	}
	return out
}

func TestLearn(t *testing.T) {
	p := newPlayer(t)
	k0, k1, k2 := key(0, 0, 4, 4), key(1, 0, 4, 4), key(1, 1, 4, 4)

	require.NoError(t, p.Learn(1, 0.7, k0, k1, world.Right, 0))
	assert.InDelta(t, 0.1, p.Table().Get(k0, world.Right, 0), 1e-12)

	// Other types and actions are untouched
	assert.Equal(t, 0.0, p.Table().Get(k0, world.Right, 1))
	assert.Equal(t, 0.0, p.Table().Get(k0, world.Left, 0))

	// Bootstrapping from the next state's greedy value
	require.NoError(t, p.Learn(1, 0.7, k1, k2, world.Up, 0))
	require.NoError(t, p.Learn(0, 0.7, k0, k1, world.Stay, 0))
	assert.InDelta(t, 0.007, p.Table().Get(k0, world.Stay, 0), 1e-12)

	require.NoError(t, p.Learn(1, 0.7, k0, k1, world.Right, 0))
	assert.InDelta(t, 0.197, p.Table().Get(k0, world.Right, 0), 1e-12)

	require.NoError(t, p.LearnTerminal(-1, k2, world.Left, 1))
	assert.InDelta(t, -0.1, p.Table().Get(k2, world.Left, 1), 1e-12)
	assert.Equal(t, 4, p.Table().Len())
}

func TestLearnValidates(t *testing.T) {
	p := newPlayer(t)
	k := key(0, 0, 4, 4)
	outside := world.StateKey(world.NumStates(width, height))

	assert.ErrorIs(t, p.Learn(1, 0.7, k, k, world.Action(9), 0),
		world.ErrInvalidAction)
	assert.ErrorIs(t, p.Learn(1, 0.7, k, k, world.Stay, 4), ErrUnknownType)
	assert.ErrorIs(t, p.Learn(1, 0.7, outside, k, world.Stay, 0),
		world.ErrOutOfBounds)
	assert.ErrorIs(t, p.Learn(1, 0.7, k, outside, world.Stay, 0),
		world.ErrOutOfBounds)
	assert.Error(t, p.Learn(1, 1.5, k, k, world.Stay, 0))

	// Keys beyond the range of int are still out of bounds
	huge := world.StateKey(math.MaxUint64)
	assert.ErrorIs(t, p.Learn(1, 0.7, huge, k, world.Stay, 0),
		world.ErrOutOfBounds)
	assert.ErrorIs(t, p.Learn(1, 0.7, k, huge, world.Stay, 0),
		world.ErrOutOfBounds)
	assert.ErrorIs(t, p.LearnTerminal(1, huge, world.Stay, 0),
		world.ErrOutOfBounds)
	_, err := p.TakeAction(world.Observation{Key: huge}, 0, 0)
	assert.ErrorIs(t, err, world.ErrOutOfBounds)
	assert.Equal(t, 0, p.Table().Len())
}

func TestTakeAction(t *testing.T) {
	p := newPlayer(t)
	s := world.State{Player: world.Position{X: 2, Y: 2},
		Opponent: world.Position{X: 0, Y: 0}}
	obs := observe(s, s.Opponent)

	// Ties go to the lowest action
	a, err := p.TakeAction(obs, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, world.Stay, a)

	require.NoError(t, p.Learn(1, 0.7, obs.Key, obs.Key, world.Down, 0))
	for i := 0; i < 20; i++ {
		a, err = p.TakeAction(obs, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, world.Down, a)
	}

	// Values are separate per type
	a, err = p.TakeAction(obs, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, world.Stay, a)

	// Fully random actions cover the action set
	seen := make(map[world.Action]int)
	for i := 0; i < 1000; i++ {
		a, err = p.TakeAction(obs, 0, 1)
		require.NoError(t, err)
		require.True(t, a.Valid())
		seen[a]++
	}
	assert.Len(t, seen, world.NumActions)

	_, err = p.TakeAction(obs, 3, 0)
	assert.ErrorIs(t, err, ErrUnknownType)
	_, err = p.TakeAction(obs, 0, 1.1)
	assert.Error(t, err)
	obs.Key = world.StateKey(world.NumStates(width, height))
	_, err = p.TakeAction(obs, 0, 0)
	assert.ErrorIs(t, err, world.ErrOutOfBounds)
}

func TestTrainClassifier(t *testing.T) {
	p := newPlayer(t)
	data := records()
	obs := world.Observation{Image: data[0].Image}

	_, err := p.InferType(obs)
	assert.ErrorIs(t, err, ErrNoClassifier)
	_, _, err = p.InferAndAct(obs, 0)
	assert.ErrorIs(t, err, ErrNoClassifier)

	assert.ErrorIs(t, p.TrainClassifier(), classifier.ErrInsufficientData)

	// A single type is not enough to train on
	require.NoError(t, p.UpdateData(data[0], data[2]))
	assert.ErrorIs(t, p.TrainClassifier(), classifier.ErrInsufficientData)
	assert.Nil(t, p.Classifier())

	// Invalid records are rejected as a whole
	bad := agent.Record{Image: world.NewImage(radius + 1), Type: 1}
	assert.Error(t, p.UpdateData(data[1], bad))
	assert.ErrorIs(t, p.UpdateData(agent.Record{Image: data[1].Image, Type: 7}),
		ErrUnknownType)
	assert.Equal(t, 2, p.Data())

	require.NoError(t, p.UpdateData(data...))
	require.NoError(t, p.TrainClassifier())
	require.NotNil(t, p.Classifier())

	for _, r := range data {
		z, err := p.InferType(world.Observation{Image: r.Image})
		require.NoError(t, err)
		assert.Equal(t, r.Type, z)
	}
}

func TestSaveLoad(t *testing.T) {
	p := newPlayer(t)
	rng := rand.New(rand.NewSource(1))
	n := world.NumStates(width, height)

	for i := 0; i < 500; i++ {
		old := world.StateKey(rng.Intn(n))
		next := world.StateKey(rng.Intn(n))
		a := world.Action(rng.Intn(world.NumActions))
		z := world.HiddenType(rng.Intn(2))
		require.NoError(t, p.Learn(rng.NormFloat64(), 0.7, old, next, a, z))
	}
	require.NoError(t, p.UpdateData(records()...))
	require.NoError(t, p.TrainClassifier())

	path := filepath.Join(t.TempDir(), "player.bin")
	require.NoError(t, p.Save(path))

	loaded, err := Load(path, width, height)
	require.NoError(t, err)
	assert.Equal(t, p.Table().Len(), loaded.Table().Len())
	assert.Equal(t, p.Data(), loaded.Data())
	assert.Equal(t, p.Config(), loaded.Config())

	checked := 0
	for k := 0; k < n; k++ {
		s := world.FromKey(world.StateKey(k), width, height)
		if s.Player == s.Opponent {
			continue
		}
		obs := observe(s, s.Opponent)
		for _, z := range []world.HiddenType{0, 1} {
			want, err := p.TakeAction(obs, z, 0)
			require.NoError(t, err)
			got, err := loaded.TakeAction(obs, z, 0)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}

		want, wantZ, err := p.InferAndAct(obs, 0)
		require.NoError(t, err)
		got, gotZ, err := loaded.InferAndAct(obs, 0)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, wantZ, gotZ)
		checked++
	}
	assert.GreaterOrEqual(t, checked, 20)

	_, err = Load(path, width+1, height)
	assert.Error(t, err)
	_, err = Load(filepath.Join(t.TempDir(), "missing.bin"), width, height)
	assert.Error(t, err)
}

func TestLoadRejectsOutOfBoundsKeys(t *testing.T) {
	p := newPlayer(t)
	path := filepath.Join(t.TempDir(), "player.bin")

	snap := snapshot{
		Config:     p.Config(),
		Width:      width,
		Height:     height,
		ViewRadius: radius,
		Entries: []entry{{
			Key:   Key{State: world.StateKey(math.MaxUint64), Action: world.Stay},
			Value: 1,
		}},
	}
	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, gob.NewEncoder(file).Encode(snap))
	require.NoError(t, file.Close())

	_, err = Load(path, width, height)
	assert.ErrorIs(t, err, world.ErrOutOfBounds)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := []func(*Config){
		func(c *Config) { c.LearningRate = 0 },
		func(c *Config) { c.LearningRate = 1.5 },
		func(c *Config) { c.Types = nil },
		func(c *Config) { c.Types = []world.HiddenType{0, 0} },
		func(c *Config) { c.Classifier.Kind = "Tree" },
	}
	for _, modify := range bad {
		c := DefaultConfig()
		modify(&c)
		assert.Error(t, c.Validate())
	}

	_, err := New(DefaultConfig(), 0, 5, radius)
	assert.Error(t, err)
	_, err = New(DefaultConfig(), 5, 5, -1)
	assert.Error(t, err)
}
