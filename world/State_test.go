package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyIsBijective(t *testing.T) {
	dims := [][2]int{{1, 1}, {1, 3}, {2, 2}, {3, 4}, {5, 5}}

	for _, d := range dims {
		w, h := d[0], d[1]
		seen := make(map[StateKey]State)

		for px := 0; px < w; px++ {
			for py := 0; py < h; py++ {
				for ox := 0; ox < w; ox++ {
					for oy := 0; oy < h; oy++ {
						s := State{Position{px, py}, Position{ox, oy}}
						k := s.Key(w, h)

						prev, ok := seen[k]
						require.False(t, ok, "key %d shared by %v and %v", k,
							prev, s)
						seen[k] = s

						assert.Less(t, int(k), NumStates(w, h))
						assert.Equal(t, s, FromKey(k, w, h))
					}
				}
			}
		}
		assert.Len(t, seen, NumStates(w, h))
	}
}

func TestMoveStaysOnGrid(t *testing.T) {
	p := Position{0, 0}
	assert.Equal(t, p, p.Move(Left, 3, 3))
	assert.Equal(t, p, p.Move(Down, 3, 3))
	assert.Equal(t, Position{1, 0}, p.Move(Right, 3, 3))
	assert.Equal(t, Position{0, 1}, p.Move(Up, 3, 3))
	assert.Equal(t, p, p.Move(Stay, 3, 3))

	corner := Position{2, 2}
	assert.Equal(t, corner, corner.Move(Right, 3, 3))
	assert.Equal(t, corner, corner.Move(Up, 3, 3))
}

func TestActionValidate(t *testing.T) {
	for _, a := range Actions() {
		assert.NoError(t, a.Validate())
	}
	assert.ErrorIs(t, Action(-1).Validate(), ErrInvalidAction)
	assert.ErrorIs(t, Action(NumActions).Validate(), ErrInvalidAction)
}

func TestEgocentric(t *testing.T) {
	s := State{Player: Position{0, 0}, Opponent: Position{1, 0}}
	trail := Position{1, 1}
	im := Egocentric(s, trail, 3, 3, 1)

	require.Equal(t, 3, im.Size)
	require.Len(t, im.Pix, Len(1))

	// Row 0 and column 0 of the window lie off the grid
	for i := 0; i < 3; i++ {
		assert.Equal(t, 1.0, im.At(WallChannel, 0, i))
		assert.Equal(t, 1.0, im.At(WallChannel, i, 0))
	}
	assert.Equal(t, 0.0, im.At(WallChannel, 1, 1))

	// The player sits at the centre (1, 1); the opponent is one to the
	// right and its trail one up and to the right.
	assert.Equal(t, 1.0, im.At(OpponentChannel, 1, 2))
	assert.Equal(t, 1.0, im.At(TrailChannel, 2, 2))
	assert.Equal(t, 0.0, im.At(OpponentChannel, 2, 2))
}
