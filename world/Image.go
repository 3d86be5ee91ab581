package world

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Image channels
const (
	WallChannel int = iota
	OpponentChannel
	TrailChannel
	NumChannels
)

// Image is a partial, egocentric view of the grid centred on the player.
// Pixels are stored channel-major: Pix[c*Size*Size + row*Size + col],
// where row 0 is the bottom of the view window.
type Image struct {
	Size int // side length of the view window, 2*radius+1
	Pix  []float64
}

// NewImage returns a zero image for a view radius
func NewImage(radius int) Image {
	size := 2*radius + 1
	return Image{Size: size, Pix: make([]float64, NumChannels*size*size)}
}

// Len returns the number of pixels in an image with the given view radius
func Len(radius int) int {
	size := 2*radius + 1
	return NumChannels * size * size
}

// At returns the value of channel c at (row, col) of the view window
func (im Image) At(c, row, col int) float64 {
	return im.Pix[im.offset(c, row, col)]
}

func (im Image) set(c, row, col int, v float64) {
	im.Pix[im.offset(c, row, col)] = v
}

func (im Image) offset(c, row, col int) int {
	return c*im.Size*im.Size + row*im.Size + col
}

// Flatten returns a copy of the image's pixels
func (im Image) Flatten() []float64 {
	out := make([]float64, len(im.Pix))
	copy(out, im.Pix)
	return out
}

// Vector returns the image as a gonum vector which shares no memory with
// the image
func (im Image) Vector() *mat.VecDense {
	return mat.NewVecDense(len(im.Pix), im.Flatten())
}

// Equal returns whether two images have the same shape and pixels
func (im Image) Equal(other Image) bool {
	if im.Size != other.Size || len(im.Pix) != len(other.Pix) {
		return false
	}
	for i := range im.Pix {
		if im.Pix[i] != other.Pix[i] {
			return false
		}
	}
	return true
}

// Egocentric renders the view window of the given radius around the
// player. Cells off the grid are marked in the wall channel, the
// opponent's cell in the opponent channel, and the opponent's previous
// cell in the trail channel. Nothing about the hidden type is encoded
// except through where the opponent is and where it came from.
func Egocentric(s State, trail Position, width, height, radius int) Image {
	im := NewImage(radius)
	for row := 0; row < im.Size; row++ {
		for col := 0; col < im.Size; col++ {
			cell := Position{
				X: s.Player.X + col - radius,
				Y: s.Player.Y + row - radius,
			}

			if !cell.InBounds(width, height) {
				im.set(WallChannel, row, col, 1.0)
				continue
			}
			if cell == s.Opponent {
				im.set(OpponentChannel, row, col, 1.0)
			}
			if cell == trail {
				im.set(TrailChannel, row, col, 1.0)
			}
		}
	}
	return im
}

// Observation is what an environment emits on each tick: the state key
// used for tabular lookups, the underlying state, and the player's
// partial image
type Observation struct {
	Key   StateKey
	State State
	Image Image
}

func (o Observation) String() string {
	return fmt.Sprintf("Observation | Key: %d  |  %v", o.Key, o.State)
}
