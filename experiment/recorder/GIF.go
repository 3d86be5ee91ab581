// Package recorder records rendered episodes as animated GIFs
package recorder

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"
	"path/filepath"
)

// DefaultDelay is the delay between frames in 100ths of a second
const DefaultDelay int = 33

// GIF collects the frames of an episode and writes them to
// <dir>/<name>.gif when the episode ends
type GIF struct {
	dir    string
	delay  int
	frames []*image.Paletted
}

// NewGIF returns a new GIF recorder writing into dir. The directory is
// created if it does not exist.
func NewGIF(dir string, delay int) (*GIF, error) {
	if delay < 0 {
		return nil, fmt.Errorf("newGIF: delay cannot be negative, got %d",
			delay)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("newGIF: could not create directory: %w", err)
	}
	return &GIF{dir: dir, delay: delay}, nil
}

// Frame appends a rendered frame to the current episode
func (g *GIF) Frame(img image.Image) {
	b := img.Bounds()
	p := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.Plan9)
	draw.FloydSteinberg.Draw(p, p.Bounds(), img, b.Min)
	g.frames = append(g.frames, p)
}

// Frames returns the number of frames recorded in the current episode
func (g *GIF) Frames() int {
	return len(g.frames)
}

// EndEpisode writes the frames of the current episode to
// <dir>/<name>.gif and starts a new episode. Episodes without frames
// are not written.
func (g *GIF) EndEpisode(name string) error {
	frames := g.frames
	g.frames = nil
	if len(frames) == 0 {
		return nil
	}

	anim := &gif.GIF{
		Image: frames,
		Delay: make([]int, len(frames)),
	}
	for i := range anim.Delay {
		anim.Delay[i] = g.delay
	}

	path := filepath.Join(g.dir, name+".gif")
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("endEpisode: could not create %v: %w", path, err)
	}
	defer file.Close()

	if err := gif.EncodeAll(file, anim); err != nil {
		return fmt.Errorf("endEpisode: could not encode %v: %w", path, err)
	}
	return file.Close()
}
