package gridworld

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/samuelfneumann/latentgrid/world"
)

// Colours used when rendering
var (
	BackgroundColour = color.RGBA{R: 0x1e, G: 0x1e, B: 0x1e, A: 0xff}
	GridColour       = color.RGBA{R: 0x50, G: 0x50, B: 0x50, A: 0xff}
	PlayerColour     = color.RGBA{R: 0x2b, G: 0x6c, B: 0xd9, A: 0xff}
	OpponentColour   = color.RGBA{R: 0xd9, G: 0x3b, B: 0x2b, A: 0xff}
	TrailColour      = color.RGBA{R: 0x6e, G: 0x2a, B: 0x24, A: 0xff}
	ViewColour       = color.RGBA{R: 0xe8, G: 0xe8, B: 0xe8, A: 0xff}
)

// Render draws the current state of the GridWorld. Row y = 0 is drawn at
// the bottom of the frame. The opponent's previous cell is shaded, and
// the player's view window is outlined. Render never modifies the
// environment.
func (g *GridWorld) Render() image.Image {
	w, h := g.Dims()
	cell := float64(g.config.CellSize)

	dc := gg.NewContext(w*g.config.CellSize, h*g.config.CellSize)
	dc.SetColor(BackgroundColour)
	dc.Clear()

	// Grid lines
	dc.SetColor(GridColour)
	dc.SetLineWidth(1.0)
	for x := 0; x <= w; x++ {
		dc.DrawLine(float64(x)*cell, 0, float64(x)*cell, float64(h)*cell)
	}
	for y := 0; y <= h; y++ {
		dc.DrawLine(0, float64(y)*cell, float64(w)*cell, float64(y)*cell)
	}
	dc.Stroke()

	g.fillCell(dc, g.trail, TrailColour, 0)
	g.fillCell(dc, g.state.Opponent, OpponentColour, cell/8)
	g.fillCell(dc, g.state.Player, PlayerColour, cell/8)

	// Outline the player's view, clipped to the grid
	r := g.config.ViewRadius
	minCorner := world.Position{X: max(g.state.Player.X-r, 0),
		Y: max(g.state.Player.Y-r, 0)}
	maxCorner := world.Position{X: min(g.state.Player.X+r, w-1),
		Y: min(g.state.Player.Y+r, h-1)}
	lo, hi := g.CellBounds(minCorner), g.CellBounds(maxCorner)
	dc.DrawRectangle(float64(lo.Min.X), float64(hi.Min.Y),
		float64(hi.Max.X-lo.Min.X), float64(lo.Max.Y-hi.Min.Y))
	dc.SetColor(ViewColour)
	dc.SetLineWidth(2.0)
	dc.Stroke()

	return dc.Image()
}

// CellBounds returns the pixel rectangle covered by cell p in frames
// returned by Render
func (g *GridWorld) CellBounds(p world.Position) image.Rectangle {
	_, h := g.Dims()
	size := g.config.CellSize
	x0 := p.X * size
	y0 := (h - 1 - p.Y) * size
	return image.Rect(x0, y0, x0+size, y0+size)
}

// fillCell fills cell p, inset by inset pixels on each side
func (g *GridWorld) fillCell(dc *gg.Context, p world.Position, c color.Color,
	inset float64) {
	b := g.CellBounds(p)
	dc.DrawRectangle(float64(b.Min.X)+inset, float64(b.Min.Y)+inset,
		float64(b.Dx())-2*inset, float64(b.Dy())-2*inset)
	dc.SetColor(c)
	dc.Fill()
}
