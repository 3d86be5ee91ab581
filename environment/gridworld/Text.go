package gridworld

import (
	"strings"

	"github.com/logrusorgru/aurora"

	"github.com/samuelfneumann/latentgrid/world"
)

// Cell symbols used by Text
const (
	PlayerSymbol   = "P"
	OpponentSymbol = "O"
	TrailSymbol    = "o"
	EmptySymbol    = "."
)

// Text draws the current state of the GridWorld as text, one line per
// row with row y = 0 last. If colour is true, cells are coloured with
// ANSI escape codes.
func (g *GridWorld) Text(colour bool) string {
	au := aurora.NewAurora(colour)
	w, h := g.Dims()

	var b strings.Builder
	for y := h - 1; y >= 0; y-- {
		for x := 0; x < w; x++ {
			if x > 0 {
				b.WriteByte(' ')
			}

			p := world.Position{X: x, Y: y}
			switch p {
			case g.state.Player:
				b.WriteString(au.Bold(au.Blue(PlayerSymbol)).String())
			case g.state.Opponent:
				b.WriteString(au.Bold(au.Red(OpponentSymbol)).String())
			case g.trail:
				b.WriteString(au.Red(TrailSymbol).String())
			default:
				b.WriteString(au.Gray(12, EmptySymbol).String())
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
