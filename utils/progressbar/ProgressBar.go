// Package progressbar implements functionality of printing a progress
// bar to a terminal
package progressbar

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ProgressBar implements a progress bar that must be manually managed.
// That is, Display must be called whenever an updated progress bar
// should be printed.
type ProgressBar struct {
	out       io.Writer
	width     int
	max       int
	current   int
	startTime time.Time
}

// New returns a new ProgressBar which is width characters wide and
// reaches 100% after max calls to Increment
func New(out io.Writer, width, max int) *ProgressBar {
	return &ProgressBar{
		out:       out,
		width:     width,
		max:       max,
		startTime: time.Now(),
	}
}

// Increment increments the internal progress counter. Each time an
// iteration is performed, Increment should be called.
func (p *ProgressBar) Increment() {
	if p.current < p.max {
		p.current++
	}
}

// Fraction returns the fraction of progress made
func (p *ProgressBar) Fraction() float64 {
	if p.max <= 0 {
		return 1.0
	}
	return float64(p.current) / float64(p.max)
}

// String returns the progress bar without timing information
func (p *ProgressBar) String() string {
	filled := int(p.Fraction() * float64(p.width))
	return fmt.Sprintf("|%s%s| [%.2f%%]", strings.Repeat("█", filled),
		strings.Repeat(" ", p.width-filled), p.Fraction()*100)
}

// Display redraws the progress bar on the current line
func (p *ProgressBar) Display() {
	fmt.Fprintf(p.out, "\r\033[K%v elapsed: %v", p,
		time.Since(p.startTime).Truncate(time.Second))
}

// Done displays the progress bar a final time and moves to a new line
func (p *ProgressBar) Done() {
	p.Display()
	fmt.Fprintln(p.out)
}
