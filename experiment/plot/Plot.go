// Package plot plots experiment data as HTML charts
package plot

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Series is a named sequence of per-episode values
type Series struct {
	Name   string
	Values []float64
}

// Returns writes an HTML line chart of per-episode returns to path.
// Episodes are numbered from 1, and the x axis spans the longest series.
func Returns(path, title string, series ...Series) error {
	if len(series) == 0 {
		return fmt.Errorf("returns: no series to plot")
	}

	episodes := 0
	for _, s := range series {
		episodes = max(episodes, len(s.Values))
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "episode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "return"}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)

	x := make([]string, episodes)
	for i := range x {
		x[i] = strconv.Itoa(i + 1)
	}
	line.SetXAxis(x)

	for _, s := range series {
		items := make([]opts.LineData, len(s.Values))
		for i, v := range s.Values {
			items[i] = opts.LineData{Value: v}
		}
		line.AddSeries(s.Name, items)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("returns: could not create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("returns: could not create %v: %w", path, err)
	}
	defer file.Close()

	page := components.NewPage()
	page.AddCharts(line)
	if err := page.Render(file); err != nil {
		return fmt.Errorf("returns: could not render chart: %w", err)
	}
	return file.Close()
}
