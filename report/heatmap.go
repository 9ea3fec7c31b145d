package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/Noofbiz/ngramSweep/sweep"
)

// HeatmapMetrics are the panels drawn for every task, left to right.
var HeatmapMetrics = []Metric{ThresholdAccuracy, AboveThreshold}

const (
	panelWidth  = 5 * vg.Inch
	panelHeight = 4 * vg.Inch
	paletteSize = 32
	maxTicks    = 10
)

// nanColor fills cells without a defined value.
var nanColor = color.RGBA{R: 200, G: 200, B: 200, A: 255}

// Heatmaps renders one row per task and one panel per HeatmapMetrics entry
// into a single PNG at path. Every task needs at least two n values and two
// thresholds.
func Heatmaps(path string, rows []sweep.Row) error {
	tasks := Tasks(rows)
	if len(tasks) == 0 {
		return fmt.Errorf("no rows to plot")
	}

	plots := make([][]*plot.Plot, len(tasks))
	for i, task := range tasks {
		plots[i] = make([]*plot.Plot, len(HeatmapMetrics))
		for j, m := range HeatmapMetrics {
			g, err := NewGrid(rows, task, m)
			if err != nil {
				return err
			}
			p, err := heatmapPlot(g)
			if err != nil {
				return fmt.Errorf("task %s %s: %w", task, m, err)
			}
			plots[i][j] = p
		}
	}

	img := vgimg.New(panelWidth*vg.Length(len(HeatmapMetrics)), panelHeight*vg.Length(len(tasks)))
	dc := draw.New(img)
	t := draw.Tiles{
		Rows:      len(tasks),
		Cols:      len(HeatmapMetrics),
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, t, dc)
	for i := range plots {
		for j := range plots[i] {
			plots[i][j].Draw(canvases[i][j])
		}
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write png: %w", err)
	}
	return f.Close()
}

func heatmapPlot(g *Grid) (*plot.Plot, error) {
	c, r := g.Dims()
	if c < 2 || r < 2 {
		return nil, fmt.Errorf("need at least 2 thresholds and 2 n values, have %d x %d", c, r)
	}

	hm := plotter.NewHeatMap(g, palette.Heat(paletteSize, 1))
	hm.NaN = nanColor
	lo, hi := g.Min(), g.Max()
	switch {
	case lo > hi:
		// nothing defined
		lo, hi = 0, 1
	case lo == hi:
		hi = lo + 1
	}
	hm.Min, hm.Max = lo, hi

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Task %s: %s (%s to %s)", g.Task, g.Metric, formatLimit(lo), formatLimit(hi))
	p.X.Label.Text = "confidence threshold"
	p.Y.Label.Text = "n"
	p.X.Tick.Marker = thresholdTicks(g.Thresholds)
	p.Y.Tick.Marker = orderTicks(g.Ns)
	p.Add(hm)
	return p, nil
}

func formatLimit(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// thresholdTicks labels at most maxTicks thresholds, rounded to two
// decimals.
func thresholdTicks(ths []float64) plot.ConstantTicks {
	step := (len(ths) + maxTicks - 1) / maxTicks
	var ticks plot.ConstantTicks
	for i, th := range ths {
		label := ""
		if i%step == 0 {
			label = strconv.FormatFloat(th, 'f', 2, 64)
		}
		ticks = append(ticks, plot.Tick{Value: th, Label: label})
	}
	return ticks
}

func orderTicks(ns []int) plot.ConstantTicks {
	step := (len(ns) + maxTicks - 1) / maxTicks
	var ticks plot.ConstantTicks
	for i, n := range ns {
		label := ""
		if i%step == 0 {
			label = strconv.Itoa(n)
		}
		ticks = append(ticks, plot.Tick{Value: float64(n), Label: label})
	}
	return ticks
}
