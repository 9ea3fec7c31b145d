package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/gomlx/gomlx/pkg/core/tensors"

	"github.com/Noofbiz/ngramSweep/sweep"
)

// Metric selects the row value a Grid holds.
type Metric int

const (
	ThresholdAccuracy Metric = iota
	AboveThreshold
	Accuracy
)

func (m Metric) String() string {
	switch m {
	case ThresholdAccuracy:
		return "thresholded accuracy"
	case AboveThreshold:
		return "predictions above threshold"
	case Accuracy:
		return "accuracy"
	}
	return fmt.Sprintf("metric(%d)", int(m))
}

func (m Metric) value(r sweep.Row) float64 {
	switch m {
	case AboveThreshold:
		return float64(r.AboveThreshold)
	case Accuracy:
		return r.Accuracy
	}
	return r.ThresholdAccuracy
}

// Grid is one metric of one task laid out over n (rows) and confidence
// threshold (columns). Values is row-major; cells with no row are NaN.
//
// Grid implements plotter.GridXYZ with thresholds on X and n on Y.
type Grid struct {
	Task       string
	Metric     Metric
	Ns         []int
	Thresholds []float64
	Values     []float64
}

// NewGrid pivots the rows of task into a Grid. It returns an error when no
// row belongs to task.
func NewGrid(rows []sweep.Row, task string, m Metric) (*Grid, error) {
	nSet := make(map[int]struct{})
	thSet := make(map[float64]struct{})
	for _, r := range rows {
		if r.Task != task {
			continue
		}
		nSet[r.N] = struct{}{}
		thSet[r.Threshold] = struct{}{}
	}
	if len(nSet) == 0 {
		return nil, fmt.Errorf("no rows for task %q", task)
	}

	g := &Grid{Task: task, Metric: m}
	for n := range nSet {
		g.Ns = append(g.Ns, n)
	}
	for th := range thSet {
		g.Thresholds = append(g.Thresholds, th)
	}
	sort.Ints(g.Ns)
	sort.Float64s(g.Thresholds)

	nIdx := make(map[int]int, len(g.Ns))
	for i, n := range g.Ns {
		nIdx[n] = i
	}
	thIdx := make(map[float64]int, len(g.Thresholds))
	for j, th := range g.Thresholds {
		thIdx[th] = j
	}

	g.Values = make([]float64, len(g.Ns)*len(g.Thresholds))
	for i := range g.Values {
		g.Values[i] = math.NaN()
	}
	for _, r := range rows {
		if r.Task != task {
			continue
		}
		g.Values[nIdx[r.N]*len(g.Thresholds)+thIdx[r.Threshold]] = m.value(r)
	}
	return g, nil
}

// At returns the value for the i-th n and j-th threshold.
func (g *Grid) At(i, j int) float64 {
	return g.Values[i*len(g.Thresholds)+j]
}

// Dims returns the number of thresholds and the number of n values.
func (g *Grid) Dims() (c, r int) { return len(g.Thresholds), len(g.Ns) }

func (g *Grid) Z(c, r int) float64 { return g.At(r, c) }
func (g *Grid) X(c int) float64    { return g.Thresholds[c] }
func (g *Grid) Y(r int) float64    { return float64(g.Ns[r]) }

// Min returns the smallest defined value, or +Inf if none is defined.
func (g *Grid) Min() float64 {
	lo := math.Inf(1)
	for _, v := range g.Values {
		if !math.IsNaN(v) {
			lo = math.Min(lo, v)
		}
	}
	return lo
}

// Max returns the largest defined value, or -Inf if none is defined.
func (g *Grid) Max() float64 {
	hi := math.Inf(-1)
	for _, v := range g.Values {
		if !math.IsNaN(v) {
			hi = math.Max(hi, v)
		}
	}
	return hi
}

// ToGomlxTensor converts the grid to a float64 tensor shaped
// [len(Ns), len(Thresholds)]. Undefined cells stay NaN.
func (g *Grid) ToGomlxTensor() (*tensors.Tensor, error) {
	if len(g.Ns) == 0 || len(g.Thresholds) == 0 {
		return nil, fmt.Errorf("empty grid for task %q", g.Task)
	}
	data := make([][]float64, len(g.Ns))
	for i := range g.Ns {
		data[i] = g.Values[i*len(g.Thresholds) : (i+1)*len(g.Thresholds)]
	}
	return tensors.FromAnyValue(data), nil
}

// Tasks returns the distinct tasks of rows in order of first appearance.
func Tasks(rows []sweep.Row) []string {
	var tasks []string
	seen := make(map[string]bool)
	for _, r := range rows {
		if !seen[r.Task] {
			seen[r.Task] = true
			tasks = append(tasks, r.Task)
		}
	}
	return tasks
}
