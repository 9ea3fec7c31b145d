package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Noofbiz/ngramSweep/sweep"
)

func sampleRows() []sweep.Row {
	var rows []sweep.Row
	for _, task := range []string{"2", "1"} {
		for n := 2; n <= 3; n++ {
			for i, th := range []float64{0, 0.05, 0.1} {
				acc := 0.25 * float64(n)
				rows = append(rows, sweep.Row{
					Task:              task,
					N:                 n,
					Threshold:         th,
					Accuracy:          acc,
					ThresholdAccuracy: acc + 0.125*float64(i),
					Grams:             40,
					AboveThreshold:    40 - 10*i,
				})
			}
		}
	}
	// one undefined cell
	rows[len(rows)-1].ThresholdAccuracy = math.NaN()
	rows[len(rows)-1].AboveThreshold = 0
	return rows
}

func assertRowsEqual(t *testing.T, want, got []sweep.Row) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		w, g := want[i], got[i]
		assert.Equal(t, w.Task, g.Task, "row %d task", i)
		assert.Equal(t, w.N, g.N, "row %d n", i)
		assert.Equal(t, w.Threshold, g.Threshold, "row %d threshold", i)
		assert.Equal(t, w.Grams, g.Grams, "row %d grams", i)
		assert.Equal(t, w.AboveThreshold, g.AboveThreshold, "row %d above", i)
		for _, pair := range [][2]float64{{w.Accuracy, g.Accuracy}, {w.ThresholdAccuracy, g.ThresholdAccuracy}} {
			if math.IsNaN(pair[0]) {
				assert.True(t, math.IsNaN(pair[1]), "row %d expected NaN", i)
				continue
			}
			assert.Equal(t, pair[0], pair[1], "row %d accuracy", i)
		}
	}
}

func TestWriteRowsHeaderAndNaN(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRows(&buf, sampleRows()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 13)
	assert.Equal(t, "task_number,n,confidence_threshold,total_accuracy,total_threshold_accuracy,total_grams,total_above_threshold", lines[0])
	assert.Equal(t, "2,2,0,0.5,0.5,40,40", lines[1])
	assert.True(t, strings.HasSuffix(lines[12], ",NaN,40,0"), "last line: %s", lines[12])
}

func TestCSVRoundTrip(t *testing.T) {
	rows := sampleRows()
	path := filepath.Join(t.TempDir(), "out", "results.csv")
	require.NoError(t, WriteCSV(path, rows))

	got, err := ReadCSV(path)
	require.NoError(t, err)
	assertRowsEqual(t, rows, got)

	// no temp files are left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReadRowsErrors(t *testing.T) {
	_, err := ReadRows(strings.NewReader(""))
	assert.Error(t, err)

	_, err = ReadRows(strings.NewReader("a,b,c,d,e,f,g\n"))
	assert.Error(t, err)

	bad := strings.Join(Header, ",") + "\n1,two,0,0,0,0,0\n"
	_, err = ReadRows(strings.NewReader(bad))
	assert.Error(t, err)
}

func TestWriteCSVEmptyPath(t *testing.T) {
	assert.Error(t, WriteCSV("", nil))
}

func TestNewGridPivotsRows(t *testing.T) {
	g, err := NewGrid(sampleRows(), "1", AboveThreshold)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3}, g.Ns)
	assert.Equal(t, []float64{0, 0.05, 0.1}, g.Thresholds)
	c, r := g.Dims()
	assert.Equal(t, 3, c)
	assert.Equal(t, 2, r)
	assert.Equal(t, 40.0, g.Z(0, 1))
	assert.Equal(t, 20.0, g.At(0, 2))
	assert.Equal(t, 0.1, g.X(2))
	assert.Equal(t, 3.0, g.Y(1))
	assert.Equal(t, 0.0, g.Min())
	assert.Equal(t, 40.0, g.Max())

	acc, err := NewGrid(sampleRows(), "1", ThresholdAccuracy)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(acc.At(1, 2)))
	assert.Equal(t, 0.875, acc.Max())

	_, err = NewGrid(sampleRows(), "missing", Accuracy)
	assert.Error(t, err)
}

func TestGridMissingCellsAreNaN(t *testing.T) {
	rows := []sweep.Row{
		{Task: "1", N: 2, Threshold: 0, ThresholdAccuracy: 1},
		{Task: "1", N: 3, Threshold: 0.5, ThresholdAccuracy: 0.5},
	}
	g, err := NewGrid(rows, "1", ThresholdAccuracy)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(g.At(0, 1)))
	assert.True(t, math.IsNaN(g.At(1, 0)))
}

func TestGridToGomlxTensor(t *testing.T) {
	g, err := NewGrid(sampleRows(), "2", Accuracy)
	require.NoError(t, err)
	tensor, err := g.ToGomlxTensor()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, tensor.Shape().Dimensions)

	_, err = (&Grid{Task: "x"}).ToGomlxTensor()
	assert.Error(t, err)
}

func TestTasksFirstAppearance(t *testing.T) {
	assert.Equal(t, []string{"2", "1"}, Tasks(sampleRows()))
	assert.Empty(t, Tasks(nil))
}

func TestHeatmapsWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heatmaps.png")
	require.NoError(t, Heatmaps(path, sampleRows()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, []byte("\x89PNG"), data[:4])
}

func TestHeatmapsAllUndefined(t *testing.T) {
	rows := sampleRows()
	for i := range rows {
		rows[i].ThresholdAccuracy = math.NaN()
	}
	path := filepath.Join(t.TempDir(), "nan.png")
	assert.NoError(t, Heatmaps(path, rows))
}

func TestHeatmapsNeedsTwoByTwo(t *testing.T) {
	rows := []sweep.Row{
		{Task: "1", N: 2, Threshold: 0},
		{Task: "1", N: 2, Threshold: 0.5},
	}
	assert.Error(t, Heatmaps(filepath.Join(t.TempDir(), "x.png"), rows))
	assert.Error(t, Heatmaps(filepath.Join(t.TempDir(), "y.png"), nil))
}
