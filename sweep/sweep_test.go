package sweep

import (
	"context"
	"errors"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Noofbiz/ngramSweep/crossval"
)

// memCorpus is an in-memory Corpus keeping task order.
type memCorpus struct {
	tasks  []string
	groups map[string][][]string
}

func (m *memCorpus) Tasks() []string                  { return m.tasks }
func (m *memCorpus) Sequences(task string) [][]string { return m.groups[task] }

func newMemCorpus() *memCorpus {
	return &memCorpus{groups: make(map[string][][]string)}
}

func (m *memCorpus) add(task string, seqs ...[]string) {
	if _, ok := m.groups[task]; !ok {
		m.tasks = append(m.tasks, task)
	}
	m.groups[task] = append(m.groups[task], seqs...)
}

func quietSweeper(t *testing.T, cfg Config) *Sweeper {
	t.Helper()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	s.Logger = log.New(io.Discard, "", 0)
	s.ProgressInterval = 0
	return s
}

func sampleCorpus() *memCorpus {
	c := newMemCorpus()
	c.add("1",
		[]string{"a", "b", "c", "a", "b"},
		[]string{"a", "b", "d"},
		[]string{"c", "a", "b", "c"},
		[]string{"a", "c"},
		[]string{"b", "b", "a", "b", "c", "d"},
		[]string{"a", "b", "c"},
		[]string{"d", "a", "b"},
	)
	c.add("2",
		[]string{"x", "y", "z"},
		[]string{"x", "y"},
		[]string{"y", "z", "x", "y"},
		[]string{"z", "x"},
		[]string{"x", "x", "y"},
	)
	return c
}

func sameFloat(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

func rowsEqual(a, b []Row) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.Task != y.Task || x.N != y.N || x.Threshold != y.Threshold ||
			x.Grams != y.Grams || x.AboveThreshold != y.AboveThreshold ||
			x.UndefinedFolds != y.UndefinedFolds ||
			!sameFloat(x.Accuracy, y.Accuracy) || !sameFloat(x.ThresholdAccuracy, y.ThresholdAccuracy) {
			return false
		}
	}
	return true
}

func TestDefaultThresholdGrid(t *testing.T) {
	th := DefaultConfig().Thresholds()
	if len(th) != 20 {
		t.Fatalf("expected 20 thresholds, got %d", len(th))
	}
	if th[0] != 0 || math.Abs(th[19]-0.95) > 1e-9 {
		t.Fatalf("unexpected threshold range: first=%v last=%v", th[0], th[19])
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	bad := []func(*Config){
		func(c *Config) { c.MinN = 1 },
		func(c *Config) { c.MaxN = c.MinN },
		func(c *Config) { c.ThresholdStep = 0 },
		func(c *Config) { c.MaxThreshold = c.MinThreshold },
		func(c *Config) { c.Folds = 1 },
		func(c *Config) { c.Workers = 0 },
	}
	for i, mutate := range bad {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error for %+v", i, cfg)
		}
	}
}

func TestLoadConfigJSONAndYAML(t *testing.T) {
	tmp := t.TempDir()

	jsonPath := filepath.Join(tmp, "sweep.json")
	if err := os.WriteFile(jsonPath, []byte(`{"min_n": 3, "max_n": 6, "k": 4}`), 0o644); err != nil {
		t.Fatalf("write json: %v", err)
	}
	cfg, err := LoadConfig(jsonPath)
	if err != nil {
		t.Fatalf("LoadConfig(json) error: %v", err)
	}
	if cfg.MinN != 3 || cfg.MaxN != 6 || cfg.Folds != 4 || cfg.ThresholdStep != 0.05 {
		t.Fatalf("unexpected json config: %+v", cfg)
	}

	yamlPath := filepath.Join(tmp, "sweep.yaml")
	if err := os.WriteFile(yamlPath, []byte("ct_step: 0.1\nworkers: 3\n"), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	cfg, err = LoadConfig(yamlPath)
	if err != nil {
		t.Fatalf("LoadConfig(yaml) error: %v", err)
	}
	if cfg.ThresholdStep != 0.1 || cfg.Workers != 3 || cfg.MinN != 2 {
		t.Fatalf("unexpected yaml config: %+v", cfg)
	}

	if _, err := LoadConfig(filepath.Join(tmp, "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

// TestRun_ThresholdRowsMonotonic checks there is one row per threshold for a
// (task, n) pair and the confident-prediction count never rises.
func TestRun_ThresholdRowsMonotonic(t *testing.T) {
	c := newMemCorpus()
	c.add("1", sampleCorpus().groups["1"]...)

	cfg := DefaultConfig()
	cfg.MinN, cfg.MaxN = 2, 3
	rows, err := quietSweeper(t, cfg).Run(context.Background(), c)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(rows) != 20 {
		t.Fatalf("expected 20 rows, got %d", len(rows))
	}
	for i, r := range rows {
		if r.Task != "1" || r.N != 2 {
			t.Fatalf("row %d: unexpected key %s/%d", i, r.Task, r.N)
		}
		if r.Accuracy < 0 || r.Accuracy > 1 {
			t.Fatalf("row %d: accuracy out of range: %v", i, r.Accuracy)
		}
		if !math.IsNaN(r.ThresholdAccuracy) && (r.ThresholdAccuracy < 0 || r.ThresholdAccuracy > 1) {
			t.Fatalf("row %d: thresholded accuracy out of range: %v", i, r.ThresholdAccuracy)
		}
		if i > 0 && r.AboveThreshold > rows[i-1].AboveThreshold {
			t.Fatalf("row %d: above-threshold count rose %d -> %d", i, rows[i-1].AboveThreshold, r.AboveThreshold)
		}
		if r.Grams != rows[0].Grams {
			t.Fatalf("row %d: gram total changed with threshold", i)
		}
	}
	if rows[0].AboveThreshold != rows[0].Grams {
		t.Fatalf("threshold 0 should pass every window: %d of %d", rows[0].AboveThreshold, rows[0].Grams)
	}
}

func TestRun_PerfectRepetition(t *testing.T) {
	c := newMemCorpus()
	for range 10 {
		c.add("only", []string{"X", "Y"})
	}
	cfg := DefaultConfig()
	cfg.MinN, cfg.MaxN = 2, 3
	cfg.MinThreshold, cfg.MaxThreshold, cfg.ThresholdStep = 0, 0.05, 0.05

	rows, err := quietSweeper(t, cfg).Run(context.Background(), c)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	r := rows[0]
	if r.Accuracy != 1 || r.ThresholdAccuracy != 1 || r.UndefinedFolds != 0 {
		t.Fatalf("expected perfect accuracy, got %+v", r)
	}
	if r.Grams != 30 || r.AboveThreshold != 30 {
		t.Fatalf("expected 30 windows all passing, got %+v", r)
	}
}

func TestRun_RowOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinN, cfg.MaxN = 2, 4
	cfg.ThresholdStep = 0.25
	rows, err := quietSweeper(t, cfg).Run(context.Background(), sampleCorpus())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	// 2 tasks x 2 orders x 4 thresholds
	if len(rows) != 16 {
		t.Fatalf("expected 16 rows, got %d", len(rows))
	}
	i := 0
	for _, task := range []string{"1", "2"} {
		for _, n := range []int{2, 3} {
			for _, thr := range []float64{0, 0.25, 0.5, 0.75} {
				r := rows[i]
				if r.Task != task || r.N != n || r.Threshold != thr {
					t.Fatalf("row %d: got (%s,%d,%v) want (%s,%d,%v)", i, r.Task, r.N, r.Threshold, task, n, thr)
				}
				i++
			}
		}
	}
}

func TestRun_WorkersDoNotChangeRows(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinN, cfg.MaxN = 2, 6

	seq, err := quietSweeper(t, cfg).Run(context.Background(), sampleCorpus())
	if err != nil {
		t.Fatalf("sequential Run error: %v", err)
	}
	cfg.Workers = 4
	par, err := quietSweeper(t, cfg).Run(context.Background(), sampleCorpus())
	if err != nil {
		t.Fatalf("parallel Run error: %v", err)
	}
	if !rowsEqual(seq, par) {
		t.Fatalf("rows differ between 1 and 4 workers")
	}
}

func TestRun_TooFewSequences(t *testing.T) {
	c := newMemCorpus()
	c.add("tiny", []string{"a"}, []string{"b"})
	_, err := quietSweeper(t, DefaultConfig()).Run(context.Background(), c)
	if !errors.Is(err, crossval.ErrTooFewSamples) {
		t.Fatalf("expected ErrTooFewSamples, got %v", err)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := quietSweeper(t, DefaultConfig()).Run(ctx, sampleCorpus()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAggregateSkipsUndefinedFolds(t *testing.T) {
	perFold := [][]crossval.Tally{
		{{Windows: 4, Hits: 2, Passed: 2, PassedHits: 2}},
		{{Windows: 4, Hits: 4, Passed: 0, PassedHits: 0}},
	}
	r := aggregate("t", 2, 0.5, perFold, 0)
	if r.Accuracy != 0.75 {
		t.Fatalf("expected mean accuracy 0.75, got %v", r.Accuracy)
	}
	if r.ThresholdAccuracy != 1 || r.UndefinedFolds != 1 {
		t.Fatalf("expected thresholded 1 with one undefined fold, got %+v", r)
	}
	if r.Grams != 8 || r.AboveThreshold != 2 {
		t.Fatalf("unexpected totals: %+v", r)
	}

	none := [][]crossval.Tally{{{Windows: 3, Hits: 1}}}
	if r := aggregate("t", 2, 0.9, none, 0); !math.IsNaN(r.ThresholdAccuracy) {
		t.Fatalf("expected NaN when no fold is defined, got %v", r.ThresholdAccuracy)
	}
}

func TestBestRows(t *testing.T) {
	rows := []Row{
		{Task: "1", N: 2, ThresholdAccuracy: math.NaN()},
		{Task: "1", N: 3, ThresholdAccuracy: 0.4},
		{Task: "2", N: 2, ThresholdAccuracy: 0.9},
		{Task: "1", N: 4, ThresholdAccuracy: 0.7},
		{Task: "1", N: 5, ThresholdAccuracy: 0.7},
		{Task: "2", N: 3, ThresholdAccuracy: 0.1},
	}
	best := BestRows(rows)
	if len(best) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(best))
	}
	if best[0].Task != "1" || best[0].N != 4 {
		t.Fatalf("unexpected best for task 1: %+v", best[0])
	}
	if best[1].Task != "2" || best[1].N != 2 {
		t.Fatalf("unexpected best for task 2: %+v", best[1])
	}
}
