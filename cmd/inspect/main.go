// Command inspect prints what the sweep would see: per-task sequence
// counts, length statistics, symbol frequencies and the fold layout.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/Noofbiz/ngramSweep/corpus"
	"github.com/Noofbiz/ngramSweep/crossval"
	"github.com/Noofbiz/ngramSweep/report"
	"github.com/Noofbiz/ngramSweep/sweep"
)

func main() {
	dataDir := flag.String("data", "", "data directory (default: first of ./data, ../../data)")
	folds := flag.Int("k", sweep.DefaultConfig().Folds, "number of cross-validation folds to lay out")
	top := flag.Int("top", 10, "number of most frequent symbols to print per task")
	inCSV := flag.String("in-csv", "", "optional results CSV; prints the metric grid of every task as a tensor")
	flag.Parse()

	dir := *dataDir
	if dir == "" {
		found, err := corpus.FindDataDir("data", "../../data")
		if err != nil {
			log.Fatalf("failed to locate data: %v", err)
		}
		dir = found
	}
	c, err := corpus.Load(corpus.PathsIn(dir))
	if err != nil {
		log.Fatalf("failed to load corpus: %v", err)
	}

	fmt.Printf("noise symbol: %q\n", c.Noise)
	for _, task := range c.Tasks() {
		g := c.Group(task)
		st := corpus.Lengths(g.Sequences)
		fmt.Printf("task %s: %d users, %d sequences, length min=%d max=%d mean=%.1f\n",
			task, len(g.Users), st.Count, st.Min, st.Max, st.Mean)

		freq := corpus.Frequencies(g.Sequences...)
		if len(freq) > *top {
			freq = freq[:*top]
		}
		parts := make([]string, len(freq))
		for i, f := range freq {
			parts[i] = fmt.Sprintf("%s:%d", f.Symbol, f.Count)
		}
		fmt.Printf("  symbols: %s\n", strings.Join(parts, " "))

		fs, err := crossval.KFold(len(g.Sequences), *folds)
		if err != nil {
			fmt.Printf("  folds: %v\n", err)
			continue
		}
		for i, f := range fs {
			fmt.Printf("  fold %d: test [%d, %d] (%d), train %d\n",
				i, f.Test[0], f.Test[len(f.Test)-1], len(f.Test), len(f.Train))
		}
	}

	if *inCSV == "" {
		return
	}
	rows, err := report.ReadCSV(*inCSV)
	if err != nil {
		log.Fatalf("failed to read results: %v", err)
	}
	for _, task := range report.Tasks(rows) {
		g, err := report.NewGrid(rows, task, report.ThresholdAccuracy)
		if err != nil {
			log.Fatalf("failed to build grid: %v", err)
		}
		t, err := g.ToGomlxTensor()
		if err != nil {
			log.Fatalf("failed to convert grid: %v", err)
		}
		fmt.Printf("task %s %s over n=%v:\n%s\n", task, g.Metric, g.Ns, t)
	}
}
