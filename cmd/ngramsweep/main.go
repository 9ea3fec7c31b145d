package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Noofbiz/ngramSweep/corpus"
	"github.com/Noofbiz/ngramSweep/report"
	"github.com/Noofbiz/ngramSweep/store"
	"github.com/Noofbiz/ngramSweep/sweep"
)

func main() {
	dataDir := flag.String("data", "", "directory holding mapping.json, grouped.json and simplified_all.txt (default: first of ./data, ../../data)")
	mappingPath := flag.String("mapping", "", "path to the character mapping JSON (overrides -data)")
	groupedPath := flag.String("grouped", "", "path to the grouped events JSON (overrides -data)")
	allPath := flag.String("all", "", "path to the flat events text used for corpus statistics (overrides -data)")
	configPath := flag.String("config", "", "optional JSON or YAML sweep configuration; flags set on the command line take precedence")

	defaults := sweep.DefaultConfig()
	minN := flag.Int("min-n", defaults.MinN, "smallest n-gram order (inclusive)")
	maxN := flag.Int("max-n", defaults.MaxN, "largest n-gram order (exclusive)")
	minCT := flag.Float64("min-ct", defaults.MinThreshold, "smallest confidence threshold (inclusive)")
	maxCT := flag.Float64("max-ct", defaults.MaxThreshold, "largest confidence threshold (exclusive)")
	ctStep := flag.Float64("ct-step", defaults.ThresholdStep, "confidence threshold step")
	folds := flag.Int("k", defaults.Folds, "number of cross-validation folds")
	workers := flag.Int("workers", defaults.Workers, "number of (task, n, fold) units evaluated in parallel")
	progress := flag.Duration("progress-interval", 3*time.Second, "progress logging interval (0 disables)")

	outCSV := flag.String("out-csv", "output/results.csv", "path of the results CSV")
	plotPath := flag.String("plot", "output/heatmaps.png", "path of the heatmap PNG (empty to skip)")
	dbPath := flag.String("db", "", "optional SQLite database that records the run")
	printEffectiveConfig := flag.Bool("print-effective-config", false, "print the effective (file+CLI merged) configuration as JSON and exit")
	flag.Parse()

	cfg := defaults
	if *configPath != "" {
		loaded, err := sweep.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config %s: %v", *configPath, err)
		}
		cfg = loaded
		log.Printf("Loaded sweep config from %s", *configPath)
	}
	// only flags given on the command line override the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "min-n":
			cfg.MinN = *minN
		case "max-n":
			cfg.MaxN = *maxN
		case "min-ct":
			cfg.MinThreshold = *minCT
		case "max-ct":
			cfg.MaxThreshold = *maxCT
		case "ct-step":
			cfg.ThresholdStep = *ctStep
		case "k":
			cfg.Folds = *folds
		case "workers":
			cfg.Workers = *workers
		}
	})

	if *printEffectiveConfig {
		out, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			log.Fatalf("failed to marshal config: %v", err)
		}
		fmt.Println(string(out))
		return
	}

	paths, err := resolvePaths(*dataDir, *mappingPath, *groupedPath, *allPath)
	if err != nil {
		log.Fatalf("failed to locate data: %v", err)
	}

	c, err := corpus.Load(paths)
	if err != nil {
		log.Fatalf("failed to load corpus: %v", err)
	}
	log.Printf("Loaded %s sequences over %d tasks from %s (noise symbol %q removed)",
		humanize.Comma(int64(c.Len())), len(c.Tasks()), paths.Grouped, c.Noise)
	for _, task := range c.Tasks() {
		st := corpus.Lengths(c.Sequences(task))
		log.Printf("  task %s: %d sequences, length min=%d max=%d mean=%.1f",
			task, st.Count, st.Min, st.Max, st.Mean)
	}
	if paths.All != "" {
		if all, err := corpus.LoadAll(paths.All, c.Noise); err != nil {
			log.Printf("warning: skipping corpus statistics: %v", err)
		} else {
			log.Printf("Flat event text: %s symbols, %d distinct",
				humanize.Comma(int64(len(all))), len(corpus.Frequencies(all)))
		}
	}

	sw, err := sweep.New(cfg)
	if err != nil {
		log.Fatalf("failed to create sweeper: %v", err)
	}
	sw.ProgressInterval = *progress

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rows, err := sw.Run(ctx, c)
	if err != nil {
		log.Fatalf("sweep failed: %v", err)
	}

	if err := report.WriteCSV(*outCSV, rows); err != nil {
		log.Fatalf("failed to write CSV %s: %v", *outCSV, err)
	}
	log.Printf("Wrote %s rows to %s", humanize.Comma(int64(len(rows))), *outCSV)

	for _, best := range sweep.BestRows(rows) {
		log.Printf("Best for task %s: n=%d threshold=%.2f thresholded accuracy=%.4f (%s of %s predictions above threshold)",
			best.Task, best.N, best.Threshold, best.ThresholdAccuracy,
			humanize.Comma(int64(best.AboveThreshold)), humanize.Comma(int64(best.Grams)))
	}

	if *plotPath != "" {
		if err := report.Heatmaps(*plotPath, rows); err != nil {
			log.Fatalf("failed to generate heatmaps: %v", err)
		}
		log.Printf("Wrote heatmaps to %s", *plotPath)
	}

	if *dbPath != "" {
		st, err := store.NewStore(*dbPath)
		if err != nil {
			log.Fatalf("failed to open run store %s: %v", *dbPath, err)
		}
		id, err := st.SaveRun(cfg, rows)
		if cerr := st.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			log.Fatalf("failed to record run: %v", err)
		}
		log.Printf("Recorded run %s in %s", id, *dbPath)
	}
}

// resolvePaths fills corpus paths from the data directory and applies the
// per-file overrides. The flat events file is dropped when it does not exist.
func resolvePaths(dataDir, mapping, grouped, all string) (corpus.Paths, error) {
	var paths corpus.Paths
	if mapping == "" || grouped == "" || all == "" {
		dir := dataDir
		if dir == "" {
			found, err := corpus.FindDataDir("data", "../../data")
			if err != nil && (mapping == "" || grouped == "") {
				return paths, err
			}
			dir = found
		}
		if dir != "" {
			paths = corpus.PathsIn(dir)
		}
	}
	if mapping != "" {
		paths.Mapping = mapping
	}
	if grouped != "" {
		paths.Grouped = grouped
	}
	if all != "" {
		paths.All = all
	}
	if paths.All != "" {
		if _, err := os.Stat(paths.All); err != nil {
			paths.All = ""
		}
	}
	return paths, nil
}
