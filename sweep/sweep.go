package sweep

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/Noofbiz/ngramSweep/crossval"
)

// Corpus is the minimal view of the loaded event data the sweep needs. Task
// order and sequence order are significant: they fix the row order and the
// fold boundaries.
type Corpus interface {
	Tasks() []string
	Sequences(task string) [][]string
}

// Sweeper runs the exhaustive (task, n, threshold) grid with k-fold
// cross-validation.
type Sweeper struct {
	Config Config

	// Logger receives progress messages. Nil uses log.Default().
	Logger *log.Logger

	// ProgressInterval controls how often progress is logged. Zero disables
	// periodic progress logging.
	ProgressInterval time.Duration
}

// New returns a Sweeper for cfg after validating it.
func New(cfg Config) (*Sweeper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sweep config: %w", err)
	}
	return &Sweeper{
		Config:           cfg,
		ProgressInterval: 3 * time.Second,
	}, nil
}

func (s *Sweeper) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Default()
}

// unit is one trained model: a (task, n, fold) triple by index.
type unit struct {
	task, order, fold int
}

// Run evaluates the whole grid over c and returns one row per
// (task, n, threshold), ordered task -> n -> threshold.
//
// Each (task, n, fold) model is trained and used for prediction exactly once;
// every threshold is tallied from the same predictions. Units run on up to
// Config.Workers goroutines and write only their own result slot, so the rows
// do not depend on the worker count.
func (s *Sweeper) Run(ctx context.Context, c Corpus) ([]Row, error) {
	if c == nil {
		return nil, errors.New("corpus is nil")
	}
	cfg := s.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sweep config: %w", err)
	}

	tasks := c.Tasks()
	orders := cfg.Orders()
	thresholds := cfg.Thresholds()

	groups := make([][][]string, len(tasks))
	folds := make([][]crossval.Fold, len(tasks))
	for ti, task := range tasks {
		groups[ti] = c.Sequences(task)
		f, err := crossval.KFold(len(groups[ti]), cfg.Folds)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", task, err)
		}
		folds[ti] = f
	}

	// tallies[task][order][fold][threshold]
	tallies := make([][][][]crossval.Tally, len(tasks))
	units := make([]unit, 0, len(tasks)*len(orders)*cfg.Folds)
	for ti := range tasks {
		tallies[ti] = make([][][]crossval.Tally, len(orders))
		for oi := range orders {
			tallies[ti][oi] = make([][]crossval.Tally, cfg.Folds)
			for fi := range cfg.Folds {
				units = append(units, unit{task: ti, order: oi, fold: fi})
			}
		}
	}

	logger := s.logger()
	logger.Printf("[Sweep] %s tasks x %s orders x %s thresholds x %d folds (%s models, workers=%d)",
		humanize.Comma(int64(len(tasks))), humanize.Comma(int64(len(orders))),
		humanize.Comma(int64(len(thresholds))), cfg.Folds,
		humanize.Comma(int64(len(units))), cfg.Workers)

	var done int64
	stopProgress := s.startProgress(logger, &done, len(units))

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, u := range units {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := crossval.EvaluateFold(groups[u.task], folds[u.task][u.fold], orders[u.order])
			ts := make([]crossval.Tally, len(thresholds))
			for hi, thr := range thresholds {
				ts[hi] = res.Tally(thr)
			}
			tallies[u.task][u.order][u.fold] = ts
			atomic.AddInt64(&done, 1)
			return nil
		})
	}
	err := g.Wait()
	stopProgress()
	if err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}
	logger.Printf("[Sweep] trained and scored %s models in %v",
		humanize.Comma(int64(len(units))), time.Since(start).Round(time.Millisecond))

	rows := make([]Row, 0, len(tasks)*len(orders)*len(thresholds))
	for ti, task := range tasks {
		for oi, n := range orders {
			for hi, thr := range thresholds {
				rows = append(rows, aggregate(task, n, thr, tallies[ti][oi], hi))
			}
		}
	}
	return rows, nil
}

// aggregate folds the per-fold tallies at threshold index hi into one row.
func aggregate(task string, n int, threshold float64, perFold [][]crossval.Tally, hi int) Row {
	row := Row{Task: task, N: n, Threshold: threshold}
	var accSum, tAccSum float64
	var accCount, tAccCount int
	for _, ts := range perFold {
		t := ts[hi]
		row.Grams += t.Windows
		row.AboveThreshold += t.Passed
		if acc, ok := t.Accuracy(); ok {
			accSum += acc
			accCount++
		}
		if acc, ok := t.ThresholdedAccuracy(); ok {
			tAccSum += acc
			tAccCount++
		} else {
			row.UndefinedFolds++
		}
	}
	row.Accuracy = mean(accSum, accCount)
	row.ThresholdAccuracy = mean(tAccSum, tAccCount)
	return row
}

// startProgress logs done/total every ProgressInterval until the returned
// stop function is called. stop waits for the logger goroutine to exit.
func (s *Sweeper) startProgress(logger *log.Logger, done *int64, total int) (stop func()) {
	if s.ProgressInterval <= 0 || total == 0 {
		return func() {}
	}
	ticker := time.NewTicker(s.ProgressInterval)
	quit := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				d := atomic.LoadInt64(done)
				percent := float64(d) / float64(total) * 100.0
				logger.Printf("[Sweep] progress: %s/%s models (%.1f%%)",
					humanize.Comma(d), humanize.Comma(int64(total)), percent)
			case <-quit:
				return
			}
		}
	}()
	return func() {
		close(quit)
		<-exited
	}
}
