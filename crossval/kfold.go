package crossval

import (
	"errors"
	"fmt"
)

// ErrTooFewSamples is returned when there are fewer samples than folds.
var ErrTooFewSamples = errors.New("fewer samples than folds")

// Fold is one train/test partition of sample indices.
type Fold struct {
	Train []int
	Test  []int
}

// KFold splits samples indices into k folds without shuffling. Each test set
// is a contiguous block in input order; the first samples%k folds hold one
// extra sample. The layout only depends on samples and k, so repeated runs
// over the same input order produce the same folds.
func KFold(samples, k int) ([]Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("k must be >= 2, got %d", k)
	}
	if samples < k {
		return nil, fmt.Errorf("%w: %d samples, k=%d", ErrTooFewSamples, samples, k)
	}

	folds := make([]Fold, k)
	start := 0
	for i := range k {
		size := samples / k
		if i < samples%k {
			size++
		}
		end := start + size

		test := make([]int, 0, size)
		train := make([]int, 0, samples-size)
		for idx := range samples {
			if idx >= start && idx < end {
				test = append(test, idx)
			} else {
				train = append(train, idx)
			}
		}
		folds[i] = Fold{Train: train, Test: test}
		start = end
	}
	return folds, nil
}

// Select returns the sequences at the given indices, in index order.
func Select(seqs [][]string, indices []int) [][]string {
	out := make([][]string, len(indices))
	for i, idx := range indices {
		out[i] = seqs[idx]
	}
	return out
}
