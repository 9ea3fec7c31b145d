package sweep

import "math"

// Row is the cross-validated result for one (task, n, threshold) grid point.
// Mean accuracies are NaN when no fold produced a defined value.
type Row struct {
	Task      string
	N         int
	Threshold float64

	// Accuracy is the mean over folds of hits/windows.
	Accuracy float64
	// ThresholdAccuracy is the mean over folds of confident hits/confident
	// windows, skipping folds where nothing met the threshold.
	ThresholdAccuracy float64

	// Grams is the total number of test windows over all folds.
	Grams int
	// AboveThreshold is the total number of windows whose prediction met the
	// threshold.
	AboveThreshold int

	// UndefinedFolds counts folds left out of ThresholdAccuracy.
	UndefinedFolds int
}

// BestRows returns, for every task in order of first appearance, the row
// with the highest defined ThresholdAccuracy. Earlier rows win ties. Tasks
// with no defined value return their first row.
func BestRows(rows []Row) []Row {
	var order []string
	best := make(map[string]Row)
	for _, r := range rows {
		cur, seen := best[r.Task]
		if !seen {
			order = append(order, r.Task)
			best[r.Task] = r
			continue
		}
		if math.IsNaN(r.ThresholdAccuracy) {
			continue
		}
		if math.IsNaN(cur.ThresholdAccuracy) || r.ThresholdAccuracy > cur.ThresholdAccuracy {
			best[r.Task] = r
		}
	}
	out := make([]Row, len(order))
	for i, task := range order {
		out[i] = best[task]
	}
	return out
}

// mean returns sum/count, or NaN when count is zero.
func mean(sum float64, count int) float64 {
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}
