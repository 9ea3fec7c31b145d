package crossval

import (
	"github.com/Noofbiz/ngramSweep/ngram"
)

// Prediction is the model's best guess for one test window.
type Prediction struct {
	Answer    string
	Predicted string
	Score     float64
}

// Hit reports whether the predicted symbol equals the true answer.
func (p Prediction) Hit() bool { return p.Predicted == p.Answer }

// Passes reports whether the prediction is confident enough for threshold.
func (p Prediction) Passes(threshold float64) bool { return p.Score >= threshold }

// Tally aggregates predictions of one fold at one confidence threshold.
type Tally struct {
	Windows    int // length-n test windows scored
	Hits       int // windows whose prediction was correct
	Passed     int // windows whose prediction score met the threshold
	PassedHits int // correct windows that also met the threshold
}

// Accuracy returns Hits/Windows. ok is false when there were no windows.
func (t Tally) Accuracy() (acc float64, ok bool) {
	if t.Windows == 0 {
		return 0, false
	}
	return float64(t.Hits) / float64(t.Windows), true
}

// ThresholdedAccuracy returns PassedHits/Passed. ok is false when no window
// met the threshold.
func (t Tally) ThresholdedAccuracy() (acc float64, ok bool) {
	if t.Passed == 0 {
		return 0, false
	}
	return float64(t.PassedHits) / float64(t.Passed), true
}

// FoldResult holds every test-window prediction of one trained fold. The
// predictions do not depend on the confidence threshold, so one FoldResult
// serves a whole threshold sweep.
type FoldResult struct {
	Order       int
	Predictions []Prediction
}

// Tally counts hits and passes at threshold.
func (r *FoldResult) Tally(threshold float64) Tally {
	var t Tally
	for _, p := range r.Predictions {
		t.Windows++
		hit := p.Hit()
		pass := p.Passes(threshold)
		if hit {
			t.Hits++
		}
		if pass {
			t.Passed++
			if hit {
				t.PassedHits++
			}
		}
	}
	return t
}

// EvaluateFold trains an order-n model on the fold's training sequences and
// predicts every length-n window of its test sequences.
func EvaluateFold(seqs [][]string, fold Fold, n int) *FoldResult {
	trainStreams, trainVocab := ngram.Pipeline(n, Select(seqs, fold.Train))
	model := ngram.NewModel(n)
	model.Fit(trainStreams, trainVocab)

	testStreams, testVocab := ngram.Pipeline(n, Select(seqs, fold.Test))
	return &FoldResult{
		Order:       n,
		Predictions: Predict(model, testStreams, testVocab.Symbols()),
	}
}

// Predict scores every candidate symbol for each length-n window of streams
// and keeps the best one. Candidates are tried in the given order and only a
// strictly greater score replaces the current best, so ties go to the
// earliest candidate. Pass candidates sorted for a deterministic tie-break.
func Predict(model *ngram.Model, streams []ngram.Stream, candidates []string) []Prediction {
	var preds []Prediction
	for _, s := range streams {
		for w := range s.Windows() {
			best := Prediction{Answer: w.Answer, Score: -1}
			for _, c := range candidates {
				if score := model.Score(c, w.History); score > best.Score {
					best.Score = score
					best.Predicted = c
				}
			}
			preds = append(preds, best)
		}
	}
	return preds
}
