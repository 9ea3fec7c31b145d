package ngram

import "strings"

// contextSep joins history symbols into a map key. Symbols never contain it.
const contextSep = "\x1f"

// Model is a maximum-likelihood n-gram model. Scores are raw frequency
// ratios with no smoothing, so anything not seen in training scores 0.
//
// A Model is filled once by Fit and is read-only afterwards.
type Model struct {
	order int
	vocab *Vocabulary

	// counts[context][symbol] is how often symbol followed context.
	counts map[string]map[string]int
	// totals[context] is the sum of counts[context].
	totals map[string]int
}

// NewModel returns an untrained model of order n. n below 1 is treated as 1.
func NewModel(n int) *Model {
	if n < 1 {
		n = 1
	}
	return &Model{
		order:  n,
		counts: make(map[string]map[string]int),
		totals: make(map[string]int),
	}
}

// Order returns the model order n.
func (m *Model) Order() int { return m.order }

// Fit counts every gram of length 1..n produced by the streams. Calling Fit
// again discards the previous counts. An empty training set leaves a model
// that scores every symbol 0.
func (m *Model) Fit(streams []Stream, vocab *Vocabulary) {
	m.vocab = vocab
	m.counts = make(map[string]map[string]int)
	m.totals = make(map[string]int)

	for _, s := range streams {
		for gram := range s.Grams() {
			if len(gram) > m.order {
				continue
			}
			key := contextKey(gram[:len(gram)-1])
			word := gram[len(gram)-1]
			row, ok := m.counts[key]
			if !ok {
				row = make(map[string]int)
				m.counts[key] = row
			}
			row[word]++
			m.totals[key]++
		}
	}
}

// Score returns P(symbol | history) estimated from the training counts. Only
// the last n-1 history symbols are used. Unseen histories, unseen
// (history, symbol) pairs and symbols outside the training vocabulary score 0.
func (m *Model) Score(symbol string, history []string) float64 {
	if m.vocab != nil && !m.vocab.Contains(symbol) {
		return 0
	}
	if keep := m.order - 1; len(history) > keep {
		history = history[len(history)-keep:]
	}
	key := contextKey(history)
	total := m.totals[key]
	if total == 0 {
		return 0
	}
	return float64(m.counts[key][symbol]) / float64(total)
}

func contextKey(history []string) string {
	return strings.Join(history, contextSep)
}
