package ngram

import (
	"iter"
	"sort"
)

// Padding markers added around every sequence before grams are enumerated.
const (
	StartPad = "<s>"
	EndPad   = "</s>"
)

// Window is a gram of exactly the model order, split into the conditioning
// History (first n-1 symbols) and the Answer (last symbol).
type Window struct {
	History []string
	Answer  string
}

// Stream is one padded sequence. Grams and windows are produced lazily from
// the padded symbols, so building streams for a whole fold is cheap.
type Stream struct {
	// Padded holds the sequence with n-1 StartPad markers in front and one
	// EndPad marker at the end.
	Padded []string

	order int
}

// Order returns the maximum gram length of the stream.
func (s Stream) Order() int { return s.order }

// Grams yields every contiguous gram of length 1..n, ordered by start
// position and then by length.
func (s Stream) Grams() iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		for i := range s.Padded {
			for l := 1; l <= s.order && i+l <= len(s.Padded); l++ {
				if !yield(s.Padded[i : i+l]) {
					return
				}
			}
		}
	}
}

// Windows yields only the grams of length n as History/Answer pairs.
func (s Stream) Windows() iter.Seq[Window] {
	return func(yield func(Window) bool) {
		n := s.order
		for i := 0; i+n <= len(s.Padded); i++ {
			w := Window{
				History: s.Padded[i : i+n-1],
				Answer:  s.Padded[i+n-1],
			}
			if !yield(w) {
				return
			}
		}
	}
}

// Pad returns a copy of seq with n-1 StartPad markers prepended and a single
// EndPad marker appended. n below 1 is treated as 1.
func Pad(seq []string, n int) []string {
	if n < 1 {
		n = 1
	}
	padded := make([]string, 0, len(seq)+n)
	for range n - 1 {
		padded = append(padded, StartPad)
	}
	padded = append(padded, seq...)
	padded = append(padded, EndPad)
	return padded
}

// Pipeline pads every sequence for order n and returns one Stream per input
// sequence, in input order, together with the vocabulary of all padded
// symbols. It is called separately for training and test data.
func Pipeline(n int, seqs [][]string) ([]Stream, *Vocabulary) {
	if n < 1 {
		n = 1
	}
	streams := make([]Stream, len(seqs))
	vocab := NewVocabulary()
	for i, seq := range seqs {
		padded := Pad(seq, n)
		vocab.Add(padded...)
		streams[i] = Stream{Padded: padded, order: n}
	}
	return streams, vocab
}

// Vocabulary counts the symbols seen in a set of padded sequences.
type Vocabulary struct {
	counts map[string]int
}

// NewVocabulary returns an empty vocabulary.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{counts: make(map[string]int)}
}

// Add records one occurrence of each symbol.
func (v *Vocabulary) Add(symbols ...string) {
	for _, s := range symbols {
		v.counts[s]++
	}
}

// Contains reports whether the symbol was seen at least once.
func (v *Vocabulary) Contains(symbol string) bool {
	if v == nil {
		return false
	}
	return v.counts[symbol] > 0
}

// Count returns how many times the symbol was seen.
func (v *Vocabulary) Count(symbol string) int {
	if v == nil {
		return 0
	}
	return v.counts[symbol]
}

// Len returns the number of distinct symbols.
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.counts)
}

// Symbols returns the distinct symbols in lexicographic order.
func (v *Vocabulary) Symbols() []string {
	if v == nil {
		return nil
	}
	out := make([]string, 0, len(v.counts))
	for s := range v.counts {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
