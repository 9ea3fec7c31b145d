package corpus

import "sort"

// LengthStats summarizes sequence lengths.
type LengthStats struct {
	Count int
	Min   int
	Max   int
	Mean  float64
}

// Lengths computes LengthStats over seqs. All fields are zero for no input.
func Lengths(seqs [][]string) LengthStats {
	if len(seqs) == 0 {
		return LengthStats{}
	}
	st := LengthStats{Count: len(seqs), Min: len(seqs[0]), Max: len(seqs[0])}
	total := 0
	for _, s := range seqs {
		total += len(s)
		st.Min = min(st.Min, len(s))
		st.Max = max(st.Max, len(s))
	}
	st.Mean = float64(total) / float64(len(seqs))
	return st
}

// SymbolCount is one entry of a frequency table.
type SymbolCount struct {
	Symbol string
	Count  int
}

// Frequencies counts symbols over seqs, most frequent first, ties broken by
// symbol.
func Frequencies(seqs ...[]string) []SymbolCount {
	counts := make(map[string]int)
	for _, s := range seqs {
		for _, sym := range s {
			counts[sym]++
		}
	}
	out := make([]SymbolCount, 0, len(counts))
	for sym, n := range counts {
		out = append(out, SymbolCount{Symbol: sym, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}
