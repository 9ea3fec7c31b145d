package corpus

import "slices"

// This file describes the in-memory event corpus the sweep runs over.
//
// The corpus is built from three files produced by the event logging tools:
//
//	mapping.json        event code -> one-character symbol
//	grouped.json        task -> user -> completions (one symbol string each)
//	simplified_all.txt  every symbol of every session, concatenated
//
// Sequences are flattened across users per task. Document order of
// grouped.json is kept for tasks, users and completions because it fixes the
// cross-validation fold boundaries.

// TaskGroup holds all completions of one task.
type TaskGroup struct {
	Task string

	// Users lists user ids in file order.
	Users []string

	// Sequences holds one symbol sequence per completion, flattened across
	// users in file order, with the noise symbol removed.
	Sequences [][]string

	// Owners[i] is the user who produced Sequences[i].
	Owners []string
}

// Corpus is a set of task groups in file order.
type Corpus struct {
	// Noise is the symbol that was stripped from every sequence.
	Noise string

	order  []string
	groups map[string]*TaskGroup
}

// NewCorpus returns an empty corpus that strips noise from added sequences.
func NewCorpus(noise string) *Corpus {
	return &Corpus{
		Noise:  noise,
		groups: make(map[string]*TaskGroup),
	}
}

// Add appends one completion for user under task. The noise symbol is
// removed before the sequence is stored.
func (c *Corpus) Add(task, user string, seq []string) {
	g, ok := c.groups[task]
	if !ok {
		g = &TaskGroup{Task: task}
		c.groups[task] = g
		c.order = append(c.order, task)
	}
	if !slices.Contains(g.Users, user) {
		g.Users = append(g.Users, user)
	}
	g.Sequences = append(g.Sequences, StripNoise(seq, c.Noise))
	g.Owners = append(g.Owners, user)
}

// Tasks returns task ids in file order.
func (c *Corpus) Tasks() []string {
	return append([]string(nil), c.order...)
}

// Group returns the task group for task, or nil.
func (c *Corpus) Group(task string) *TaskGroup {
	return c.groups[task]
}

// Sequences returns the flattened sequences of task, or nil for an unknown
// task. The returned slices must not be modified.
func (c *Corpus) Sequences(task string) [][]string {
	g, ok := c.groups[task]
	if !ok {
		return nil
	}
	return g.Sequences
}

// Len returns the total number of sequences over all tasks.
func (c *Corpus) Len() int {
	total := 0
	for _, g := range c.groups {
		total += len(g.Sequences)
	}
	return total
}

// StripNoise returns seq without any occurrence of noise. An empty noise
// symbol strips nothing.
func StripNoise(seq []string, noise string) []string {
	out := make([]string, 0, len(seq))
	for _, s := range seq {
		if noise != "" && s == noise {
			continue
		}
		out = append(out, s)
	}
	return out
}
