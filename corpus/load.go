package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Default file names inside a data directory.
const (
	MappingFile = "mapping.json"
	GroupedFile = "grouped.json"
	AllFile     = "simplified_all.txt"
)

// Paths locates the corpus files. All is optional.
type Paths struct {
	Mapping string
	Grouped string
	All     string
}

// PathsIn returns the default file paths inside dir.
func PathsIn(dir string) Paths {
	return Paths{
		Mapping: filepath.Join(dir, MappingFile),
		Grouped: filepath.Join(dir, GroupedFile),
		All:     filepath.Join(dir, AllFile),
	}
}

// Load reads the character mapping, resolves the noise symbol and loads the
// grouped sequences with that symbol stripped.
func Load(p Paths) (*Corpus, error) {
	mapping, err := LoadCharMapping(p.Mapping)
	if err != nil {
		return nil, err
	}
	noise, err := NoiseSymbol(mapping)
	if err != nil {
		return nil, err
	}
	return LoadGrouped(p.Grouped, noise)
}

// LoadCharMapping reads the event code -> symbol mapping.
func LoadCharMapping(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read char mapping: %w", err)
	}
	mapping := make(map[string]string)
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("unmarshal char mapping %s: %w", path, err)
	}
	if len(mapping) == 0 {
		return nil, fmt.Errorf("char mapping %s is empty", path)
	}
	return mapping, nil
}

// NoiseSymbol returns the symbol assigned to the mode-change event.
func NoiseSymbol(mapping map[string]string) (string, error) {
	key := Events[NoiseEvent].Key()
	sym, ok := mapping[key]
	if !ok || sym == "" {
		return "", fmt.Errorf("char mapping has no symbol for %s (key %q)", NoiseEvent, key)
	}
	return sym, nil
}

// completion is one task attempt. The file stores it either as a string with
// one symbol per character or as an array of symbols.
type completion []string

func (c *completion) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = SplitSymbols(s)
		return nil
	}
	var arr []string
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("completion must be a string or an array of strings: %w", err)
	}
	*c = arr
	return nil
}

type userCompletions = orderedmap.OrderedMap[string, []completion]

// LoadGrouped reads grouped.json and strips noise from every completion.
func LoadGrouped(path, noise string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read grouped events: %w", err)
	}
	c, err := ParseGrouped(data, noise)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

// ParseGrouped decodes a task -> user -> completions document, keeping the
// document order of tasks, users and completions.
func ParseGrouped(data []byte, noise string) (*Corpus, error) {
	tasks := orderedmap.New[string, *userCompletions]()
	if err := json.Unmarshal(data, tasks); err != nil {
		return nil, fmt.Errorf("unmarshal grouped events: %w", err)
	}

	c := NewCorpus(noise)
	for tp := tasks.Oldest(); tp != nil; tp = tp.Next() {
		if tp.Value == nil {
			continue
		}
		for up := tp.Value.Oldest(); up != nil; up = up.Next() {
			for _, comp := range up.Value {
				c.Add(tp.Key, up.Key, comp)
			}
		}
	}
	if len(c.order) == 0 {
		return nil, fmt.Errorf("no task completions found")
	}
	return c, nil
}

// LoadAll reads the concatenated symbol text and returns its symbols with
// whitespace and the noise symbol removed.
func LoadAll(path, noise string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read all events: %w", err)
	}
	text := string(data)
	if noise != "" {
		text = strings.ReplaceAll(text, noise, "")
	}
	text = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	return SplitSymbols(text), nil
}

// SplitSymbols splits s into one symbol per character.
func SplitSymbols(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "")
}

// FindDataDir returns the first directory that contains a grouped events
// file.
func FindDataDir(dirs ...string) (string, error) {
	for _, dir := range dirs {
		if _, err := os.Stat(filepath.Join(dir, GroupedFile)); err == nil {
			return dir, nil
		}
	}
	return "", fmt.Errorf("no %s found in %v", GroupedFile, dirs)
}
