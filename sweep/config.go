package sweep

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the hyperparameter grid and the cross-validation settings.
type Config struct {
	// MinN is the smallest model order evaluated (inclusive).
	MinN int `json:"min_n" yaml:"min_n"`

	// MaxN is the exclusive upper bound on model order.
	MaxN int `json:"max_n" yaml:"max_n"`

	// MinThreshold, MaxThreshold and ThresholdStep describe the confidence
	// thresholds [MinThreshold, MaxThreshold) in steps of ThresholdStep.
	MinThreshold  float64 `json:"min_ct" yaml:"min_ct"`
	MaxThreshold  float64 `json:"max_ct" yaml:"max_ct"`
	ThresholdStep float64 `json:"ct_step" yaml:"ct_step"`

	// Folds is the number of cross-validation folds (k).
	Folds int `json:"k" yaml:"k"`

	// Workers bounds how many (task, n, fold) units run at once. 1 runs the
	// sweep sequentially.
	Workers int `json:"workers" yaml:"workers"`
}

// DefaultConfig returns n in [2, 20), thresholds 0.00..0.95, 5 folds and a
// single worker.
func DefaultConfig() Config {
	return Config{
		MinN:          2,
		MaxN:          20,
		MinThreshold:  0.0,
		MaxThreshold:  1.0,
		ThresholdStep: 0.05,
		Folds:         5,
		Workers:       1,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.MinN < 2 {
		return fmt.Errorf("min_n must be >= 2, got %d", c.MinN)
	}
	if c.MaxN <= c.MinN {
		return fmt.Errorf("max_n (%d) must be > min_n (%d)", c.MaxN, c.MinN)
	}
	if c.ThresholdStep <= 0 || math.IsNaN(c.ThresholdStep) {
		return fmt.Errorf("ct_step must be > 0, got %v", c.ThresholdStep)
	}
	if !(c.MaxThreshold > c.MinThreshold) {
		return fmt.Errorf("max_ct (%v) must be > min_ct (%v)", c.MaxThreshold, c.MinThreshold)
	}
	if c.Folds < 2 {
		return fmt.Errorf("k must be >= 2, got %d", c.Folds)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	return nil
}

// Orders returns the model orders [MinN, MaxN).
func (c Config) Orders() []int {
	out := make([]int, 0, max(c.MaxN-c.MinN, 0))
	for n := c.MinN; n < c.MaxN; n++ {
		out = append(out, n)
	}
	return out
}

// Thresholds returns MinThreshold + i*ThresholdStep for every i that keeps
// the value below MaxThreshold, matching numpy.arange: the count is
// ceil((max-min)/step).
func (c Config) Thresholds() []float64 {
	if c.ThresholdStep <= 0 || c.MaxThreshold <= c.MinThreshold {
		return nil
	}
	count := int(math.Ceil((c.MaxThreshold - c.MinThreshold) / c.ThresholdStep))
	out := make([]float64, count)
	for i := range out {
		out[i] = c.MinThreshold + float64(i)*c.ThresholdStep
	}
	return out
}

// LoadConfig reads a configuration file on top of DefaultConfig. Files ending
// in .yaml or .yml are parsed as YAML, anything else as JSON. Keys missing
// from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("unmarshal yaml config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("unmarshal json config %s: %w", path, err)
		}
	}
	return cfg, nil
}
