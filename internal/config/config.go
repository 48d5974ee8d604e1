// Package config loads and validates the engine build configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stvadams-research/voynichMS-sub006/internal/window"
)

const (
	defaultVocabularySize     = 1500
	defaultWindowCount        = 50
	defaultNeighborhoodSpan   = 2
	defaultKMeansIterations   = 12
	defaultOrderingRestarts   = 4
	defaultMinFoldTransitions = 25
)

// Engine holds every knob of a model build. Seed has no default: a build
// without an explicit seed is a caller contract violation.
type Engine struct {
	VocabularySize     int     `yaml:"vocabulary_size" json:"vocabulary_size"`
	CoverageTarget     float64 `yaml:"coverage_target" json:"coverage_target"`
	WindowCount        int     `yaml:"window_count" json:"window_count"`
	NeighborhoodSpan   int     `yaml:"neighborhood_span" json:"neighborhood_span"`
	KMeansIterations   int     `yaml:"kmeans_iterations" json:"kmeans_iterations"`
	OrderingRestarts   int     `yaml:"ordering_restarts" json:"ordering_restarts"`
	MinFoldTransitions int     `yaml:"min_fold_transitions" json:"min_fold_transitions"`
	Seed               *int64  `yaml:"seed" json:"seed"`
}

// Load reads an engine config from YAML and validates it.
func Load(path string) (Engine, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Engine{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Engine
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Engine{}, fmt.Errorf("parse config yaml: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Engine{}, err
	}
	return cfg, nil
}

// Defaults returns a config with every defaultable knob filled in. The seed
// stays unset.
func Defaults() Engine {
	cfg := Engine{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset knobs. The seed is deliberately left alone.
func (cfg *Engine) ApplyDefaults() {
	if cfg.VocabularySize == 0 && cfg.CoverageTarget == 0 {
		cfg.VocabularySize = defaultVocabularySize
	}
	if cfg.WindowCount == 0 {
		cfg.WindowCount = defaultWindowCount
	}
	if cfg.NeighborhoodSpan == 0 {
		cfg.NeighborhoodSpan = defaultNeighborhoodSpan
	}
	if cfg.KMeansIterations == 0 {
		cfg.KMeansIterations = defaultKMeansIterations
	}
	if cfg.OrderingRestarts == 0 {
		cfg.OrderingRestarts = defaultOrderingRestarts
	}
	if cfg.MinFoldTransitions == 0 {
		cfg.MinFoldTransitions = defaultMinFoldTransitions
	}
}

// Validate rejects configurations the engine cannot honor.
func (cfg Engine) Validate() error {
	if cfg.Seed == nil {
		return fmt.Errorf("%w: seed is required in the build config", window.ErrMissingSeed)
	}
	if cfg.VocabularySize < 0 {
		return fmt.Errorf("vocabulary_size must not be negative")
	}
	if cfg.CoverageTarget < 0 || cfg.CoverageTarget > 1 {
		return fmt.Errorf("coverage_target must be in (0, 1]")
	}
	if cfg.VocabularySize == 0 && cfg.CoverageTarget == 0 {
		return fmt.Errorf("one of vocabulary_size or coverage_target is required")
	}
	if cfg.WindowCount < 2 {
		return fmt.Errorf("window_count must be >= 2")
	}
	if cfg.NeighborhoodSpan < 1 {
		return fmt.Errorf("neighborhood_span must be >= 1")
	}
	if cfg.KMeansIterations < 1 {
		return fmt.Errorf("kmeans_iterations must be >= 1")
	}
	if cfg.OrderingRestarts < 1 {
		return fmt.Errorf("ordering_restarts must be >= 1")
	}
	if cfg.MinFoldTransitions < 1 {
		return fmt.Errorf("min_fold_transitions must be >= 1")
	}
	return nil
}
