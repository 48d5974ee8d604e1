package corpus

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Source defines one transcription source root to collect from.
type Source struct {
	Name    string   `yaml:"name" json:"name"`
	Root    string   `yaml:"root" json:"root"`
	Include []string `yaml:"include" json:"include"`
	Exclude []string `yaml:"exclude" json:"exclude"`
}

// SourceSet is the collection configuration: sources plus global ignore
// patterns applied to every file.
type SourceSet struct {
	Sources []Source `yaml:"sources" json:"sources"`
	Ignore  []string `yaml:"ignore" json:"ignore"`
}

// LoadSourceSet loads a source set from YAML and validates it. Relative
// source roots resolve against the config file directory.
func LoadSourceSet(path string) (*SourceSet, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source config: %w", err)
	}

	var cfg SourceSet
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("parse source config yaml: %w", err)
	}

	cfg.applyDefaults(filepath.Dir(path))
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *SourceSet) applyDefaults(configDir string) {
	for i := range cfg.Sources {
		cfg.Sources[i].Root = normalizeRoot(configDir, cfg.Sources[i].Root)
		if len(cfg.Sources[i].Include) == 0 {
			cfg.Sources[i].Include = []string{"**/*.txt"}
		}
	}
}

func (cfg *SourceSet) validate() error {
	if len(cfg.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}
	seen := make(map[string]bool, len(cfg.Sources))
	for _, source := range cfg.Sources {
		if source.Name == "" {
			return fmt.Errorf("source name is required")
		}
		if seen[source.Name] {
			return fmt.Errorf("duplicate source name: %s", source.Name)
		}
		seen[source.Name] = true
	}
	return nil
}
