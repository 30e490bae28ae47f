package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadAnalysisConfig returns the default analysis parameters, overridden by
// the YAML file at path when one is given. The result is validated before
// use so a bad file fails the run instead of producing misleading deals.
func LoadAnalysisConfig(path string) (AnalysisConfig, error) {
	cfg := DefaultAnalysisConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read analysis config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse analysis config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid analysis config: %w", err)
	}
	return cfg, nil
}
