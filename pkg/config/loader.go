package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Load loads and parses a configuration file. JSON and YAML are both
// accepted, chosen by file extension.
func Load(path string) (*SimulationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		cfg, err := ParseJSON(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		return cfg, nil
	case ".yaml", ".yml":
		cfg, err := ParseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		return cfg, nil
	default:
		return nil, fmt.Errorf("unsupported config format %s (expected .json, .yaml, or .yml)", path)
	}
}
