package config

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE []byte

// ParseJSON parses a SimulationConfig from a JSON payload. Omitted fields
// keep their defaults; unknown fields are ignored. This is used for APIs
// where config is provided as payload (not via filesystem).
func ParseJSON(data []byte) (*SimulationConfig, error) {
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config json: %w", err)
	}
	return cfg, nil
}

// ParseYAML parses a SimulationConfig from YAML bytes. The payload is checked
// against the embedded CUE schema first, so type mismatches and out-of-range
// values are rejected before unmarshaling. Omitted fields keep their defaults.
func ParseYAML(data []byte) (*SimulationConfig, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config yaml: %w", err)
	}
	return cfg, nil
}

// validateSchema checks YAML bytes against the embedded CUE schema.
func validateSchema(data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("cannot compile config schema: %w", err)
	}

	if err := cueyaml.Validate(data, schema); err != nil {
		return fmt.Errorf("config schema validation failed: %w", err)
	}
	return nil
}
