package cli

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sqlir/internal/dialect"
)

// Config holds defaults read from --config. Flags always win over it.
//
//	dialect: postgres
//	format: json
//	out_dir: build/sql
//	scenario_dir: testdata/scenarios
type Config struct {
	Dialect     string `yaml:"dialect,omitempty"`
	Format      string `yaml:"format,omitempty"`
	OutDir      string `yaml:"out_dir,omitempty"`
	ScenarioDir string `yaml:"scenario_dir,omitempty"`
}

// LoadConfig reads and validates a config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&cfg); err != nil && len(bytes.TrimSpace(data)) > 0 {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Dialect != "" {
		id, ok := dialect.Parse(cfg.Dialect)
		if !ok {
			return nil, fmt.Errorf("dialect: unknown dialect %q", cfg.Dialect)
		}
		cfg.Dialect = string(id)
	}
	if cfg.Format != "" && !isValidFormat(cfg.Format) {
		return nil, fmt.Errorf("format: invalid format %q: must be one of %v", cfg.Format, ValidFormats)
	}
	return &cfg, nil
}
