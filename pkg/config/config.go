// Package config provides configuration loading for ifcollapse.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/mpyw/ifcollapse/internal"
)

//go:embed dialects.yaml
var defaultDialectsYAML []byte

//go:embed schema.json
var schemaJSON []byte

// Parsed at init time - failure here means corrupted embedded files.
var (
	defaultDialects []Dialect
	configSchema    *jsonschema.Schema
)

func init() {
	// Parse embedded dialects.yaml
	var dialectsFile DialectsFile
	defaultDialects = internal.Must(dialectsFile, yaml.Unmarshal(defaultDialectsYAML, &dialectsFile)).Dialects

	// Parse and compile embedded schema.json
	schemaDoc := internal.Must(jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON)))
	compiler := jsonschema.NewCompiler()
	internal.Must(struct{}{}, compiler.AddResource("schema.json", schemaDoc))
	configSchema = internal.Must(compiler.Compile("schema.json"))
}

// LoadConfig loads a configuration file. Files ending in ".toml" are decoded
// as TOML, everything else as YAML.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		// Normalize TOML to YAML so both formats share one typed decoder
		if data, err = tomlToYAML(data); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.baseDir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes and validates YAML configuration data. Relative header
// template files resolve against the working directory.
func Parse(data []byte) (*Config, error) {
	// Parse YAML to generic interface for schema validation
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	// Validate against JSON Schema
	if err := validateSchema(raw); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Unmarshal directly into struct
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

func tomlToYAML(data []byte) ([]byte, error) {
	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, err
	}
	return yaml.Marshal(raw)
}

// validateSchema validates data against the embedded JSON Schema.
func validateSchema(data any) error {
	return configSchema.Validate(data)
}

// BaseDir returns the directory of the loaded config file. Relative template
// files are resolved against it.
func (c *Config) BaseDir() string {
	return c.baseDir
}

// HeaderContent returns the header template text, or "" when no header is
// configured.
func (c *Config) HeaderContent() (string, error) {
	if !c.Header.Enabled() {
		return "", nil
	}
	return c.Header.Template.Content(c.baseDir)
}
