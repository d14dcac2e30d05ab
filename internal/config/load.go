package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Sentinel errors for configuration loading. Callers match with errors.Is.
var (
	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrConfigFieldMissing indicates a required field is absent or has the
	// wrong type.
	ErrConfigFieldMissing = errors.New("configuration field missing or invalid")
)

// requiredFields are the keys that must be present in the raw document.
// qcow2_image_path is optional (defaults to the URL basename) and
// os_variant has a default.
var requiredFields = []string{
	"vm_name",
	"memory",
	"cpus",
	"firmware_dir",
	"ovmf_base_url",
	"ovmf_code",
	"ovmf_vars",
	"check_packages",
	"qcow2_image_url",
}

// integerFields must hold whole numbers. JSON parses every number as
// float64 and mapstructure truncates on the way into an int field, so a
// fractional value has to be caught on the raw map.
var integerFields = []string{
	"memory",
	"cpus",
}

// LoadFile reads and parses the configuration from a JSON or YAML file.
//
// The format is chosen by extension: .yaml/.yml parse as YAML, everything
// else as JSON. Required fields are checked for presence before decoding so
// that an absent field and a mistyped field both surface as
// ErrConfigFieldMissing.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	rawConfig, err := unmarshalRaw(path, data)
	if err != nil {
		return nil, err
	}

	for _, field := range requiredFields {
		if _, ok := rawConfig[field]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrConfigFieldMissing, field)
		}
	}

	for _, field := range integerFields {
		if value, ok := rawConfig[field].(float64); ok && value != math.Trunc(value) {
			return nil, fmt.Errorf("%w: %s must be a whole number, got %v", ErrConfigFieldMissing, field, value)
		}
	}

	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &cfg,
		ErrorUnused: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := decoder.Decode(rawConfig); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigFieldMissing, err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// unmarshalRaw parses the file contents into a generic map.
func unmarshalRaw(path string, data []byte) (map[string]interface{}, error) {
	var rawConfig map[string]interface{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &rawConfig); err != nil {
			return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &rawConfig); err != nil {
			return nil, fmt.Errorf("failed to unmarshal json: %w", err)
		}
	}

	return rawConfig, nil
}

// FindConfigFile locates the default configuration file in the working
// directory. Tried in order: virtup.json, virtup.yaml, virtup.yml.
func FindConfigFile() (string, error) {
	candidates := []string{
		DefaultConfigFile,
		"virtup.yaml",
		"virtup.yml",
	}

	for _, name := range candidates {
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			return name, nil
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(candidates, ", "))
}

// ApplyDefaults fills optional fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.OSVariant == "" {
		c.OSVariant = DefaultOSVariant
	}

	if c.QCOW2ImagePath == "" && c.QCOW2ImageURL != "" {
		c.QCOW2ImagePath = filepath.Base(strings.TrimSuffix(c.QCOW2ImageURL, "/"))
	}
}
