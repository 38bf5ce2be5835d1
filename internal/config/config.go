// Package config loads the irbuild configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arc-language/core-builder/internal/logging"
)

// Config controls how irbuild logs, verifies and writes modules.
type Config struct {
	// Log selects the log level and output format.
	Log LogConfig `yaml:"log"`

	// OutputDir is where build writes .ll files.
	OutputDir string `yaml:"output_dir"`

	// Verify runs the verifier before a module is written.
	Verify bool `yaml:"verify"`

	// Fingerprint prints the content digest of every module built.
	Fingerprint bool `yaml:"fingerprint"`

	// Samples is built when no sample names are given on the command line.
	// Empty means every registered sample.
	Samples []string `yaml:"samples,omitempty"`
}

// LogConfig holds the logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log:       LogConfig{Level: "info", Format: "text"},
		OutputDir: "out",
		Verify:    true,
	}
}

// Load reads and validates a YAML configuration file. Fields missing from
// the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return fmt.Errorf("log.format: %w", err)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	return nil
}

// NewLogger builds a logger writing to w from the log settings. The
// settings must already be validated.
func (c *Config) NewLogger(prefix string, w io.Writer) *logging.Logger {
	level, _ := logging.ParseLevel(c.Log.Level)
	format, _ := logging.ParseFormat(c.Log.Format)
	return logging.New(prefix, w, level, format)
}
