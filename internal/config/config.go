// Package config loads conversion settings from YAML files and
// READSTRUCTURE_ environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/scttfrdmn/readstructure-go/pkg/convert"
	"github.com/scttfrdmn/readstructure-go/pkg/readstructure"
)

// Config holds settings shared by the CLI commands.
type Config struct {
	ReadStructures   []readstructure.ReadStructure `yaml:"read-structures"`
	Sample           string                        `yaml:"sample"`
	Library          string                        `yaml:"library"`
	ReadGroupID      string                        `yaml:"read-group-id"`
	Platform         string                        `yaml:"platform"`
	Tags             convert.Tags                  `yaml:"tags"`
	Workers          int                           `yaml:"workers"`
	BatchSize        int                           `yaml:"batch-size"`
	CompressionLevel int                           `yaml:"compression-level"`
	LogLevel         string                        `yaml:"log-level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	opts := convert.DefaultOptions()
	return &Config{
		ReadGroupID:      opts.ReadGroupID,
		Platform:         opts.Platform,
		Tags:             opts.Tags,
		BatchSize:        opts.BatchSize,
		CompressionLevel: opts.CompressionLevel,
		LogLevel:         "info",
	}
}

// Load reads the YAML file at path over the defaults. Unknown keys are
// rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// Options converts the configuration into conversion options.
func (c *Config) Options() convert.Options {
	return convert.Options{
		ReadStructures:   c.ReadStructures,
		Sample:           c.Sample,
		Library:          c.Library,
		ReadGroupID:      c.ReadGroupID,
		Platform:         c.Platform,
		Tags:             c.Tags,
		Workers:          c.Workers,
		BatchSize:        c.BatchSize,
		CompressionLevel: c.CompressionLevel,
	}
}
