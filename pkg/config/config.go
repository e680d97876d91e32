package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	LogLevel          string        `yaml:"log_level" default:"info"`
	TestTimeout       time.Duration `yaml:"test_timeout" default:"10s"`
	TimeoutMultiplier float64       `yaml:"timeout_multiplier" default:"1"`
	ConnectTimeout    time.Duration `yaml:"connect_timeout" default:"5s"`
	OutputFormat      string        `yaml:"output_format" default:"text"` // text, json, yaml
	Filter            string        `yaml:"filter"`
	Debug             bool          `yaml:"debug" default:"false"`
}

var outputFormats = map[string]bool{"text": true, "json": true, "yaml": true}

// DefaultConfig returns default configuration values
func DefaultConfig() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

// Load reads a YAML config file over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that values are usable. OutputFormat is case-folded and
// trimmed, and an empty format selects text.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.TestTimeout <= 0 {
		return fmt.Errorf("test_timeout must be positive, got %v", c.TestTimeout)
	}
	if c.TimeoutMultiplier <= 0 {
		return fmt.Errorf("timeout_multiplier must be positive, got %v", c.TimeoutMultiplier)
	}
	if c.ConnectTimeout < 0 {
		return fmt.Errorf("connect_timeout must not be negative, got %v", c.ConnectTimeout)
	}
	format := strings.ToLower(strings.TrimSpace(c.OutputFormat))
	if format == "" {
		format = "text"
	}
	if !outputFormats[format] {
		return fmt.Errorf("output_format %q is not one of text, json, yaml", c.OutputFormat)
	}
	c.OutputFormat = format
	return nil
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// NewLogger creates a configured logger instance
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.Level())

	// Use structured logging format
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}
