// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/tochemey/worldkernel/internal/validation"
	"github.com/tochemey/worldkernel/log"
)

// EnvPrefix prefixes every environment variable the kernel reads
const EnvPrefix = "WORLDKERNEL_"

// databaseFile is the bbolt file name under DataDir
const databaseFile = "world.db"

// Config is the kernel configuration
type Config struct {
	// PluginsDir is scanned for module sources at start. The default value is "plugins"
	PluginsDir string `env:"PLUGINS_DIR" envDefault:"plugins"`
	// DataDir holds the persistence database. The default value is "data"
	DataDir string `env:"DATA_DIR" envDefault:"data"`
	// LogLevel is one of debug, info, warn, error. The default value is "info"
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// FlushInterval is how often dirty entities are persisted. The default value is 1s
	FlushInterval time.Duration `env:"FLUSH_INTERVAL" envDefault:"1s"`
	// PersistenceEnabled turns the persistence store on. The default value is true
	PersistenceEnabled bool `env:"PERSISTENCE_ENABLED" envDefault:"true"`
	// MetricsEnabled turns the otel instruments on. The default value is false
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"false"`
}

// Default returns the configuration with every default value
func Default() *Config {
	config, err := parse(map[string]string{})
	if err != nil {
		// only reachable through a broken envDefault tag
		panic(err)
	}
	return config
}

// Load reads the configuration from the environment, then applies the
// options, which take precedence, and validates the result.
func Load(options ...Option) (*Config, error) {
	config, err := parse(nil)
	if err != nil {
		return nil, err
	}

	for _, opt := range options {
		opt.Apply(config)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// parse reads environment, the process one when nil
func parse(environment map[string]string) (*Config, error) {
	config := new(Config)
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix, Environment: environment}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return config, nil
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	_, levelErr := log.ParseLevel(c.LogLevel)
	return validation.New().
		AddValidator(validation.NewBooleanValidator(c.PluginsDir != "", "the [plugins directory] is required")).
		AddAssertion(!c.PersistenceEnabled || c.DataDir != "", "the [data directory] is required when persistence is enabled").
		AddAssertion(c.FlushInterval > 0, "the [flush interval] must be positive").
		AddAssertion(levelErr == nil, fmt.Sprintf("the [log level] %q is invalid", c.LogLevel)).
		Validate()
}

// Level returns the parsed log level, info when invalid
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// DatabasePath returns the persistence database file path
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, databaseFile)
}
