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

import "time"

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(config *Config)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Config)

// Apply applies the option
func (f OptionFunc) Apply(c *Config) {
	f(c)
}

// WithPluginsDir sets the directory scanned for module sources
func WithPluginsDir(dir string) Option {
	return OptionFunc(func(config *Config) {
		config.PluginsDir = dir
	})
}

// WithDataDir sets the persistence data directory
func WithDataDir(dir string) Option {
	return OptionFunc(func(config *Config) {
		config.DataDir = dir
	})
}

// WithLogLevel sets the log level
func WithLogLevel(level string) Option {
	return OptionFunc(func(config *Config) {
		config.LogLevel = level
	})
}

// WithFlushInterval sets the persistence flush interval
func WithFlushInterval(interval time.Duration) Option {
	return OptionFunc(func(config *Config) {
		config.FlushInterval = interval
	})
}

// WithPersistence turns the persistence store on or off
func WithPersistence(enabled bool) Option {
	return OptionFunc(func(config *Config) {
		config.PersistenceEnabled = enabled
	})
}

// WithMetrics turns the otel instruments on or off
func WithMetrics(enabled bool) Option {
	return OptionFunc(func(config *Config) {
		config.MetricsEnabled = enabled
	})
}
