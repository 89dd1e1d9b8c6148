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

package plugin

import (
	"github.com/tochemey/worldkernel/eventstream"
	"github.com/tochemey/worldkernel/log"
	"github.com/tochemey/worldkernel/metric"
)

// Option is the interface that applies a Manager option.
type Option interface {
	// Apply sets the Option value of a Manager.
	Apply(m *Manager)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Manager)

// Apply applies the option
func (f OptionFunc) Apply(m *Manager) {
	f(m)
}

// WithLogger sets the manager logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(m *Manager) {
		m.logger = logger
	})
}

// WithStream sets the event stream ModuleActivated events are published to
func WithStream(stream eventstream.Stream) Option {
	return OptionFunc(func(m *Manager) {
		m.stream = stream
	})
}

// WithMetric enables the lifecycle instruments
func WithMetric(kernelMetric *metric.KernelMetric) Option {
	return OptionFunc(func(m *Manager) {
		m.metric = kernelMetric
	})
}

// WithCanonicalizer overrides how source identifiers are canonicalized.
// The default is CanonicalPath.
func WithCanonicalizer(canonicalizer Canonicalizer) Option {
	return OptionFunc(func(m *Manager) {
		m.canonicalize = canonicalizer
	})
}
