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

package persistence

import (
	"time"

	"github.com/tochemey/worldkernel/eventstream"
	"github.com/tochemey/worldkernel/log"
)

// Option is the interface that applies a Store option.
type Option interface {
	// Apply sets the Option value of a Store.
	Apply(s *Store)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Store)

// Apply applies the option
func (f OptionFunc) Apply(s *Store) {
	f(s)
}

// WithLogger sets the store logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(s *Store) {
		s.logger = logger
	})
}

// WithStream sets the stream the store listens to for component events
func WithStream(stream eventstream.Stream) Option {
	return OptionFunc(func(s *Store) {
		s.stream = stream
	})
}

// WithFlushInterval sets how often dirty entities are written
func WithFlushInterval(interval time.Duration) Option {
	return OptionFunc(func(s *Store) {
		if interval > 0 {
			s.interval = interval
		}
	})
}

// WithRetries sets how many times a failing commit is attempted
func WithRetries(retries int) Option {
	return OptionFunc(func(s *Store) {
		if retries > 0 {
			s.retries = retries
		}
	})
}
