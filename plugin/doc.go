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

// Package plugin is the plugin lifecycle and dependency-resolution kernel.
//
// Module sources are fed to a Manager in any order. Each source is attempted
// at most once; its manifest is validated and the module is either activated
// right away, when every plugin it depends on is already active, or deferred.
// Every successful activation releases the deferred modules waiting on it,
// depth first and in discovery order, until no more module becomes ready.
//
// Only plugin-name dependencies drive activation. Component dependencies are
// informational: they are reported by Manager.MissingComponents but never
// gate activation. Cycles are not detected; modules in a cycle, or depending
// on themselves, stay deferred forever.
package plugin
