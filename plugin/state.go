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

// State is the lifecycle state of a load record
type State int

const (
	// Attempted means the source has been seen and is being processed
	Attempted State = iota
	// Deferred means the module waits on plugin dependencies
	Deferred
	// Active means the module activation hook succeeded
	Active
	// Failed means the module activation hook failed. Terminal.
	Failed
	// Rejected means the source had no usable manifest or a duplicate name. Terminal.
	Rejected
)

// String returns the state name
func (s State) String() string {
	switch s {
	case Attempted:
		return "attempted"
	case Deferred:
		return "deferred"
	case Active:
		return "active"
	case Failed:
		return "failed"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Record is a read-only snapshot of a load record
type Record struct {
	Source                string
	Name                  string
	State                 State
	RemainingDependencies []string
	Err                   error
}
