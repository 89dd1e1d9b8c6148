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

package schema

import (
	"fmt"
	"maps"
	"sync"

	gerrors "github.com/tochemey/worldkernel/errors"
)

// Instance is a snapshot of a Definition plus concrete attribute values.
// It refers to its definition by pointer to the exact version it was built
// from; upgrades swap that pointer in place.
type Instance struct {
	mu         sync.RWMutex
	definition *Definition
	values     map[string]any
}

// NewInstance creates an instance carrying the definition defaults
func NewInstance(definition *Definition) *Instance {
	values := make(map[string]any, len(definition.attributes))
	for _, attr := range definition.attributes {
		values[attr.Name] = attr.Default
	}
	return &Instance{definition: definition, values: values}
}

// Definition returns the definition version the instance conforms to
func (i *Instance) Definition() *Definition {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.definition
}

// Component returns the component name
func (i *Instance) Component() string {
	return i.Definition().Name()
}

// Version returns the version of the definition the instance conforms to
func (i *Instance) Version() int {
	return i.Definition().Version()
}

// Get returns the value of the named attribute
func (i *Instance) Get(name string) (any, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	v, ok := i.values[name]
	return v, ok
}

// Set assigns an attribute value. It fails for attributes the definition does
// not declare and for values that do not match the attribute kind.
func (i *Instance) Set(name string, value any) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	attr, ok := i.definition.Attribute(name)
	if !ok {
		return fmt.Errorf("%w: %s.%s", gerrors.ErrUnknownAttribute, i.definition.name, name)
	}
	if !attr.Kind.Accepts(value) {
		return fmt.Errorf("attribute %s.%s expects %s, got %T", i.definition.name, name, attr.Kind, value)
	}
	i.values[name] = value
	return nil
}

// Values returns a copy of the attribute values
func (i *Instance) Values() map[string]any {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return maps.Clone(i.values)
}

func (i *Instance) clone() *Instance {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return &Instance{definition: i.definition, values: maps.Clone(i.values)}
}

// migrate rebuilds the instance against next. upgrader reads a frozen copy of
// the current state and writes into a fresh instance carrying next's defaults;
// the result then replaces the instance state in place.
func (i *Instance) migrate(next *Definition, upgrader Upgrader) {
	old := i.clone()
	fresh := NewInstance(next)
	if upgrader != nil {
		upgrader(old, fresh)
	}

	fresh.mu.RLock()
	values := fresh.values
	fresh.mu.RUnlock()

	i.mu.Lock()
	i.definition = next
	i.values = values
	i.mu.Unlock()
}
