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

package loader

import (
	"fmt"
	"slices"
	"sync"

	"github.com/tochemey/worldkernel/plugin"
)

// Hooks are the lifecycle callbacks a factory builds for a plugin
type Hooks struct {
	Activate plugin.Hook
	Shutdown plugin.Hook
}

// Factory builds the hooks of the plugin a descriptor declares
type Factory func(descriptor *Descriptor) (Hooks, error)

// Catalog holds the plugin factories compiled into the binary.
// Descriptors only select among them.
type Catalog struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewCatalog creates an empty Catalog
func NewCatalog() *Catalog {
	return &Catalog{factories: make(map[string]Factory)}
}

// Register adds a factory. Names are unique.
func (c *Catalog) Register(name string, factory Factory) error {
	if name == "" || factory == nil {
		return fmt.Errorf("factory name and function are required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.factories[name]; ok {
		return fmt.Errorf("factory %q is already registered", name)
	}
	c.factories[name] = factory
	return nil
}

// MustRegister is Register panicking on error
func (c *Catalog) MustRegister(name string, factory Factory) *Catalog {
	if err := c.Register(name, factory); err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the named factory
func (c *Catalog) Lookup(name string) (Factory, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	factory, ok := c.factories[name]
	return factory, ok
}

// Names returns the registered factory names, sorted
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.factories))
	for name := range c.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
