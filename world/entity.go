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

package world

import (
	"sync"

	"github.com/google/uuid"

	"github.com/tochemey/worldkernel/schema"
)

// Entity is a world object made of component instances, at most one per component name
type Entity struct {
	id string

	mu         sync.RWMutex
	components map[string]*schema.Instance
	order      []string
}

// NewEntity creates an entity with a random identifier
func NewEntity() *Entity {
	return NewEntityWithID(uuid.NewString())
}

// NewEntityWithID creates an entity with the given identifier
func NewEntityWithID(id string) *Entity {
	return &Entity{
		id:         id,
		components: make(map[string]*schema.Instance),
	}
}

// ID returns the entity identifier
func (e *Entity) ID() string {
	return e.id
}

// AddComponent attaches a new instance of definition carrying its defaults.
// When the entity already holds that component the existing instance is returned.
func (e *Entity) AddComponent(definition *schema.Definition) *schema.Instance {
	e.mu.Lock()
	defer e.mu.Unlock()
	if instance, ok := e.components[definition.Name()]; ok {
		return instance
	}
	instance := schema.NewInstance(definition)
	e.components[definition.Name()] = instance
	e.order = append(e.order, definition.Name())
	return instance
}

// Component returns the instance of the named component
func (e *Entity) Component(name string) (*schema.Instance, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	instance, ok := e.components[name]
	return instance, ok
}

// Components returns the component instances in the order they were added
func (e *Entity) Components() []*schema.Instance {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*schema.Instance, 0, len(e.order))
	for _, name := range e.order {
		out = append(out, e.components[name])
	}
	return out
}
