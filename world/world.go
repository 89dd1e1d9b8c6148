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
	"fmt"

	gerrors "github.com/tochemey/worldkernel/errors"
	"github.com/tochemey/worldkernel/internal/xsync"
	"github.com/tochemey/worldkernel/schema"
)

// World is the registry of live entities. It is the instance set the schema
// registry migrates on upgrades.
type World struct {
	entities *xsync.OrderedMap[string, *Entity]
}

var _ schema.InstanceSource = (*World)(nil)

// New creates an empty World
func New() *World {
	return &World{entities: xsync.NewOrderedMap[string, *Entity]()}
}

// Add inserts an entity. Adding an identifier twice fails.
func (w *World) Add(entity *Entity) error {
	if !w.entities.SetIfAbsent(entity.ID(), entity) {
		return fmt.Errorf("entity %s already exists", entity.ID())
	}
	return nil
}

// Remove deletes the entity with the given identifier
func (w *World) Remove(id string) error {
	if _, ok := w.entities.Get(id); !ok {
		return fmt.Errorf("%w: %s", gerrors.ErrEntityNotFound, id)
	}
	w.entities.Delete(id)
	return nil
}

// Get returns the entity with the given identifier
func (w *World) Get(id string) (*Entity, bool) {
	return w.entities.Get(id)
}

// Entities returns the entities in insertion order
func (w *World) Entities() []*Entity {
	return w.entities.Values()
}

// Len returns the number of entities
func (w *World) Len() int {
	return w.entities.Len()
}

// ComponentInstances returns the live instances of the named component in
// entity insertion order.
func (w *World) ComponentInstances(component string) []schema.InstanceRef {
	var refs []schema.InstanceRef
	for _, entity := range w.entities.Values() {
		if instance, ok := entity.Component(component); ok {
			refs = append(refs, schema.InstanceRef{EntityID: entity.ID(), Instance: instance})
		}
	}
	return refs
}
