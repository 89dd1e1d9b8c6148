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
	"context"
	"fmt"
	"sync"

	gerrors "github.com/tochemey/worldkernel/errors"
	"github.com/tochemey/worldkernel/eventstream"
	"github.com/tochemey/worldkernel/log"
	"github.com/tochemey/worldkernel/metric"
)

// Registry is the append-only store of component definitions.
//
// Upgrades run one at a time. The definition table lock is only held to read
// or swap entries, so an Upgrader may call Lookup, IsRegistered, ListAll and
// Register. Definitions handed out are immutable, so callers may keep them
// after the lock is released.
type Registry struct {
	// serializes upgrades, held across instance migration
	upgradeMu sync.Mutex

	mu          sync.RWMutex
	definitions map[string]*Definition
	order       []string

	logger log.Logger
	stream eventstream.Stream
	source InstanceSource
	metric *metric.KernelMetric
}

// NewRegistry creates an empty Registry
func NewRegistry(opts ...Option) *Registry {
	registry := &Registry{
		definitions: make(map[string]*Definition),
		logger:      log.DiscardLogger,
	}
	for _, opt := range opts {
		opt.Apply(registry)
	}
	return registry
}

// Register adds a definition at version 0, whatever version the given
// definition carries. It fails with a RegistrationError when the name is
// taken, leaving the stored definition untouched.
func (r *Registry) Register(definition *Definition) error {
	if definition == nil {
		return fmt.Errorf("%w: nil definition", gerrors.ErrInvalidDefinition)
	}

	if err := definition.Validate(); err != nil {
		r.logger.Warnf("component %q rejected: %v", definition.Name(), err)
		return err
	}

	r.mu.Lock()
	if _, ok := r.definitions[definition.name]; ok {
		r.mu.Unlock()
		r.logger.Warnf("component %q is already registered", definition.name)
		return gerrors.NewRegistrationError(definition.name)
	}

	stored := definition
	if definition.version != 0 {
		stored = newDefinition(definition.name, 0, definition.attributes)
	}

	r.definitions[stored.name] = stored
	r.order = append(r.order, stored.name)
	if r.stream != nil {
		r.stream.Publish(ComponentRegisteredTopic, &ComponentRegistered{Definition: stored})
	}
	r.mu.Unlock()

	r.metric.RecordComponentRegistered(context.Background(), stored.name)
	r.logger.Debugf("component %q registered with %d attributes", stored.name, len(stored.attributes))
	return nil
}

// Lookup returns the current definition of the named component
func (r *Registry) Lookup(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	definition, ok := r.definitions[name]
	return definition, ok
}

// IsRegistered reports whether the named component exists
func (r *Registry) IsRegistered(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// ListAll returns the current definitions in registration order
func (r *Registry) ListAll() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.definitions[name])
	}
	return out
}

// Upgrade replaces the attribute set of a registered component, bumping its
// version by one, and migrates every live instance through upgrader. A
// ComponentDefinitionUpgraded event is published once, then a
// ComponentUpgraded event per migrated entity. upgrader must not call Upgrade.
func (r *Registry) Upgrade(name string, attributes []Attribute, upgrader Upgrader) error {
	r.upgradeMu.Lock()
	defer r.upgradeMu.Unlock()

	r.mu.Lock()
	previous, ok := r.definitions[name]
	if !ok {
		r.mu.Unlock()
		r.logger.Warnf("cannot upgrade component %q: not registered", name)
		return gerrors.NewUnknownComponentError(name)
	}

	next := newDefinition(name, previous.version+1, attributes)
	if err := next.Validate(); err != nil {
		r.mu.Unlock()
		r.logger.Warnf("cannot upgrade component %q: %v", name, err)
		return err
	}

	r.definitions[name] = next
	if r.stream != nil {
		r.stream.Publish(ComponentDefinitionUpgradedTopic, &ComponentDefinitionUpgraded{
			Definition: next,
			OldVersion: previous.version,
		})
	}
	r.mu.Unlock()

	coordinator := NewUpgradeCoordinator(r.source, r.stream, r.logger, r.metric)
	migrated := coordinator.Migrate(previous, next, upgrader)

	r.logger.Infof("component %q upgraded from version %d to %d, %d instance(s) migrated",
		name, previous.version, next.version, migrated)
	return nil
}
