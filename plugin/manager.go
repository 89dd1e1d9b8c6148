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
	"context"
	"fmt"
	"slices"
	"sync"

	goset "github.com/deckarep/golang-set/v2"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	gerrors "github.com/tochemey/worldkernel/errors"
	"github.com/tochemey/worldkernel/eventstream"
	"github.com/tochemey/worldkernel/log"
	"github.com/tochemey/worldkernel/metric"
)

// ComponentLookup reports whether a component is registered.
// *schema.Registry implements it.
type ComponentLookup interface {
	IsRegistered(name string) bool
}

// record is the manager's bookkeeping for one attempted source
type record struct {
	source    string
	manifest  *Manifest
	state     State
	remaining goset.Set[string]
	err       error
}

func (r *record) name() string {
	if r.manifest == nil {
		return ""
	}
	return r.manifest.Name
}

// Manager drives the lifecycle of modules.
//
// AttemptLoad and Shutdown are serialized: lifecycle hooks never run
// concurrently. Queries only take a short read lock, so hooks may call them.
// A hook must not call AttemptLoad or Shutdown.
type Manager struct {
	// serializes lifecycle mutations, held across hooks
	loadMu sync.Mutex

	// guards the fields below, never held across hooks
	mu        sync.RWMutex
	sources   map[string]*record
	records   []*record
	byName    map[string]*record
	active    []*record
	activeSet goset.Set[string]

	shutdown *atomic.Bool

	logger       log.Logger
	stream       eventstream.Stream
	metric       *metric.KernelMetric
	canonicalize Canonicalizer
}

// NewManager creates an empty Manager
func NewManager(opts ...Option) *Manager {
	manager := &Manager{
		sources:      make(map[string]*record),
		byName:       make(map[string]*record),
		activeSet:    goset.NewThreadUnsafeSet[string](),
		shutdown:     atomic.NewBool(false),
		logger:       log.DiscardLogger,
		canonicalize: CanonicalPath,
	}

	for _, opt := range opts {
		opt.Apply(manager)
	}
	return manager
}

// AttemptLoad processes a module source discovered in the environment.
//
// A source already attempted, by its canonical identifier, is a no-op. A
// source without exactly one valid manifest fails with an InvalidModuleError
// and a name already claimed fails with a DuplicateNameError. Otherwise the
// module is activated when all its plugin dependencies are active, or
// deferred. Every activation then releases the deferred modules it unblocks.
//
// The returned error carries the activation failures of the loaded module and
// of any module activated in the resulting cascade. A failing module never
// stops the cascade.
func (m *Manager) AttemptLoad(ctx context.Context, source string, provider Provider) error {
	canonical := m.canonicalize(source)

	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	m.mu.Lock()
	if _, ok := m.sources[canonical]; ok {
		m.mu.Unlock()
		m.logger.Debugf("source %s already attempted", canonical)
		return nil
	}

	rec := &record{source: canonical, state: Attempted}
	m.sources[canonical] = rec
	m.records = append(m.records, rec)
	m.mu.Unlock()

	manifest, err := m.discover(canonical, provider)
	if err != nil {
		m.reject(ctx, rec, "invalid", err)
		return err
	}

	// Failed modules stay in byName on purpose: a name that failed to
	// activate is not handed to a later source.
	m.mu.Lock()
	if existing, ok := m.byName[manifest.Name]; ok {
		rec.manifest = manifest
		m.mu.Unlock()
		err := gerrors.NewDuplicateNameError(manifest.Name, canonical, existing.source)
		m.reject(ctx, rec, "duplicate", err)
		return err
	}

	rec.manifest = manifest
	rec.remaining = Outstanding(manifest, m.activeSet)
	m.byName[manifest.Name] = rec
	if rec.remaining.Cardinality() > 0 {
		rec.state = Deferred
		waiting := rec.remaining.ToSlice()
		m.mu.Unlock()

		slices.Sort(waiting)
		m.metric.RecordPluginDeferred(ctx, 1)
		m.logger.Infof("plugin %q deferred, waiting on %v", manifest.Name, waiting)
		return nil
	}
	m.mu.Unlock()

	return m.cascade(ctx, rec)
}

// discover extracts and validates the single manifest of a source
func (m *Manager) discover(source string, provider Provider) (manifest *Manifest, err error) {
	if provider == nil {
		return nil, gerrors.NewInvalidModuleError(source, fmt.Errorf("no provider"))
	}

	defer func() {
		if r := recover(); r != nil {
			manifest = nil
			err = gerrors.NewInvalidModuleError(source, fmt.Errorf("provider panicked: %v", r))
		}
	}()

	manifests, err := provider.Manifests()
	if err != nil {
		return nil, gerrors.NewInvalidModuleError(source, err)
	}

	switch len(manifests) {
	case 0:
		return nil, gerrors.NewInvalidModuleError(source, fmt.Errorf("no manifest found"))
	case 1:
	default:
		return nil, gerrors.NewInvalidModuleError(source, fmt.Errorf("%d manifests found, expected one", len(manifests)))
	}

	manifest = manifests[0]
	if manifest == nil {
		return nil, gerrors.NewInvalidModuleError(source, fmt.Errorf("nil manifest"))
	}

	if err := manifest.Validate(); err != nil {
		return nil, gerrors.NewInvalidModuleError(source, err)
	}
	return manifest, nil
}

func (m *Manager) reject(ctx context.Context, rec *record, reason string, err error) {
	m.mu.Lock()
	rec.state = Rejected
	rec.err = err
	m.mu.Unlock()

	m.metric.RecordPluginRejected(ctx, reason)
	m.logger.Warnf("module source %s rejected: %v", rec.source, err)
}

// cascade activates the given ready record and then, depth first, every
// deferred record its activation unblocks. Ready records are taken off the
// deferred set as soon as they are collected so none is activated twice.
func (m *Manager) cascade(ctx context.Context, ready *record) error {
	var err error
	stack := []*record{ready}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if activationErr := m.activate(ctx, current); activationErr != nil {
			err = multierr.Append(err, activationErr)
			continue
		}

		released := m.release(ctx, current.manifest.Name)
		// push in reverse so the first discovered is activated first
		for i := len(released) - 1; i >= 0; i-- {
			stack = append(stack, released[i])
		}
	}
	return err
}

// activate runs the activation hook of a record whose dependencies are all active
func (m *Manager) activate(ctx context.Context, rec *record) error {
	name := rec.manifest.Name
	if err := invoke(ctx, rec.manifest.Activate); err != nil {
		activationErr := gerrors.NewActivationError(name, err)

		m.mu.Lock()
		rec.state = Failed
		rec.err = activationErr
		m.mu.Unlock()

		m.metric.RecordPluginFailed(ctx, name)
		m.logger.Errorf("plugin %q failed to activate: %v", name, err)
		return activationErr
	}

	m.mu.Lock()
	rec.state = Active
	m.active = append(m.active, rec)
	m.activeSet.Add(name)
	m.mu.Unlock()

	if m.stream != nil {
		m.stream.Publish(ModuleActivatedTopic, &ModuleActivated{Name: name, Source: rec.source})
	}

	m.metric.RecordPluginActivated(ctx, name)
	m.logger.Infof("plugin %q activated", name)
	return nil
}

// release removes name from the outstanding dependencies of deferred records
// and returns, in discovery order, those left without any.
func (m *Manager) release(ctx context.Context, name string) []*record {
	m.mu.Lock()
	var ready []*record
	for _, rec := range m.records {
		if rec.state != Deferred {
			continue
		}

		rec.remaining.Remove(name)
		if rec.remaining.Cardinality() == 0 {
			rec.state = Attempted
			ready = append(ready, rec)
		}
	}
	m.mu.Unlock()

	if len(ready) > 0 {
		m.metric.RecordPluginDeferred(ctx, -int64(len(ready)))
	}
	return ready
}

// IsSourceLoaded reports whether the module of the given source is active
func (m *Manager) IsSourceLoaded(source string) bool {
	canonical := m.canonicalize(source)

	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.sources[canonical]
	return ok && rec.state == Active
}

// IsNameActive reports whether a module with the given name is active
func (m *Manager) IsNameActive(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeSet.Contains(name)
}

// Active returns the names of the active modules in activation order
func (m *Manager) Active() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.active))
	for _, rec := range m.active {
		names = append(names, rec.manifest.Name)
	}
	return names
}

// Records returns a snapshot of every attempted source in discovery order
func (m *Manager) Records() []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		records = append(records, snapshot(rec))
	}
	return records
}

// Deferred returns a snapshot of the deferred modules in discovery order
func (m *Manager) Deferred() []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var records []Record
	for _, rec := range m.records {
		if rec.state == Deferred {
			records = append(records, snapshot(rec))
		}
	}
	return records
}

// MissingComponents returns, per active or deferred module, the component
// dependencies the lookup does not know about. Modules missing nothing are
// left out. The result is informational and never affects activation.
func (m *Manager) MissingComponents(lookup ComponentLookup) map[string][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	missing := make(map[string][]string)
	for _, rec := range m.records {
		if rec.manifest == nil || (rec.state != Active && rec.state != Deferred) {
			continue
		}

		for _, component := range rec.manifest.ComponentDependencies {
			if !lookup.IsRegistered(component) {
				missing[rec.manifest.Name] = append(missing[rec.manifest.Name], component)
			}
		}
	}
	return missing
}

// Shutdown calls the shutdown hook of every active module in reverse
// activation order. Failures are logged and combined, and never stop the
// remaining hooks. Calling Shutdown more than once is a no-op.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	if !m.shutdown.CompareAndSwap(false, true) {
		return nil
	}

	m.mu.RLock()
	active := slices.Clone(m.active)
	m.mu.RUnlock()

	var err error
	for i := len(active) - 1; i >= 0; i-- {
		manifest := active[i].manifest
		if manifest.Shutdown == nil {
			continue
		}

		if shutdownErr := invoke(ctx, manifest.Shutdown); shutdownErr != nil {
			m.logger.Errorf("plugin %q failed to shut down: %v", manifest.Name, shutdownErr)
			err = multierr.Append(err, fmt.Errorf("plugin %q shutdown: %w", manifest.Name, shutdownErr))
			continue
		}
		m.logger.Debugf("plugin %q shut down", manifest.Name)
	}
	return err
}

// invoke calls a hook, turning a panic into an error
func invoke(ctx context.Context, hook Hook) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return hook(ctx)
}

func snapshot(rec *record) Record {
	out := Record{
		Source: rec.source,
		Name:   rec.name(),
		State:  rec.state,
		Err:    rec.err,
	}

	if rec.state == Deferred && rec.remaining != nil {
		out.RemainingDependencies = rec.remaining.ToSlice()
		slices.Sort(out.RemainingDependencies)
	}
	return out
}
