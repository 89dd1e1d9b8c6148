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

package kernel

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/tochemey/worldkernel/config"
	gerrors "github.com/tochemey/worldkernel/errors"
	"github.com/tochemey/worldkernel/eventstream"
	"github.com/tochemey/worldkernel/loader"
	"github.com/tochemey/worldkernel/log"
	"github.com/tochemey/worldkernel/metric"
	"github.com/tochemey/worldkernel/persistence"
	"github.com/tochemey/worldkernel/plugin"
	"github.com/tochemey/worldkernel/schema"
	"github.com/tochemey/worldkernel/world"
)

// Kernel hosts the plugin manager, the component registry and the world.
//
// Plugin factories are added to Catalog between New and Start. Start loads
// the plugins directory; Stop shuts plugins down in reverse activation order
// before closing persistence.
type Kernel struct {
	config *config.Config
	logger log.Logger
	meter  otelmetric.Meter
	dryRun bool

	stream   *eventstream.EventsStream
	metric   *metric.KernelMetric
	registry *schema.Registry
	world    *world.World
	plugins  *plugin.Manager
	catalog  *loader.Catalog
	loader   *loader.Loader
	store    *persistence.Store

	started *atomic.Bool
	stopped *atomic.Bool
}

// New creates a Kernel from a validated configuration
func New(cfg *config.Config, opts ...Option) (*Kernel, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	k := &Kernel{
		config:  cfg,
		started: atomic.NewBool(false),
		stopped: atomic.NewBool(false),
	}

	for _, opt := range opts {
		opt.Apply(k)
	}

	if k.logger == nil {
		k.logger = log.NewZap(cfg.Level(), os.Stdout)
	}

	if cfg.MetricsEnabled {
		if k.meter == nil {
			k.meter = metric.NewProvider().Meter()
		}

		kernelMetric, err := metric.NewKernelMetric(k.meter)
		if err != nil {
			return nil, err
		}
		k.metric = kernelMetric
	}

	k.stream = eventstream.New()
	k.world = world.New()
	k.registry = schema.NewRegistry(
		schema.WithLogger(k.logger.With("subsystem", "schema")),
		schema.WithStream(k.stream),
		schema.WithInstanceSource(k.world),
		schema.WithMetric(k.metric),
	)

	k.plugins = plugin.NewManager(
		plugin.WithLogger(k.logger.With("subsystem", "plugin")),
		plugin.WithStream(k.stream),
		plugin.WithMetric(k.metric),
	)

	loaderOptions := []loader.Option{loader.WithLogger(k.logger.With("subsystem", "loader"))}
	if k.dryRun {
		loaderOptions = append(loaderOptions, loader.WithDryRun())
	}
	k.catalog = loader.NewCatalog()
	k.loader = loader.New(k.plugins, k.catalog, loaderOptions...)
	return k, nil
}

// Start starts persistence then loads every module source of the plugins
// directory. Plugins that fail to load are logged and left out; they can be
// inspected through Plugins().Records().
func (k *Kernel) Start(ctx context.Context) error {
	if k.stopped.Load() || !k.started.CompareAndSwap(false, true) {
		return gerrors.ErrKernelAlreadyStarted
	}

	if k.config.PersistenceEnabled && !k.dryRun {
		store, err := persistence.NewStore(k.config.DatabasePath(), k.world,
			persistence.WithLogger(k.logger.With("subsystem", "persistence")),
			persistence.WithStream(k.stream),
			persistence.WithFlushInterval(k.config.FlushInterval),
		)
		if err != nil {
			return err
		}

		k.store = store
		if err := k.store.Start(ctx); err != nil {
			return err
		}
	}

	dir := k.config.PluginsDir
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		k.logger.Warnf("plugins directory %s does not exist, no plugin loaded", dir)
		return nil
	}

	if err := k.loader.LoadDir(ctx, dir); err != nil {
		if !isModuleError(err) {
			return fmt.Errorf("failed to load plugins: %w", err)
		}
		k.logger.Warnf("some plugins failed to load: %v", err)
	}

	for name, components := range k.plugins.MissingComponents(k.registry) {
		k.logger.Warnf("plugin %q uses unregistered components %v", name, components)
	}

	for _, record := range k.plugins.Deferred() {
		k.logger.Warnf("plugin %q is still waiting on %v", record.Name, record.RemainingDependencies)
	}

	k.logger.Infof("kernel started with %d active plugins", len(k.plugins.Active()))
	return nil
}

// isModuleError reports whether every error of a LoadDir result concerns
// a single module rather than the directory itself
func isModuleError(err error) bool {
	for _, e := range multierr.Errors(err) {
		if !errors.Is(e, gerrors.ErrInvalidModule) &&
			!errors.Is(e, gerrors.ErrDuplicateName) &&
			!errors.Is(e, gerrors.ErrActivation) {
			return false
		}
	}
	return true
}

// Stop shuts the plugins down in reverse activation order, then stops
// persistence and the event stream. Errors are combined; every step runs.
func (k *Kernel) Stop(ctx context.Context) error {
	if !k.started.Load() {
		return gerrors.ErrKernelNotStarted
	}

	if !k.stopped.CompareAndSwap(false, true) {
		return nil
	}

	err := k.plugins.Shutdown(ctx)
	if k.store != nil {
		err = multierr.Append(err, k.store.Stop(ctx))
	}

	k.stream.Close()
	k.logger.Info("kernel stopped")
	return multierr.Append(err, k.logger.Flush())
}

// Config returns the kernel configuration
func (k *Kernel) Config() *config.Config {
	return k.config
}

// Logger returns the kernel logger
func (k *Kernel) Logger() log.Logger {
	return k.logger
}

// Stream returns the kernel event stream
func (k *Kernel) Stream() eventstream.Stream {
	return k.stream
}

// Registry returns the component registry
func (k *Kernel) Registry() *schema.Registry {
	return k.registry
}

// World returns the entity world
func (k *Kernel) World() *world.World {
	return k.world
}

// Plugins returns the plugin manager
func (k *Kernel) Plugins() *plugin.Manager {
	return k.plugins
}

// Catalog returns the catalog of plugin factories
func (k *Kernel) Catalog() *loader.Catalog {
	return k.catalog
}

// Store returns the persistence store, nil before Start or when persistence is disabled
func (k *Kernel) Store() *persistence.Store {
	return k.store
}
