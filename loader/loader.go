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
	"context"
	"fmt"
	"runtime"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/worldkernel/log"
	"github.com/tochemey/worldkernel/plugin"
)

// Loader discovers HCL module sources and feeds them to a plugin.Manager
type Loader struct {
	manager     *plugin.Manager
	catalog     *Catalog
	logger      log.Logger
	parallelism int
	dryRun      bool
}

// New creates a Loader
func New(manager *plugin.Manager, catalog *Catalog, opts ...Option) *Loader {
	loader := &Loader{
		manager:     manager,
		catalog:     catalog,
		logger:      log.DiscardLogger,
		parallelism: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt.Apply(loader)
	}
	return loader
}

// Provider returns the plugin.Provider of a module source file.
// The file is read when the manager asks for its manifests.
func (l *Loader) Provider(path string) plugin.Provider {
	return plugin.ProviderFunc(func() ([]*plugin.Manifest, error) {
		descriptors, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		return l.manifests(descriptors)
	})
}

type parsed struct {
	manifests []*plugin.Manifest
	err       error
}

// LoadDir discovers the module sources under dir and attempts each of them,
// in lexical path order. Sources are parsed concurrently but handed to the
// manager one at a time. A failing source does not stop the others; every
// failure is returned combined.
func (l *Loader) LoadDir(ctx context.Context, dir string) error {
	paths, err := findSources(dir)
	if err != nil {
		return fmt.Errorf("failed to walk plugins directory %s: %w", dir, err)
	}

	if len(paths) == 0 {
		l.logger.Warnf("no %s module sources found in %s", Extension, dir)
		return nil
	}

	results := make([]parsed, len(paths))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(l.parallelism)
	for i, path := range paths {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}

			descriptors, err := ParseFile(path)
			if err != nil {
				results[i] = parsed{err: err}
				return nil
			}

			manifests, err := l.manifests(descriptors)
			results[i] = parsed{manifests: manifests, err: err}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	var loadErr error
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return multierr.Append(loadErr, err)
		}

		result := results[i]
		provider := plugin.ProviderFunc(func() ([]*plugin.Manifest, error) {
			return result.manifests, result.err
		})

		if err := l.manager.AttemptLoad(ctx, path, provider); err != nil {
			loadErr = multierr.Append(loadErr, err)
		}
	}

	l.logger.Infof("%d module sources attempted from %s", len(paths), dir)
	return loadErr
}

// manifests builds one manifest per descriptor out of the catalog factories
func (l *Loader) manifests(descriptors []*Descriptor) ([]*plugin.Manifest, error) {
	manifests := make([]*plugin.Manifest, 0, len(descriptors))
	for _, descriptor := range descriptors {
		manifest, err := l.manifest(descriptor)
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, manifest)
	}
	return manifests, nil
}

func (l *Loader) manifest(descriptor *Descriptor) (*plugin.Manifest, error) {
	manifest := &plugin.Manifest{
		Name:                  descriptor.Name,
		PluginDependencies:    descriptor.DependsOn,
		ComponentDependencies: descriptor.Components,
	}

	if l.dryRun {
		manifest.Activate = func(context.Context) error { return nil }
		return manifest, nil
	}

	factory, ok := l.catalog.Lookup(descriptor.FactoryName())
	if !ok {
		return nil, fmt.Errorf("plugin %q: unknown factory %q", descriptor.Name, descriptor.FactoryName())
	}

	hooks, err := factory(descriptor)
	if err != nil {
		return nil, fmt.Errorf("plugin %q: %w", descriptor.Name, err)
	}

	manifest.Activate = hooks.Activate
	manifest.Shutdown = hooks.Shutdown
	return manifest, nil
}
