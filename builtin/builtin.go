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

// Package builtin holds the plugin factories compiled into the worldkernel binary.
package builtin

import (
	"context"

	"go.uber.org/multierr"

	"github.com/tochemey/worldkernel/kernel"
	"github.com/tochemey/worldkernel/loader"
	"github.com/tochemey/worldkernel/schema"
)

// Factory names
const (
	PersistenceFactory   = "persistence"
	LocationFactory      = "location"
	AuthFactory          = "auth"
	ClientManagerFactory = "client-manager"
)

// Register adds every builtin factory to the kernel catalog
func Register(k *kernel.Kernel) error {
	catalog := k.Catalog()
	return multierr.Combine(
		catalog.Register(PersistenceFactory, persistence(k)),
		catalog.Register(LocationFactory, components(k,
			schema.NewDefinition("position",
				schema.Attribute{Name: "x", Kind: schema.KindFloat, Default: 0.0},
				schema.Attribute{Name: "y", Kind: schema.KindFloat, Default: 0.0},
				schema.Attribute{Name: "z", Kind: schema.KindFloat, Default: 0.0},
			),
			schema.NewDefinition("velocity",
				schema.Attribute{Name: "dx", Kind: schema.KindFloat, Default: 0.0},
				schema.Attribute{Name: "dy", Kind: schema.KindFloat, Default: 0.0},
				schema.Attribute{Name: "dz", Kind: schema.KindFloat, Default: 0.0},
			),
		)),
		catalog.Register(AuthFactory, components(k,
			schema.NewDefinition("credentials",
				schema.Attribute{Name: "user", Kind: schema.KindString, Default: ""},
				schema.Attribute{Name: "token", Kind: schema.KindBytes},
			),
		)),
		catalog.Register(ClientManagerFactory, components(k,
			schema.NewDefinition("session",
				schema.Attribute{Name: "client_id", Kind: schema.KindString, Default: ""},
				schema.Attribute{Name: "user", Kind: schema.KindString, Default: ""},
				schema.Attribute{Name: "connected", Kind: schema.KindBool, Default: false},
			),
		)),
	)
}

// persistence makes the store flush on activation, proving it is writable,
// and once more when plugins shut down.
func persistence(k *kernel.Kernel) loader.Factory {
	flush := func(ctx context.Context) error {
		store := k.Store()
		if store == nil {
			k.Logger().Warn("persistence is disabled, nothing is saved")
			return nil
		}
		return store.Flush(ctx)
	}

	return func(*loader.Descriptor) (loader.Hooks, error) {
		return loader.Hooks{Activate: flush, Shutdown: flush}, nil
	}
}

// components builds plugins registering component definitions on activation
func components(k *kernel.Kernel, definitions ...*schema.Definition) loader.Factory {
	return func(descriptor *loader.Descriptor) (loader.Hooks, error) {
		return loader.Hooks{
			Activate: func(context.Context) error {
				for _, definition := range definitions {
					if err := k.Registry().Register(definition); err != nil {
						return err
					}
				}
				k.Logger().Debugf("plugin %q registered %d components", descriptor.Name, len(definitions))
				return nil
			},
		}, nil
	}
}
