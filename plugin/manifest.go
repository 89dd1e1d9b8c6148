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

	gerrors "github.com/tochemey/worldkernel/errors"
	"github.com/tochemey/worldkernel/internal/validation"
)

// Hook is a module lifecycle callback
type Hook func(ctx context.Context) error

// Manifest is the static description a module provides about itself.
// It must not be mutated once handed to a Manager.
type Manifest struct {
	// Name uniquely identifies the module
	Name string
	// PluginDependencies lists the names of the modules that must be active first
	PluginDependencies []string
	// ComponentDependencies lists the component names the module uses.
	// They are informational and never gate activation.
	ComponentDependencies []string
	// Activate is called once every plugin dependency is active
	Activate Hook
	// Shutdown is called on kernel shutdown when the module is active. Optional.
	Shutdown Hook
}

// Validate checks the manifest is usable. A module depending on itself is
// valid; it simply never activates.
func (m *Manifest) Validate() error {
	chain := validation.New().
		AddValidator(validation.NewNameValidator("plugin name", m.Name)).
		AddAssertion(m.Activate != nil, "the activation hook is required")

	for _, dependency := range m.PluginDependencies {
		chain.AddAssertion(dependency != "", "plugin dependency names must not be empty")
	}
	for _, dependency := range m.ComponentDependencies {
		chain.AddAssertion(dependency != "", "component dependency names must not be empty")
	}

	if err := chain.Validate(); err != nil {
		return fmt.Errorf("%w: %w", gerrors.ErrInvalidManifest, err)
	}
	return nil
}
