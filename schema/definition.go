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
	"strconv"

	"github.com/zeebo/xxh3"

	gerrors "github.com/tochemey/worldkernel/errors"
	"github.com/tochemey/worldkernel/internal/validation"
)

// Attribute describes one typed attribute of a component
type Attribute struct {
	Name    string
	Kind    Kind
	Default any
}

// Definition is an immutable, versioned component schema.
// Upgrades never mutate a Definition; they produce a new one with the same
// name and the next version.
type Definition struct {
	name       string
	version    int
	attributes []Attribute
	index      map[string]int
}

// NewDefinition creates a definition at version 0 with the given attributes in order.
func NewDefinition(name string, attributes ...Attribute) *Definition {
	return newDefinition(name, 0, attributes)
}

func newDefinition(name string, version int, attributes []Attribute) *Definition {
	attrs := make([]Attribute, len(attributes))
	copy(attrs, attributes)
	index := make(map[string]int, len(attrs))
	for i, attr := range attrs {
		if _, ok := index[attr.Name]; !ok {
			index[attr.Name] = i
		}
	}
	return &Definition{
		name:       name,
		version:    version,
		attributes: attrs,
		index:      index,
	}
}

// Name returns the component name
func (d *Definition) Name() string {
	return d.name
}

// Version returns the definition version. It starts at 0.
func (d *Definition) Version() int {
	return d.version
}

// Attributes returns a copy of the ordered attribute set
func (d *Definition) Attributes() []Attribute {
	out := make([]Attribute, len(d.attributes))
	copy(out, d.attributes)
	return out
}

// AttributeNames returns the attribute names in declaration order
func (d *Definition) AttributeNames() []string {
	names := make([]string, 0, len(d.attributes))
	for _, attr := range d.attributes {
		names = append(names, attr.Name)
	}
	return names
}

// Attribute returns the named attribute
func (d *Definition) Attribute(name string) (Attribute, bool) {
	i, ok := d.index[name]
	if !ok {
		return Attribute{}, false
	}
	return d.attributes[i], true
}

// Fingerprint hashes the component name and its ordered attribute
// names and kinds. Defaults do not take part in it.
func (d *Definition) Fingerprint() uint64 {
	hasher := xxh3.New()
	_, _ = hasher.WriteString(d.name)
	for _, attr := range d.attributes {
		_, _ = hasher.WriteString("|")
		_, _ = hasher.WriteString(attr.Name)
		_, _ = hasher.WriteString(":")
		_, _ = hasher.WriteString(strconv.Itoa(int(attr.Kind)))
	}
	return hasher.Sum64()
}

// Validate checks the definition name, that attribute names are valid and
// unique and that every default matches its attribute kind.
func (d *Definition) Validate() error {
	chain := validation.New().AddValidator(validation.NewNameValidator("component name", d.name))
	seen := make(map[string]struct{}, len(d.attributes))
	for _, attr := range d.attributes {
		chain.AddValidator(validation.NewNameValidator("attribute name", attr.Name))
		_, duplicate := seen[attr.Name]
		chain.AddAssertion(!duplicate, fmt.Sprintf("attribute %q is declared twice", attr.Name))
		chain.AddAssertion(attr.Kind.Accepts(attr.Default),
			fmt.Sprintf("default of attribute %q is not a %s", attr.Name, attr.Kind))
		seen[attr.Name] = struct{}{}
	}

	if err := chain.Validate(); err != nil {
		return fmt.Errorf("%w: %w", gerrors.ErrInvalidDefinition, err)
	}
	return nil
}
