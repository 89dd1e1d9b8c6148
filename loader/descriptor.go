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

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Descriptor is a plugin declaration read from a module source:
//
//	plugin "ClientManager" {
//	  factory    = "client-manager"
//	  depends_on = ["Persistence"]
//	  components = ["session"]
//	}
type Descriptor struct {
	Name       string   `hcl:"name,label"`
	Factory    string   `hcl:"factory,optional"`
	DependsOn  []string `hcl:"depends_on,optional"`
	Components []string `hcl:"components,optional"`
}

// FactoryName returns the catalog entry building the plugin.
// It defaults to the plugin name.
func (d *Descriptor) FactoryName() string {
	if d.Factory == "" {
		return d.Name
	}
	return d.Factory
}

type descriptorFile struct {
	Plugins []*Descriptor `hcl:"plugin,block"`
}

// ParseFile reads the plugin descriptors declared in an HCL file
func ParseFile(path string) ([]*Descriptor, error) {
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return decode(file)
}

// Parse reads the plugin descriptors declared in HCL source
func Parse(src []byte, filename string) ([]*Descriptor, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL source %s: %w", filename, diags)
	}
	return decode(file)
}

func decode(file *hcl.File) ([]*Descriptor, error) {
	var content descriptorFile
	if diags := gohcl.DecodeBody(file.Body, nil, &content); diags.HasErrors() {
		return nil, diags
	}
	return content.Plugins, nil
}
