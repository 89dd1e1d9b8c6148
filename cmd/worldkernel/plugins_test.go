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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPluginsCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.hcl"), []byte(`plugin "Chat" { depends_on = ["Auth"] }`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.hcl"), []byte(`plugin "Location" { factory = "location" }`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.hcl"), []byte(`plugin "Location" {}`), 0o600))

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"plugins", "--plugins-dir", dir, "--no-persistence"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	output := out.String()
	assert.Contains(t, output, "NAME")
	assert.Regexp(t, `Chat\s+deferred\s+Auth`, output)
	assert.Regexp(t, `Location\s+active`, output)
	assert.Regexp(t, `Location\s+rejected\s+duplicate module name`, output)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("WORLDKERNEL_PLUGINS_DIR", "/from/env")
	t.Setenv("WORLDKERNEL_LOG_LEVEL", "debug")

	cmd := newRootCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--plugins-dir", "/from/flag", "--metrics"}))

	f := new(flags)
	f.pluginsDir = "/from/flag"
	f.metrics = true
	cfg, err := f.load(cmd)
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", cfg.PluginsDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.MetricsEnabled)
}
