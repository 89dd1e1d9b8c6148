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
	"time"

	"github.com/spf13/cobra"

	"github.com/tochemey/worldkernel/builtin"
	"github.com/tochemey/worldkernel/config"
	"github.com/tochemey/worldkernel/kernel"
)

// flags are the command line overrides of the environment configuration
type flags struct {
	pluginsDir    string
	dataDir       string
	logLevel      string
	flushInterval time.Duration
	noPersistence bool
	metrics       bool
}

func newRootCommand() *cobra.Command {
	f := new(flags)
	rootCmd := &cobra.Command{
		Use:   "worldkernel",
		Short: "worldkernel - plugin host for a virtual world server",
		Long: `worldkernel loads the plugins declared in a directory of HCL descriptors,
activating each one once the plugins it depends on are active, and hosts the
component registry and the entities those plugins share.

Configuration is read from WORLDKERNEL_* environment variables; flags win.`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	persistent := rootCmd.PersistentFlags()
	persistent.StringVar(&f.pluginsDir, "plugins-dir", "", "directory scanned for plugin descriptors")
	persistent.StringVar(&f.dataDir, "data-dir", "", "directory holding the world database")
	persistent.StringVar(&f.logLevel, "log-level", "", "one of debug, info, warn, error")
	persistent.DurationVar(&f.flushInterval, "flush-interval", 0, "how often dirty entities are saved")
	persistent.BoolVar(&f.noPersistence, "no-persistence", false, "do not save the world")
	persistent.BoolVar(&f.metrics, "metrics", false, "record OpenTelemetry metrics")

	rootCmd.AddCommand(newServeCommand(f))
	rootCmd.AddCommand(newPluginsCommand(f))
	return rootCmd
}

// load merges the environment configuration with the flags that were set
func (f *flags) load(cmd *cobra.Command) (*config.Config, error) {
	var options []config.Option
	changed := cmd.Flags().Changed
	if changed("plugins-dir") {
		options = append(options, config.WithPluginsDir(f.pluginsDir))
	}
	if changed("data-dir") {
		options = append(options, config.WithDataDir(f.dataDir))
	}
	if changed("log-level") {
		options = append(options, config.WithLogLevel(f.logLevel))
	}
	if changed("flush-interval") {
		options = append(options, config.WithFlushInterval(f.flushInterval))
	}
	if changed("no-persistence") {
		options = append(options, config.WithPersistence(!f.noPersistence))
	}
	if changed("metrics") {
		options = append(options, config.WithMetrics(f.metrics))
	}
	return config.Load(options...)
}

// newKernel builds a kernel with the builtin plugin factories
func newKernel(cfg *config.Config, opts ...kernel.Option) (*kernel.Kernel, error) {
	k, err := kernel.New(cfg, opts...)
	if err != nil {
		return nil, err
	}

	if err := builtin.Register(k); err != nil {
		return nil, err
	}
	return k, nil
}
