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
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tochemey/worldkernel/kernel"
	"github.com/tochemey/worldkernel/log"
	"github.com/tochemey/worldkernel/plugin"
)

func newPluginsCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "Resolve the plugins without running them",
		Long: `Resolve the plugin descriptors of the plugins directory and print the
state each plugin would end in, without running any plugin hook.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}

			k, err := newKernel(cfg, kernel.WithDryRun(), kernel.WithLogger(log.DiscardLogger))
			if err != nil {
				return err
			}

			if err := k.Start(cmd.Context()); err != nil {
				return err
			}

			printRecords(cmd.OutOrStdout(), k.Plugins().Records())
			return k.Stop(cmd.Context())
		},
	}
}

func printRecords(out io.Writer, records []plugin.Record) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tSTATE\tWAITING ON\tSOURCE")
	for _, record := range records {
		name := record.Name
		if name == "" {
			name = "-"
		}

		waiting := strings.Join(record.RemainingDependencies, ",")
		if record.Err != nil {
			waiting = record.Err.Error()
		}
		if waiting == "" {
			waiting = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, record.State, waiting, record.Source)
	}
	_ = w.Flush()
}
