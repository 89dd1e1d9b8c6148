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

package metric

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// KernelMetric groups the plugin lifecycle and component registry instruments.
// Every method is safe on a nil receiver, which disables recording.
type KernelMetric struct {
	pluginActivated     metric.Int64Counter
	pluginFailed        metric.Int64Counter
	pluginRejected      metric.Int64Counter
	pluginDeferred      metric.Int64UpDownCounter
	componentRegistered metric.Int64Counter
	componentUpgraded   metric.Int64Counter
}

// NewKernelMetric creates an instance of KernelMetric
func NewKernelMetric(meter metric.Meter) (*KernelMetric, error) {
	kernelMetric := new(KernelMetric)
	var err error

	if kernelMetric.pluginActivated, err = meter.Int64Counter(
		"plugin_activated_total",
		metric.WithDescription("Total number of activated plugins"),
	); err != nil {
		return nil, fmt.Errorf("failed to create pluginActivated instrument, %w", err)
	}

	if kernelMetric.pluginFailed, err = meter.Int64Counter(
		"plugin_failed_total",
		metric.WithDescription("Total number of plugins whose activation failed"),
	); err != nil {
		return nil, fmt.Errorf("failed to create pluginFailed instrument, %w", err)
	}

	if kernelMetric.pluginRejected, err = meter.Int64Counter(
		"plugin_rejected_total",
		metric.WithDescription("Total number of rejected plugin sources"),
	); err != nil {
		return nil, fmt.Errorf("failed to create pluginRejected instrument, %w", err)
	}

	if kernelMetric.pluginDeferred, err = meter.Int64UpDownCounter(
		"plugin_deferred",
		metric.WithDescription("Number of plugins waiting on dependencies"),
	); err != nil {
		return nil, fmt.Errorf("failed to create pluginDeferred instrument, %w", err)
	}

	if kernelMetric.componentRegistered, err = meter.Int64Counter(
		"component_registered_total",
		metric.WithDescription("Total number of registered component definitions"),
	); err != nil {
		return nil, fmt.Errorf("failed to create componentRegistered instrument, %w", err)
	}

	if kernelMetric.componentUpgraded, err = meter.Int64Counter(
		"component_upgraded_total",
		metric.WithDescription("Total number of component instances migrated by upgrades"),
	); err != nil {
		return nil, fmt.Errorf("failed to create componentUpgraded instrument, %w", err)
	}

	return kernelMetric, nil
}

// RecordPluginActivated records a successful activation
func (x *KernelMetric) RecordPluginActivated(ctx context.Context, name string) {
	if x == nil {
		return
	}
	x.pluginActivated.Add(ctx, 1, metric.WithAttributes(attribute.String("plugin", name)))
}

// RecordPluginFailed records a failed activation
func (x *KernelMetric) RecordPluginFailed(ctx context.Context, name string) {
	if x == nil {
		return
	}
	x.pluginFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("plugin", name)))
}

// RecordPluginRejected records a rejected source with the rejection reason
func (x *KernelMetric) RecordPluginRejected(ctx context.Context, reason string) {
	if x == nil {
		return
	}
	x.pluginRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordPluginDeferred adjusts the number of deferred plugins by delta
func (x *KernelMetric) RecordPluginDeferred(ctx context.Context, delta int64) {
	if x == nil {
		return
	}
	x.pluginDeferred.Add(ctx, delta)
}

// RecordComponentRegistered records a component registration
func (x *KernelMetric) RecordComponentRegistered(ctx context.Context, component string) {
	if x == nil {
		return
	}
	x.componentRegistered.Add(ctx, 1, metric.WithAttributes(attribute.String("component", component)))
}

// RecordComponentUpgraded records count migrated instances of component
func (x *KernelMetric) RecordComponentUpgraded(ctx context.Context, component string, count int64) {
	if x == nil || count <= 0 {
		return
	}
	x.componentUpgraded.Add(ctx, count, metric.WithAttributes(attribute.String("component", component)))
}
