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
	"context"

	"github.com/tochemey/worldkernel/eventstream"
	"github.com/tochemey/worldkernel/log"
	"github.com/tochemey/worldkernel/metric"
)

// Upgrader copies or derives values of old into next. Attributes it does not
// touch keep the defaults of the new definition. It must not retain either
// instance. It may query the Registry, but must not upgrade from within.
type Upgrader func(old, next *Instance)

// InstanceRef is a live component instance together with the entity owning it
type InstanceRef struct {
	EntityID string
	Instance *Instance
}

// InstanceSource exposes the live instances of a component.
// It is typically the world entity registry.
type InstanceSource interface {
	ComponentInstances(component string) []InstanceRef
}

// UpgradeCoordinator migrates live instances of an upgraded component and
// announces each migrated entity on the event stream.
type UpgradeCoordinator struct {
	source InstanceSource
	stream eventstream.Stream
	logger log.Logger
	metric *metric.KernelMetric
}

// NewUpgradeCoordinator creates an UpgradeCoordinator. source and stream may be nil.
func NewUpgradeCoordinator(source InstanceSource, stream eventstream.Stream, logger log.Logger, kernelMetric *metric.KernelMetric) *UpgradeCoordinator {
	if logger == nil {
		logger = log.DiscardLogger
	}
	return &UpgradeCoordinator{
		source: source,
		stream: stream,
		logger: logger,
		metric: kernelMetric,
	}
}

// Migrate moves every live instance of previous to next and returns the number
// of migrated instances. Instances already past previous are left alone.
func (c *UpgradeCoordinator) Migrate(previous, next *Definition, upgrader Upgrader) int {
	if c.source == nil {
		return 0
	}

	migrated := 0
	for _, ref := range c.source.ComponentInstances(previous.Name()) {
		if ref.Instance == nil || ref.Instance.Version() != previous.Version() {
			continue
		}

		ref.Instance.migrate(next, upgrader)
		migrated++

		if c.stream != nil {
			c.stream.Publish(ComponentUpgradedTopic, &ComponentUpgraded{
				EntityID:   ref.EntityID,
				Component:  next.Name(),
				OldVersion: previous.Version(),
				NewVersion: next.Version(),
			})
		}
		c.logger.Debugf("component %s of entity %s migrated to version %d", next.Name(), ref.EntityID, next.Version())
	}

	c.metric.RecordComponentUpgraded(context.Background(), next.Name(), int64(migrated))
	return migrated
}
