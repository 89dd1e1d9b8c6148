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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/worldkernel/errors"
	"github.com/tochemey/worldkernel/eventstream"
)

type fakeSource struct {
	refs []InstanceRef
}

func (f *fakeSource) ComponentInstances(component string) []InstanceRef {
	var out []InstanceRef
	for _, ref := range f.refs {
		if ref.Instance.Component() == component {
			out = append(out, ref)
		}
	}
	return out
}

func xyz() []Attribute {
	return []Attribute{
		{Name: "x", Kind: KindFloat, Default: 0.0},
		{Name: "y", Kind: KindFloat, Default: 0.0},
		{Name: "z", Kind: KindFloat, Default: 0.0},
	}
}

func TestRegister(t *testing.T) {
	t.Run("With duplicate name", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(NewDefinition("position", xyz()...)))

		err := registry.Register(NewDefinition("position",
			Attribute{Name: "x", Kind: KindFloat},
			Attribute{Name: "y", Kind: KindFloat}))
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrRegistration)

		definition, ok := registry.Lookup("position")
		require.True(t, ok)
		assert.Equal(t, []string{"x", "y", "z"}, definition.AttributeNames())
		assert.Zero(t, definition.Version())
	})
	t.Run("With invalid definition", func(t *testing.T) {
		registry := NewRegistry()
		err := registry.Register(NewDefinition("position",
			Attribute{Name: "x", Kind: KindFloat},
			Attribute{Name: "x", Kind: KindFloat}))
		require.ErrorIs(t, err, gerrors.ErrInvalidDefinition)

		err = registry.Register(NewDefinition("", Attribute{Name: "x"}))
		require.ErrorIs(t, err, gerrors.ErrInvalidDefinition)

		err = registry.Register(NewDefinition("mesh", Attribute{Name: "uri", Kind: KindString, Default: 3}))
		require.ErrorIs(t, err, gerrors.ErrInvalidDefinition)

		require.ErrorIs(t, registry.Register(nil), gerrors.ErrInvalidDefinition)
		assert.Empty(t, registry.ListAll())
	})
	t.Run("With registration order and event", func(t *testing.T) {
		stream := eventstream.New()
		t.Cleanup(stream.Close)
		sub := stream.AddSubscriber()
		stream.Subscribe(sub, ComponentRegisteredTopic)

		registry := NewRegistry(WithStream(stream))
		require.NoError(t, registry.Register(NewDefinition("position", xyz()...)))
		require.NoError(t, registry.Register(NewDefinition("orientation", Attribute{Name: "w", Kind: KindFloat, Default: 1.0})))

		var names []string
		for _, definition := range registry.ListAll() {
			names = append(names, definition.Name())
		}
		assert.Equal(t, []string{"position", "orientation"}, names)
		assert.True(t, registry.IsRegistered("orientation"))
		assert.False(t, registry.IsRegistered("velocity"))

		var registered []string
		for message := range sub.Iterator() {
			event, ok := message.Payload().(*ComponentRegistered)
			require.True(t, ok)
			registered = append(registered, event.Definition.Name())
		}
		assert.Equal(t, []string{"position", "orientation"}, registered)
	})
	t.Run("With lookup of unknown name", func(t *testing.T) {
		definition, ok := NewRegistry().Lookup("unknown")
		assert.False(t, ok)
		assert.Nil(t, definition)
	})
}

func TestUpgrade(t *testing.T) {
	t.Run("With unknown component", func(t *testing.T) {
		err := NewRegistry().Upgrade("position", xyz(), nil)
		require.ErrorIs(t, err, gerrors.ErrUnknownComponent)
	})
	t.Run("With one live instance", func(t *testing.T) {
		stream := eventstream.New()
		t.Cleanup(stream.Close)
		sub := stream.AddSubscriber()
		stream.Subscribe(sub, ComponentUpgradedTopic)

		source := new(fakeSource)
		registry := NewRegistry(WithStream(stream), WithInstanceSource(source))
		require.NoError(t, registry.Register(NewDefinition("position", xyz()...)))

		definition, _ := registry.Lookup("position")
		instance := NewInstance(definition)
		require.NoError(t, instance.Set("x", 1.0))
		require.NoError(t, instance.Set("y", 2.0))
		require.NoError(t, instance.Set("z", 3.0))
		source.refs = append(source.refs, InstanceRef{EntityID: "e1", Instance: instance})

		attributes := append(xyz(), Attribute{Name: "w", Kind: KindFloat, Default: 1.0})
		calls := 0
		err := registry.Upgrade("position", attributes, func(old, next *Instance) {
			calls++
			for _, name := range []string{"x", "y", "z"} {
				v, _ := old.Get(name)
				require.NoError(t, next.Set(name, v))
			}
		})
		require.NoError(t, err)
		require.Equal(t, 1, calls)

		upgraded, ok := registry.Lookup("position")
		require.True(t, ok)
		assert.Equal(t, 1, upgraded.Version())
		assert.Equal(t, []string{"x", "y", "z", "w"}, upgraded.AttributeNames())

		assert.Same(t, upgraded, instance.Definition())
		assert.Equal(t, map[string]any{"x": 1.0, "y": 2.0, "z": 3.0, "w": 1.0}, instance.Values())

		var events []*ComponentUpgraded
		for message := range sub.Iterator() {
			events = append(events, message.Payload().(*ComponentUpgraded))
		}
		require.Len(t, events, 1)
		assert.Equal(t, &ComponentUpgraded{EntityID: "e1", Component: "position", OldVersion: 0, NewVersion: 1}, events[0])
	})
	t.Run("With untouched attributes keeping new defaults", func(t *testing.T) {
		source := new(fakeSource)
		registry := NewRegistry(WithInstanceSource(source))
		require.NoError(t, registry.Register(NewDefinition("position", xyz()...)))
		definition, _ := registry.Lookup("position")
		instance := NewInstance(definition)
		require.NoError(t, instance.Set("x", 5.0))
		source.refs = append(source.refs, InstanceRef{EntityID: "e1", Instance: instance})

		attributes := []Attribute{
			{Name: "x", Kind: KindFloat, Default: 0.0},
			{Name: "y", Kind: KindFloat, Default: 9.0},
		}
		require.NoError(t, registry.Upgrade("position", attributes, func(old, next *Instance) {
			v, _ := old.Get("x")
			_ = next.Set("x", v)
		}))
		assert.Equal(t, map[string]any{"x": 5.0, "y": 9.0}, instance.Values())

		// a second upgrade keeps bumping the version
		require.NoError(t, registry.Upgrade("position", attributes, nil))
		upgraded, _ := registry.Lookup("position")
		assert.Equal(t, 2, upgraded.Version())
		assert.Equal(t, map[string]any{"x": 0.0, "y": 9.0}, instance.Values())
	})
	t.Run("With invalid attribute set", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(NewDefinition("position", xyz()...)))
		err := registry.Upgrade("position", []Attribute{{Name: ""}}, nil)
		require.ErrorIs(t, err, gerrors.ErrInvalidDefinition)

		definition, _ := registry.Lookup("position")
		assert.Zero(t, definition.Version())
	})
	t.Run("With one event per migrated entity", func(t *testing.T) {
		stream := eventstream.New()
		t.Cleanup(stream.Close)
		sub := stream.AddSubscriber()
		stream.Subscribe(sub, ComponentUpgradedTopic)

		source := new(fakeSource)
		registry := NewRegistry(WithStream(stream), WithInstanceSource(source))
		require.NoError(t, registry.Register(NewDefinition("position", xyz()...)))
		require.NoError(t, registry.Register(NewDefinition("mesh", Attribute{Name: "uri", Kind: KindString})))
		position, _ := registry.Lookup("position")
		mesh, _ := registry.Lookup("mesh")
		source.refs = []InstanceRef{
			{EntityID: "e1", Instance: NewInstance(position)},
			{EntityID: "e2", Instance: NewInstance(position)},
			{EntityID: "e3", Instance: NewInstance(mesh)},
		}

		require.NoError(t, registry.Upgrade("position", xyz(), nil))

		var entities []string
		for message := range sub.Iterator() {
			entities = append(entities, message.Payload().(*ComponentUpgraded).EntityID)
		}
		assert.Equal(t, []string{"e1", "e2"}, entities)
		assert.Zero(t, source.refs[2].Instance.Version())
	})
	t.Run("With a definition event and no live instance", func(t *testing.T) {
		stream := eventstream.New()
		t.Cleanup(stream.Close)
		sub := stream.AddSubscriber()
		stream.Subscribe(sub, ComponentDefinitionUpgradedTopic)
		stream.Subscribe(sub, ComponentUpgradedTopic)

		registry := NewRegistry(WithStream(stream), WithInstanceSource(new(fakeSource)))
		require.NoError(t, registry.Register(NewDefinition("position", Attribute{Name: "x", Kind: KindFloat})))
		require.NoError(t, registry.Upgrade("position", xyz(), nil))

		var events []any
		for message := range sub.Iterator() {
			events = append(events, message.Payload())
		}
		require.Len(t, events, 1)
		event, ok := events[0].(*ComponentDefinitionUpgraded)
		require.True(t, ok)
		assert.Equal(t, 0, event.OldVersion)
		assert.Equal(t, 1, event.Definition.Version())
		assert.Equal(t, []string{"x", "y", "z"}, event.Definition.AttributeNames())
	})
	t.Run("With an upgrader reading the registry", func(t *testing.T) {
		source := new(fakeSource)
		registry := NewRegistry(WithInstanceSource(source))
		require.NoError(t, registry.Register(NewDefinition("position", xyz()...)))
		require.NoError(t, registry.Register(NewDefinition("scale", Attribute{Name: "factor", Kind: KindFloat, Default: 2.0})))
		definition, _ := registry.Lookup("position")
		instance := NewInstance(definition)
		source.refs = append(source.refs, InstanceRef{EntityID: "e1", Instance: instance})

		attributes := append(xyz(), Attribute{Name: "factor", Kind: KindFloat})
		done := make(chan error, 1)
		go func() {
			done <- registry.Upgrade("position", attributes, func(_, next *Instance) {
				scale, ok := registry.Lookup("scale")
				if !ok {
					return
				}
				current, _ := registry.Lookup("position")
				_ = next.Set("factor", float64(current.Version())+scale.Attributes()[0].Default.(float64))
			})
		}()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("upgrade did not return")
		}

		value, _ := instance.Get("factor")
		assert.Equal(t, 3.0, value)
		assert.Len(t, registry.ListAll(), 2)
	})
}

func TestDefinition(t *testing.T) {
	definition := NewDefinition("position", xyz()...)
	attr, ok := definition.Attribute("y")
	require.True(t, ok)
	assert.Equal(t, KindFloat, attr.Kind)
	_, ok = definition.Attribute("w")
	assert.False(t, ok)

	same := NewDefinition("position", xyz()...)
	assert.Equal(t, definition.Fingerprint(), same.Fingerprint())

	other := NewDefinition("position", xyz()[:2]...)
	assert.NotEqual(t, definition.Fingerprint(), other.Fingerprint())

	// returned attributes are a copy
	attrs := definition.Attributes()
	attrs[0].Name = "changed"
	assert.Equal(t, "x", definition.Attributes()[0].Name)
}

func TestInstance(t *testing.T) {
	definition := NewDefinition("avatar",
		Attribute{Name: "nickname", Kind: KindString, Default: "guest"},
		Attribute{Name: "online", Kind: KindBool, Default: false},
		Attribute{Name: "level", Kind: KindInt, Default: 1},
	)
	instance := NewInstance(definition)
	v, ok := instance.Get("nickname")
	require.True(t, ok)
	assert.Equal(t, "guest", v)

	require.NoError(t, instance.Set("online", true))
	require.ErrorIs(t, instance.Set("unknown", 1), gerrors.ErrUnknownAttribute)
	require.Error(t, instance.Set("level", "high"))
	assert.Equal(t, "avatar", instance.Component())
	assert.Zero(t, instance.Version())
}

func TestKind(t *testing.T) {
	assert.True(t, KindFloat.Accepts(1))
	assert.True(t, KindFloat.Accepts(1.5))
	assert.False(t, KindInt.Accepts(1.5))
	assert.True(t, KindBytes.Accepts([]byte("a")))
	assert.True(t, KindString.Accepts(nil))
	assert.True(t, KindAny.Accepts(struct{}{}))

	kind, ok := ParseKind("bool")
	require.True(t, ok)
	assert.Equal(t, KindBool, kind)
	_, ok = ParseKind("vector")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Kind(99).String())
}
