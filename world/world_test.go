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

package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/worldkernel/errors"
	"github.com/tochemey/worldkernel/eventstream"
	"github.com/tochemey/worldkernel/schema"
)

func TestWorld(t *testing.T) {
	t.Run("With entities", func(t *testing.T) {
		w := New()
		e1 := NewEntityWithID("e1")
		e2 := NewEntity()
		require.NotEmpty(t, e2.ID())

		require.NoError(t, w.Add(e1))
		require.NoError(t, w.Add(e2))
		require.Error(t, w.Add(e1))
		assert.Equal(t, 2, w.Len())

		got, ok := w.Get("e1")
		require.True(t, ok)
		assert.Same(t, e1, got)

		require.NoError(t, w.Remove("e1"))
		require.ErrorIs(t, w.Remove("e1"), gerrors.ErrEntityNotFound)
		assert.Equal(t, []*Entity{e2}, w.Entities())
	})
	t.Run("With component instances", func(t *testing.T) {
		position := schema.NewDefinition("position", schema.Attribute{Name: "x", Kind: schema.KindFloat, Default: 0.0})
		mesh := schema.NewDefinition("mesh", schema.Attribute{Name: "uri", Kind: schema.KindString})

		w := New()
		e1 := NewEntityWithID("e1")
		e2 := NewEntityWithID("e2")
		first := e1.AddComponent(position)
		assert.Same(t, first, e1.AddComponent(position))
		e1.AddComponent(mesh)
		e2.AddComponent(mesh)
		require.NoError(t, w.Add(e1))
		require.NoError(t, w.Add(e2))

		refs := w.ComponentInstances("mesh")
		require.Len(t, refs, 2)
		assert.Equal(t, "e1", refs[0].EntityID)
		assert.Equal(t, "e2", refs[1].EntityID)
		assert.Len(t, w.ComponentInstances("position"), 1)
		assert.Empty(t, w.ComponentInstances("velocity"))
		assert.Len(t, e1.Components(), 2)
	})
}

func TestUpgradeThroughWorld(t *testing.T) {
	stream := eventstream.New()
	t.Cleanup(stream.Close)
	sub := stream.AddSubscriber()
	stream.Subscribe(sub, schema.ComponentUpgradedTopic)

	w := New()
	registry := schema.NewRegistry(schema.WithStream(stream), schema.WithInstanceSource(w))
	require.NoError(t, registry.Register(schema.NewDefinition("position",
		schema.Attribute{Name: "x", Kind: schema.KindFloat, Default: 0.0},
		schema.Attribute{Name: "y", Kind: schema.KindFloat, Default: 0.0},
		schema.Attribute{Name: "z", Kind: schema.KindFloat, Default: 0.0},
	)))

	definition, _ := registry.Lookup("position")
	entity := NewEntityWithID("avatar-1")
	instance := entity.AddComponent(definition)
	require.NoError(t, instance.Set("x", 1.0))
	require.NoError(t, instance.Set("y", 2.0))
	require.NoError(t, instance.Set("z", 3.0))
	require.NoError(t, w.Add(entity))

	err := registry.Upgrade("position", []schema.Attribute{
		{Name: "x", Kind: schema.KindFloat, Default: 0.0},
		{Name: "y", Kind: schema.KindFloat, Default: 0.0},
		{Name: "z", Kind: schema.KindFloat, Default: 0.0},
		{Name: "w", Kind: schema.KindFloat, Default: 1.0},
	}, func(old, next *schema.Instance) {
		for name, value := range old.Values() {
			_ = next.Set(name, value)
		}
	})
	require.NoError(t, err)

	current, _ := entity.Component("position")
	assert.Equal(t, 1, current.Version())
	v, _ := current.Get("w")
	assert.Equal(t, 1.0, v)
	v, _ = current.Get("z")
	assert.Equal(t, 3.0, v)

	var count int
	for message := range sub.Iterator() {
		event := message.Payload().(*schema.ComponentUpgraded)
		assert.Equal(t, "avatar-1", event.EntityID)
		count++
	}
	assert.Equal(t, 1, count)
}
