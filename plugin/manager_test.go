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
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	gerrors "github.com/tochemey/worldkernel/errors"
	"github.com/tochemey/worldkernel/eventstream"
)

// journal records hook invocations in call order
type journal struct {
	activated []string
	stopped   []string
}

func (j *journal) manifest(name string, dependencies ...string) *Manifest {
	return &Manifest{
		Name:               name,
		PluginDependencies: dependencies,
		Activate: func(context.Context) error {
			j.activated = append(j.activated, name)
			return nil
		},
		Shutdown: func(context.Context) error {
			j.stopped = append(j.stopped, name)
			return nil
		},
	}
}

func newTestManager(opts ...Option) *Manager {
	return NewManager(append([]Option{WithCanonicalizer(Verbatim)}, opts...)...)
}

func TestAttemptLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("With dependencies discovered out of order", func(t *testing.T) {
		j := new(journal)
		stream := eventstream.New()
		t.Cleanup(stream.Close)
		subscriber := stream.AddSubscriber()
		stream.Subscribe(subscriber, ModuleActivatedTopic)

		manager := newTestManager(WithStream(stream))

		require.NoError(t, manager.AttemptLoad(ctx, "client.hcl", Static(j.manifest("ClientManager", "Persistence"))))
		assert.Empty(t, j.activated)
		deferred := manager.Deferred()
		require.Len(t, deferred, 1)
		assert.Equal(t, "ClientManager", deferred[0].Name)
		assert.Equal(t, []string{"Persistence"}, deferred[0].RemainingDependencies)

		require.NoError(t, manager.AttemptLoad(ctx, "persistence.hcl", Static(j.manifest("Persistence"))))
		assert.Equal(t, []string{"Persistence", "ClientManager"}, j.activated)
		assert.Equal(t, []string{"Persistence", "ClientManager"}, manager.Active())
		assert.Empty(t, manager.Deferred())

		var events []string
		for message := range subscriber.Iterator() {
			event := message.Payload().(*ModuleActivated)
			events = append(events, event.Name+"@"+event.Source)
		}
		assert.Equal(t, []string{"Persistence@persistence.hcl", "ClientManager@client.hcl"}, events)
	})
	t.Run("With a dependent discovered first", func(t *testing.T) {
		j := new(journal)
		manager := newTestManager()

		require.NoError(t, manager.AttemptLoad(ctx, "auth", Static(j.manifest("Auth", "ClientManager"))))
		require.NoError(t, manager.AttemptLoad(ctx, "persistence", Static(j.manifest("Persistence"))))
		require.NoError(t, manager.AttemptLoad(ctx, "client", Static(j.manifest("ClientManager"))))

		assert.Equal(t, []string{"Persistence", "ClientManager", "Auth"}, j.activated)
		for _, name := range []string{"Persistence", "ClientManager", "Auth"} {
			assert.True(t, manager.IsNameActive(name), name)
		}
		assert.True(t, manager.IsSourceLoaded("auth"))
	})
	t.Run("With a source attempted twice", func(t *testing.T) {
		j := new(journal)
		manager := newTestManager()

		calls := 0
		provider := ProviderFunc(func() ([]*Manifest, error) {
			calls++
			return []*Manifest{j.manifest("Auth")}, nil
		})

		require.NoError(t, manager.AttemptLoad(ctx, "auth.hcl", provider))
		require.NoError(t, manager.AttemptLoad(ctx, "auth.hcl", provider))
		assert.Equal(t, 1, calls)
		assert.Equal(t, []string{"Auth"}, j.activated)
		assert.Len(t, manager.Records(), 1)
	})
	t.Run("With a failed source never retried", func(t *testing.T) {
		manager := newTestManager()
		err := manager.AttemptLoad(ctx, "broken.hcl", Static())
		require.ErrorIs(t, err, gerrors.ErrInvalidModule)

		j := new(journal)
		require.NoError(t, manager.AttemptLoad(ctx, "broken.hcl", Static(j.manifest("Auth"))))
		assert.Empty(t, j.activated)
	})
	t.Run("With a duplicate name", func(t *testing.T) {
		j := new(journal)
		manager := newTestManager()
		require.NoError(t, manager.AttemptLoad(ctx, "a/auth.hcl", Static(j.manifest("Auth"))))

		err := manager.AttemptLoad(ctx, "b/auth.hcl", Static(j.manifest("Auth")))
		require.ErrorIs(t, err, gerrors.ErrDuplicateName)
		var duplicate *gerrors.DuplicateNameError
		require.True(t, errors.As(err, &duplicate))
		assert.Equal(t, "a/auth.hcl", duplicate.ExistingSource)
		assert.Equal(t, "b/auth.hcl", duplicate.Source)

		assert.Equal(t, []string{"Auth"}, j.activated)
		assert.True(t, manager.IsSourceLoaded("a/auth.hcl"))
		assert.False(t, manager.IsSourceLoaded("b/auth.hcl"))

		records := manager.Records()
		require.Len(t, records, 2)
		assert.Equal(t, Rejected, records[1].State)
		assert.Equal(t, "Auth", records[1].Name)
		assert.Equal(t, []string{"Auth"}, manager.Active())
	})
	t.Run("With a duplicate of a deferred name", func(t *testing.T) {
		j := new(journal)
		manager := newTestManager()
		require.NoError(t, manager.AttemptLoad(ctx, "a.hcl", Static(j.manifest("Auth", "Persistence"))))
		err := manager.AttemptLoad(ctx, "b.hcl", Static(j.manifest("Auth")))
		require.ErrorIs(t, err, gerrors.ErrDuplicateName)
		assert.Empty(t, j.activated)
	})
	t.Run("With invalid sources", func(t *testing.T) {
		j := new(journal)
		manager := newTestManager()

		testCases := map[string]Provider{
			"none.hcl":     Static(),
			"two.hcl":      Static(j.manifest("A"), j.manifest("B")),
			"nil.hcl":      Static(nil),
			"error.hcl":    ProviderFunc(func() ([]*Manifest, error) { return nil, errors.New("unreadable") }),
			"panic.hcl":    ProviderFunc(func() ([]*Manifest, error) { panic("boom") }),
			"noname.hcl":   Static(&Manifest{Activate: func(context.Context) error { return nil }}),
			"nohook.hcl":   Static(&Manifest{Name: "NoHook"}),
			"emptydep.hcl": Static(&Manifest{Name: "EmptyDep", PluginDependencies: []string{""}, Activate: func(context.Context) error { return nil }}),
		}

		for source, provider := range testCases {
			err := manager.AttemptLoad(ctx, source, provider)
			require.ErrorIs(t, err, gerrors.ErrInvalidModule, source)
		}

		require.ErrorIs(t, manager.AttemptLoad(ctx, "nil-provider.hcl", nil), gerrors.ErrInvalidModule)
		for _, record := range manager.Records() {
			assert.Equal(t, Rejected, record.State, record.Source)
			assert.Error(t, record.Err)
		}
		assert.Empty(t, j.activated)
	})
	t.Run("With a failing activation", func(t *testing.T) {
		j := new(journal)
		manager := newTestManager()

		failing := j.manifest("X")
		failing.Activate = func(context.Context) error { return errors.New("cannot bind port") }

		err := manager.AttemptLoad(ctx, "x.hcl", Static(failing))
		require.ErrorIs(t, err, gerrors.ErrActivation)
		assert.False(t, manager.IsNameActive("X"))
		assert.False(t, manager.IsSourceLoaded("x.hcl"))

		require.NoError(t, manager.AttemptLoad(ctx, "y.hcl", Static(j.manifest("Y", "X"))))
		require.NoError(t, manager.AttemptLoad(ctx, "z.hcl", Static(j.manifest("Z"))))
		assert.Equal(t, []string{"Z"}, j.activated)

		deferred := manager.Deferred()
		require.Len(t, deferred, 1)
		assert.Equal(t, "Y", deferred[0].Name)

		// the name stays claimed by the failed module
		err = manager.AttemptLoad(ctx, "x2.hcl", Static(j.manifest("X")))
		require.ErrorIs(t, err, gerrors.ErrDuplicateName)
	})
	t.Run("With a failure inside a cascade", func(t *testing.T) {
		j := new(journal)
		manager := newTestManager()

		require.NoError(t, manager.AttemptLoad(ctx, "b.hcl", Static(&Manifest{
			Name:               "B",
			PluginDependencies: []string{"A"},
			Activate:           func(context.Context) error { panic("bad state") },
		})))
		require.NoError(t, manager.AttemptLoad(ctx, "c.hcl", Static(j.manifest("C", "A"))))

		err := manager.AttemptLoad(ctx, "a.hcl", Static(j.manifest("A")))
		require.ErrorIs(t, err, gerrors.ErrActivation)
		assert.Equal(t, []string{"A", "C"}, j.activated)

		records := manager.Records()
		require.Len(t, records, 3)
		assert.Equal(t, Failed, records[0].State)
		assert.Equal(t, Active, records[1].State)
		assert.Equal(t, Active, records[2].State)
	})
	t.Run("With a cascade running depth first", func(t *testing.T) {
		j := new(journal)
		manager := newTestManager()

		require.NoError(t, manager.AttemptLoad(ctx, "b", Static(j.manifest("B", "A"))))
		require.NoError(t, manager.AttemptLoad(ctx, "c", Static(j.manifest("C", "A"))))
		require.NoError(t, manager.AttemptLoad(ctx, "d", Static(j.manifest("D", "B"))))
		require.NoError(t, manager.AttemptLoad(ctx, "e", Static(j.manifest("E", "B", "C"))))
		require.NoError(t, manager.AttemptLoad(ctx, "a", Static(j.manifest("A"))))

		assert.Equal(t, []string{"A", "B", "D", "C", "E"}, j.activated)
	})
	t.Run("With a cycle", func(t *testing.T) {
		j := new(journal)
		manager := newTestManager()

		require.NoError(t, manager.AttemptLoad(ctx, "a", Static(j.manifest("A", "B"))))
		require.NoError(t, manager.AttemptLoad(ctx, "b", Static(j.manifest("B", "A"))))
		require.NoError(t, manager.AttemptLoad(ctx, "self", Static(j.manifest("Self", "Self"))))
		require.NoError(t, manager.AttemptLoad(ctx, "c", Static(j.manifest("C"))))

		assert.Equal(t, []string{"C"}, j.activated)
		assert.Len(t, manager.Deferred(), 3)
	})
	t.Run("With hooks querying the manager", func(t *testing.T) {
		manager := newTestManager()
		var sawDependency bool
		require.NoError(t, manager.AttemptLoad(ctx, "b", Static(&Manifest{
			Name:               "B",
			PluginDependencies: []string{"A"},
			Activate: func(context.Context) error {
				sawDependency = manager.IsNameActive("A") && !manager.IsNameActive("B")
				return nil
			},
		})))
		require.NoError(t, manager.AttemptLoad(ctx, "a", Static(&Manifest{
			Name:     "A",
			Activate: func(context.Context) error { return nil },
		})))
		assert.True(t, sawDependency)
	})
	t.Run("With path sources", func(t *testing.T) {
		j := new(journal)
		manager := NewManager()
		dir := t.TempDir()

		source := filepath.Join(dir, "plugins", "auth.hcl")
		alias := filepath.Join(dir, "plugins", "..", "plugins", ".", "auth.hcl")

		require.NoError(t, manager.AttemptLoad(ctx, source, Static(j.manifest("Auth"))))
		require.NoError(t, manager.AttemptLoad(ctx, alias, Static(j.manifest("Other"))))
		assert.Equal(t, []string{"Auth"}, j.activated)
		assert.True(t, manager.IsSourceLoaded(alias))
		assert.Equal(t, source, manager.Records()[0].Source)
	})
}

func TestMissingComponents(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager()
	j := new(journal)

	location := j.manifest("Location")
	location.ComponentDependencies = []string{"position", "velocity"}
	waiting := j.manifest("Chat", "Auth")
	waiting.ComponentDependencies = []string{"message"}

	require.NoError(t, manager.AttemptLoad(ctx, "location", Static(location)))
	require.NoError(t, manager.AttemptLoad(ctx, "chat", Static(waiting)))

	// component dependencies never gate activation
	assert.True(t, manager.IsNameActive("Location"))

	registered := lookupFunc(func(name string) bool { return name == "position" })
	assert.Equal(t, map[string][]string{
		"Location": {"velocity"},
		"Chat":     {"message"},
	}, manager.MissingComponents(registered))
}

type lookupFunc func(string) bool

func (f lookupFunc) IsRegistered(name string) bool { return f(name) }

func TestShutdown(t *testing.T) {
	ctx := context.Background()

	t.Run("With reverse activation order", func(t *testing.T) {
		j := new(journal)
		manager := newTestManager()
		require.NoError(t, manager.AttemptLoad(ctx, "b", Static(j.manifest("B", "A"))))
		require.NoError(t, manager.AttemptLoad(ctx, "a", Static(j.manifest("A"))))
		require.NoError(t, manager.AttemptLoad(ctx, "c", Static(j.manifest("C"))))
		require.NoError(t, manager.AttemptLoad(ctx, "d", Static(j.manifest("D", "Z"))))

		require.NoError(t, manager.Shutdown(ctx))
		assert.Equal(t, []string{"C", "B", "A"}, j.stopped)

		// idempotent
		require.NoError(t, manager.Shutdown(ctx))
		assert.Len(t, j.stopped, 3)
	})
	t.Run("With failing hooks", func(t *testing.T) {
		j := new(journal)
		manager := newTestManager()

		failing := j.manifest("B")
		failing.Shutdown = func(context.Context) error { return errors.New("flush failed") }
		panicking := j.manifest("C")
		panicking.Shutdown = func(context.Context) error { panic("boom") }
		silent := j.manifest("D")
		silent.Shutdown = nil

		require.NoError(t, manager.AttemptLoad(ctx, "a", Static(j.manifest("A"))))
		require.NoError(t, manager.AttemptLoad(ctx, "b", Static(failing)))
		require.NoError(t, manager.AttemptLoad(ctx, "c", Static(panicking)))
		require.NoError(t, manager.AttemptLoad(ctx, "d", Static(silent)))

		err := manager.Shutdown(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "flush failed")
		assert.Contains(t, err.Error(), "boom")
		assert.Equal(t, []string{"A"}, j.stopped)
	})
}

func TestActivationProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		size := rapid.IntRange(1, 8).Draw(t, "size")

		// module i may only depend on modules j < i, plus optionally a missing one
		dependencies := make([][]string, size)
		blocked := make([]bool, size)
		for i := range size {
			for k := range i {
				if rapid.Bool().Draw(t, fmt.Sprintf("dep-%d-%d", i, k)) {
					dependencies[i] = append(dependencies[i], moduleName(k))
					blocked[i] = blocked[i] || blocked[k]
				}
			}
			if rapid.IntRange(0, 4).Draw(t, fmt.Sprintf("missing-%d", i)) == 0 {
				dependencies[i] = append(dependencies[i], "Missing")
				blocked[i] = true
			}
		}

		indexes := make([]int, size)
		for i := range indexes {
			indexes[i] = i
		}
		order := rapid.Permutation(indexes).Draw(t, "order")

		j := new(journal)
		manager := newTestManager()
		for _, i := range order {
			if err := manager.AttemptLoad(context.Background(), moduleName(i), Static(j.manifest(moduleName(i), dependencies[i]...))); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		position := make(map[string]int)
		for p, name := range j.activated {
			if _, seen := position[name]; seen {
				t.Fatalf("%s activated twice", name)
			}
			position[name] = p
		}

		for i := range size {
			name := moduleName(i)
			p, activated := position[name]
			if activated == blocked[i] {
				t.Fatalf("%s activated=%v, blocked=%v", name, activated, blocked[i])
			}
			if !activated {
				continue
			}
			for _, dependency := range dependencies[i] {
				if position[dependency] >= p {
					t.Fatalf("%s activated before its dependency %s", name, dependency)
				}
			}
		}

		if len(manager.Deferred())+len(manager.Active()) != size {
			t.Fatalf("every module is either active or deferred")
		}
	})
}

func moduleName(i int) string {
	return fmt.Sprintf("M%d", i)
}
