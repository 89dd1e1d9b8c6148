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

package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	goset "github.com/deckarep/golang-set/v2"
	"github.com/flowchartsman/retry"
	bbolt "go.etcd.io/bbolt"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	gerrors "github.com/tochemey/worldkernel/errors"
	"github.com/tochemey/worldkernel/eventstream"
	"github.com/tochemey/worldkernel/log"
	"github.com/tochemey/worldkernel/schema"
	"github.com/tochemey/worldkernel/world"
)

const (
	boltFileMode      os.FileMode = 0o600
	entitiesBucket                = "entities"
	definitionsBucket             = "definitions"

	defaultFlushInterval = time.Second
	defaultRetries       = 3
)

var boltTimeout = 5 * time.Second

// EntitySource resolves live entities. *world.World implements it.
type EntitySource interface {
	Get(id string) (*world.Entity, bool)
}

// Store writes the world to a bbolt database.
//
// Entities are written whole. An entity is marked dirty when one of its
// components is upgraded or through MarkDirty, and dirty entities are written
// on the next flush. Component definitions are written when registered or
// upgraded. A failed flush keeps everything dirty for the next one.
type Store struct {
	db    *bbolt.DB
	path  string
	codec *codec

	entities   EntitySource
	stream     eventstream.Stream
	subscriber eventstream.Subscriber

	dirty goset.Set[string]

	pendingMu sync.Mutex
	pending   map[string]*schema.Definition

	// one flush at a time
	flushMu sync.Mutex

	interval time.Duration
	retries  int
	logger   log.Logger

	started *atomic.Bool
	closed  *atomic.Bool
	stop    chan struct{}
	done    chan struct{}
}

// NewStore opens, or creates, the bbolt database at path
func NewStore(path string, entities EntitySource, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("persistence: creating data directory: %w", err)
	}

	db, err := bbolt.Open(path, boltFileMode, &bbolt.Options{Timeout: boltTimeout, NoGrowSync: true})
	if err != nil {
		return nil, fmt.Errorf("persistence: opening boltdb: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range []string{entitiesBucket, definitionsBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("persistence: initializing boltdb buckets: %w", err)
	}

	codec, err := newCodec()
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &Store{
		db:       db,
		path:     path,
		codec:    codec,
		entities: entities,
		dirty:    goset.NewSet[string](),
		pending:  make(map[string]*schema.Definition),
		interval: defaultFlushInterval,
		retries:  defaultRetries,
		logger:   log.DiscardLogger,
		started:  atomic.NewBool(false),
		closed:   atomic.NewBool(false),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt.Apply(store)
	}

	if store.stream != nil {
		store.subscriber = store.stream.AddSubscriber()
		store.stream.Subscribe(store.subscriber, schema.ComponentRegisteredTopic)
		store.stream.Subscribe(store.subscriber, schema.ComponentDefinitionUpgradedTopic)
		store.stream.Subscribe(store.subscriber, schema.ComponentUpgradedTopic)
	}
	return store, nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// Start runs the flush loop until Stop
func (s *Store) Start(ctx context.Context) error {
	if s.closed.Load() {
		return gerrors.ErrStoreClosed
	}

	if !s.started.CompareAndSwap(false, true) {
		return nil
	}

	go s.loop(context.WithoutCancel(ctx))
	s.logger.Infof("persistence store started, flushing every %s to %s", s.interval, s.path)
	return nil
}

func (s *Store) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if err := s.flush(ctx); err != nil {
				s.logger.Errorf("persistence flush failed: %v", err)
			}
		}
	}
}

// MarkDirty queues entities for the next flush
func (s *Store) MarkDirty(ids ...string) {
	for _, id := range ids {
		s.dirty.Add(id)
	}
}

// Flush writes every dirty entity and pending definition now
func (s *Store) Flush(ctx context.Context) error {
	if s.closed.Load() {
		return gerrors.ErrStoreClosed
	}
	return s.flush(ctx)
}

func (s *Store) flush(ctx context.Context) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.drain()

	ids := s.dirty.ToSlice()
	for _, id := range ids {
		s.dirty.Remove(id)
	}

	s.pendingMu.Lock()
	definitions := s.pending
	s.pending = make(map[string]*schema.Definition)
	s.pendingMu.Unlock()

	if len(ids) == 0 && len(definitions) == 0 {
		return nil
	}

	err := s.write(ctx, ids, definitions)
	if err != nil {
		// keep everything for the next flush, unless superseded meanwhile
		s.MarkDirty(ids...)
		s.pendingMu.Lock()
		for name, definition := range definitions {
			if _, ok := s.pending[name]; !ok {
				s.pending[name] = definition
			}
		}
		s.pendingMu.Unlock()
		return err
	}

	s.logger.Debugf("persistence flushed %d entities and %d definitions", len(ids), len(definitions))
	return nil
}

// drain turns buffered component events into dirty state
func (s *Store) drain() {
	if s.subscriber == nil {
		return
	}

	for message := range s.subscriber.Iterator() {
		switch event := message.Payload().(type) {
		case *schema.ComponentRegistered:
			s.addPending(event.Definition)
		case *schema.ComponentDefinitionUpgraded:
			s.addPending(event.Definition)
		case *schema.ComponentUpgraded:
			s.dirty.Add(event.EntityID)
		}
	}
}

func (s *Store) addPending(definition *schema.Definition) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	if current, ok := s.pending[definition.Name()]; !ok || current.Version() <= definition.Version() {
		s.pending[definition.Name()] = definition
	}
}

func (s *Store) write(ctx context.Context, ids []string, definitions map[string]*schema.Definition) error {
	entities := make(map[string][]byte, len(ids))
	for _, id := range ids {
		entity, ok := s.entities.Get(id)
		if !ok {
			// removed from the world
			entities[id] = nil
			continue
		}

		data, err := s.codec.encodeEntity(entity)
		if err != nil {
			return err
		}
		entities[id] = data
	}

	encoded := make(map[string][]byte, len(definitions))
	for name, definition := range definitions {
		data, err := s.codec.encodeDefinition(definition)
		if err != nil {
			return err
		}
		encoded[name] = data
	}

	retrier := retry.NewRetrier(s.retries, 10*time.Millisecond, 200*time.Millisecond)
	return retrier.RunContext(ctx, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		return s.db.Update(func(tx *bbolt.Tx) error {
			bucket := tx.Bucket([]byte(entitiesBucket))
			for id, data := range entities {
				if data == nil {
					if err := bucket.Delete([]byte(id)); err != nil {
						return err
					}
					continue
				}
				if err := bucket.Put([]byte(id), data); err != nil {
					return err
				}
			}

			bucket = tx.Bucket([]byte(definitionsBucket))
			for name, data := range encoded {
				if err := bucket.Put([]byte(name), data); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

// LoadEntity reads a persisted entity
func (s *Store) LoadEntity(ctx context.Context, id string) (*EntityRecord, error) {
	data, err := s.get(ctx, entitiesBucket, id)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s", gerrors.ErrEntityNotFound, id)
	}
	return s.codec.decodeEntity(data)
}

// LoadDefinition reads a persisted component definition
func (s *Store) LoadDefinition(ctx context.Context, name string) (*DefinitionRecord, error) {
	data, err := s.get(ctx, definitionsBucket, name)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, gerrors.NewUnknownComponentError(name)
	}
	return s.codec.decodeDefinition(data)
}

func (s *Store) get(ctx context.Context, bucketName, key string) ([]byte, error) {
	if s.closed.Load() {
		return nil, gerrors.ErrStoreClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if raw := tx.Bucket([]byte(bucketName)).Get([]byte(key)); raw != nil {
			data = append([]byte(nil), raw...)
		}
		return nil
	})
	return data, err
}

// Stop ends the flush loop, writes what is left and closes the database.
// Calling Stop more than once is a no-op.
func (s *Store) Stop(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	close(s.stop)
	if s.started.Load() {
		<-s.done
	}

	err := s.flush(ctx)
	if s.subscriber != nil {
		s.stream.RemoveSubscriber(s.subscriber)
	}

	s.codec.close()
	err = multierr.Append(err, s.db.Close())
	s.logger.Info("persistence store stopped")
	return err
}
