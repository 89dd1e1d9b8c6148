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

package eventstream

import (
	gods "github.com/Workiva/go-datastructures/queue"
	goset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// Subscriber buffers the messages of the topics it is subscribed to until
// they are drained with Iterator. Only a Stream creates subscribers.
type Subscriber interface {
	// Iterator drains the buffered messages, in publication order, through a
	// closed channel. Messages buffered before removal stay readable.
	Iterator() chan *Message

	key() string
	active() bool
	topics() []string
	shutdown()
	signal(message *Message)
	subscribe(topic string)
}

type subscriber struct {
	id         string
	subscribed goset.Set[string]
	messages   *gods.Queue
	live       *atomic.Bool
}

var _ Subscriber = (*subscriber)(nil)

func newSubscriber() *subscriber {
	return &subscriber{
		id:         uuid.NewString(),
		subscribed: goset.NewSet[string](),
		messages:   gods.New(16),
		live:       atomic.NewBool(true),
	}
}

func (s *subscriber) Iterator() chan *Message {
	n := s.messages.Len()
	out := make(chan *Message, n)
	if n > 0 {
		if items, err := s.messages.Get(n); err == nil {
			for _, item := range items {
				out <- item.(*Message)
			}
		}
	}
	close(out)
	return out
}

func (s *subscriber) key() string {
	return s.id
}

func (s *subscriber) active() bool {
	return s.live.Load()
}

func (s *subscriber) topics() []string {
	return s.subscribed.ToSlice()
}

func (s *subscriber) shutdown() {
	s.live.Store(false)
}

func (s *subscriber) subscribe(topic string) {
	s.subscribed.Add(topic)
}

func (s *subscriber) signal(message *Message) {
	if s.live.Load() {
		_ = s.messages.Put(message)
	}
}
