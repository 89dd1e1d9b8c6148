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

import "sync"

// Stream is the in-process bus carrying the kernel's lifecycle events.
//
// Publish is synchronous: when it returns, the message sits in the buffer of
// every active subscriber of the topic, in publication order.
type Stream interface {
	AddSubscriber() Subscriber
	// RemoveSubscriber drops every subscription of sub and deactivates it
	RemoveSubscriber(sub Subscriber)
	SubscribersCount(topic string) int
	Subscribe(sub Subscriber, topic string)
	Publish(topic string, payload any)
	// Close deactivates every subscriber and drops all topics
	Close()
}

// EventsStream is the default Stream
type EventsStream struct {
	mu          sync.RWMutex
	subscribers map[string]Subscriber
	topics      map[string]map[string]Subscriber
}

var _ Stream = (*EventsStream)(nil)

// New creates an EventsStream
func New() *EventsStream {
	return &EventsStream{
		subscribers: make(map[string]Subscriber),
		topics:      make(map[string]map[string]Subscriber),
	}
}

func (b *EventsStream) AddSubscriber() Subscriber {
	sub := newSubscriber()
	b.mu.Lock()
	b.subscribers[sub.id] = sub
	b.mu.Unlock()
	return sub
}

func (b *EventsStream) RemoveSubscriber(sub Subscriber) {
	b.mu.Lock()
	for _, topic := range sub.topics() {
		if subs, ok := b.topics[topic]; ok {
			delete(subs, sub.key())
			if len(subs) == 0 {
				delete(b.topics, topic)
			}
		}
	}
	delete(b.subscribers, sub.key())
	b.mu.Unlock()

	sub.shutdown()
}

func (b *EventsStream) SubscribersCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Subscribe is a no-op for a removed subscriber
func (b *EventsStream) Subscribe(sub Subscriber, topic string) {
	if !sub.active() {
		return
	}

	sub.subscribe(topic)

	b.mu.Lock()
	subs, ok := b.topics[topic]
	if !ok {
		subs = make(map[string]Subscriber)
		b.topics[topic] = subs
	}
	subs[sub.key()] = sub
	b.mu.Unlock()
}

func (b *EventsStream) Publish(topic string, payload any) {
	b.mu.RLock()
	subs := make([]Subscriber, 0, len(b.topics[topic]))
	for _, sub := range b.topics[topic] {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	if len(subs) == 0 {
		return
	}

	message := &Message{topic: topic, payload: payload}
	for _, sub := range subs {
		sub.signal(message)
	}
}

func (b *EventsStream) Close() {
	b.mu.Lock()
	subscribers := b.subscribers
	b.subscribers = make(map[string]Subscriber)
	b.topics = make(map[string]map[string]Subscriber)
	b.mu.Unlock()

	for _, sub := range subscribers {
		sub.shutdown()
	}
}
