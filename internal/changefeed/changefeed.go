// Package changefeed carries entity change notifications from the persistence
// layer to in-process consumers such as the conversation stream registry.
package changefeed

import (
	"sync"
	"time"
)

// Kind is the type of change that happened to an entity.
type Kind string

const (
	KindInsert            Kind = "insert"
	KindUpdate            Kind = "update"
	KindRemove            Kind = "remove"
	KindSoftRemove        Kind = "soft_remove"
	KindRecover           Kind = "recover"
	KindTransactionCommit Kind = "transaction_commit"
)

// EntityMessage is the entity name used for chat message changes.
const EntityMessage = "message"

// Event describes one change. Payload is whatever the publisher attached,
// usually the affected record; consumers must not rely on it being set.
type Event struct {
	Kind    Kind
	Entity  string
	Payload any
	At      time.Time
}

// Feed is the subscription side of a change feed.
type Feed interface {
	// Subscribe returns a channel of events for entity and a cancel func
	// that unsubscribes and closes the channel.
	Subscribe(entity string) (<-chan Event, func())
}

// Publisher is the producing side of a change feed.
type Publisher interface {
	Publish(Event)
}

type subscriber struct {
	entity string
	ch     chan Event
}

// Broker is an in-memory Feed and Publisher. Publishing never blocks on a
// slow subscriber: a subscriber whose buffer is full misses the event.
type Broker struct {
	subscribers map[*subscriber]struct{}
	mu          sync.RWMutex
	eventCh     chan Event
	stopCh      chan struct{}
	stopOnce    sync.Once
	bufferSize  int
}

// NewBroker creates a new broker. Call Start before publishing.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[*subscriber]struct{}),
		eventCh:     make(chan Event, 256),
		stopCh:      make(chan struct{}),
		bufferSize:  64,
	}
}

// Start begins the broker's event distribution loop
func (b *Broker) Start() {
	go b.run()
}

// Stop stops the distribution loop. Pending events are dropped.
func (b *Broker) Stop() {
	b.stopOnce.Do(func() { close(b.stopCh) })
}

// Subscribe implements Feed.
func (b *Broker) Subscribe(entity string) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscriber{entity: entity, ch: make(chan Event, b.bufferSize)}
	b.subscribers[sub] = struct{}{}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subscribers, sub)
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish implements Publisher. It returns once the event is queued or the
// broker is stopped.
func (b *Broker) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	select {
	case b.eventCh <- event:
	case <-b.stopCh:
	}
}

func (b *Broker) run() {
	for {
		select {
		case event := <-b.eventCh:
			b.broadcast(event)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Broker) broadcast(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers {
		if sub.entity != event.Entity {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			// Subscriber buffer full, skip
		}
	}
}

// SubscriberCount returns the number of active subscribers
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
