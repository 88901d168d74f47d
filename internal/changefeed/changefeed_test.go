package changefeed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("event was not received in time")
		return Event{}
	}
}

func TestBrokerDeliversByEntity(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	messages, cancelMessages := b.Subscribe(EntityMessage)
	defer cancelMessages()
	users, cancelUsers := b.Subscribe("user")
	defer cancelUsers()

	b.Publish(Event{Kind: KindInsert, Entity: EntityMessage, Payload: 42})

	ev := receive(t, messages)
	assert.Equal(t, KindInsert, ev.Kind)
	assert.Equal(t, 42, ev.Payload)
	assert.False(t, ev.At.IsZero())

	select {
	case ev := <-users:
		t.Fatalf("unexpected event for other entity: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBrokerCancelClosesChannel(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	ch, cancel := b.Subscribe(EntityMessage)
	assert.Equal(t, 1, b.SubscriberCount())

	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, b.SubscriberCount())
}

func TestBrokerPublishAfterStopDoesNotBlock(t *testing.T) {
	b := NewBroker()
	b.Stop()
	b.Stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			b.Publish(Event{Kind: KindUpdate, Entity: EntityMessage})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked after stop")
	}
}
