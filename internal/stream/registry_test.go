package stream_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideomatch/backend/internal/changefeed"
	"ideomatch/backend/internal/graph"
	"ideomatch/backend/internal/messaging"
	"ideomatch/backend/internal/metrics"
	"ideomatch/backend/internal/models"
	"ideomatch/backend/internal/repository/memory"
	"ideomatch/backend/internal/stream"
)

type env struct {
	store *memory.Store
	graph *graph.Graph
	msgs  *messaging.Service
	reg   *stream.Registry
	a, b  uuid.UUID
}

func newEnv(t *testing.T, cfg stream.Config) *env {
	t.Helper()
	broker := changefeed.NewBroker()
	broker.Start()
	t.Cleanup(broker.Stop)

	store := memory.New(broker)
	g := graph.New(store)
	ua := &models.User{Username: "alice"}
	ub := &models.User{Username: "bob"}
	require.NoError(t, store.CreateUser(context.Background(), ua))
	require.NoError(t, store.CreateUser(context.Background(), ub))
	require.NoError(t, g.AddContact(context.Background(), ua.ID, ub.ID))

	return &env{
		store: store,
		graph: g,
		msgs:  messaging.New(store, g),
		reg:   stream.NewRegistry(store, g, broker, cfg),
		a:     ua.ID,
		b:     ub.ID,
	}
}

func (e *env) run(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = e.reg.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	// Let Run subscribe before anything is published.
	time.Sleep(20 * time.Millisecond)
}

func (e *env) send(t *testing.T, from, to uuid.UUID, text string) *models.Message {
	t.Helper()
	msg, err := e.msgs.Send(context.Background(), messaging.SendRequest{SenderID: from, ReceiverID: to, Text: text})
	require.NoError(t, err)
	return msg
}

// next returns the next non-heartbeat batch.
func next(t *testing.T, h *stream.Handle) stream.Batch {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case b, ok := <-h.C:
			require.True(t, ok, "stream closed")
			if b.Heartbeat() {
				continue
			}
			return b
		case <-deadline:
			t.Fatal("timed out waiting for batch")
		}
	}
}

func quiet(t *testing.T, h *stream.Handle) {
	t.Helper()
	select {
	case b, ok := <-h.C:
		if ok && !b.Heartbeat() {
			t.Fatalf("unexpected batch %+v", b)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestOpenRequiresFriendliness(t *testing.T) {
	e := newEnv(t, stream.Config{})
	ctx := context.Background()

	stranger := &models.User{Username: "carol"}
	require.NoError(t, e.store.CreateUser(ctx, stranger))

	_, err := e.reg.Open(ctx, e.a, stranger.ID, 100)
	assert.ErrorIs(t, err, stream.ErrNotPermitted)

	require.NoError(t, e.graph.Block(ctx, e.b, e.a))
	_, err = e.reg.Open(ctx, e.a, e.b, 100)
	assert.ErrorIs(t, err, stream.ErrNotPermitted)
	assert.Zero(t, e.reg.Len())
}

func TestInitialBatchIsAscendingAndBounded(t *testing.T) {
	e := newEnv(t, stream.Config{})
	for i := 0; i < 5; i++ {
		e.send(t, e.a, e.b, fmt.Sprintf("m%d", i))
	}

	h, err := e.reg.Open(context.Background(), e.a, e.b, 3)
	require.NoError(t, err)
	defer h.Close()

	b := next(t, h)
	assert.Equal(t, metrics.BatchInitial, b.Kind)
	require.Len(t, b.Messages, 3)
	assert.Equal(t, "m2", b.Messages[0].Text)
	assert.Equal(t, "m4", b.Messages[2].Text)
	assert.Equal(t, stream.StateStreaming, e.reg.State(h.ID))
}

func TestConversationScenario(t *testing.T) {
	e := newEnv(t, stream.Config{})
	e.run(t)
	ctx := context.Background()

	ha, err := e.reg.Open(ctx, e.a, e.b, 100)
	require.NoError(t, err)
	defer ha.Close()
	initial := next(t, ha)
	assert.Equal(t, metrics.BatchInitial, initial.Kind)
	assert.Empty(t, initial.Messages)

	hi := e.send(t, e.b, e.a, "hi")
	got := next(t, ha)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, hi.ID, got.Messages[0].ID)
	assert.Equal(t, "bob", got.Messages[0].Sender.Username)
	assert.Equal(t, "alice", got.Messages[0].Receiver.Username)

	hb, err := e.reg.Open(ctx, e.b, e.a, 100)
	require.NoError(t, err)
	defer hb.Close()
	require.Len(t, next(t, hb).Messages, 1)

	hello := e.send(t, e.a, e.b, "hello")
	got = next(t, hb)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, hello.ID, got.Messages[0].ID)

	got = next(t, ha)
	require.Len(t, got.Messages, 1, "hi must not be redelivered")
	assert.Equal(t, "hello", got.Messages[0].Text)
}

func TestStreamMonotonicity(t *testing.T) {
	e := newEnv(t, stream.Config{Buffer: 1024})
	e.run(t)
	for i := 0; i < 7; i++ {
		e.send(t, e.a, e.b, "before")
	}

	h, err := e.reg.Open(context.Background(), e.a, e.b, 5)
	require.NoError(t, err)
	defer h.Close()
	initial := next(t, h)
	require.Len(t, initial.Messages, 5)
	high := initial.Messages[4].ID

	const k = 40
	sent := map[uint]bool{}
	for i := 0; i < k; i++ {
		from, to := e.a, e.b
		if i%3 == 0 {
			from, to = e.b, e.a
		}
		sent[e.send(t, from, to, fmt.Sprintf("after %d", i)).ID] = true
	}

	seen := map[uint]bool{}
	for len(seen) < k {
		b := next(t, h)
		for _, m := range b.Messages {
			assert.Greater(t, m.ID, high, "id at or below the watermark")
			assert.False(t, seen[m.ID], "duplicate id %d", m.ID)
			assert.True(t, sent[m.ID])
			seen[m.ID] = true
			high = m.ID
		}
	}
	quiet(t, h)
}

func TestDeliverySuppressedWhileUnfriendly(t *testing.T) {
	e := newEnv(t, stream.Config{})
	ctx := context.Background()

	h, err := e.reg.Open(ctx, e.a, e.b, 10)
	require.NoError(t, err)
	defer h.Close()
	next(t, h)

	e.send(t, e.a, e.b, "one")
	e.store.AddBlockEdge(e.b, e.a)
	e.reg.Deliver(ctx)
	quiet(t, h)
	assert.Equal(t, stream.StateStreaming, e.reg.State(h.ID), "suppression does not close")
}

func TestHeartbeatDoesNotMoveWatermark(t *testing.T) {
	e := newEnv(t, stream.Config{})
	ctx := context.Background()

	h, err := e.reg.Open(ctx, e.a, e.b, 10)
	require.NoError(t, err)
	defer h.Close()
	next(t, h)

	e.reg.Heartbeat()
	b := <-h.C
	assert.True(t, b.Heartbeat())
	assert.NotNil(t, b.Messages)
	assert.Empty(t, b.Messages)

	msg := e.send(t, e.a, e.b, "after heartbeat")
	e.reg.Deliver(ctx)
	got := next(t, h)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, msg.ID, got.Messages[0].ID)
}

func TestFullBufferDropsOldestAndKeepsData(t *testing.T) {
	e := newEnv(t, stream.Config{Buffer: 2})
	ctx := context.Background()

	h, err := e.reg.Open(ctx, e.a, e.b, 10)
	require.NoError(t, err)
	defer h.Close()

	e.send(t, e.a, e.b, "first")
	e.reg.Deliver(ctx)
	e.reg.Heartbeat()

	e.send(t, e.a, e.b, "second")
	e.reg.Deliver(ctx)

	b1 := <-h.C
	b2 := <-h.C
	assert.Equal(t, "first", b1.Messages[0].Text, "initial batch was dropped")
	assert.Equal(t, "second", b2.Messages[0].Text)
}

func TestCloseIsIdempotentAndStopsDelivery(t *testing.T) {
	e := newEnv(t, stream.Config{})
	ctx := context.Background()

	h, err := e.reg.Open(ctx, e.a, e.b, 10)
	require.NoError(t, err)
	next(t, h)

	h.Close()
	h.Close()
	e.reg.Close(uuid.New())
	assert.Zero(t, e.reg.Len())
	assert.Equal(t, stream.StateClosed, e.reg.State(h.ID))

	e.send(t, e.a, e.b, "late")
	e.reg.Deliver(ctx)
	e.reg.Heartbeat()
	_, ok := <-h.C
	assert.False(t, ok)
}

func TestCloseFor(t *testing.T) {
	e := newEnv(t, stream.Config{})
	ctx := context.Background()

	h1, err := e.reg.Open(ctx, e.a, e.b, 1)
	require.NoError(t, err)
	h2, err := e.reg.Open(ctx, e.a, e.b, 1)
	require.NoError(t, err)
	h3, err := e.reg.Open(ctx, e.b, e.a, 1)
	require.NoError(t, err)
	defer h3.Close()

	e.reg.CloseFor(e.a, e.b)
	assert.Equal(t, 1, e.reg.Len())
	assert.Equal(t, stream.StateClosed, e.reg.State(h1.ID))
	assert.Equal(t, stream.StateClosed, e.reg.State(h2.ID))
	assert.Equal(t, stream.StateStreaming, e.reg.State(h3.ID))
}

func TestConcurrentOpenCloseDeliverHeartbeat(t *testing.T) {
	e := newEnv(t, stream.Config{Buffer: 4, Heartbeat: time.Millisecond})
	e.run(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				user, peer := e.a, e.b
				if (w+i)%2 == 0 {
					user, peer = e.b, e.a
				}
				h, err := e.reg.Open(ctx, user, peer, 5)
				if !assert.NoError(t, err) {
					return
				}
				go func() {
					for range h.C {
					}
				}()
				if i%2 == 0 {
					_, err := e.msgs.Send(ctx, messaging.SendRequest{SenderID: user, ReceiverID: peer, Text: "race"})
					assert.NoError(t, err)
				}
				e.reg.Deliver(ctx)
				h.Close()
			}
		}(w)
	}
	wg.Wait()
	assert.Zero(t, e.reg.Len())
}
