// Package stream keeps the open conversation streams and pushes new messages
// to them as the message change feed reports writes.
package stream

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"ideomatch/backend/internal/apperr"
	"ideomatch/backend/internal/changefeed"
	"ideomatch/backend/internal/graph"
	"ideomatch/backend/internal/logger"
	"ideomatch/backend/internal/metrics"
	"ideomatch/backend/internal/models"
)

var ErrNotPermitted = apperr.E(apperr.Forbidden, "You are not allowed to open this conversation")

// Messages reads conversation history.
type Messages interface {
	LatestMessages(ctx context.Context, a, b uuid.UUID, limit int) ([]models.Message, error)
	MessagesAfter(ctx context.Context, a, b uuid.UUID, afterID uint) ([]models.Message, error)
}

// Friendliness gates who may talk to whom.
type Friendliness interface {
	Friendly(ctx context.Context, a, b uuid.UUID) error
}

// Config tunes the registry.
type Config struct {
	Heartbeat time.Duration
	Buffer    int
	// Workers bounds the concurrent per-entry deliveries of one event.
	Workers int
}

func (c Config) withDefaults() Config {
	if c.Heartbeat <= 0 {
		c.Heartbeat = 10 * time.Second
	}
	if c.Buffer < 2 {
		c.Buffer = 64
	}
	if c.Workers <= 0 {
		c.Workers = 8
	}
	return c
}

// Handle is the caller's side of an open stream.
type Handle struct {
	ID   uuid.UUID
	User uuid.UUID
	Peer uuid.UUID
	// C yields batches until the stream is closed.
	C <-chan Batch

	reg *Registry
}

// Close closes the stream. It is safe to call more than once.
func (h *Handle) Close() { h.reg.Close(h.ID) }

// Registry owns every open stream of the process.
type Registry struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*entry

	msgs Messages
	rel  Friendliness
	feed changefeed.Feed
	cfg  Config
	log  zerolog.Logger
}

func NewRegistry(msgs Messages, rel Friendliness, feed changefeed.Feed, cfg Config) *Registry {
	return &Registry{
		entries: make(map[uuid.UUID]*entry),
		msgs:    msgs,
		rel:     rel,
		feed:    feed,
		cfg:     cfg.withDefaults(),
		log:     logger.WithComponent("stream"),
	}
}

// Open starts a stream of the conversation between user and peer. The first
// batch holds the latest initialCount messages in ascending order.
func (r *Registry) Open(ctx context.Context, user, peer uuid.UUID, initialCount int) (*Handle, error) {
	if err := r.rel.Friendly(ctx, user, peer); err != nil {
		if graph.IsFriendlinessError(err) {
			r.log.Debug().Err(err).Str("user", user.String()).Str("peer", peer.String()).Msg("stream refused")
			return nil, ErrNotPermitted
		}
		return nil, err
	}

	e := &entry{
		id:    uuid.New(),
		user:  user,
		peer:  peer,
		state: StateOpening,
		out:   make(chan Batch, r.cfg.Buffer),
	}

	// Deliveries racing with the initial load wait on e.mu and then catch
	// up from the watermark.
	e.mu.Lock()
	defer e.mu.Unlock()

	r.mu.Lock()
	r.entries[e.id] = e
	r.mu.Unlock()
	metrics.StreamsOpen.Inc()

	latest, err := r.msgs.LatestMessages(ctx, user, peer, initialCount)
	if err != nil {
		r.remove(e.id)
		r.closeLocked(e)
		return nil, err
	}
	slices.Reverse(latest)
	batch, high := toOutbound(latest)
	e.watermark = high
	e.push(Batch{Kind: metrics.BatchInitial, Messages: batch})
	e.state = StateStreaming

	r.log.Debug().
		Str("stream", e.id.String()).
		Str("user", user.String()).
		Str("peer", peer.String()).
		Int("initial", len(batch)).
		Msg("stream opened")
	return &Handle{ID: e.id, User: user, Peer: peer, C: e.out, reg: r}, nil
}

// Run delivers change feed events and heartbeats until ctx is done, then
// closes every stream.
func (r *Registry) Run(ctx context.Context) error {
	events, cancel := r.feed.Subscribe(changefeed.EntityMessage)
	defer cancel()

	ticker := time.NewTicker(r.cfg.Heartbeat)
	defer ticker.Stop()

	r.log.Info().Dur("heartbeat", r.cfg.Heartbeat).Msg("stream registry running")
	for {
		select {
		case <-ctx.Done():
			r.CloseAll()
			return nil
		case _, ok := <-events:
			if !ok {
				r.CloseAll()
				return nil
			}
			// One pass covers every event queued so far.
			for drained := false; !drained; {
				select {
				case _, ok := <-events:
					if !ok {
						drained = true
					}
				default:
					drained = true
				}
			}
			r.Deliver(ctx)
		case <-ticker.C:
			r.Heartbeat()
		}
	}
}

func (r *Registry) snapshot() []*entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out
}

// Deliver pushes every message newer than each stream's watermark.
func (r *Registry) Deliver(ctx context.Context) {
	var g errgroup.Group
	g.SetLimit(r.cfg.Workers)
	for _, e := range r.snapshot() {
		g.Go(func() error {
			r.deliverTo(ctx, e)
			return nil
		})
	}
	_ = g.Wait()
}

func (r *Registry) deliverTo(ctx context.Context, e *entry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateStreaming {
		return
	}

	// An unfriendly pair keeps its stream open but receives nothing; the
	// watermark stays put so delivery resumes if they reconcile.
	if err := r.rel.Friendly(ctx, e.user, e.peer); err != nil {
		r.log.Debug().Err(err).Str("stream", e.id.String()).Msg("delivery suppressed")
		return
	}
	msgs, err := r.msgs.MessagesAfter(ctx, e.user, e.peer, e.watermark)
	if err != nil {
		r.log.Warn().Err(err).Str("stream", e.id.String()).Msg("delivery failed")
		return
	}
	if len(msgs) == 0 {
		return
	}
	batch, high := toOutbound(msgs)
	if high > e.watermark {
		e.watermark = high
	}
	e.push(Batch{Kind: metrics.BatchIncrement, Messages: batch})
}

// Heartbeat pushes an empty batch to every streaming entry.
func (r *Registry) Heartbeat() {
	for _, e := range r.snapshot() {
		e.mu.Lock()
		if e.state == StateStreaming {
			e.push(Batch{Kind: metrics.BatchHeartbeat, Messages: []OutboundMessage{}})
		}
		e.mu.Unlock()
	}
}

func (r *Registry) remove(id uuid.UUID) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil
	}
	delete(r.entries, id)
	return e
}

// closeLocked finishes e. Callers hold e.mu.
func (r *Registry) closeLocked(e *entry) {
	if e.state == StateClosed {
		return
	}
	e.state = StateClosed
	close(e.out)
	metrics.StreamsOpen.Dec()
}

// Close removes the stream id. Nothing is delivered to it once Close
// returns. Unknown or already closed ids are ignored.
func (r *Registry) Close(id uuid.UUID) {
	e := r.remove(id)
	if e == nil {
		return
	}
	e.mu.Lock()
	r.closeLocked(e)
	e.mu.Unlock()
	r.log.Debug().Str("stream", id.String()).Msg("stream closed")
}

// CloseFor closes every stream user has open on its conversation with peer.
func (r *Registry) CloseFor(user, peer uuid.UUID) {
	for _, e := range r.snapshot() {
		if e.user == user && e.peer == peer {
			r.Close(e.id)
		}
	}
}

// CloseAll closes every stream.
func (r *Registry) CloseAll() {
	for _, e := range r.snapshot() {
		r.Close(e.id)
	}
}

// Len returns the number of registered streams.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// State returns the state of stream id, StateClosed when unknown.
func (r *Registry) State(id uuid.UUID) State {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return StateClosed
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}
