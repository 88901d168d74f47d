package stream

import (
	"sync"

	"github.com/google/uuid"

	"ideomatch/backend/internal/metrics"
	"ideomatch/backend/internal/models"
)

// State is the lifecycle of a stream entry.
type State int

const (
	StateOpening State = iota
	StateStreaming
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpening:
		return "opening"
	case StateStreaming:
		return "streaming"
	default:
		return "closed"
	}
}

// OutboundMessage is a message as pushed to stream clients.
type OutboundMessage = models.MessageView

// Batch is one push to a client. Heartbeat batches carry no messages.
type Batch struct {
	Kind     string            `json:"kind"`
	Messages []OutboundMessage `json:"messages"`
}

// Heartbeat reports whether b only keeps the connection alive.
func (b Batch) Heartbeat() bool { return b.Kind == metrics.BatchHeartbeat }

// entry is one open stream. mu serialises every delivery, the watermark and
// the state; out is only sent on and closed while mu is held.
type entry struct {
	id   uuid.UUID
	user uuid.UUID
	peer uuid.UUID

	mu        sync.Mutex
	state     State
	watermark uint
	out       chan Batch
}

// push enqueues b without blocking. A full buffer drops its oldest batch to
// make room for data; heartbeats are discarded instead. Callers hold mu.
func (e *entry) push(b Batch) {
	for {
		select {
		case e.out <- b:
			metrics.StreamBatchesTotal.WithLabelValues(b.Kind).Inc()
			return
		default:
		}
		if b.Heartbeat() {
			return
		}
		select {
		case <-e.out:
			metrics.StreamDroppedTotal.Inc()
		default:
		}
	}
}

func toOutbound(msgs []models.Message) ([]OutboundMessage, uint) {
	out := make([]OutboundMessage, len(msgs))
	var high uint
	for i := range msgs {
		out[i] = msgs[i].View()
		if msgs[i].ID > high {
			high = msgs[i].ID
		}
	}
	return out, high
}
