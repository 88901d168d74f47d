// Package topics opens conversations with a conversation starter picked at
// random from a curated list.
package topics

import (
	"context"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ideomatch/backend/internal/logger"
	"ideomatch/backend/internal/models"
)

// Store persists messages.
type Store interface {
	CreateMessage(ctx context.Context, m *models.Message) error
}

// Friendliness gates who may talk to whom.
type Friendliness interface {
	Friendly(ctx context.Context, a, b uuid.UUID) error
}

// Generator writes topic messages.
type Generator struct {
	store Store
	rel   Friendliness
	pick  func(n int) int
	now   func() time.Time
	log   zerolog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand makes prompt picks come from r.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.pick = r.IntN }
}

// WithClock overrides the message timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

func New(store Store, rel Friendliness, opts ...Option) *Generator {
	g := &Generator{
		store: store,
		rel:   rel,
		pick:  rand.IntN,
		now:   time.Now,
		log:   logger.WithComponent("topics"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Prompts returns a copy of the curated list.
func Prompts() []string {
	return slices.Clone(prompts)
}

// Generate stores a random prompt as a topic message from from to to. The
// pair must be friendly.
func (g *Generator) Generate(ctx context.Context, from, to uuid.UUID) (*models.Message, error) {
	if err := g.rel.Friendly(ctx, from, to); err != nil {
		return nil, err
	}
	msg := &models.Message{
		SenderID:   from,
		ReceiverID: to,
		Text:       prompts[g.pick(len(prompts))],
		Time:       g.now(),
		IsTopic:    true,
	}
	if err := g.store.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	g.log.Debug().Str("from", from.String()).Str("to", to.String()).Uint("message", msg.ID).Msg("topic generated")
	return msg, nil
}
