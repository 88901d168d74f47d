// Package matchmaking promotes contacts to matches once they have talked
// enough, and lists a user's chats.
package matchmaking

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ideomatch/backend/internal/apperr"
	"ideomatch/backend/internal/graph"
	"ideomatch/backend/internal/logger"
	"ideomatch/backend/internal/metrics"
	"ideomatch/backend/internal/models"
)

// MinMessages is the conversation length required before matchmaking.
const MinMessages = 10

var (
	ErrSelfMatch           = apperr.E(apperr.BadRequest, "You cannot matchmake with yourself")
	ErrNotContacts         = apperr.E(apperr.Forbidden, "You are not contacts")
	ErrAlreadyMatched      = apperr.E(apperr.Forbidden, "You are already matched")
	ErrBlocked             = apperr.E(apperr.Forbidden, "This user is blocked")
	ErrInsufficientHistory = apperr.E(apperr.Forbidden, "Not enough messages exchanged")
)

// Relations is the part of the relationship graph matchmaking needs.
type Relations interface {
	Pair(ctx context.Context, a, b uuid.UUID) (graph.Pair, error)
	Edges(ctx context.Context, id uuid.UUID) (*graph.Edges, error)
	AddMatchEdge(ctx context.Context, from, to uuid.UUID) error
}

// Messages answers conversation history questions.
type Messages interface {
	CountMessages(ctx context.Context, a, b uuid.UUID) (int64, error)
	LastMessage(ctx context.Context, a, b uuid.UUID) (*models.Message, error)
}

// Users resolves chat partners.
type Users interface {
	GetUsers(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
}

type Service struct {
	rel   Relations
	msgs  Messages
	users Users
	log   zerolog.Logger
}

func New(rel Relations, msgs Messages, users Users) *Service {
	return &Service{
		rel:   rel,
		msgs:  msgs,
		users: users,
		log:   logger.WithComponent("matchmaking"),
	}
}

// CanMatchmake returns nil when u1 may send a match request to u2, or the
// first reason it may not.
func (s *Service) CanMatchmake(ctx context.Context, u1, u2 uuid.UUID) error {
	if u1 == u2 {
		return ErrSelfMatch
	}
	p, err := s.rel.Pair(ctx, u1, u2)
	if err != nil {
		return err
	}
	switch {
	case !p.Contacts():
		return ErrNotContacts
	case p.MutualMatch():
		return ErrAlreadyMatched
	case p.Blocked():
		return ErrBlocked
	}
	n, err := s.msgs.CountMessages(ctx, u1, u2)
	if err != nil {
		return err
	}
	if n < MinMessages {
		return ErrInsufficientHistory
	}
	return nil
}

// Matchmake records u1's match request towards u2. The pair becomes a match
// once u2 does the same.
func (s *Service) Matchmake(ctx context.Context, u1, u2 uuid.UUID) error {
	err := s.matchmake(ctx, u1, u2)
	metrics.MatchmakeTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	return err
}

func (s *Service) matchmake(ctx context.Context, u1, u2 uuid.UUID) error {
	if err := s.CanMatchmake(ctx, u1, u2); err != nil {
		return err
	}
	err := s.rel.AddMatchEdge(ctx, u1, u2)
	if errors.Is(err, graph.ErrRelationExists) {
		// Already requested; asking twice changes nothing.
		return nil
	}
	if err != nil {
		return err
	}
	s.log.Info().Str("from", u1.String()).Str("to", u2.String()).Msg("match requested")
	return nil
}
