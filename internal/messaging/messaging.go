// Package messaging sends chat messages between friendly users and serves
// conversation history.
package messaging

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ideomatch/backend/internal/apperr"
	"ideomatch/backend/internal/logger"
	"ideomatch/backend/internal/models"
	"ideomatch/backend/internal/repository"
)

// MaxTextLength bounds a single message.
const MaxTextLength = 4096

// MaxPageSize bounds History.
const MaxPageSize = 100

var (
	ErrEmptyText    = apperr.E(apperr.BadRequest, "Message text is required")
	ErrTextTooLong  = apperr.E(apperr.BadRequest, "Message text is too long")
	ErrSelfMessage  = apperr.E(apperr.BadRequest, "You cannot message yourself")
	ErrInvalidRange = apperr.E(apperr.BadRequest, "Invalid page or limit")
)

// Store persists and reads messages.
type Store interface {
	CreateMessage(ctx context.Context, m *models.Message) error
	MessagePage(ctx context.Context, a, b uuid.UUID, page, limit int) (*repository.Page[models.Message], error)
}

// Friendliness gates who may talk to whom.
type Friendliness interface {
	Friendly(ctx context.Context, a, b uuid.UUID) error
}

// SendRequest is a validated message submission.
type SendRequest struct {
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Text       string
	// Time is the client timestamp; zero means now.
	Time time.Time
}

// Validate checks the request shape without touching storage.
func (r *SendRequest) Validate() error {
	if r.SenderID == r.ReceiverID {
		return ErrSelfMessage
	}
	if strings.TrimSpace(r.Text) == "" {
		return ErrEmptyText
	}
	if len(r.Text) > MaxTextLength {
		return ErrTextTooLong
	}
	return nil
}

type Service struct {
	store Store
	rel   Friendliness
	now   func() time.Time
	log   zerolog.Logger
}

func New(store Store, rel Friendliness) *Service {
	return &Service{
		store: store,
		rel:   rel,
		now:   time.Now,
		log:   logger.WithComponent("messaging"),
	}
}

// Send stores a message from req.SenderID to req.ReceiverID.
func (s *Service) Send(ctx context.Context, req SendRequest) (*models.Message, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.rel.Friendly(ctx, req.SenderID, req.ReceiverID); err != nil {
		return nil, err
	}
	at := req.Time
	if at.IsZero() {
		at = s.now()
	}
	msg := &models.Message{
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Text:       req.Text,
		Time:       at,
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	s.log.Debug().Uint("message", msg.ID).Str("sender", req.SenderID.String()).Msg("message sent")
	return msg, nil
}

// History returns one page of the conversation between user and peer,
// newest first. The pair must be friendly.
func (s *Service) History(ctx context.Context, user, peer uuid.UUID, page, limit int) (*repository.Page[models.MessageView], error) {
	if page < 1 || limit < 1 || limit > MaxPageSize {
		return nil, ErrInvalidRange
	}
	if err := s.rel.Friendly(ctx, user, peer); err != nil {
		return nil, err
	}
	p, err := s.store.MessagePage(ctx, user, peer, page, limit)
	if err != nil {
		return nil, err
	}
	views := make([]models.MessageView, len(p.Data))
	for i := range p.Data {
		views[i] = p.Data[i].View()
	}
	out := repository.NewPage(views, p.Meta.TotalItems, page, limit)
	return &out, nil
}
