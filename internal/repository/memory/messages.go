package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"ideomatch/backend/internal/changefeed"
	"ideomatch/backend/internal/models"
	"ideomatch/backend/internal/repository"
)

func (s *Store) CreateMessage(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	if err := s.known(m.SenderID, m.ReceiverID); err != nil {
		s.mu.Unlock()
		return err
	}
	s.nextMsgID++
	m.ID = s.nextMsgID
	now := time.Now()
	m.CreatedAt, m.UpdatedAt = now, now
	if m.Time.IsZero() {
		m.Time = now
	}
	stored := *m
	stored.Sender, stored.Receiver = models.User{}, models.User{}
	s.messages = append(s.messages, stored)
	s.mu.Unlock()

	if s.pub != nil {
		s.pub.Publish(changefeed.Event{Kind: changefeed.KindInsert, Entity: changefeed.EntityMessage, Payload: m})
	}
	return nil
}

// conversation returns the messages between a and b with parties attached.
// Callers hold at least the read lock.
func (s *Store) conversation(a, b uuid.UUID, keep func(*models.Message) bool) []models.Message {
	var out []models.Message
	for i := range s.messages {
		m := s.messages[i]
		if !m.Involves(a, b) || (keep != nil && !keep(&m)) {
			continue
		}
		if u, ok := s.users[m.SenderID]; ok {
			m.Sender = *cloneUser(u)
		}
		if u, ok := s.users[m.ReceiverID]; ok {
			m.Receiver = *cloneUser(u)
		}
		out = append(out, m)
	}
	return out
}

func newestFirst(msgs []models.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if !msgs[i].Time.Equal(msgs[j].Time) {
			return msgs[i].Time.After(msgs[j].Time)
		}
		return msgs[i].ID > msgs[j].ID
	})
}

func (s *Store) LatestMessages(_ context.Context, a, b uuid.UUID, limit int) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.conversation(a, b, nil)
	newestFirst(msgs)
	if limit >= 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (s *Store) MessagesAfter(_ context.Context, a, b uuid.UUID, afterID uint) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.conversation(a, b, func(m *models.Message) bool { return m.ID > afterID })
	sort.SliceStable(msgs, func(i, j int) bool {
		if !msgs[i].Time.Equal(msgs[j].Time) {
			return msgs[i].Time.Before(msgs[j].Time)
		}
		return msgs[i].ID < msgs[j].ID
	})
	return msgs, nil
}

func (s *Store) LastMessage(ctx context.Context, a, b uuid.UUID) (*models.Message, error) {
	msgs, err := s.LatestMessages(ctx, a, b, 1)
	if err != nil || len(msgs) == 0 {
		return nil, err
	}
	return &msgs[0], nil
}

func (s *Store) CountMessages(_ context.Context, a, b uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for i := range s.messages {
		if s.messages[i].Involves(a, b) {
			n++
		}
	}
	return n, nil
}

func (s *Store) MessagePage(_ context.Context, a, b uuid.UUID, page, limit int) (*repository.Page[models.Message], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.conversation(a, b, nil)
	newestFirst(msgs)
	start, end := repository.Window(len(msgs), page, limit)
	p := repository.NewPage(msgs[start:end], int64(len(msgs)), page, limit)
	return &p, nil
}
