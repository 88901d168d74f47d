package matchmaking

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ideomatch/backend/internal/graph"
	"ideomatch/backend/internal/models"
)

// maxConcurrentLookups bounds the per-chat last message queries.
const maxConcurrentLookups = 8

// Chat is one conversation in a user's chat list.
type Chat struct {
	User        models.PublicUser   `json:"user"`
	LastMessage *models.MessageView `json:"last_message"`
	IsMatch     bool                `json:"is_match"`
	IsPending   bool                `json:"is_pending"`
}

// GetChats lists the contacts and matches of u that are not blocked either
// way, most recent conversation first.
func (s *Service) GetChats(ctx context.Context, u uuid.UUID) ([]Chat, error) {
	e, err := s.rel.Edges(ctx, u)
	if err != nil {
		return nil, err
	}

	partners := graph.Set{}
	partners.Union(e.Contacts)
	partners.Union(e.Matches)
	for id := range partners {
		if id == u || e.BlockedEitherWay(id) {
			delete(partners, id)
		}
	}
	if len(partners) == 0 {
		return []Chat{}, nil
	}

	users, err := s.users.GetUsers(ctx, partners.Slice())
	if err != nil {
		return nil, err
	}

	chats := make([]Chat, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)
	for i := range users {
		peer := &users[i]
		g.Go(func() error {
			pe, err := s.rel.Edges(gctx, peer.ID)
			if err != nil {
				return err
			}
			last, err := s.msgs.LastMessage(gctx, u, peer.ID)
			if err != nil {
				return err
			}
			p := graph.Pair{A: e, B: pe}
			chats[i] = Chat{
				User:      peer.Public(),
				IsMatch:   p.MutualMatch(),
				IsPending: p.PendingMatch(),
			}
			if last != nil {
				v := last.View()
				chats[i].LastMessage = &v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(chats, func(i, j int) bool {
		a, b := chats[i].LastMessage, chats[j].LastMessage
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Time.After(b.Time)
		}
	})
	return chats, nil
}
