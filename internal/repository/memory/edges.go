package memory

import (
	"context"

	"github.com/google/uuid"

	"ideomatch/backend/internal/apperr"
	"ideomatch/backend/internal/graph"
)

func copySet(s graph.Set) graph.Set {
	out := make(graph.Set, len(s))
	out.Union(s)
	return out
}

func (s *Store) LoadEdges(_ context.Context, id uuid.UUID) (*graph.Edges, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[id]; !ok {
		return nil, apperr.ErrUserNotFound
	}
	e := graph.NewEdges(id)
	e.Contacts = copySet(s.contacts[id])
	e.Matches = copySet(s.matches[id])
	e.Blocks = copySet(s.blocks[id])
	for other, blocks := range s.blocks {
		if blocks.Has(id) {
			e.BlockedBy.Add(other)
		}
	}
	return e, nil
}

func (s *Store) known(ids ...uuid.UUID) error {
	for _, id := range ids {
		if _, ok := s.users[id]; !ok {
			return apperr.ErrUserNotFound
		}
	}
	return nil
}

func (s *Store) blockedLocked(a, b uuid.UUID) bool {
	return s.blocks[a].Has(b) || s.blocks[b].Has(a)
}

func (s *Store) InsertContactPair(_ context.Context, a, b uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.known(a, b); err != nil {
		return err
	}
	if s.blockedLocked(a, b) {
		return graph.ErrPairBlocked
	}
	if s.matches[a].Has(b) || s.matches[b].Has(a) {
		return graph.ErrRelationExists
	}
	s.contacts[a].Add(b)
	s.contacts[b].Add(a)
	return nil
}

func (s *Store) InsertMatch(_ context.Context, from, to uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.known(from, to); err != nil {
		return err
	}
	if s.blockedLocked(from, to) {
		return graph.ErrPairBlocked
	}
	if s.matches[from].Has(to) {
		return graph.ErrRelationExists
	}
	s.matches[from].Add(to)
	return nil
}

func (s *Store) BlockPair(_ context.Context, a, b uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.known(a, b); err != nil {
		return err
	}
	delete(s.contacts[a], b)
	delete(s.contacts[b], a)
	delete(s.matches[a], b)
	delete(s.matches[b], a)
	s.blocks[a].Add(b)
	s.blocks[b].Add(a)
	return nil
}

// AddBlockEdge inserts a single block direction. It exists for seeding
// states the graph itself never produces, such as one-sided legacy blocks.
func (s *Store) AddBlockEdge(a, b uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[a].Add(b)
}

// AddContactEdge inserts a single contact direction, see AddBlockEdge.
func (s *Store) AddContactEdge(a, b uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[a].Add(b)
}

// ContactIDs returns the contacts of id in a stable order.
func (s *Store) ContactIDs(id uuid.UUID) []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.contacts[id].Slice()
	sortIDs(ids)
	return ids
}
