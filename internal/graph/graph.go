package graph

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ideomatch/backend/internal/apperr"
	"ideomatch/backend/internal/logger"
)

var (
	ErrSelfRelation   = apperr.E(apperr.BadRequest, "Cannot relate a user to themselves")
	ErrSelfBlock      = apperr.E(apperr.BadRequest, "You cannot block yourself")
	ErrAlreadyBlocked = apperr.E(apperr.BadRequest, "User is already blocked")
	ErrRelationExists = apperr.E(apperr.Conflict, "Users are already related")
	ErrPairBlocked    = apperr.E(apperr.Forbidden, "Users have blocked each other")

	ErrYouBlocked        = apperr.E(apperr.BadRequest, "You have blocked this user!")
	ErrBlockedByPeer     = apperr.E(apperr.Forbidden, "This user has blocked you!")
	ErrNotInContacts     = apperr.E(apperr.BadRequest, "This user is not in your contacts!")
	ErrNotInPeerContacts = apperr.E(apperr.BadRequest, "You are not in this user's contacts!")
)

// Store persists the relationship edges. Every write is one atomic
// operation that re-checks its guard before inserting: InsertContactPair
// and InsertMatch return ErrPairBlocked or ErrRelationExists when the state
// changed underneath the caller.
type Store interface {
	LoadEdges(ctx context.Context, userID uuid.UUID) (*Edges, error)
	InsertContactPair(ctx context.Context, a, b uuid.UUID) error
	InsertMatch(ctx context.Context, from, to uuid.UUID) error
	BlockPair(ctx context.Context, a, b uuid.UUID) error
}

// Graph owns the contact, match and block relations between users.
type Graph struct {
	store Store
	locks *pairLocks
	log   zerolog.Logger
}

func New(store Store) *Graph {
	return &Graph{
		store: store,
		locks: newPairLocks(),
		log:   logger.WithComponent("graph"),
	}
}

// Edges returns the adjacency of id, or apperr.ErrUserNotFound.
func (g *Graph) Edges(ctx context.Context, id uuid.UUID) (*Edges, error) {
	return g.store.LoadEdges(ctx, id)
}

// Pair loads the adjacency of two distinct users.
func (g *Graph) Pair(ctx context.Context, a, b uuid.UUID) (Pair, error) {
	if a == b {
		return Pair{}, ErrSelfRelation
	}
	ea, err := g.store.LoadEdges(ctx, a)
	if err != nil {
		return Pair{}, err
	}
	eb, err := g.store.LoadEdges(ctx, b)
	if err != nil {
		return Pair{}, err
	}
	return Pair{A: ea, B: eb}, nil
}

// AddContact makes a and b contacts of each other. It is a no-op when they
// already are, and is refused when the pair is matched or blocked.
func (g *Graph) AddContact(ctx context.Context, a, b uuid.UUID) error {
	if a == b {
		return ErrSelfRelation
	}
	unlock := g.locks.lock(a, b)
	defer unlock()

	p, err := g.Pair(ctx, a, b)
	if err != nil {
		return err
	}
	switch {
	case p.Contacts():
		return nil
	case p.Blocked():
		return ErrPairBlocked
	case p.Related():
		return ErrRelationExists
	}
	if err := g.store.InsertContactPair(ctx, a, b); err != nil {
		return err
	}
	g.log.Debug().Str("user", a.String()).Str("contact", b.String()).Msg("contact added")
	return nil
}

// AddMatchEdge records that from wants to match with to.
func (g *Graph) AddMatchEdge(ctx context.Context, from, to uuid.UUID) error {
	if from == to {
		return ErrSelfRelation
	}
	unlock := g.locks.lock(from, to)
	defer unlock()

	p, err := g.Pair(ctx, from, to)
	if err != nil {
		return err
	}
	if p.Blocked() {
		return ErrPairBlocked
	}
	if p.A.Matches.Has(to) {
		return ErrRelationExists
	}
	if err := g.store.InsertMatch(ctx, from, to); err != nil {
		return err
	}
	g.log.Debug().Str("from", from.String()).Str("to", to.String()).Msg("match edge added")
	return nil
}

func (g *Graph) IsMutualMatch(ctx context.Context, a, b uuid.UUID) (bool, error) {
	p, err := g.Pair(ctx, a, b)
	if err != nil {
		return false, err
	}
	return p.MutualMatch(), nil
}

func (g *Graph) IsPendingMatch(ctx context.Context, a, b uuid.UUID) (bool, error) {
	p, err := g.Pair(ctx, a, b)
	if err != nil {
		return false, err
	}
	return p.PendingMatch(), nil
}

// Block makes a and b block each other and removes every contact and match
// edge between them.
func (g *Graph) Block(ctx context.Context, a, b uuid.UUID) error {
	if a == b {
		return ErrSelfBlock
	}
	unlock := g.locks.lock(a, b)
	defer unlock()

	p, err := g.Pair(ctx, a, b)
	if err != nil {
		return err
	}
	if p.A.Blocks.Has(b) {
		return ErrAlreadyBlocked
	}
	if err := g.store.BlockPair(ctx, a, b); err != nil {
		return err
	}
	g.log.Info().Str("user", a.String()).Str("blocked", b.String()).Msg("user blocked")
	return nil
}

// IsBlocked reports whether either of a and b blocks the other.
func (g *Graph) IsBlocked(ctx context.Context, a, b uuid.UUID) (bool, error) {
	p, err := g.Pair(ctx, a, b)
	if err != nil {
		return false, err
	}
	return p.Blocked(), nil
}

// ExcludedCandidates returns the users u must never be offered as a new
// contact: u itself, its contacts and matches, and everyone it is blocked
// with in either direction.
func (g *Graph) ExcludedCandidates(ctx context.Context, u uuid.UUID) (Set, error) {
	e, err := g.store.LoadEdges(ctx, u)
	if err != nil {
		return nil, err
	}
	return e.Excluded(), nil
}

// Excluded is ExcludedCandidates over already loaded edges.
func (e *Edges) Excluded() Set {
	out := NewSet(e.UserID)
	out.Union(e.Contacts)
	out.Union(e.Matches)
	out.Union(e.Blocks)
	out.Union(e.BlockedBy)
	return out
}

// Friendly returns nil when a and b are contacts of each other and neither
// blocks the other. The error names the first failing condition from a's
// point of view.
func (g *Graph) Friendly(ctx context.Context, a, b uuid.UUID) error {
	p, err := g.Pair(ctx, a, b)
	if err != nil {
		return err
	}
	switch {
	case p.A.Blocks.Has(b):
		return ErrYouBlocked
	case p.B.Blocks.Has(a):
		return ErrBlockedByPeer
	case !p.A.Contacts.Has(b):
		return ErrNotInContacts
	case !p.B.Contacts.Has(a):
		return ErrNotInPeerContacts
	}
	return nil
}

// IsFriendlinessError reports whether err is one of the Friendly refusals
// rather than a lookup or storage failure.
func IsFriendlinessError(err error) bool {
	return errors.Is(err, ErrYouBlocked) || errors.Is(err, ErrBlockedByPeer) ||
		errors.Is(err, ErrNotInContacts) || errors.Is(err, ErrNotInPeerContacts) ||
		errors.Is(err, ErrSelfRelation)
}
