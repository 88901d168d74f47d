package graph

import (
	"github.com/google/uuid"
)

// Set is a set of user ids.
type Set map[uuid.UUID]struct{}

// NewSet returns a set holding ids.
func NewSet(ids ...uuid.UUID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in s.
func (s Set) Has(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id.
func (s Set) Add(id uuid.UUID) { s[id] = struct{}{} }

// Union adds every member of other to s.
func (s Set) Union(other Set) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// Slice returns the members in unspecified order.
func (s Set) Slice() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

// Edges is the adjacency of one user: its outgoing contact, match and block
// edges, plus the users that block it.
type Edges struct {
	UserID    uuid.UUID
	Contacts  Set
	Matches   Set
	Blocks    Set
	BlockedBy Set
}

// NewEdges returns empty adjacency for id.
func NewEdges(id uuid.UUID) *Edges {
	return &Edges{
		UserID:    id,
		Contacts:  Set{},
		Matches:   Set{},
		Blocks:    Set{},
		BlockedBy: Set{},
	}
}

// BlockedEitherWay reports whether u and id block each other in any direction.
func (e *Edges) BlockedEitherWay(id uuid.UUID) bool {
	return e.Blocks.Has(id) || e.BlockedBy.Has(id)
}

// Pair is the adjacency of two distinct users.
type Pair struct {
	A, B *Edges
}

// Contacts reports whether the contact edge exists in both directions.
func (p Pair) Contacts() bool {
	return p.A.Contacts.Has(p.B.UserID) && p.B.Contacts.Has(p.A.UserID)
}

// MutualMatch reports whether match edges exist in both directions.
func (p Pair) MutualMatch() bool {
	return p.A.Matches.Has(p.B.UserID) && p.B.Matches.Has(p.A.UserID)
}

// PendingMatch reports whether exactly one of the two match edges exists.
func (p Pair) PendingMatch() bool {
	return p.A.Matches.Has(p.B.UserID) != p.B.Matches.Has(p.A.UserID)
}

// Blocked reports whether either user blocks the other.
func (p Pair) Blocked() bool {
	return p.A.BlockedEitherWay(p.B.UserID) || p.B.BlockedEitherWay(p.A.UserID)
}

// Related reports whether any contact, match or block edge joins the pair.
func (p Pair) Related() bool {
	a, b := p.A.UserID, p.B.UserID
	return p.A.Contacts.Has(b) || p.B.Contacts.Has(a) ||
		p.A.Matches.Has(b) || p.B.Matches.Has(a) ||
		p.Blocked()
}
