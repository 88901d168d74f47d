package graph_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideomatch/backend/internal/apperr"
	"ideomatch/backend/internal/graph"
	"ideomatch/backend/internal/models"
	"ideomatch/backend/internal/repository/memory"
)

func newUsers(t *testing.T, store *memory.Store, names ...string) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, len(names))
	for i, name := range names {
		u := &models.User{Username: name, Settings: models.DefaultSettings()}
		require.NoError(t, store.CreateUser(context.Background(), u))
		ids[i] = u.ID
	}
	return ids
}

func setup(t *testing.T, names ...string) (*graph.Graph, *memory.Store, []uuid.UUID) {
	t.Helper()
	store := memory.New(nil)
	ids := newUsers(t, store, names...)
	return graph.New(store), store, ids
}

func TestAddContactIsSymmetricAndIdempotent(t *testing.T) {
	ctx := context.Background()
	g, _, ids := setup(t, "alice", "bob")
	a, b := ids[0], ids[1]

	require.NoError(t, g.AddContact(ctx, a, b))
	require.NoError(t, g.AddContact(ctx, b, a))

	p, err := g.Pair(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, p.Contacts())
	assert.Len(t, p.A.Contacts, 1)
	assert.Len(t, p.B.Contacts, 1)
	require.NoError(t, g.Friendly(ctx, a, b))
	require.NoError(t, g.Friendly(ctx, b, a))
}

func TestSelfRelationsAreRefused(t *testing.T) {
	ctx := context.Background()
	g, _, ids := setup(t, "alice")
	a := ids[0]

	assert.ErrorIs(t, g.AddContact(ctx, a, a), graph.ErrSelfRelation)
	assert.ErrorIs(t, g.AddMatchEdge(ctx, a, a), graph.ErrSelfRelation)
	assert.ErrorIs(t, g.Block(ctx, a, a), graph.ErrSelfBlock)
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(g.Block(ctx, a, a)))
}

func TestUnknownUser(t *testing.T) {
	ctx := context.Background()
	g, _, ids := setup(t, "alice")

	err := g.AddContact(ctx, ids[0], uuid.New())
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
	_, err = g.ExcludedCandidates(ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}

func TestMatchEdgesArePendingThenMutual(t *testing.T) {
	ctx := context.Background()
	g, _, ids := setup(t, "alice", "bob")
	a, b := ids[0], ids[1]
	require.NoError(t, g.AddContact(ctx, a, b))

	require.NoError(t, g.AddMatchEdge(ctx, a, b))
	pending, err := g.IsPendingMatch(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, pending)
	mutual, err := g.IsMutualMatch(ctx, a, b)
	require.NoError(t, err)
	assert.False(t, mutual)

	assert.ErrorIs(t, g.AddMatchEdge(ctx, a, b), graph.ErrRelationExists)

	require.NoError(t, g.AddMatchEdge(ctx, b, a))
	mutual, err = g.IsMutualMatch(ctx, b, a)
	require.NoError(t, err)
	assert.True(t, mutual)
	pending, err = g.IsPendingMatch(ctx, b, a)
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestContactRefusedWhenMatchedOrBlocked(t *testing.T) {
	ctx := context.Background()
	g, _, ids := setup(t, "alice", "bob", "carol")
	a, b, c := ids[0], ids[1], ids[2]

	require.NoError(t, g.AddMatchEdge(ctx, a, b))
	assert.ErrorIs(t, g.AddContact(ctx, b, a), graph.ErrRelationExists)

	require.NoError(t, g.Block(ctx, c, a))
	assert.ErrorIs(t, g.AddContact(ctx, a, c), graph.ErrPairBlocked)
	assert.ErrorIs(t, g.AddMatchEdge(ctx, a, c), graph.ErrPairBlocked)
}

func TestBlockRemovesEdgesInBothDirections(t *testing.T) {
	ctx := context.Background()
	g, _, ids := setup(t, "alice", "bob")
	a, b := ids[0], ids[1]
	require.NoError(t, g.AddContact(ctx, a, b))
	require.NoError(t, g.AddMatchEdge(ctx, a, b))
	require.NoError(t, g.AddMatchEdge(ctx, b, a))

	require.NoError(t, g.Block(ctx, a, b))

	p, err := g.Pair(ctx, a, b)
	require.NoError(t, err)
	assert.Empty(t, p.A.Contacts)
	assert.Empty(t, p.B.Contacts)
	assert.Empty(t, p.A.Matches)
	assert.Empty(t, p.B.Matches)
	assert.True(t, p.A.Blocks.Has(b))
	assert.True(t, p.B.Blocks.Has(a))

	assert.ErrorIs(t, g.Block(ctx, a, b), graph.ErrAlreadyBlocked)
	assert.ErrorIs(t, g.Friendly(ctx, a, b), graph.ErrYouBlocked)

	blocked, err := g.IsBlocked(ctx, b, a)
	require.NoError(t, err)
	assert.True(t, blocked)
}

func TestExcludedCandidates(t *testing.T) {
	ctx := context.Background()
	g, store, ids := setup(t, "u", "contact", "match", "blocked", "blocker", "stranger")
	u := ids[0]
	require.NoError(t, g.AddContact(ctx, u, ids[1]))
	require.NoError(t, g.AddMatchEdge(ctx, u, ids[2]))
	require.NoError(t, g.Block(ctx, u, ids[3]))
	store.AddBlockEdge(ids[4], u)

	excluded, err := g.ExcludedCandidates(ctx, u)
	require.NoError(t, err)
	assert.Len(t, excluded, 5)
	for _, id := range ids[:5] {
		assert.True(t, excluded.Has(id))
	}
	assert.False(t, excluded.Has(ids[5]))
}

func TestFriendlyReportsFirstFailure(t *testing.T) {
	ctx := context.Background()
	g, store, ids := setup(t, "alice", "bob")
	a, b := ids[0], ids[1]

	assert.ErrorIs(t, g.Friendly(ctx, a, b), graph.ErrNotInContacts)

	store.AddContactEdge(a, b)
	assert.ErrorIs(t, g.Friendly(ctx, a, b), graph.ErrNotInPeerContacts)

	store.AddContactEdge(b, a)
	assert.NoError(t, g.Friendly(ctx, a, b))

	store.AddBlockEdge(b, a)
	err := g.Friendly(ctx, a, b)
	assert.ErrorIs(t, err, graph.ErrBlockedByPeer)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
	assert.True(t, graph.IsFriendlinessError(err))
}

func TestConcurrentContactAndBlockKeepPairConsistent(t *testing.T) {
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		g, _, ids := setup(t, "alice", "bob")
		a, b := ids[0], ids[1]

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = g.AddContact(ctx, a, b)
		}()
		go func() {
			defer wg.Done()
			_ = g.Block(ctx, b, a)
		}()
		wg.Wait()

		p, err := g.Pair(ctx, a, b)
		require.NoError(t, err)
		assert.True(t, p.Blocked())
		assert.False(t, p.Contacts(), "contact survived a block")
	}
}
