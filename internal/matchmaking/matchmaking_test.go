package matchmaking_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideomatch/backend/internal/apperr"
	"ideomatch/backend/internal/graph"
	"ideomatch/backend/internal/matchmaking"
	"ideomatch/backend/internal/models"
	"ideomatch/backend/internal/repository/memory"
)

type fixture struct {
	store *memory.Store
	graph *graph.Graph
	svc   *matchmaking.Service
}

func newFixture(t *testing.T, names ...string) (*fixture, []uuid.UUID) {
	t.Helper()
	store := memory.New(nil)
	g := graph.New(store)
	ids := make([]uuid.UUID, len(names))
	for i, n := range names {
		u := &models.User{Username: n}
		require.NoError(t, store.CreateUser(context.Background(), u))
		ids[i] = u.ID
	}
	return &fixture{store: store, graph: g, svc: matchmaking.New(g, store, store)}, ids
}

func (fx *fixture) talk(t *testing.T, a, b uuid.UUID, n int, start time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		from, to := a, b
		if i%2 == 1 {
			from, to = b, a
		}
		require.NoError(t, fx.store.CreateMessage(context.Background(), &models.Message{
			SenderID: from, ReceiverID: to, Text: "msg", Time: start.Add(time.Duration(i) * time.Second),
		}))
	}
}

func TestCanMatchmakeOrderOfChecks(t *testing.T) {
	ctx := context.Background()
	fx, ids := newFixture(t, "alice", "bob")
	a, b := ids[0], ids[1]

	assert.ErrorIs(t, fx.svc.CanMatchmake(ctx, a, a), matchmaking.ErrSelfMatch)
	assert.ErrorIs(t, fx.svc.CanMatchmake(ctx, a, uuid.New()), apperr.ErrUserNotFound)
	assert.ErrorIs(t, fx.svc.CanMatchmake(ctx, a, b), matchmaking.ErrNotContacts)

	require.NoError(t, fx.graph.AddContact(ctx, a, b))
	err := fx.svc.CanMatchmake(ctx, a, b)
	assert.ErrorIs(t, err, matchmaking.ErrInsufficientHistory)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestCanMatchmakeNeedsTenMessagesInAnyDirection(t *testing.T) {
	ctx := context.Background()
	fx, ids := newFixture(t, "alice", "bob")
	a, b := ids[0], ids[1]
	require.NoError(t, fx.graph.AddContact(ctx, a, b))

	fx.talk(t, a, b, 9, time.Now())
	assert.ErrorIs(t, fx.svc.CanMatchmake(ctx, a, b), matchmaking.ErrInsufficientHistory)
	assert.ErrorIs(t, fx.svc.CanMatchmake(ctx, b, a), matchmaking.ErrInsufficientHistory)

	fx.talk(t, b, a, 1, time.Now())
	assert.NoError(t, fx.svc.CanMatchmake(ctx, a, b))
	assert.NoError(t, fx.svc.CanMatchmake(ctx, b, a))
}

func TestMatchmakeIsDirectional(t *testing.T) {
	ctx := context.Background()
	fx, ids := newFixture(t, "alice", "bob")
	a, b := ids[0], ids[1]
	require.NoError(t, fx.graph.AddContact(ctx, a, b))
	fx.talk(t, a, b, 10, time.Now())

	require.NoError(t, fx.svc.Matchmake(ctx, a, b))
	pending, err := fx.graph.IsPendingMatch(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, pending)

	require.NoError(t, fx.svc.Matchmake(ctx, a, b), "repeating a request is harmless")

	require.NoError(t, fx.svc.Matchmake(ctx, b, a))
	mutual, err := fx.graph.IsMutualMatch(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, mutual)

	assert.ErrorIs(t, fx.svc.CanMatchmake(ctx, a, b), matchmaking.ErrAlreadyMatched)
	assert.ErrorIs(t, fx.svc.Matchmake(ctx, b, a), matchmaking.ErrAlreadyMatched)
}

func TestBlockedPairCannotMatchmake(t *testing.T) {
	ctx := context.Background()
	fx, ids := newFixture(t, "alice", "bob")
	a, b := ids[0], ids[1]
	require.NoError(t, fx.graph.AddContact(ctx, a, b))
	fx.talk(t, a, b, 10, time.Now())
	fx.store.AddBlockEdge(b, a)

	assert.ErrorIs(t, fx.svc.Matchmake(ctx, a, b), matchmaking.ErrBlocked)
}

func TestGetChats(t *testing.T) {
	ctx := context.Background()
	fx, ids := newFixture(t, "me", "old", "recent", "silent", "matched", "blocked")
	me := ids[0]
	for _, id := range ids[1:] {
		require.NoError(t, fx.graph.AddContact(ctx, me, id))
	}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fx.talk(t, me, ids[1], 1, base)
	fx.talk(t, ids[2], me, 1, base.Add(time.Hour))
	fx.talk(t, me, ids[4], 10, base.Add(30*time.Minute))
	require.NoError(t, fx.svc.Matchmake(ctx, ids[4], me))
	fx.store.AddBlockEdge(ids[5], me)

	chats, err := fx.svc.GetChats(ctx, me)
	require.NoError(t, err)
	require.Len(t, chats, 4)

	assert.Equal(t, "recent", chats[0].User.Username)
	assert.Equal(t, "recent", chats[0].LastMessage.Sender.Username)
	assert.Equal(t, "matched", chats[1].User.Username)
	assert.Equal(t, "old", chats[2].User.Username)
	assert.Equal(t, "silent", chats[3].User.Username)
	assert.Nil(t, chats[3].LastMessage)

	assert.True(t, chats[1].IsPending)
	assert.False(t, chats[1].IsMatch)
	for _, c := range []matchmaking.Chat{chats[0], chats[2], chats[3]} {
		assert.False(t, c.IsPending)
		assert.False(t, c.IsMatch)
	}
}

func TestGetChatsEmpty(t *testing.T) {
	fx, ids := newFixture(t, "alone")
	chats, err := fx.svc.GetChats(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Empty(t, chats)
	assert.NotNil(t, chats)
}
