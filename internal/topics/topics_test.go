package topics_test

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideomatch/backend/internal/graph"
	"ideomatch/backend/internal/models"
	"ideomatch/backend/internal/repository/memory"
	"ideomatch/backend/internal/topics"
)

func pair(t *testing.T, store *memory.Store) (uuid.UUID, uuid.UUID) {
	t.Helper()
	a := &models.User{Username: "alice"}
	b := &models.User{Username: "bob"}
	require.NoError(t, store.CreateUser(context.Background(), a))
	require.NoError(t, store.CreateUser(context.Background(), b))
	return a.ID, b.ID
}

func TestGeneratePersistsTopicMessage(t *testing.T) {
	ctx := context.Background()
	store := memory.New(nil)
	g := graph.New(store)
	a, b := pair(t, store)
	require.NoError(t, g.AddContact(ctx, a, b))

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	gen := topics.New(store, g,
		topics.WithRand(rand.New(rand.NewPCG(1, 2))),
		topics.WithClock(func() time.Time { return at }))

	msg, err := gen.Generate(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, msg.IsTopic)
	assert.Equal(t, a, msg.SenderID)
	assert.Equal(t, b, msg.ReceiverID)
	assert.Equal(t, at, msg.Time)
	assert.Contains(t, topics.Prompts(), msg.Text)

	n, err := store.CountMessages(ctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestGenerateRequiresFriendliness(t *testing.T) {
	ctx := context.Background()
	store := memory.New(nil)
	g := graph.New(store)
	a, b := pair(t, store)

	_, err := topics.New(store, g).Generate(ctx, a, b)
	assert.ErrorIs(t, err, graph.ErrNotInContacts)

	n, err := store.CountMessages(ctx, a, b)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPromptsAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range topics.Prompts() {
		assert.False(t, seen[p], p)
		seen[p] = true
	}
	assert.NotEmpty(t, seen)
}
