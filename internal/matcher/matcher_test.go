package matcher_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideomatch/backend/internal/apperr"
	"ideomatch/backend/internal/graph"
	"ideomatch/backend/internal/matcher"
	"ideomatch/backend/internal/models"
	"ideomatch/backend/internal/repository/memory"
	"ideomatch/backend/internal/topics"
)

type fixture struct {
	store *memory.Store
	graph *graph.Graph
}

func newFixture() *fixture {
	store := memory.New(nil)
	return &fixture{store: store, graph: graph.New(store)}
}

// user registers an open-minded discoverable user.
func (fx *fixture) user(t *testing.T, name string, edit ...func(*models.User)) uuid.UUID {
	t.Helper()
	u := &models.User{Username: name, Settings: models.DefaultSettings()}
	u.Settings.Discoverable = true
	u.Settings.ConsiderGender = false
	u.Settings.ConsiderPolitics = false
	u.Settings.ConsiderHobbies = false
	for _, e := range edit {
		e(u)
	}
	require.NoError(t, fx.store.CreateUser(context.Background(), u))
	return u.ID
}

func (fx *fixture) matcher(opts ...matcher.Option) *matcher.Matcher {
	opts = append([]matcher.Option{matcher.WithRand(rand.New(rand.NewPCG(7, 7)))}, opts...)
	return matcher.New(fx.store, fx.graph, opts...)
}

func hidden(u *models.User) { u.Settings.Discoverable = false }

func TestFindNewContactCreatesSymmetricContact(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	a := fx.user(t, "alice")
	b := fx.user(t, "bob")

	contact, err := fx.matcher().FindNewContact(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, b, contact.ID)
	assert.Equal(t, "bob", contact.Username)

	p, err := fx.graph.Pair(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, p.Contacts())
}

func TestFindNewContactRequiresDiscoverable(t *testing.T) {
	fx := newFixture()
	a := fx.user(t, "alice", hidden)
	fx.user(t, "bob")

	_, err := fx.matcher().FindNewContact(context.Background(), a)
	assert.ErrorIs(t, err, matcher.ErrNotDiscoverable)

	_, err = fx.matcher().FindNewContact(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}

func TestNoCandidatesWhenOnlyOtherUserIsBlocked(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	a := fx.user(t, "alice")
	b := fx.user(t, "bob")
	fx.user(t, "carol", hidden)
	require.NoError(t, fx.graph.Block(ctx, a, b))

	_, err := fx.matcher().FindNewContact(ctx, a)
	assert.ErrorIs(t, err, matcher.ErrNoCandidates)
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))

	e, err := fx.graph.Edges(ctx, a)
	require.NoError(t, err)
	assert.Empty(t, e.Contacts)
	assert.Empty(t, e.Matches)

	_, err = fx.matcher().FindNewContact(ctx, b)
	assert.ErrorIs(t, err, matcher.ErrNoCandidates)
}

func TestFindNewContactNeverReturnsExcludedUsers(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	a := fx.user(t, "a")
	contact := fx.user(t, "contact")
	match := fx.user(t, "match")
	blocked := fx.user(t, "blocked")
	blocker := fx.user(t, "blocker")
	require.NoError(t, fx.graph.AddContact(ctx, a, contact))
	require.NoError(t, fx.graph.AddMatchEdge(ctx, a, match))
	require.NoError(t, fx.graph.Block(ctx, a, blocked))
	fx.store.AddBlockEdge(blocker, a)

	excluded := graph.NewSet(a, contact, match, blocked, blocker)
	var found []uuid.UUID
	for i := 0; i < 5; i++ {
		fresh := fx.user(t, uuid.NewString())
		c, err := fx.matcher().FindNewContact(ctx, a)
		require.NoError(t, err)
		assert.False(t, excluded.Has(c.ID))
		assert.Equal(t, fresh, c.ID)
		found = append(found, c.ID)
		excluded.Add(c.ID)
	}
	assert.Len(t, found, 5)

	_, err := fx.matcher().FindNewContact(ctx, a)
	assert.ErrorIs(t, err, matcher.ErrNoCandidates)
}

// picky makes a user who filters by gender and hobbies, preferring women.
func picky(g models.Gender, hobbies ...string) func(*models.User) {
	return func(u *models.User) {
		u.Gender = &g
		u.Settings.ConsiderGender = true
		u.Settings.PreferredGender = pq.StringArray{"FEMALE"}
		u.Settings.ConsiderHobbies = true
		u.Interests.Hobbies = pq.StringArray(hobbies)
	}
}

func TestFindNewContactAppliesPreferences(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	a := fx.user(t, "alice", func(u *models.User) {
		g := models.GenderFemale
		u.Gender = &g
		u.Settings.ConsiderGender = true
		u.Settings.PreferredGender = pq.StringArray{"MALE"}
		u.Settings.ConsiderHobbies = true
		u.Interests.Hobbies = pq.StringArray{"chess"}
	})
	fx.user(t, "wrong-gender", picky(models.GenderFemale, "chess"))
	fx.user(t, "wrong-hobby", picky(models.GenderMale, "golf"))
	fx.user(t, "different-switches", func(u *models.User) {
		g := models.GenderMale
		u.Gender = &g
		u.Interests.Hobbies = pq.StringArray{"chess"}
	})
	want := fx.user(t, "right", picky(models.GenderMale, "chess", "golf"))

	c, err := fx.matcher().FindNewContact(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, want, c.ID)
}

func TestFindNewContactRequiresSameSwitches(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	a := fx.user(t, "alice", func(u *models.User) {
		u.Interests.Civil, u.Interests.Diplomatic = ptr(0), ptr(0)
		u.Interests.Economic, u.Interests.Society = ptr(0), ptr(0)
	})
	fx.user(t, "bob", func(u *models.User) {
		u.Settings.ConsiderPolitics = true
		u.Interests.Civil, u.Interests.Diplomatic = ptr(100), ptr(100)
		u.Interests.Economic, u.Interests.Society = ptr(100), ptr(100)
	})

	_, err := fx.matcher().FindNewContact(ctx, a)
	assert.ErrorIs(t, err, matcher.ErrNoCandidates)

	e, err := fx.graph.Edges(ctx, a)
	require.NoError(t, err)
	assert.Empty(t, e.Contacts)
}

func ptr(v float64) *float64 { return &v }

func TestFindNewContactWithEmptyPreferencesFindsNobody(t *testing.T) {
	fx := newFixture()
	a := fx.user(t, "alice", func(u *models.User) { u.Settings.ConsiderGender = true })
	fx.user(t, "bob", func(u *models.User) {
		g := models.GenderMale
		u.Gender = &g
		u.Settings.ConsiderGender = true
		u.Settings.PreferredGender = pq.StringArray{"FEMALE", "MALE", "NON-BINARY"}
	})

	_, err := fx.matcher().FindNewContact(context.Background(), a)
	assert.ErrorIs(t, err, matcher.ErrNoCandidates)
}

type failingTopics struct{ calls atomic.Int32 }

func (f *failingTopics) Generate(context.Context, uuid.UUID, uuid.UUID) (*models.Message, error) {
	f.calls.Add(1)
	return nil, errors.New("topic store down")
}

func TestTopicFailureDoesNotUndoContact(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	a := fx.user(t, "alice")
	b := fx.user(t, "bob")

	ft := &failingTopics{}
	m := fx.matcher(matcher.WithTopics(ft, time.Second))
	c, err := m.FindNewContact(ctx, a)
	require.NoError(t, err)
	m.Wait()

	assert.Equal(t, b, c.ID)
	assert.Equal(t, int32(1), ft.calls.Load())
	p, err := fx.graph.Pair(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, p.Contacts())
}

func TestTopicIsGeneratedForNewContact(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	a := fx.user(t, "alice")
	b := fx.user(t, "bob")

	m := fx.matcher(matcher.WithTopics(topics.New(fx.store, fx.graph), time.Second))
	_, err := m.FindNewContact(ctx, a)
	require.NoError(t, err)
	m.Wait()

	last, err := fx.store.LastMessage(ctx, a, b)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.IsTopic)
	assert.Equal(t, a, last.SenderID)
}
