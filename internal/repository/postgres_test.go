package repository_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideomatch/backend/internal/database"
	"ideomatch/backend/internal/graph"
	"ideomatch/backend/internal/models"
	"ideomatch/backend/internal/repository"
)

// openRepository connects to TEST_DATABASE_URL and skips when it is unset.
func openRepository(t *testing.T) *repository.Repository {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := database.Connect(dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repository.New(db)
}

func createUser(t *testing.T, repo *repository.Repository, edit ...func(*models.User)) uuid.UUID {
	t.Helper()
	u := &models.User{Username: "user-" + uuid.NewString(), Settings: models.DefaultSettings()}
	for _, e := range edit {
		e(u)
	}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	return u.ID
}

func TestInsertContactPairRechecks(t *testing.T) {
	repo := openRepository(t)
	ctx := context.Background()
	a, b, c := createUser(t, repo), createUser(t, repo), createUser(t, repo)

	require.NoError(t, repo.InsertContactPair(ctx, a, b))
	ea, err := repo.LoadEdges(ctx, a)
	require.NoError(t, err)
	eb, err := repo.LoadEdges(ctx, b)
	require.NoError(t, err)
	assert.True(t, ea.Contacts.Has(b))
	assert.True(t, eb.Contacts.Has(a))

	require.NoError(t, repo.InsertMatch(ctx, a, c))
	assert.ErrorIs(t, repo.InsertContactPair(ctx, c, a), graph.ErrRelationExists)

	require.NoError(t, repo.BlockPair(ctx, a, b))
	assert.ErrorIs(t, repo.InsertContactPair(ctx, b, a), graph.ErrPairBlocked)
	ea, err = repo.LoadEdges(ctx, a)
	require.NoError(t, err)
	assert.False(t, ea.Contacts.Has(b))
	assert.True(t, ea.BlockedEitherWay(b))
}

func TestInsertMatchRechecks(t *testing.T) {
	repo := openRepository(t)
	ctx := context.Background()
	a, b := createUser(t, repo), createUser(t, repo)

	require.NoError(t, repo.InsertMatch(ctx, a, b))
	assert.ErrorIs(t, repo.InsertMatch(ctx, a, b), graph.ErrRelationExists)

	require.NoError(t, repo.BlockPair(ctx, b, a))
	assert.ErrorIs(t, repo.InsertMatch(ctx, b, a), graph.ErrPairBlocked)
}

func TestFindCandidatesRequiresSameSwitches(t *testing.T) {
	repo := openRepository(t)
	ctx := context.Background()
	open := func(u *models.User) {
		u.Settings.Discoverable = true
		u.Settings.ConsiderGender = false
		u.Settings.ConsiderPolitics = false
		u.Settings.ConsiderHobbies = false
	}
	same := createUser(t, repo, open)
	other := createUser(t, repo, open, func(u *models.User) { u.Settings.ConsiderPolitics = true })

	switches := models.Switches{}
	users, err := repo.FindCandidates(ctx, repository.CandidateFilter{Switches: &switches})
	require.NoError(t, err)

	ids := make(map[uuid.UUID]bool, len(users))
	for _, u := range users {
		ids[u.ID] = true
	}
	assert.True(t, ids[same])
	assert.False(t, ids[other])
}
