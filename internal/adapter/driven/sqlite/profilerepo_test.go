package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contriblens/contriblens/internal/domain/model"
	"github.com/contriblens/contriblens/internal/domain/port/driven"
)

func TestProfileRepo_GetMissing(t *testing.T) {
	repo := NewProfileRepo(setupTestDB(t))

	profile, err := repo.Get(context.Background(), "nobody")

	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestProfileRepo_UpsertAndGet(t *testing.T) {
	repo := NewProfileRepo(setupTestDB(t))
	ctx := context.Background()

	err := repo.Upsert(ctx, model.Profile{
		Username:       "alice",
		Email:          "alice@example.com",
		GitHubUsername: "alice-gh",
	})
	require.NoError(t, err)

	got, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "alice-gh", got.GitHubUsername)
	assert.Equal(t, 0, got.Points)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestProfileRepo_UpsertUpdatesLinkNotPoints(t *testing.T) {
	repo := NewProfileRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, model.Profile{Username: "bob", Email: "old@example.com"}))
	require.NoError(t, repo.AddPoints(ctx, "bob", 30))

	// Re-upserting must update the mutable fields without resetting points.
	require.NoError(t, repo.Upsert(ctx, model.Profile{
		Username:       "bob",
		Email:          "new@example.com",
		GitHubUsername: "bob-gh",
	}))

	got, err := repo.Get(ctx, "bob")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "new@example.com", got.Email)
	assert.Equal(t, "bob-gh", got.GitHubUsername)
	assert.Equal(t, 30, got.Points)
}

func TestProfileRepo_AddPointsAccumulates(t *testing.T) {
	repo := NewProfileRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, model.Profile{Username: "carol"}))

	require.NoError(t, repo.AddPoints(ctx, "carol", 10))
	require.NoError(t, repo.AddPoints(ctx, "carol", 15))

	got, err := repo.Get(ctx, "carol")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 25, got.Points)
}

func TestProfileRepo_AddPointsMissingProfile(t *testing.T) {
	repo := NewProfileRepo(setupTestDB(t))

	err := repo.AddPoints(context.Background(), "ghost", 5)

	require.ErrorIs(t, err, driven.ErrProfileNotFound)
}
