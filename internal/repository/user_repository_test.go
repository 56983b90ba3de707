package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/microblog/internal/model"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &model.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, u))
	require.NotZero(t, u.ID)

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byEmail, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
}

func TestUserRepository_NotFound(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetByEmail(ctx, "ghost@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_DuplicateKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"}))

	err := repo.Create(ctx, &model.User{Username: "alice2", Email: "a@x.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	err = repo.Create(ctx, &model.User{Username: "alice", Email: "other@x.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	seedUser(t, db, "bob")

	require.NoError(t, repo.UpdateProfile(ctx, alice.ID, "alicia", "hi there"))
	got, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alicia", got.Username)
	assert.Equal(t, "hi there", got.AboutMe)

	assert.ErrorIs(t, repo.UpdateProfile(ctx, alice.ID, "bob", ""), ErrDuplicateKey)
	assert.ErrorIs(t, repo.UpdateProfile(ctx, 999, "nobody", ""), ErrNotFound)
}

func TestUserRepository_UpdateLastSeen(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")

	at := time.Date(2024, 3, 14, 0, 15, 14, 0, time.UTC)
	require.NoError(t, repo.UpdateLastSeen(ctx, alice.ID, at))

	got, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, at.Equal(got.LastSeen))

	assert.ErrorIs(t, repo.UpdateLastSeen(ctx, 999, at), ErrNotFound)
}
