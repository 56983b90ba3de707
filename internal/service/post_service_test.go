package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_Create(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.register(t, "alice")

	p, err := f.posts.Create(ctx, alice.ID, "  hello world  ")
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "hello world", p.Body)
	assert.Equal(t, alice.ID, p.UserID)
	assert.WithinDuration(t, time.Now(), p.Timestamp, time.Minute)
	require.NotNil(t, p.Author)
	assert.Equal(t, "alice", p.Author.Username)
}

func TestPostService_Create_Validation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.register(t, "alice")

	_, err := f.posts.Create(ctx, alice.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyBody)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.posts.Create(ctx, alice.ID, strings.Repeat("a", 141))
	assert.ErrorIs(t, err, ErrBodyTooLong)

	// 按字符而不是字节计数
	_, err = f.posts.Create(ctx, alice.ID, strings.Repeat("天", 140))
	assert.NoError(t, err)
}

func TestPostService_Create_UnknownAuthor(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.posts.Create(context.Background(), 404, "hi")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostService_ListByAuthor(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.register(t, "alice")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, body := range []string{"one", "two", "three"} {
		f.postAt(t, alice, body, base.Add(time.Duration(i)*time.Minute))
	}

	posts, err := f.posts.ListByAuthor(ctx, alice.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "three", posts[0].Body)
	assert.Equal(t, "two", posts[1].Body)

	n, err := f.posts.CountByAuthor(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
