package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/microblog/internal/model"
)

var base = time.Date(2024, 3, 14, 8, 0, 0, 0, time.UTC)

func feedBodies(p *FeedPage) []string {
	out := make([]string, len(p.Items))
	for i, it := range p.Items {
		out[i] = it.Body
	}
	return out
}

func TestFeedService_EmptyFeed(t *testing.T) {
	f := newFixture(t, nil)
	loner := f.register(t, "loner")

	page, err := f.feed.FollowingPosts(context.Background(), loner.ID, 1, 10)
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasNext)
}

func TestFeedService_AliceFollowsBob(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice, bob := f.register(t, "alice"), f.register(t, "bob")

	require.NoError(t, f.rels.Follow(ctx, alice.ID, bob.ID))
	f.postAt(t, bob, "hello", base)

	page, err := f.feed.FollowingPosts(ctx, alice.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, feedBodies(page))
	assert.Equal(t, "bob", page.Items[0].AuthorUsername)

	require.NoError(t, f.rels.Unfollow(ctx, alice.ID, bob.ID))
	page, err = f.feed.FollowingPosts(ctx, alice.ID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestFeedService_VisibilityProperties(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	users := []*model.User{f.register(t, "u0"), f.register(t, "u1"), f.register(t, "u2"), f.register(t, "u3")}

	require.NoError(t, f.rels.Follow(ctx, users[0].ID, users[1].ID))
	require.NoError(t, f.rels.Follow(ctx, users[2].ID, users[0].ID))
	for i, u := range users {
		f.postAt(t, u, u.Username+"-a", base.Add(time.Duration(i)*time.Minute))
		f.postAt(t, u, u.Username+"-b", base.Add(time.Duration(i)*time.Minute+30*time.Second))
	}

	for _, viewer := range users {
		page, err := f.feed.FollowingPosts(ctx, viewer.ID, 1, 100)
		require.NoError(t, err)

		own := 0
		for i, it := range page.Items {
			if it.UserID == viewer.ID {
				own++
				continue
			}
			following, err := f.rels.IsFollowing(ctx, viewer.ID, it.UserID)
			require.NoError(t, err)
			assert.True(t, following, "viewer %s sees post of non-followed user %d", viewer.Username, it.UserID)
			if i > 0 {
				assert.False(t, it.Timestamp.After(page.Items[i-1].Timestamp))
			}
		}
		assert.Equal(t, 2, own, "viewer %s must see all own posts", viewer.Username)
	}
}

func TestFeedService_OrderAndPaging(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.register(t, "alice")

	f.postAt(t, alice, "t3", base)
	f.postAt(t, alice, "t1", base.Add(2*time.Hour))
	f.postAt(t, alice, "t2", base.Add(time.Hour))

	page, err := f.feed.FollowingPosts(ctx, alice.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, feedBodies(page))
	assert.True(t, page.HasNext)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.PageSize)

	page, err = f.feed.FollowingPosts(ctx, alice.ID, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"t3"}, feedBodies(page))
	assert.False(t, page.HasNext)
	assert.Equal(t, 2, page.Page)
}

func TestFeedService_HugePageIsEmpty(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.register(t, "alice")
	f.postAt(t, alice, "only", base)

	page, err := f.feed.FollowingPosts(ctx, alice.ID, math.MaxInt, 20)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasNext)
	assert.Positive(t, page.Page)
	assert.Equal(t, 20, page.PageSize)
}
