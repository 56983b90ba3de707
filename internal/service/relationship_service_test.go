package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/microblog/internal/cache"
	"github.com/d60-Lab/microblog/internal/repository"
)

// hookedFollowRepo 在粉丝数读库之后、返回之前执行一次 afterCount
type hookedFollowRepo struct {
	repository.FollowRepository
	afterCount func()
}

func (r *hookedFollowRepo) CountFollowers(ctx context.Context, userID uint64) (int64, error) {
	n, err := r.FollowRepository.CountFollowers(ctx, userID)
	if hook := r.afterCount; hook != nil {
		r.afterCount = nil
		hook()
	}
	return n, err
}

func TestRelationshipService_FollowUnfollow(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	a, b := f.register(t, "alice"), f.register(t, "bob")

	before, err := f.rels.FollowerCount(ctx, b.ID)
	require.NoError(t, err)

	require.NoError(t, f.rels.Follow(ctx, a.ID, b.ID))
	ok, err := f.rels.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	after, err := f.rels.FollowerCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)

	following, err := f.rels.FollowingCount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), following)

	require.NoError(t, f.rels.Unfollow(ctx, a.ID, b.ID))
	ok, err = f.rels.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	restored, err := f.rels.FollowerCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, before, restored)
}

func TestRelationshipService_Idempotent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	a, b := f.register(t, "alice"), f.register(t, "bob")

	require.NoError(t, f.rels.Follow(ctx, a.ID, b.ID))
	require.NoError(t, f.rels.Follow(ctx, a.ID, b.ID))
	n, err := f.rels.FollowerCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, f.rels.Unfollow(ctx, a.ID, b.ID))
	require.NoError(t, f.rels.Unfollow(ctx, a.ID, b.ID))
	n, err = f.rels.FollowerCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRelationshipService_SelfFollowRejected(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	a := f.register(t, "alice")

	err := f.rels.Follow(ctx, a.ID, a.ID)
	assert.ErrorIs(t, err, ErrFollowSelf)
	assert.ErrorIs(t, err, ErrValidation)

	ok, err := f.rels.IsFollowing(ctx, a.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, f.rels.Unfollow(ctx, a.ID, a.ID))
}

func TestRelationshipService_UnknownTarget(t *testing.T) {
	f := newFixture(t, nil)
	a := f.register(t, "alice")

	assert.ErrorIs(t, f.rels.Follow(context.Background(), a.ID, a.ID+99), ErrNotFound)
}

func TestRelationshipService_Lists(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	a, b, c := f.register(t, "alice"), f.register(t, "bob"), f.register(t, "carol")

	require.NoError(t, f.rels.Follow(ctx, a.ID, b.ID))
	require.NoError(t, f.rels.Follow(ctx, a.ID, c.ID))
	require.NoError(t, f.rels.Follow(ctx, c.ID, a.ID))

	following, err := f.rels.ListFollowing(ctx, a.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, following, 2)
	assert.Equal(t, "carol", following[0].Username)

	page2, err := f.rels.ListFollowing(ctx, a.ID, 2, 1)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "bob", page2[0].Username)

	followers, err := f.rels.ListFollowers(ctx, a.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "carol", followers[0].Username)
}

func TestRelationshipService_CountsThroughCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	counts := cache.NewCountCache(client, time.Minute)

	f := newFixture(t, counts)
	ctx := context.Background()
	a, b := f.register(t, "alice"), f.register(t, "bob")

	n, err := f.rels.FollowerCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, mr.Exists(fmt.Sprintf("count:followers:%d", b.ID)))

	// 缓存命中
	n, err = f.rels.FollowerCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, int64(1), counts.Stats().Hits)

	// 关注后缓存失效，读到新值
	require.NoError(t, f.rels.Follow(ctx, a.ID, b.ID))
	assert.False(t, mr.Exists(fmt.Sprintf("count:followers:%d", b.ID)))
	n, err = f.rels.FollowerCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	m, err := f.rels.FollowingCount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), m)

	require.NoError(t, f.rels.Unfollow(ctx, a.ID, b.ID))
	n, err = f.rels.FollowerCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	m, err = f.rels.FollowingCount(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, m)
}

func TestRelationshipService_FollowDuringCountFill(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	counts := cache.NewCountCache(client, time.Minute)

	f := newFixture(t, counts)
	ctx := context.Background()
	a, b := f.register(t, "alice"), f.register(t, "bob")

	// 读者读到 0 之后、回填之前，另一个请求完成关注
	reader := NewRelationshipService(&hookedFollowRepo{
		FollowRepository: repository.NewFollowRepository(f.db),
		afterCount: func() {
			require.NoError(t, f.rels.Follow(ctx, a.ID, b.ID))
		},
	}, repository.NewUserRepository(f.db), counts, Pager{})

	n, err := reader.FollowerCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.False(t, mr.Exists(fmt.Sprintf("count:followers:%d", b.ID)))

	following, err := f.rels.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, following)
	n, err = f.rels.FollowerCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = reader.FollowerCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
