package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/microblog/internal/model"
	"github.com/d60-Lab/microblog/internal/repository"
	"github.com/d60-Lab/microblog/pkg/database"
)

type fixture struct {
	db    *gorm.DB
	users UserService
	posts PostService
	rels  RelationshipService
	feed  FeedService
}

func newFixture(t *testing.T, counts CountCache) *fixture {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	pager := Pager{DefaultSize: 20, MaxSize: 100}
	userRepo := repository.NewUserRepository(db)
	return &fixture{
		db:    db,
		users: NewUserService(userRepo),
		posts: NewPostService(db, pager),
		rels:  NewRelationshipService(repository.NewFollowRepository(db), userRepo, counts, pager),
		feed:  NewFeedService(repository.NewFeedRepository(db), pager),
	}
}

func (f *fixture) register(t *testing.T, name string) *model.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), RegisterInput{
		Username: name, Email: name + "@example.com", Password: "secret1", Password2: "secret1",
	})
	require.NoError(t, err)
	return u
}

// postAt 以指定时间发布动态
func (f *fixture) postAt(t *testing.T, author *model.User, body string, at time.Time) *model.Post {
	t.Helper()
	svc := f.posts.(*postService)
	prev := svc.now
	svc.now = func() time.Time { return at }
	defer func() { svc.now = prev }()

	p, err := f.posts.Create(context.Background(), author.ID, body)
	require.NoError(t, err)
	return p
}
