package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/d60-Lab/microblog/internal/model"
	"github.com/d60-Lab/microblog/internal/repository"
)

type PostService interface {
	Create(ctx context.Context, authorID uint64, body string) (*model.Post, error)
	ListByAuthor(ctx context.Context, authorID uint64, page, pageSize int) ([]*model.Post, error)
	CountByAuthor(ctx context.Context, authorID uint64) (int64, error)
}

type postService struct {
	db    *gorm.DB
	posts repository.PostRepository
	pager Pager
	now   func() time.Time
}

func NewPostService(db *gorm.DB, pager Pager) PostService {
	return &postService{
		db:    db,
		posts: repository.NewPostRepository(db),
		pager: pager,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create 在一个事务内确认作者存在并写入动态
func (s *postService) Create(ctx context.Context, authorID uint64, body string) (*model.Post, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyBody
	}
	if utf8.RuneCountInString(body) > model.PostBodyMaxLen {
		return nil, ErrBodyTooLong
	}

	post := &model.Post{Body: body, Timestamp: s.now(), UserID: authorID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		author, err := repository.NewUserRepository(tx).GetByID(ctx, authorID)
		if err != nil {
			return err
		}
		post.Author = author
		return repository.NewPostRepository(tx).Create(ctx, post)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) ListByAuthor(ctx context.Context, authorID uint64, page, pageSize int) ([]*model.Post, error) {
	offset, limit := s.pager.Window(page, pageSize)
	return s.posts.ListByAuthor(ctx, authorID, offset, limit)
}

func (s *postService) CountByAuthor(ctx context.Context, authorID uint64) (int64, error) {
	return s.posts.CountByAuthor(ctx, authorID)
}
