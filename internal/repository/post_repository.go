package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/microblog/internal/model"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	ListByAuthor(ctx context.Context, userID uint64, offset, limit int) ([]*model.Post, error)
	CountByAuthor(ctx context.Context, userID uint64) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return translate(r.db.WithContext(ctx).Omit("Author").Create(post).Error)
}

func (r *postRepository) ListByAuthor(ctx context.Context, userID uint64, offset, limit int) ([]*model.Post, error) {
	var posts []*model.Post
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) CountByAuthor(ctx context.Context, userID uint64) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).Where("user_id = ?", userID).Count(&cnt).Error
	return cnt, err
}
