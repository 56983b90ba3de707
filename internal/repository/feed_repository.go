package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/microblog/internal/model"
)

// FeedRepository 关注时间线（拉模式，单条 SQL）
type FeedRepository interface {
	FollowingPosts(ctx context.Context, userID uint64, offset, limit int) ([]*model.FeedItem, error)
}

type feedRepository struct {
	db *gorm.DB
}

func NewFeedRepository(db *gorm.DB) FeedRepository { return &feedRepository{db: db} }

// FollowingPosts 返回 userID 自己以及其关注者发布的动态：
//
//	posts JOIN users(author) LEFT JOIN followers ON followed_id = author.id
//	WHERE followers.follower_id = userID OR author.id = userID
//	GROUP BY post  ORDER BY timestamp DESC, id DESC
//
// 自己的动态会因自己的每个粉丝各产生一行，GROUP BY 去重。
func (r *feedRepository) FollowingPosts(ctx context.Context, userID uint64, offset, limit int) ([]*model.FeedItem, error) {
	if limit <= 0 {
		return []*model.FeedItem{}, nil
	}
	items := make([]*model.FeedItem, 0, limit)
	err := r.db.WithContext(ctx).
		Table("posts").
		Select("posts.id, posts.body, posts.timestamp, posts.user_id, " +
			"authors.username AS author_username, authors.email AS author_email").
		Joins("JOIN users AS authors ON authors.id = posts.user_id").
		Joins("LEFT JOIN followers ON followers.followed_id = authors.id").
		Where("followers.follower_id = ? OR authors.id = ?", userID, userID).
		Group("posts.id, posts.body, posts.timestamp, posts.user_id, authors.username, authors.email").
		Order("posts.timestamp DESC, posts.id DESC").
		Offset(offset).Limit(limit).
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
