package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/microblog/internal/model"
)

// FollowRepository 关注边集合，键为 (follower_id, followed_id)
type FollowRepository interface {
	Create(ctx context.Context, followerID, followedID uint64) (bool, error)
	Delete(ctx context.Context, followerID, followedID uint64) (bool, error)
	Exists(ctx context.Context, followerID, followedID uint64) (bool, error)
	CountFollowers(ctx context.Context, userID uint64) (int64, error)
	CountFollowing(ctx context.Context, userID uint64) (int64, error)
	ListFollowing(ctx context.Context, followerID uint64, offset, limit int) ([]*model.User, error)
	ListFollowers(ctx context.Context, followedID uint64, offset, limit int) ([]*model.User, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

// Create 返回是否新建了边；重复关注不报错
func (r *followRepository) Create(ctx context.Context, followerID, followedID uint64) (bool, error) {
	f := &model.Follow{FollowerID: followerID, FollowedID: followedID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Delete 返回是否删除了边；不存在时不报错
func (r *followRepository) Delete(ctx context.Context, followerID, followedID uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&model.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followedID uint64) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID uint64) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("followed_id = ?", userID).Count(&cnt).Error
	return cnt, err
}

func (r *followRepository) CountFollowing(ctx context.Context, userID uint64) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("follower_id = ?", userID).Count(&cnt).Error
	return cnt, err
}

// ListFollowing 某用户关注的人，按关注时间倒序
func (r *followRepository) ListFollowing(ctx context.Context, followerID uint64, offset, limit int) ([]*model.User, error) {
	var res []*model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN followers ON followers.followed_id = users.id").
		Where("followers.follower_id = ?", followerID).
		Order("followers.created_at DESC, users.id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

// ListFollowers 某用户的粉丝，按关注时间倒序
func (r *followRepository) ListFollowers(ctx context.Context, followedID uint64, offset, limit int) ([]*model.User, error) {
	var res []*model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN followers ON followers.follower_id = users.id").
		Where("followers.followed_id = ?", followedID).
		Order("followers.created_at DESC, users.id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}
