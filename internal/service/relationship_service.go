package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/d60-Lab/microblog/internal/cache"
	"github.com/d60-Lab/microblog/internal/model"
	"github.com/d60-Lab/microblog/internal/repository"
	"github.com/d60-Lab/microblog/pkg/logger"
)

// CountCache 关注计数缓存，可为 nil。Get 未命中时返回的版本号须原样交给 Set，
// 期间若发生失效则回填被丢弃
type CountCache interface {
	Get(ctx context.Context, kind cache.CountKind, userID uint64) (n int64, version int64, ok bool)
	Set(ctx context.Context, kind cache.CountKind, userID uint64, n, version int64)
	InvalidateEdge(ctx context.Context, followerID, followedID uint64)
}

// RelationshipService 关系链服务
type RelationshipService interface {
	Follow(ctx context.Context, actorID, targetID uint64) error
	Unfollow(ctx context.Context, actorID, targetID uint64) error
	IsFollowing(ctx context.Context, actorID, targetID uint64) (bool, error)
	FollowerCount(ctx context.Context, userID uint64) (int64, error)
	FollowingCount(ctx context.Context, userID uint64) (int64, error)
	ListFollowing(ctx context.Context, userID uint64, page, pageSize int) ([]*model.User, error)
	ListFollowers(ctx context.Context, userID uint64, page, pageSize int) ([]*model.User, error)
}

type relationshipService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	counts     CountCache
	pager      Pager
}

func NewRelationshipService(followRepo repository.FollowRepository, userRepo repository.UserRepository, counts CountCache, pager Pager) RelationshipService {
	return &relationshipService{followRepo: followRepo, userRepo: userRepo, counts: counts, pager: pager}
}

// Follow 关注；已关注时为 no-op，关注自己返回 ErrFollowSelf
func (s *relationshipService) Follow(ctx context.Context, actorID, targetID uint64) error {
	if actorID == targetID {
		return ErrFollowSelf
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}
	created, err := s.followRepo.Create(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if created {
		s.invalidate(ctx, actorID, targetID)
		logger.Debug("follow", zap.Uint64("follower", actorID), zap.Uint64("followed", targetID))
	}
	return nil
}

// Unfollow 取消关注；未关注时为 no-op
func (s *relationshipService) Unfollow(ctx context.Context, actorID, targetID uint64) error {
	deleted, err := s.followRepo.Delete(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if deleted {
		s.invalidate(ctx, actorID, targetID)
		logger.Debug("unfollow", zap.Uint64("follower", actorID), zap.Uint64("followed", targetID))
	}
	return nil
}

func (s *relationshipService) invalidate(ctx context.Context, followerID, followedID uint64) {
	if s.counts != nil {
		s.counts.InvalidateEdge(ctx, followerID, followedID)
	}
}

func (s *relationshipService) IsFollowing(ctx context.Context, actorID, targetID uint64) (bool, error) {
	return s.followRepo.Exists(ctx, actorID, targetID)
}

func (s *relationshipService) FollowerCount(ctx context.Context, userID uint64) (int64, error) {
	return s.count(ctx, cache.Followers, userID, s.followRepo.CountFollowers)
}

func (s *relationshipService) FollowingCount(ctx context.Context, userID uint64) (int64, error) {
	return s.count(ctx, cache.Following, userID, s.followRepo.CountFollowing)
}

func (s *relationshipService) count(ctx context.Context, kind cache.CountKind, userID uint64, load func(context.Context, uint64) (int64, error)) (int64, error) {
	var version int64
	if s.counts != nil {
		n, ver, ok := s.counts.Get(ctx, kind, userID)
		if ok {
			return n, nil
		}
		version = ver
	}
	n, err := load(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.counts != nil {
		s.counts.Set(ctx, kind, userID, n, version)
	}
	return n, nil
}

func (s *relationshipService) ListFollowing(ctx context.Context, userID uint64, page, pageSize int) ([]*model.User, error) {
	offset, limit := s.pager.Window(page, pageSize)
	return s.followRepo.ListFollowing(ctx, userID, offset, limit)
}

func (s *relationshipService) ListFollowers(ctx context.Context, userID uint64, page, pageSize int) ([]*model.User, error) {
	offset, limit := s.pager.Window(page, pageSize)
	return s.followRepo.ListFollowers(ctx, userID, offset, limit)
}
