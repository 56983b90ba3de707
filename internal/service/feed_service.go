package service

import (
	"context"

	"github.com/d60-Lab/microblog/internal/model"
	"github.com/d60-Lab/microblog/internal/repository"
)

// FeedPage 一页关注时间线
type FeedPage struct {
	Items    []*model.FeedItem `json:"items"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	HasNext  bool              `json:"has_next"`
}

type FeedService interface {
	FollowingPosts(ctx context.Context, userID uint64, page, pageSize int) (*FeedPage, error)
}

type feedService struct {
	feed  repository.FeedRepository
	pager Pager
}

func NewFeedService(feed repository.FeedRepository, pager Pager) FeedService {
	return &feedService{feed: feed, pager: pager}
}

// FollowingPosts 多取一条用于判断是否有下一页
func (s *feedService) FollowingPosts(ctx context.Context, userID uint64, page, pageSize int) (*FeedPage, error) {
	offset, limit := s.pager.Window(page, pageSize)
	items, err := s.feed.FollowingPosts(ctx, userID, offset, limit+1)
	if err != nil {
		return nil, err
	}
	hasNext := len(items) > limit
	if hasNext {
		items = items[:limit]
	}
	return &FeedPage{Items: items, Page: offset/limit + 1, PageSize: limit, HasNext: hasNext}, nil
}
