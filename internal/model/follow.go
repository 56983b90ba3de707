package model

import (
	"time"
)

// Follow 关注关系（Follower 关注 Followed）
// 复合主键 (follower_id, followed_id)，避免重复关注
type Follow struct {
	FollowerID uint64 `gorm:"primaryKey;autoIncrement:false"`
	FollowedID uint64 `gorm:"primaryKey;autoIncrement:false;index:idx_followers_followed"`
	CreatedAt  time.Time

	Follower *User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Followed *User `gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE"`
}

func (Follow) TableName() string { return "followers" }

// Models 返回需要迁移的全部模型，顺序即依赖顺序
func Models() []any {
	return []any{&User{}, &Post{}, &Follow{}}
}
