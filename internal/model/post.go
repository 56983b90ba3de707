package model

import "time"

// PostBodyMaxLen 动态正文最大字符数
const PostBodyMaxLen = 140

// Post 动态，创建后不可修改
type Post struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Body      string    `json:"body" gorm:"type:varchar(140);not null"`
	Timestamp time.Time `json:"timestamp" gorm:"index:idx_posts_timestamp;not null"`
	UserID    uint64    `json:"user_id" gorm:"index:idx_posts_user;not null"`
	Author    *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Post) TableName() string { return "posts" }

// FeedItem 时间线条目：动态 + 作者展示信息
type FeedItem struct {
	ID             uint64    `json:"id"`
	Body           string    `json:"body"`
	Timestamp      time.Time `json:"timestamp"`
	UserID         uint64    `json:"user_id"`
	AuthorUsername string    `json:"author_username"`
	AuthorEmail    string    `json:"-"`
}
