package model

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User 用户（username / email 各自唯一）
type User struct {
	ID           uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username" gorm:"type:varchar(64);uniqueIndex:idx_users_username;not null"`
	Email        string    `json:"email" gorm:"type:varchar(120);uniqueIndex:idx_users_email;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(256);not null"`
	AboutMe      string    `json:"about_me" gorm:"type:varchar(140)"`
	LastSeen     time.Time `json:"last_seen"`
}

func (User) TableName() string { return "users" }

// SetPassword 用 bcrypt 替换已保存的哈希
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword 校验候选密码，不还原明文
func (u *User) CheckPassword(candidate string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(candidate)) == nil
}

// AvatarHash 规范化邮箱（去空白、小写）后的 md5 十六进制
func AvatarHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

// AvatarURL 返回 gravatar 头像地址
func AvatarURL(email string, size int) string {
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=identicon&s=%d", AvatarHash(email), size)
}

func (u *User) Avatar(size int) string { return AvatarURL(u.Email, size) }
