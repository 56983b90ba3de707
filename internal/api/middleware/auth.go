package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/microblog/pkg/auth"
	"github.com/d60-Lab/microblog/pkg/response"
)

const (
	ctxUserID   = "user_id"
	ctxUsername = "username"
)

// Toucher 记录用户活跃（最近访问时间）
type Toucher interface {
	Touch(userID uint64)
}

// Auth 从 Authorization: Bearer 或会话 cookie 读取令牌；toucher 可为 nil
func Auth(tokens *auth.Manager, cookieName string, toucher Toucher) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token, _ = c.Cookie(cookieName)
		}
		if token == "" {
			response.Unauthorized(c, "login required")
			c.Abort()
			return
		}
		userID, claims, err := tokens.Parse(token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired session")
			c.Abort()
			return
		}
		c.Set(ctxUserID, userID)
		c.Set(ctxUsername, claims.Username)
		if toucher != nil {
			toucher.Touch(userID)
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// CurrentUserID 当前登录用户 id
func CurrentUserID(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
