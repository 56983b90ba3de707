package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/microblog/internal/api/middleware"
	"github.com/d60-Lab/microblog/internal/service"
	"github.com/d60-Lab/microblog/pkg/auth"
	"github.com/d60-Lab/microblog/pkg/response"
)

const avatarSize = 128

// Handler 聚合各业务服务
type Handler struct {
	userService service.UserService
	postService service.PostService
	relService  service.RelationshipService
	feedService service.FeedService

	pager        service.Pager
	tokens       *auth.Manager
	cookieName   string
	secureCookie bool
}

type Options struct {
	Users         service.UserService
	Posts         service.PostService
	Relationships service.RelationshipService
	Feed          service.FeedService
	Pager         service.Pager
	Tokens        *auth.Manager
	CookieName    string
	SecureCookie  bool
}

func New(opts Options) *Handler {
	return &Handler{
		userService:  opts.Users,
		postService:  opts.Posts,
		relService:   opts.Relationships,
		feedService:  opts.Feed,
		pager:        opts.Pager,
		tokens:       opts.Tokens,
		cookieName:   opts.CookieName,
		secureCookie: opts.SecureCookie,
	}
}

// fail 按错误类型映射 HTTP 状态码
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredential):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, "not found")
	case errors.Is(err, service.ErrDuplicateKey):
		response.Conflict(c, "already exists")
	default:
		response.InternalError(c, err)
	}
}

// pageParams 返回规范化后的页码与每页数量，与服务层分页一致
func (h *Handler) pageParams(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	// 0 表示使用默认分页大小
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "0"))
	offset, limit := h.pager.Window(page, pageSize)
	return offset/limit + 1, limit
}

func currentUser(c *gin.Context) uint64 {
	id, _ := middleware.CurrentUserID(c)
	return id
}

// Healthz 存活探针
// @Summary 存活检查
// @Tags 系统
// @Produce json
// @Success 200 {object} response.Response
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}
