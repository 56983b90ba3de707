package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/microblog/internal/model"
	"github.com/d60-Lab/microblog/pkg/response"
)

type followResponse struct {
	Username    string `json:"username"`
	IsFollowing bool   `json:"is_following"`
}

type userBrief struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

func briefs(users []*model.User) []userBrief {
	out := make([]userBrief, 0, len(users))
	for _, u := range users {
		out = append(out, userBrief{ID: u.ID, Username: u.Username, Avatar: u.Avatar(avatarSize)})
	}
	return out
}

// Follow 关注用户（重复关注为空操作）
// @Summary 关注用户
// @Tags 关系链
// @Produce json
// @Param username path string true "被关注用户名"
// @Success 200 {object} response.Response{data=followResponse}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{username}/follow [post]
func (h *Handler) Follow(c *gin.Context) {
	ctx := c.Request.Context()
	target, err := h.userService.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.relService.Follow(ctx, currentUser(c), target.ID); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, followResponse{Username: target.Username, IsFollowing: true})
}

// Unfollow 取消关注（未关注时为空操作）
// @Summary 取消关注
// @Tags 关系链
// @Produce json
// @Param username path string true "被关注用户名"
// @Success 200 {object} response.Response{data=followResponse}
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{username}/unfollow [post]
func (h *Handler) Unfollow(c *gin.Context) {
	ctx := c.Request.Context()
	target, err := h.userService.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.relService.Unfollow(ctx, currentUser(c), target.ID); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, followResponse{Username: target.Username, IsFollowing: false})
}

// ListFollowing 查询某用户关注的人
// @Summary 查询关注列表
// @Tags 关系链
// @Param username path string true "用户名"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/users/{username}/following [get]
func (h *Handler) ListFollowing(c *gin.Context) {
	ctx := c.Request.Context()
	u, err := h.userService.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	page, pageSize := h.pageParams(c)
	list, err := h.relService.ListFollowing(ctx, u.ID, page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": briefs(list)})
}

// ListFollowers 查询某用户的粉丝
// @Summary 查询粉丝列表
// @Tags 关系链
// @Param username path string true "用户名"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/users/{username}/followers [get]
func (h *Handler) ListFollowers(c *gin.Context) {
	ctx := c.Request.Context()
	u, err := h.userService.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	page, pageSize := h.pageParams(c)
	list, err := h.relService.ListFollowers(ctx, u.ID, page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": briefs(list)})
}
