package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/microblog/internal/model"
	"github.com/d60-Lab/microblog/internal/service"
	"github.com/d60-Lab/microblog/pkg/response"
)

type userResponse struct {
	ID       uint64    `json:"id"`
	Username string    `json:"username"`
	AboutMe  string    `json:"about_me"`
	LastSeen time.Time `json:"last_seen"`
	Avatar   string    `json:"avatar"`
}

func newUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		AboutMe:  u.AboutMe,
		LastSeen: u.LastSeen,
		Avatar:   u.Avatar(avatarSize),
	}
}

type profileResponse struct {
	userResponse
	Followers   int64 `json:"followers"`
	Following   int64 `json:"following"`
	PostCount   int64 `json:"post_count"`
	IsFollowing bool  `json:"is_following"`
	IsSelf      bool  `json:"is_self"`
}

type updateProfileRequest struct {
	Username string `json:"username" binding:"required"`
	AboutMe  string `json:"about_me"`
}

// GetProfile 用户主页
// @Summary 查询用户资料
// @Tags 用户
// @Produce json
// @Param username path string true "用户名"
// @Success 200 {object} response.Response{data=profileResponse}
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{username} [get]
func (h *Handler) GetProfile(c *gin.Context) {
	ctx := c.Request.Context()
	u, err := h.userService.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	viewer := currentUser(c)

	resp := profileResponse{userResponse: newUserResponse(u), IsSelf: viewer == u.ID}
	if resp.Followers, err = h.relService.FollowerCount(ctx, u.ID); err != nil {
		fail(c, err)
		return
	}
	if resp.Following, err = h.relService.FollowingCount(ctx, u.ID); err != nil {
		fail(c, err)
		return
	}
	if resp.PostCount, err = h.postService.CountByAuthor(ctx, u.ID); err != nil {
		fail(c, err)
		return
	}
	if !resp.IsSelf {
		if resp.IsFollowing, err = h.relService.IsFollowing(ctx, viewer, u.ID); err != nil {
			fail(c, err)
			return
		}
	}
	response.Success(c, resp)
}

// UpdateProfile 修改当前用户资料
// @Summary 修改资料
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body updateProfileRequest true "资料"
// @Success 200 {object} response.Response{data=userResponse}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/users/me [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.userService.UpdateProfile(c.Request.Context(), currentUser(c), service.ProfileInput{
		Username: req.Username,
		AboutMe:  req.AboutMe,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, newUserResponse(u))
}
