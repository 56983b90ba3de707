package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/microblog/internal/model"
	"github.com/d60-Lab/microblog/pkg/response"
)

type createPostRequest struct {
	Body string `json:"body"`
}

type postResponse struct {
	ID        uint64    `json:"id"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
	Author    userBrief `json:"author"`
}

// CreatePost 发布动态
// @Summary 发布动态
// @Tags 动态
// @Accept json
// @Produce json
// @Param request body createPostRequest true "内容（不超过 140 字）"
// @Success 201 {object} response.Response{data=postResponse}
// @Failure 400 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.postService.Create(c.Request.Context(), currentUser(c), req.Body)
	if err != nil {
		fail(c, err)
		return
	}
	resp := postResponse{ID: p.ID, Body: p.Body, Timestamp: p.Timestamp}
	if p.Author != nil {
		resp.Author = userBrief{ID: p.Author.ID, Username: p.Author.Username, Avatar: p.Author.Avatar(avatarSize)}
	}
	response.Created(c, resp)
}

// ListUserPosts 某用户发布的动态
// @Summary 查询用户动态
// @Tags 动态
// @Param username path string true "用户名"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/users/{username}/posts [get]
func (h *Handler) ListUserPosts(c *gin.Context) {
	ctx := c.Request.Context()
	u, err := h.userService.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	page, pageSize := h.pageParams(c)
	posts, err := h.postService.ListByAuthor(ctx, u.ID, page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	author := userBrief{ID: u.ID, Username: u.Username, Avatar: u.Avatar(avatarSize)}
	list := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		list = append(list, postResponse{ID: p.ID, Body: p.Body, Timestamp: p.Timestamp, Author: author})
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

func feedEntry(it *model.FeedItem) postResponse {
	return postResponse{
		ID:        it.ID,
		Body:      it.Body,
		Timestamp: it.Timestamp,
		Author: userBrief{
			ID:       it.UserID,
			Username: it.AuthorUsername,
			Avatar:   model.AvatarURL(it.AuthorEmail, avatarSize),
		},
	}
}
