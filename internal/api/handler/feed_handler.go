package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/microblog/pkg/response"
)

type feedResponse struct {
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	HasNext  bool           `json:"has_next"`
	List     []postResponse `json:"list"`
}

// Feed 当前用户的关注流：自己与所关注用户的动态，按时间倒序
// @Summary 关注流
// @Tags 动态
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=feedResponse}
// @Router /api/v1/feed [get]
func (h *Handler) Feed(c *gin.Context) {
	page, pageSize := h.pageParams(c)
	fp, err := h.feedService.FollowingPosts(c.Request.Context(), currentUser(c), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	list := make([]postResponse, 0, len(fp.Items))
	for _, it := range fp.Items {
		list = append(list, feedEntry(it))
	}
	response.Success(c, feedResponse{Page: fp.Page, PageSize: fp.PageSize, HasNext: fp.HasNext, List: list})
}
