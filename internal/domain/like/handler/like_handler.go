package handler

import (
	"vibelog/internal/domain/like/service"
	"vibelog/internal/pkg/common"
	"vibelog/internal/pkg/middleware"
	"vibelog/pkg/response"

	"github.com/gin-gonic/gin"
)

type LikeHandler struct {
	service service.LikeService
}

func NewLikeHandler(s service.LikeService) *LikeHandler {
	return &LikeHandler{service: s}
}

// ToggleLike 点赞/取消点赞
// @Summary 点赞或取消点赞
// @Tags Like
// @Param id path int true "文章ID"
// @Success 200 {object} response.Response
// @Router /posts/{id}/like [post]
func (h *LikeHandler) ToggleLike(c *gin.Context) {
	postID, ok := common.PathID(c, "id")
	if !ok {
		return
	}

	liked, total, err := h.service.ToggleLike(c.Request.Context(), postID, middleware.CurrentUsername(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"liked": liked, "totalLikes": total})
}

// LikeStatus 当前用户是否已点赞及点赞总数
func (h *LikeHandler) LikeStatus(c *gin.Context) {
	postID, ok := common.PathID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	liked, err := h.service.IsLiked(ctx, postID, middleware.CurrentUsername(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	total, err := h.service.CountLikes(ctx, postID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"liked": liked, "totalLikes": total})
}

// CountLikes 点赞总数
func (h *LikeHandler) CountLikes(c *gin.Context) {
	postID, ok := common.PathID(c, "id")
	if !ok {
		return
	}

	total, err := h.service.CountLikes(c.Request.Context(), postID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"totalLikes": total})
}
