package handler

import (
	"vibelog/internal/domain/cascade/service"
	"vibelog/internal/pkg/common"
	"vibelog/internal/pkg/middleware"
	"vibelog/pkg/response"

	"github.com/gin-gonic/gin"
)

type CascadeHandler struct {
	service service.CascadeService
}

func NewCascadeHandler(s service.CascadeService) *CascadeHandler {
	return &CascadeHandler{service: s}
}

// DeletePost 作者删除文章
// @Summary 删除文章及其点赞、评论、举报与附件
// @Tags Post
// @Param id path int true "文章ID"
// @Router /posts/{id} [delete]
func (h *CascadeHandler) DeletePost(c *gin.Context) {
	postID, ok := common.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeletePost(c.Request.Context(), postID, middleware.CurrentUsername(c)); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

// DeleteComment 作者删除评论
// @Router /comments/{id} [delete]
func (h *CascadeHandler) DeleteComment(c *gin.Context) {
	commentID, ok := common.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteComment(c.Request.Context(), commentID, middleware.CurrentUsername(c)); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

// ModerateDeletePost 版主删除文章
// @Tags Moderation
// @Router /moderation/posts/{id} [delete]
func (h *CascadeHandler) ModerateDeletePost(c *gin.Context) {
	postID, ok := common.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeletePostAsModerator(c.Request.Context(), postID, middleware.CurrentUsername(c)); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

// ModerateDeleteComment 版主删除评论
// @Tags Moderation
// @Router /moderation/comments/{id} [delete]
func (h *CascadeHandler) ModerateDeleteComment(c *gin.Context) {
	commentID, ok := common.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteCommentAsModerator(c.Request.Context(), commentID, middleware.CurrentUsername(c)); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

// PurgeUser 清理用户全部内容（管理员）
// @Tags Admin
// @Param id path int true "用户ID"
// @Router /admin/users/{id}/content [delete]
func (h *CascadeHandler) PurgeUser(c *gin.Context) {
	userID, ok := common.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.PurgeUserContent(c.Request.Context(), userID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}
