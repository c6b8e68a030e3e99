package handler

import (
	"vibelog/internal/domain/follow/service"
	"vibelog/internal/pkg/common"
	"vibelog/internal/pkg/middleware"
	"vibelog/pkg/response"
	"vibelog/pkg/utils"

	"github.com/gin-gonic/gin"
)

type FollowHandler struct {
	service service.FollowService
}

func NewFollowHandler(s service.FollowService) *FollowHandler {
	return &FollowHandler{service: s}
}

// Follow 关注用户
// @Summary 关注用户（重复关注、关注自己均为空操作）
// @Tags Follow
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response
// @Router /users/{id}/follow [post]
func (h *FollowHandler) Follow(c *gin.Context) {
	targetID, ok := common.PathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Follow(c.Request.Context(), middleware.CurrentUserID(c), targetID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, "success")
}

// Unfollow 取消关注
// @Summary 取消关注
// @Tags Follow
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response
// @Router /users/{id}/follow [delete]
func (h *FollowHandler) Unfollow(c *gin.Context) {
	targetID, ok := common.PathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Unfollow(c.Request.Context(), middleware.CurrentUserID(c), targetID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, "success")
}

// State 当前用户与目标用户的关注状态
func (h *FollowHandler) State(c *gin.Context) {
	targetID, ok := common.PathID(c, "id")
	if !ok {
		return
	}

	state, err := h.service.FollowState(c.Request.Context(), middleware.CurrentUserID(c), targetID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, state)
}

// Counts 粉丝数与关注数
func (h *FollowHandler) Counts(c *gin.Context) {
	userID, ok := common.PathID(c, "id")
	if !ok {
		return
	}

	counts, err := h.service.FollowCounts(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, counts)
}

// Followers 粉丝列表
func (h *FollowHandler) Followers(c *gin.Context) {
	userID, ok := common.PathID(c, "id")
	if !ok {
		return
	}

	var p utils.Pagination
	_ = c.ShouldBindQuery(&p)

	list, total, err := h.service.ListFollowers(c.Request.Context(), userID, p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(list, total, p))
}

// Following 关注列表
func (h *FollowHandler) Following(c *gin.Context) {
	userID, ok := common.PathID(c, "id")
	if !ok {
		return
	}

	var p utils.Pagination
	_ = c.ShouldBindQuery(&p)

	list, total, err := h.service.ListFollowing(c.Request.Context(), userID, p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(list, total, p))
}
