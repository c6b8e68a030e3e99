package handler

import (
	"vibelog/internal/domain/notification/service"
	"vibelog/internal/pkg/common"
	"vibelog/internal/pkg/middleware"
	"vibelog/pkg/response"
	"vibelog/pkg/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	service service.NotificationService
}

func NewNotificationHandler(s service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: s}
}

// List 当前用户的通知
// @Summary 通知列表，最新在前
// @Tags Notification
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} utils.PageResult
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	var p utils.Pagination
	_ = c.ShouldBindQuery(&p)

	list, total, err := h.service.ListNotifications(c.Request.Context(), middleware.CurrentUsername(c), p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(list, total, p))
}

// UnreadCount 未读数
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.service.CountUnread(c.Request.Context(), middleware.CurrentUsername(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"unread": count})
}

// MarkAllRead 全部标记已读
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.service.MarkAllRead(c.Request.Context(), middleware.CurrentUsername(c)); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

// MarkRead 单条标记已读
// @Summary 标记通知已读
// @Tags Notification
// @Param id path int true "通知ID"
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := common.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), middleware.CurrentUsername(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}
