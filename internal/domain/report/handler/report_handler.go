package handler

import (
	"net/http"
	"vibelog/internal/domain/report/model"
	"vibelog/internal/domain/report/service"
	"vibelog/internal/pkg/common"
	"vibelog/internal/pkg/middleware"
	"vibelog/pkg/response"
	"vibelog/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

// SubmitInput 举报输入，postId 与 commentId 二选一
type SubmitInput struct {
	PostID    *uint  `json:"postId"`
	CommentID *uint  `json:"commentId"`
	Reason    string `json:"reason" binding:"required"`
}

// StatusInput 状态变更输入
type StatusInput struct {
	Status string `json:"status" binding:"required"`
}

// Submit 提交举报
// @Summary 举报文章或评论
// @Tags Report
// @Accept json
// @Param input body SubmitInput true "举报内容"
// @Success 200 {object} model.Report
// @Router /reports [post]
func (h *ReportHandler) Submit(c *gin.Context) {
	var input SubmitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	target := model.Target{PostID: input.PostID, CommentID: input.CommentID}
	report, err := h.service.SubmitReport(c.Request.Context(), middleware.CurrentUsername(c), target, input.Reason)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, report)
}

// Mine 当前用户提交的举报
func (h *ReportHandler) Mine(c *gin.Context) {
	var p utils.Pagination
	_ = c.ShouldBindQuery(&p)

	reports, total, err := h.service.ListReportsByReporter(c.Request.Context(), middleware.CurrentUsername(c), p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(reports, total, p))
}

// ListByStatus 按状态列出举报（版主）
// @Summary 举报列表
// @Tags Moderation
// @Param status query string false "PENDING/REVIEWED/RESOLVED"
// @Success 200 {object} utils.PageResult
// @Router /moderation/reports [get]
func (h *ReportHandler) ListByStatus(c *gin.Context) {
	status, err := model.ParseStatus(c.DefaultQuery("status", string(model.StatusPending)))
	if err != nil {
		response.FromError(c, err)
		return
	}

	var p utils.Pagination
	_ = c.ShouldBindQuery(&p)

	reports, total, err := h.service.ListReportsByStatus(c.Request.Context(), status, p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(reports, total, p))
}

// UpdateStatus 变更举报状态（版主）
// @Summary 变更举报状态，RESOLVED 时通知举报人
// @Tags Moderation
// @Param id path int true "举报ID"
// @Param input body StatusInput true "新状态"
// @Success 200 {object} model.Report
// @Router /moderation/reports/{id}/status [put]
func (h *ReportHandler) UpdateStatus(c *gin.Context) {
	reportID, ok := common.PathID(c, "id")
	if !ok {
		return
	}

	var input StatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	status, err := model.ParseStatus(input.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}

	report, err := h.service.ReviewReport(c.Request.Context(), middleware.CurrentUserID(c), reportID, status)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, report)
}
