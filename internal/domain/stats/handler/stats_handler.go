package handler

import (
	"strconv"
	"vibelog/internal/domain/stats/service"
	"vibelog/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	service service.StatsService
}

func NewStatsHandler(s service.StatsService) *StatsHandler {
	return &StatsHandler{service: s}
}

// TopPosts 排行
// @Summary 按点赞/评论/转发数排行的文章ID
// @Tags Admin
// @Param metric path string true "liked/commented/reblogged"
// @Param limit query int false "数量"
// @Success 200 {array} repository.PostCount
// @Router /admin/stats/top/{metric} [get]
func (h *StatsHandler) TopPosts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, err := h.service.TopPosts(c.Request.Context(), service.Metric(c.Param("metric")), limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, rows)
}
