package handler

import (
	"net/http"
	"vibelog/internal/domain/user/service"
	"vibelog/internal/pkg/middleware"
	"vibelog/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户处理器
type UserHandler struct {
	service service.UserService
}

// NewUserHandler 创建处理器
func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// ProfileInput 资料更新输入
type ProfileInput struct {
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profilePicture"`
}

// ThemeInput 主题设置输入
type ThemeInput struct {
	Theme string `json:"theme" binding:"required"`
}

// GetProfile 用户主页
// @Summary 获取用户资料与角色属性
// @Tags User
// @Param username path string true "用户名"
// @Success 200 {object} service.Profile
// @Router /profiles/{username} [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.service.GetProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, profile)
}

// UpdateProfile 更新当前用户资料
// @Summary 更新简介与头像
// @Tags User
// @Param input body ProfileInput true "资料"
// @Router /me/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var input ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), middleware.CurrentUsername(c), input.Bio, input.ProfilePicture)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, user)
}

// SetTheme 设置主题（普通用户）
func (h *UserHandler) SetTheme(c *gin.Context) {
	var input ThemeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	if err := h.service.SetTheme(c.Request.Context(), middleware.CurrentUsername(c), input.Theme); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}
