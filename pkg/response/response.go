package response

import (
	"errors"
	"net/http"
	"vibelog/internal/pkg/apperr"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`    // 业务码
	Message string      `json:"message"` // 提示信息
	Data    interface{} `json:"data"`    // 数据
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, errCode int, msg string) {
	c.JSON(httpCode, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// FromError 按错误分类映射 HTTP 状态码与业务码
func FromError(c *gin.Context, err error) {
	httpCode, errCode := Classify(err)
	msg := err.Error()
	if httpCode == http.StatusInternalServerError {
		msg = "internal server error"
	}
	Error(c, httpCode, errCode, msg)
}

// Classify 返回错误对应的 HTTP 状态码与业务码
func Classify(err error) (int, int) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, ErrServerInternal
	}

	switch e.Kind {
	case apperr.KindNotFound:
		return http.StatusNotFound, notFoundCode(e.Entity)
	case apperr.KindValidation:
		return http.StatusBadRequest, ErrInvalidParam
	case apperr.KindUnauthorized:
		return http.StatusForbidden, ErrNotAuthor
	default:
		return http.StatusInternalServerError, ErrServerInternal
	}
}

func notFoundCode(entity apperr.Entity) int {
	switch entity {
	case apperr.EntityUser:
		return ErrUserNotFound
	case apperr.EntityPost:
		return ErrPostNotFound
	case apperr.EntityComment:
		return ErrCommentNotFound
	case apperr.EntityReport:
		return ErrReportNotFound
	case apperr.EntityNotification:
		return ErrNotificationNotFound
	default:
		return CodeError
	}
}
