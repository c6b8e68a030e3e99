package common

import (
	"net/http"
	"strconv"
	"vibelog/pkg/response"

	"github.com/gin-gonic/gin"
)

// PathID 解析路径中的数字ID，失败时写入 400 响应
func PathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
