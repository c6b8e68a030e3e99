package user

import (
	"vibelog/internal/domain/user/handler"
	"vibelog/internal/domain/user/repository"
	"vibelog/internal/domain/user/service"
	"vibelog/internal/pkg/middleware"
	"vibelog/internal/pkg/registry"
	"vibelog/pkg/utils"

	"github.com/gin-gonic/gin"
)

// UserModule 用户模块
type UserModule struct{}

func init() {
	// 自动注册模块
	registry.Register(&UserModule{})
}

func (m *UserModule) Name() string {
	return "user"
}

func (m *UserModule) Priority() int {
	// 其他模块都依赖用户
	return 1
}

func (m *UserModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	userRepo := repository.NewUserRepository(ctx.DB)
	userService := service.NewUserService(userRepo)
	userHandler := handler.NewUserHandler(userService)

	// 2. 路由注册
	setupRoutes(ctx.Router, ctx.JWT, userHandler)

	return nil
}

func setupRoutes(r *gin.Engine, jwt *utils.JWTManager, h *handler.UserHandler) {
	r.GET("/profiles/:username", h.GetProfile)

	me := r.Group("/me")
	me.Use(middleware.AuthMiddleware(jwt))
	{
		me.PUT("/profile", h.UpdateProfile)
		me.PUT("/theme", h.SetTheme)
	}
}
