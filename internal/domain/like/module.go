package like

import (
	contentRepo "vibelog/internal/domain/content/repository"
	"vibelog/internal/domain/like/handler"
	"vibelog/internal/domain/like/repository"
	"vibelog/internal/domain/like/service"
	userRepo "vibelog/internal/domain/user/repository"
	"vibelog/internal/pkg/middleware"
	"vibelog/internal/pkg/registry"
	"vibelog/pkg/utils"

	"github.com/gin-gonic/gin"
)

// LikeModule 点赞模块
type LikeModule struct{}

func init() {
	registry.Register(&LikeModule{})
}

func (m *LikeModule) Name() string {
	return "like"
}

func (m *LikeModule) Priority() int {
	return 20
}

func (m *LikeModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	likeService := service.NewLikeService(
		repository.NewLikeRepository(ctx.DB),
		contentRepo.NewPostRepository(ctx.DB),
		userRepo.NewUserRepository(ctx.DB),
		ctx.Tx,
		ctx.Cache,
		ctx.Bus,
		ctx.Log.Named("like"),
	)
	likeHandler := handler.NewLikeHandler(likeService)

	// 2. 路由注册
	setupRoutes(ctx.Router, ctx.JWT, likeHandler)
	return nil
}

func setupRoutes(r *gin.Engine, jwt *utils.JWTManager, h *handler.LikeHandler) {
	g := r.Group("/posts")
	g.GET("/:id/likes", h.CountLikes)

	auth := g.Group("")
	auth.Use(middleware.AuthMiddleware(jwt))
	{
		auth.POST("/:id/like", h.ToggleLike)
		auth.GET("/:id/like", h.LikeStatus)
	}
}
