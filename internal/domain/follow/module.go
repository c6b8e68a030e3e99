package follow

import (
	"vibelog/internal/domain/follow/handler"
	"vibelog/internal/domain/follow/repository"
	"vibelog/internal/domain/follow/service"
	userRepo "vibelog/internal/domain/user/repository"
	"vibelog/internal/pkg/middleware"
	"vibelog/internal/pkg/registry"
	"vibelog/pkg/utils"

	"github.com/gin-gonic/gin"
)

// FollowModule 关注模块
type FollowModule struct{}

func init() {
	registry.Register(&FollowModule{})
}

func (m *FollowModule) Name() string {
	return "follow"
}

func (m *FollowModule) Priority() int {
	return 20
}

func (m *FollowModule) Init(ctx *registry.ModuleContext) error {
	followService := service.NewFollowService(
		repository.NewFollowRepository(ctx.DB),
		userRepo.NewUserRepository(ctx.DB),
		ctx.Tx,
		ctx.Bus,
	)
	setupRoutes(ctx.Router, ctx.JWT, handler.NewFollowHandler(followService))
	return nil
}

func setupRoutes(r *gin.Engine, jwt *utils.JWTManager, h *handler.FollowHandler) {
	g := r.Group("/users/:id")
	g.GET("/follow-counts", h.Counts)
	g.GET("/followers", h.Followers)
	g.GET("/following", h.Following)

	auth := g.Group("")
	auth.Use(middleware.AuthMiddleware(jwt))
	{
		auth.POST("/follow", h.Follow)
		auth.DELETE("/follow", h.Unfollow)
		auth.GET("/follow", h.State)
	}
}
