package content

import (
	"vibelog/internal/domain/cascade"
	"vibelog/internal/domain/content/handler"
	"vibelog/internal/domain/content/repository"
	"vibelog/internal/domain/content/service"
	userRepo "vibelog/internal/domain/user/repository"
	"vibelog/internal/pkg/middleware"
	"vibelog/internal/pkg/registry"
	"vibelog/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ContentModule 文章、评论、附件与转发
type ContentModule struct{}

func init() {
	registry.Register(&ContentModule{})
}

func (m *ContentModule) Name() string {
	return "content"
}

func (m *ContentModule) Priority() int {
	return 10
}

func (m *ContentModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入，撤销转发走级联删除
	contentService := service.NewContentService(service.Deps{
		Posts:      repository.NewPostRepository(ctx.DB),
		Comments:   repository.NewCommentRepository(ctx.DB),
		Media:      repository.NewMediaRepository(ctx.DB),
		Users:      userRepo.NewUserRepository(ctx.DB),
		Remover:    cascade.NewCoordinator(ctx),
		Storage:    ctx.Storage,
		Transactor: ctx.Tx,
		Bus:        ctx.Bus,
		Log:        ctx.Log.Named("content"),
	})

	// 2. 路由注册
	setupRoutes(ctx.Router, ctx.JWT, handler.NewContentHandler(contentService))
	return nil
}

func setupRoutes(r *gin.Engine, jwt *utils.JWTManager, h *handler.ContentHandler) {
	r.GET("/profiles/:username/posts", h.ListUserPosts)

	posts := r.Group("/posts")
	posts.GET("/:id", h.GetPost)
	posts.GET("/:id/comments", h.GetComments)

	auth := r.Group("")
	auth.Use(middleware.AuthMiddleware(jwt))
	{
		auth.POST("/posts", h.CreatePost)
		auth.POST("/posts/:id/media", h.UploadMedia)
		auth.POST("/posts/:id/comments", h.AddComment)
		auth.PUT("/comments/:id", h.UpdateComment)
		auth.POST("/posts/:id/reblog", h.Reblog)
		auth.DELETE("/posts/:id/reblog", h.UndoReblog)
		auth.GET("/posts/:id/reblog", h.ReblogStatus)
	}
}
