package cascade

import (
	"vibelog/internal/domain/cascade/handler"
	"vibelog/internal/domain/cascade/repository"
	"vibelog/internal/domain/cascade/service"
	userRepo "vibelog/internal/domain/user/repository"
	"vibelog/internal/pkg/middleware"
	"vibelog/internal/pkg/registry"
)

// CascadeModule 级联删除模块
type CascadeModule struct{}

func init() {
	registry.Register(&CascadeModule{})
}

func (m *CascadeModule) Name() string {
	return "cascade"
}

func (m *CascadeModule) Priority() int {
	return 30
}

// NewCoordinator 供撤销转发等需要级联删除的模块复用
func NewCoordinator(ctx *registry.ModuleContext) service.CascadeService {
	return service.NewCascadeService(service.Deps{
		Repo:       repository.NewCascadeRepository(ctx.DB),
		Users:      userRepo.NewUserRepository(ctx.DB),
		Transactor: ctx.Tx,
		Storage:    ctx.Storage,
		Cache:      ctx.Cache,
		Metrics:    ctx.Metrics,
		Log:        ctx.Log.Named("cascade"),
	})
}

func (m *CascadeModule) Init(ctx *registry.ModuleContext) error {
	h := handler.NewCascadeHandler(NewCoordinator(ctx))
	auth := middleware.AuthMiddleware(ctx.JWT)

	owner := ctx.Router.Group("")
	owner.Use(auth)
	{
		owner.DELETE("/posts/:id", h.DeletePost)
		owner.DELETE("/comments/:id", h.DeleteComment)
	}

	mod := ctx.Router.Group("/moderation")
	mod.Use(auth, middleware.ModeratorMiddleware())
	{
		mod.DELETE("/posts/:id", h.ModerateDeletePost)
		mod.DELETE("/comments/:id", h.ModerateDeleteComment)
	}

	admin := ctx.Router.Group("/admin")
	admin.Use(auth, middleware.AdminMiddleware())
	{
		admin.DELETE("/users/:id/content", h.PurgeUser)
	}
	return nil
}
