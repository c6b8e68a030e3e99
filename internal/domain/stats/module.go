package stats

import (
	"vibelog/internal/domain/stats/handler"
	"vibelog/internal/domain/stats/repository"
	"vibelog/internal/domain/stats/service"
	"vibelog/internal/pkg/middleware"
	"vibelog/internal/pkg/registry"
)

// StatsModule 排行统计
type StatsModule struct{}

func init() {
	registry.Register(&StatsModule{})
}

func (m *StatsModule) Name() string {
	return "stats"
}

func (m *StatsModule) Priority() int {
	return 40
}

func (m *StatsModule) Init(ctx *registry.ModuleContext) error {
	h := handler.NewStatsHandler(service.NewStatsService(repository.NewStatsRepository(ctx.SQLX)))

	g := ctx.Router.Group("/admin/stats")
	g.Use(middleware.AuthMiddleware(ctx.JWT), middleware.AdminMiddleware())
	{
		g.GET("/top/:metric", h.TopPosts)
	}
	return nil
}
