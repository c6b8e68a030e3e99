package report

import (
	contentRepo "vibelog/internal/domain/content/repository"
	"vibelog/internal/domain/report/handler"
	"vibelog/internal/domain/report/repository"
	"vibelog/internal/domain/report/service"
	userRepo "vibelog/internal/domain/user/repository"
	userService "vibelog/internal/domain/user/service"
	"vibelog/internal/pkg/middleware"
	"vibelog/internal/pkg/registry"
	"vibelog/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReportModule 举报模块
type ReportModule struct{}

func init() {
	registry.Register(&ReportModule{})
}

func (m *ReportModule) Name() string {
	return "report"
}

func (m *ReportModule) Priority() int {
	return 20
}

func (m *ReportModule) Init(ctx *registry.ModuleContext) error {
	users := userRepo.NewUserRepository(ctx.DB)
	reportService := service.NewReportService(service.Deps{
		Reports:    repository.NewReportRepository(ctx.DB),
		Users:      users,
		Posts:      contentRepo.NewPostRepository(ctx.DB),
		Comments:   contentRepo.NewCommentRepository(ctx.DB),
		Reviewers:  userService.NewUserService(users),
		Transactor: ctx.Tx,
		Bus:        ctx.Bus,
		Metrics:    ctx.Metrics,
		Log:        ctx.Log.Named("report"),
	})
	setupRoutes(ctx.Router, ctx.JWT, handler.NewReportHandler(reportService))
	return nil
}

func setupRoutes(r *gin.Engine, jwt *utils.JWTManager, h *handler.ReportHandler) {
	g := r.Group("/reports")
	g.Use(middleware.AuthMiddleware(jwt))
	{
		g.POST("", h.Submit)
		g.GET("/mine", h.Mine)
	}

	mod := r.Group("/moderation/reports")
	mod.Use(middleware.AuthMiddleware(jwt), middleware.ModeratorMiddleware())
	{
		mod.GET("", h.ListByStatus)
		mod.PUT("/:id/status", h.UpdateStatus)
	}
}
