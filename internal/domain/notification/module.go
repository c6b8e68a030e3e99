package notification

import (
	"vibelog/internal/domain/notification/handler"
	"vibelog/internal/domain/notification/repository"
	"vibelog/internal/domain/notification/service"
	userRepo "vibelog/internal/domain/user/repository"
	"vibelog/internal/pkg/middleware"
	"vibelog/internal/pkg/registry"
)

// NotificationModule 通知模块，先于产生事件的模块初始化
type NotificationModule struct{}

func init() {
	registry.Register(&NotificationModule{})
}

func (m *NotificationModule) Name() string {
	return "notification"
}

func (m *NotificationModule) Priority() int {
	return 5
}

func (m *NotificationModule) Init(ctx *registry.ModuleContext) error {
	deps := service.Deps{
		Notifications: repository.NewNotificationRepository(ctx.DB),
		Users:         userRepo.NewUserRepository(ctx.DB),
		Cache:         ctx.Cache,
		Metrics:       ctx.Metrics,
		Log:           ctx.Log.Named("notification"),
	}
	if ctx.PushPool != nil {
		deps.Push = ctx.PushPool
	}
	notificationService := service.NewNotificationService(deps)
	service.Subscribe(ctx.Bus, notificationService)

	h := handler.NewNotificationHandler(notificationService)
	g := ctx.Router.Group("/notifications")
	g.Use(middleware.AuthMiddleware(ctx.JWT))
	{
		g.GET("", h.List)
		g.GET("/unread-count", h.UnreadCount)
		g.PUT("/read-all", h.MarkAllRead)
		g.PUT("/:id/read", h.MarkRead)
	}
	return nil
}
