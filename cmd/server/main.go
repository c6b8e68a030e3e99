package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "vibelog/internal/domain/cascade"
	_ "vibelog/internal/domain/common"
	_ "vibelog/internal/domain/content"
	_ "vibelog/internal/domain/follow"
	_ "vibelog/internal/domain/like"
	_ "vibelog/internal/domain/notification"
	_ "vibelog/internal/domain/report"
	_ "vibelog/internal/domain/stats"
	_ "vibelog/internal/domain/user"
	"vibelog/internal/pkg/config"
	"vibelog/internal/pkg/event"
	"vibelog/internal/pkg/middleware"
	"vibelog/internal/pkg/push"
	"vibelog/internal/pkg/registry"
	"vibelog/internal/pkg/storage"
	"vibelog/internal/pkg/worker"
	"vibelog/pkg/cache"
	"vibelog/pkg/database"
	"vibelog/pkg/logger"
	"vibelog/pkg/metrics"
	"vibelog/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	log, err := logger.Init(cfg.App.Env, cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. 存储
	db, err := database.InitDatabase(cfg.Database, cfg.App.Debug, log)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	m := metrics.New(prometheus.DefaultRegisterer)
	prometheus.MustRegister(collectors.NewDBStatsCollector(sqlDB, cfg.Database.DBName))

	var counters cache.CounterCache = cache.NoopCounterCache{}
	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		counters = cache.NewRedisCounterCache(rdb, "vibelog:")
	}

	media, err := storage.New(cfg.OSS, cfg.App.Env)
	if err != nil {
		return err
	}
	if _, ok := media.(*storage.MemoryStorage); ok {
		log.Warn("oss not configured, media kept in process memory")
	}

	// 2. 推送协程池，未配置时不启动
	var pushPool *worker.PushPool
	pusher, err := push.New(cfg.Push)
	if err != nil {
		return err
	}
	if _, noop := pusher.(push.NoopPusher); !noop {
		pushPool = worker.NewPushPool(pusher, log.Named("push"), 4, 1024)
		pushPool.Start(ctx)
		defer pushPool.Stop()
	}

	// 3. HTTP
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.QPS), cfg.RateLimit.Burst)
	go sweepLimiter(ctx, limiter)

	router.Use(
		gin.Recovery(),
		cors.Default(),
		middleware.TraceMiddleware(),
		middleware.LoggerMiddleware(log),
		middleware.MetricsMiddleware(m),
		middleware.RateLimitMiddleware(limiter),
	)

	moduleCtx := &registry.ModuleContext{
		Config:   cfg,
		DB:       db,
		SQLX:     sqlx.NewDb(sqlDB, "postgres"),
		Tx:       database.NewTransactor(db),
		Cache:    counters,
		Router:   router,
		Bus:      event.NewBus(log.Named("event"), m),
		Log:      log,
		Metrics:  m,
		JWT:      utils.NewJWTManager(cfg.JWT.Secret, time.Duration(cfg.JWT.Expire)*time.Hour),
		Storage:  media,
		PushPool: pushPool,
	}
	if err := registry.InitModules(moduleCtx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// sweepLimiter 定期清理长时间不活跃的 IP
func sweepLimiter(ctx context.Context, l *middleware.IPRateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Cleanup(10 * time.Minute)
		}
	}
}
