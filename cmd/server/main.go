package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "bookstore_api/internal/domain/cart"
	_ "bookstore_api/internal/domain/category"
	_ "bookstore_api/internal/domain/common"
	_ "bookstore_api/internal/domain/coupon"
	_ "bookstore_api/internal/domain/order"
	_ "bookstore_api/internal/domain/payment"
	_ "bookstore_api/internal/domain/product"
	_ "bookstore_api/internal/domain/user"
	"bookstore_api/internal/pkg/config"
	"bookstore_api/internal/pkg/middleware"
	"bookstore_api/internal/pkg/push"
	"bookstore_api/internal/pkg/registry"
	"bookstore_api/internal/pkg/worker"
	"bookstore_api/pkg/database"
	"bookstore_api/pkg/logger"
	"bookstore_api/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	// 1. 配置与日志
	config.LoadConfig()
	cfg := config.GlobalConfig

	if err := logger.InitLogger(cfg.Log); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	// 2. 存储
	db, err := database.InitDatabase(cfg.Database, cfg.App.Debug)
	if err != nil {
		logger.Log.Fatal("failed to connect database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Log.Fatal("failed to get sql.DB", zap.Error(err))
	}
	defer sqlDB.Close()

	sqlxDB, err := database.NewSQLX(db)
	if err != nil {
		logger.Log.Fatal("failed to init sqlx", zap.Error(err))
	}

	rdb, err := database.InitRedis(cfg.Redis)
	if err != nil {
		// Redis 只用于幂等键，不可用时降级为无幂等保护
		logger.Log.Warn("redis unavailable, idempotency keys disabled", zap.Error(err))
		rdb = nil
	} else {
		defer rdb.Close()
	}

	collector := metrics.GetGlobalCollector()
	monitor := database.NewPoolMonitor(sqlDB, collector, 15*time.Second)
	monitor.Start()
	defer monitor.Stop()

	// 3. 订单状态推送
	var notifier *worker.WorkerPool
	pushService, err := push.NewAliyunPushService(cfg.Push)
	if err != nil {
		logger.Log.Info("push service not configured, order notifications disabled", zap.Error(err))
	} else {
		notifier = worker.NewWorkerPool(pushService, 4, 256)
		notifier.Start()
		defer notifier.Stop()
	}

	// 4. HTTP
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()

	stopCleanup := make(chan struct{})
	defer close(stopCleanup)
	limiter := middleware.NewIPRateLimiter(rate.Limit(20), 40)
	limiter.StartCleanup(5*time.Minute, stopCleanup)

	r.Use(
		middleware.TraceMiddleware(),
		middleware.LoggerMiddleware(),
		gin.Recovery(),
		cors.New(corsConfig(cfg.Server.AllowOrigins)),
		middleware.RateLimitMiddleware(limiter),
		middleware.MetricsMiddleware(collector),
	)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if err := registry.InitModules(&registry.ModuleContext{
		DB:       db,
		SQLX:     sqlxDB,
		Redis:    rdb,
		Router:   r,
		Notifier: notifier,
	}); err != nil {
		logger.Log.Fatal("failed to init modules", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutdown signal received, draining requests")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Log.Info("server exited")
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.IdempotencyHeader, middleware.TraceIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.TraceIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
