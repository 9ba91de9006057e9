package common

import (
	"errors"

	commonHandler "bookstore_api/internal/pkg/common"
	"bookstore_api/internal/pkg/config"
	"bookstore_api/internal/pkg/middleware"
	"bookstore_api/internal/pkg/registry"
	"bookstore_api/internal/pkg/uploader"
	"bookstore_api/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CommonModule 通用功能模块
type CommonModule struct{}

func init() {
	registry.Register(&CommonModule{})
}

func (m *CommonModule) Name() string {
	return "common"
}

func (m *CommonModule) Priority() int {
	return 100 // 最后初始化
}

func (m *CommonModule) Init(ctx *registry.ModuleContext) error {
	var up uploader.Uploader
	oss, err := uploader.NewAliyunOSSUploader(config.GlobalConfig.OSS)
	switch {
	case err == nil:
		up = oss
	case errors.Is(err, uploader.ErrNotConfigured):
		logger.Log.Info("oss not configured, upload disabled")
	default:
		logger.Log.Error("failed to init oss uploader", zap.Error(err))
	}

	h := commonHandler.NewHandler(up, ctx.SQLX)
	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *commonHandler.Handler) {
	r.GET("/health", h.Health)
	r.POST("/upload", middleware.AuthMiddleware(), middleware.AdminMiddleware(), h.UploadFile)
}
