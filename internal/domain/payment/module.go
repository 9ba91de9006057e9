package payment

import (
	"context"
	"time"

	"bookstore_api/internal/domain/payment/handler"
	"bookstore_api/internal/domain/payment/model"
	"bookstore_api/internal/domain/payment/repository"
	"bookstore_api/internal/domain/payment/service"
	"bookstore_api/internal/domain/payment/strategy"
	"bookstore_api/internal/pkg/config"
	"bookstore_api/internal/pkg/middleware"
	"bookstore_api/internal/pkg/registry"
	"bookstore_api/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentModule 支付模块
type PaymentModule struct{}

func init() {
	registry.Register(&PaymentModule{})
}

func (m *PaymentModule) Name() string {
	return "payment"
}

func (m *PaymentModule) Priority() int {
	// 依赖订单表
	return 40
}

func (m *PaymentModule) Init(ctx *registry.ModuleContext) error {
	pService := service.NewPaymentService(repository.NewPaymentRepository(ctx.DB))

	// 网关均为可选，未配置时只提供支付记录接口
	if config.GlobalConfig.Alipay.AppID != "" {
		alipayStrategy, err := strategy.NewAlipayStrategy(config.GlobalConfig.Alipay)
		if err != nil {
			logger.Log.Error("failed to init alipay strategy", zap.Error(err))
		} else {
			pService.RegisterStrategy(model.ChannelAlipay, alipayStrategy)
		}
	}

	if config.GlobalConfig.Wechat.MchID != "" {
		wechatStrategy, err := strategy.NewWechatStrategy(context.Background(), config.GlobalConfig.Wechat)
		if err != nil {
			logger.Log.Error("failed to init wechat pay strategy", zap.Error(err))
		} else {
			pService.RegisterStrategy(model.ChannelWechat, wechatStrategy)
		}
	}

	ttl := time.Duration(config.GlobalConfig.Idempotency.TTL) * time.Second
	idem := middleware.IdempotencyMiddleware(middleware.StoreFor(ctx.Redis), ttl)

	setupRoutes(ctx.Router, handler.NewPaymentHandler(pService), idem)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.PaymentHandler, idem gin.HandlerFunc) {
	g := r.Group("/payments")

	// 网关回调无需登录，由策略验签
	g.POST("/notify/alipay", h.AlipayNotify)
	g.POST("/notify/wechat", h.WechatNotify)

	auth := g.Group("")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.GET("", h.List)
		auth.GET("/:id", h.Get)
		auth.POST("", idem, h.Create)
		auth.POST("/:id/pay/:channel", h.Pay)
		auth.PUT("/:id", middleware.AdminMiddleware(), h.UpdateStatus)
	}
}
