package order

import (
	"time"

	couponRepo "bookstore_api/internal/domain/coupon/repository"
	"bookstore_api/internal/domain/order/handler"
	"bookstore_api/internal/domain/order/repository"
	"bookstore_api/internal/domain/order/service"
	"bookstore_api/internal/domain/pricing"
	productRepo "bookstore_api/internal/domain/product/repository"
	"bookstore_api/internal/pkg/config"
	"bookstore_api/internal/pkg/middleware"
	"bookstore_api/internal/pkg/registry"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// OrderModule 订单模块
type OrderModule struct{}

func init() {
	registry.Register(&OrderModule{})
}

func (m *OrderModule) Name() string {
	return "order"
}

func (m *OrderModule) Priority() int {
	return 30
}

func (m *OrderModule) Init(ctx *registry.ModuleContext) error {
	resolver := pricing.NewResolver(couponRepo.NewCouponRepository(ctx.DB))

	var notifier service.StatusNotifier
	if ctx.Notifier != nil {
		notifier = ctx.Notifier
	}

	oService := service.NewOrderService(
		repository.NewOrderRepository(ctx.DB, ctx.SQLX),
		productRepo.NewProductRepository(ctx.DB),
		resolver,
		notifier,
		service.Options{TotalTolerance: decimal.NewFromFloat(config.GlobalConfig.Order.TotalTolerance)},
	)

	ttl := time.Duration(config.GlobalConfig.Idempotency.TTL) * time.Second
	idem := middleware.IdempotencyMiddleware(middleware.StoreFor(ctx.Redis), ttl)

	setupRoutes(ctx.Router, handler.NewOrderHandler(oService), idem)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.OrderHandler, idem gin.HandlerFunc) {
	g := r.Group("/orders")
	g.Use(middleware.AuthMiddleware())
	{
		g.POST("", idem, h.Create)
		g.GET("", h.List)
		g.GET("/:id", h.Get)
		g.PUT("/:id", middleware.AdminMiddleware(), h.UpdateStatus)
	}
}
