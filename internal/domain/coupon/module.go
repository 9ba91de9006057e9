package coupon

import (
	"bookstore_api/internal/domain/coupon/handler"
	"bookstore_api/internal/domain/coupon/repository"
	"bookstore_api/internal/domain/coupon/service"
	"bookstore_api/internal/pkg/middleware"
	"bookstore_api/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// CouponModule 优惠券模块
type CouponModule struct{}

func init() {
	registry.Register(&CouponModule{})
}

func (m *CouponModule) Name() string {
	return "coupon"
}

func (m *CouponModule) Priority() int {
	return 10
}

func (m *CouponModule) Init(ctx *registry.ModuleContext) error {
	cRepo := repository.NewCouponRepository(ctx.DB)
	cService := service.NewCouponService(cRepo)
	cHandler := handler.NewCouponHandler(cService)

	setupRoutes(ctx.Router, cHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.CouponHandler) {
	g := r.Group("/coupons")

	// 结算页校验券码无需登录
	g.GET("/code/:code", h.GetByCode)

	admin := g.Group("")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("", h.List)
		admin.GET("/:id", h.Get)
		admin.POST("", h.Create)
		admin.PUT("/:id", h.Update)
		admin.DELETE("/:id", h.Delete)
	}
}
