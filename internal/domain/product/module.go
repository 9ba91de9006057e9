package product

import (
	couponRepo "bookstore_api/internal/domain/coupon/repository"
	"bookstore_api/internal/domain/pricing"
	"bookstore_api/internal/domain/product/handler"
	"bookstore_api/internal/domain/product/repository"
	"bookstore_api/internal/domain/product/service"
	"bookstore_api/internal/pkg/middleware"
	"bookstore_api/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// ProductModule 商品模块
type ProductModule struct{}

func init() {
	registry.Register(&ProductModule{})
}

func (m *ProductModule) Name() string {
	return "product"
}

func (m *ProductModule) Priority() int {
	return 10
}

func (m *ProductModule) Init(ctx *registry.ModuleContext) error {
	resolver := pricing.NewResolver(couponRepo.NewCouponRepository(ctx.DB))
	pService := service.NewProductService(repository.NewProductRepository(ctx.DB), resolver)
	setupRoutes(ctx.Router, handler.NewProductHandler(pService))
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.ProductHandler) {
	g := r.Group("/products")
	g.GET("", h.List)
	g.GET("/:id", h.Get)

	admin := g.Group("")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("", h.Create)
		admin.PUT("/:id", h.Update)
		admin.DELETE("/:id", h.Delete)
	}
}
