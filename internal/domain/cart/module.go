package cart

import (
	"bookstore_api/internal/domain/cart/handler"
	"bookstore_api/internal/domain/cart/repository"
	"bookstore_api/internal/domain/cart/service"
	couponRepo "bookstore_api/internal/domain/coupon/repository"
	"bookstore_api/internal/domain/pricing"
	"bookstore_api/internal/pkg/middleware"
	"bookstore_api/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// CartModule 购物车模块
type CartModule struct{}

func init() {
	registry.Register(&CartModule{})
}

func (m *CartModule) Name() string {
	return "cart"
}

func (m *CartModule) Priority() int {
	return 20
}

func (m *CartModule) Init(ctx *registry.ModuleContext) error {
	resolver := pricing.NewResolver(couponRepo.NewCouponRepository(ctx.DB))
	cService := service.NewCartService(repository.NewCartRepository(ctx.DB), resolver)
	setupRoutes(ctx.Router, handler.NewCartHandler(cService))
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.CartHandler) {
	g := r.Group("/cart")
	g.Use(middleware.AuthMiddleware())
	{
		g.GET("/:userId", h.List)
		g.POST("", h.Add)
		g.PUT("/:cartId", h.Update)
		g.DELETE("/:cartId", h.Remove)
		g.DELETE("/user/:userId", h.Clear)
	}
}
