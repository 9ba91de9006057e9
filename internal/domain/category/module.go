package category

import (
	"bookstore_api/internal/domain/category/handler"
	"bookstore_api/internal/domain/category/repository"
	"bookstore_api/internal/domain/category/service"
	"bookstore_api/internal/pkg/middleware"
	"bookstore_api/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// CategoryModule 分类模块
type CategoryModule struct{}

func init() {
	registry.Register(&CategoryModule{})
}

func (m *CategoryModule) Name() string {
	return "category"
}

func (m *CategoryModule) Priority() int {
	return 5
}

func (m *CategoryModule) Init(ctx *registry.ModuleContext) error {
	repo := repository.NewCategoryRepository(ctx.DB)
	h := handler.NewCategoryHandler(service.NewCategoryService(repo))
	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.CategoryHandler) {
	g := r.Group("/categories")
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
