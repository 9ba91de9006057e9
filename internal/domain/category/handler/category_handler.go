package handler

import (
	"bookstore_api/internal/domain/category/service"
	"bookstore_api/pkg/response"
	"bookstore_api/pkg/utils"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	service service.CategoryService
}

func NewCategoryHandler(service service.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// List 分类列表
// @Summary 分类列表
// @Tags Category
// @Produce json
// @Success 200 {object} response.Response{data=[]model.Category}
// @Router /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.service.List(c.Request.Context())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, categories)
}

func (h *CategoryHandler) Get(c *gin.Context) {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}
	category, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, category)
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var input service.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.HandleError(c, utils.BindError(err))
		return
	}
	category, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, category)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}
	var input service.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.HandleError(c, utils.BindError(err))
		return
	}
	category, err := h.service.Update(c.Request.Context(), id, input)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, category)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"category_id": id})
}
