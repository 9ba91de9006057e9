package handler

import (
	"bookstore_api/internal/domain/product/repository"
	"bookstore_api/internal/domain/product/service"
	"bookstore_api/pkg/response"
	"bookstore_api/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	service service.ProductService
}

func NewProductHandler(service service.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// List 商品列表
// @Summary 商品列表，附带当前用户可用的折扣
// @Tags Product
// @Produce json
// @Param category_id query []int false "Category filter" collectionFormat(multi)
// @Param status query string false "available / unavailable"
// @Param user_id query int false "Price for this user"
// @Success 200 {object} response.Response{data=[]model.ProductView}
// @Router /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	categoryIDs, err := utils.QueryIDs(c, "category_id")
	if err != nil {
		response.HandleError(c, err)
		return
	}
	userID, err := utils.QueryID(c, "user_id")
	if err != nil {
		response.HandleError(c, err)
		return
	}

	products, err := h.service.List(c.Request.Context(), repository.Filter{
		CategoryIDs: categoryIDs,
		Status:      c.Query("status"),
	}, userID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, products)
}

// Get 商品详情
// @Summary 商品详情
// @Tags Product
// @Produce json
// @Param id path int true "Product ID"
// @Param user_id query int false "Price for this user"
// @Success 200 {object} response.Response{data=model.ProductView}
// @Router /products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}
	userID, err := utils.QueryID(c, "user_id")
	if err != nil {
		response.HandleError(c, err)
		return
	}

	product, err := h.service.Get(c.Request.Context(), id, userID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, product)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var input service.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.HandleError(c, utils.BindError(err))
		return
	}
	product, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}
	var input service.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.HandleError(c, utils.BindError(err))
		return
	}
	product, err := h.service.Update(c.Request.Context(), id, input)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"product_id": id})
}
