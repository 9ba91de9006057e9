package handler

import (
	"bookstore_api/internal/domain/cart/service"
	"bookstore_api/internal/pkg/middleware"
	"bookstore_api/pkg/response"
	"bookstore_api/pkg/utils"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	service service.CartService
}

func NewCartHandler(service service.CartService) *CartHandler {
	return &CartHandler{service: service}
}

type AddItemInput struct {
	UserID    uint `json:"user_id" binding:"required"`
	ProductID uint `json:"product_id" binding:"required"`
	// 缺省为 1
	Quantity *int `json:"quantity"`
}

type SetQuantityInput struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// List 用户购物车
// @Summary 购物车列表，最近加入的在前
// @Tags Cart
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} response.Response{data=[]model.CartItem}
// @Router /cart/{userId} [get]
func (h *CartHandler) List(c *gin.Context) {
	userID, err := utils.ParamID(c, "userId")
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if !middleware.CanAccessUser(c, userID) {
		response.HandleError(c, middleware.ErrForbidden)
		return
	}

	items, err := h.service.ListItems(c.Request.Context(), userID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, items)
}

// Add 加入购物车
// @Summary 加入购物车，已存在时数量累加
// @Tags Cart
// @Accept json
// @Produce json
// @Param input body AddItemInput true "Item"
// @Success 201 {object} response.Response{data=model.CartEntry} "new entry"
// @Success 200 {object} response.Response{data=model.CartEntry} "quantity increased"
// @Router /cart [post]
func (h *CartHandler) Add(c *gin.Context) {
	var input AddItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.HandleError(c, utils.BindError(err))
		return
	}
	if !middleware.CanAccessUser(c, input.UserID) {
		response.HandleError(c, middleware.ErrForbidden)
		return
	}

	qty := 1
	if input.Quantity != nil {
		qty = *input.Quantity
	}

	entry, created, err := h.service.AddItem(c.Request.Context(), input.UserID, input.ProductID, qty)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if created {
		response.Created(c, entry)
		return
	}
	response.Success(c, entry)
}

// authorizeEntry 校验条目归属
func (h *CartHandler) authorizeEntry(c *gin.Context) (uint, bool) {
	cartID, err := utils.ParamID(c, "cartId")
	if err != nil {
		response.HandleError(c, err)
		return 0, false
	}
	entry, err := h.service.Get(c.Request.Context(), cartID)
	if err != nil {
		response.HandleError(c, err)
		return 0, false
	}
	if !middleware.CanAccessUser(c, entry.UserID) {
		response.HandleError(c, middleware.ErrForbidden)
		return 0, false
	}
	return cartID, true
}

func (h *CartHandler) Update(c *gin.Context) {
	var input SetQuantityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.HandleError(c, utils.BindError(err))
		return
	}
	cartID, ok := h.authorizeEntry(c)
	if !ok {
		return
	}

	entry, err := h.service.SetQuantity(c.Request.Context(), cartID, *input.Quantity)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, entry)
}

func (h *CartHandler) Remove(c *gin.Context) {
	cartID, ok := h.authorizeEntry(c)
	if !ok {
		return
	}
	if err := h.service.RemoveItem(c.Request.Context(), cartID); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"cart_id": cartID})
}

func (h *CartHandler) Clear(c *gin.Context) {
	userID, err := utils.ParamID(c, "userId")
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if !middleware.CanAccessUser(c, userID) {
		response.HandleError(c, middleware.ErrForbidden)
		return
	}
	if err := h.service.Clear(c.Request.Context(), userID); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"user_id": userID})
}
