package handler

import (
	"bookstore_api/internal/domain/order/service"
	"bookstore_api/internal/pkg/middleware"
	"bookstore_api/pkg/response"
	"bookstore_api/pkg/utils"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(service service.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

type UpdateStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// Create 下单
// @Summary 创建订单并清空购物车
// @Tags Order
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replay key"
// @Param input body service.CreateOrderInput true "Order"
// @Success 201 {object} response.Response{data=model.OrderView}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var input service.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.HandleError(c, utils.BindError(err))
		return
	}
	if input.UserID != 0 && !middleware.CanAccessUser(c, input.UserID) {
		response.HandleError(c, middleware.ErrForbidden)
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), input)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, order)
}

// List 订单列表
// @Summary 订单列表，最新的在前；普通用户只能查看自己的订单
// @Tags Order
// @Produce json
// @Param user_id query int false "User ID"
// @Success 200 {object} response.Response{data=[]model.OrderView}
// @Router /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	userID, err := utils.QueryID(c, "user_id")
	if err != nil {
		response.HandleError(c, err)
		return
	}

	claims, _ := middleware.CurrentUser(c)
	if !claims.IsAdmin() {
		if userID != nil && *userID != claims.UserID {
			response.HandleError(c, middleware.ErrForbidden)
			return
		}
		own := claims.UserID
		userID = &own
	}

	orders, err := h.service.ListOrders(c.Request.Context(), userID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, orders)
}

// Get 订单详情
// @Summary 订单详情
// @Tags Order
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} response.Response{data=model.OrderView}
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if !middleware.CanAccessUser(c, order.UserID) {
		response.HandleError(c, middleware.ErrForbidden)
		return
	}
	response.Success(c, order)
}

// UpdateStatus 修改订单状态
// @Summary 修改订单状态 (pending / processing / shipped / delivered / cancelled)
// @Tags Order
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param input body UpdateStatusInput true "Status"
// @Success 200 {object} response.Response{data=model.OrderView}
// @Router /orders/{id} [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}
	var input UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.HandleError(c, utils.BindError(err))
		return
	}

	order, err := h.service.UpdateStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, order)
}
