package handler

import (
	"net/http"

	"bookstore_api/internal/domain/payment/model"
	"bookstore_api/internal/domain/payment/service"
	"bookstore_api/internal/pkg/middleware"
	"bookstore_api/pkg/logger"
	"bookstore_api/pkg/response"
	"bookstore_api/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	service service.PaymentService
}

func NewPaymentHandler(s service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: s}
}

// List 支付记录
// @Summary 支付记录，最新的在前；普通用户需指定自己的 order_id
// @Tags Payment
// @Produce json
// @Param order_id query int false "Order ID"
// @Success 200 {object} response.Response{data=[]model.PaymentView}
// @Router /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	orderID, err := utils.QueryID(c, "order_id")
	if err != nil {
		response.HandleError(c, err)
		return
	}

	claims, _ := middleware.CurrentUser(c)
	if !claims.IsAdmin() && orderID == nil {
		response.HandleError(c, middleware.ErrForbidden)
		return
	}

	payments, err := h.service.ListPayments(c.Request.Context(), orderID)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	if !claims.IsAdmin() {
		own := make([]model.PaymentView, 0, len(payments))
		for _, p := range payments {
			if p.UserID != nil && *p.UserID == claims.UserID {
				own = append(own, p)
			}
		}
		payments = own
	}
	response.Success(c, payments)
}

// Get 支付详情
// @Summary 支付详情，带订单摘要
// @Tags Payment
// @Produce json
// @Param id path int true "Payment ID"
// @Success 200 {object} response.Response{data=model.PaymentView}
// @Router /payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}

	payment, err := h.service.GetPayment(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if !canAccess(c, payment) {
		response.HandleError(c, middleware.ErrForbidden)
		return
	}
	response.Success(c, payment)
}

// Create 创建支付记录
// @Summary 为订单创建一笔待支付记录
// @Tags Payment
// @Accept json
// @Produce json
// @Param input body service.CreatePaymentInput true "Payment"
// @Success 201 {object} response.Response{data=model.Payment}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var input service.CreatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.HandleError(c, utils.BindError(err))
		return
	}

	// 只能为自己的订单创建支付
	if input.OrderID != 0 {
		owner, err := h.service.OrderOwner(c.Request.Context(), input.OrderID)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		if !middleware.CanAccessUser(c, owner) {
			response.HandleError(c, middleware.ErrForbidden)
			return
		}
	}

	payment, err := h.service.CreatePayment(c.Request.Context(), input)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, payment)
}

// UpdateStatus 修改支付状态
// @Summary 修改支付状态 (pending / paid / failed / refunded)
// @Tags Payment
// @Accept json
// @Produce json
// @Param id path int true "Payment ID"
// @Param input body service.UpdatePaymentInput true "Status"
// @Success 200 {object} response.Response{data=model.Payment}
// @Router /payments/{id} [put]
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}
	var input service.UpdatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.HandleError(c, utils.BindError(err))
		return
	}

	payment, err := h.service.UpdatePaymentStatus(c.Request.Context(), id, input)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, payment)
}

// Pay 发起网关支付
// @Summary 获取支付宝 / 微信支付参数
// @Tags Payment
// @Produce json
// @Param id path int true "Payment ID"
// @Param channel path string true "alipay / wechat"
// @Success 200 {object} response.Response{data=service.PayResult}
// @Router /payments/{id}/pay/{channel} [post]
func (h *PaymentHandler) Pay(c *gin.Context) {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}

	payment, err := h.service.GetPayment(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if !canAccess(c, payment) {
		response.HandleError(c, middleware.ErrForbidden)
		return
	}

	result, err := h.service.Pay(c.Request.Context(), id, c.Param("channel"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}

// AlipayNotify 支付宝回调
// @Summary 支付宝回调
// @Tags Payment
// @Router /payments/notify/alipay [post]
func (h *PaymentHandler) AlipayNotify(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusOK, "fail")
		return
	}
	if err := h.service.HandleNotify(c.Request.Context(), model.ChannelAlipay, c.Request.Form); err != nil {
		logger.Log.Warn("alipay notify failed", zap.Error(err))
		// 返回 fail 后支付宝会重试
		c.String(http.StatusOK, "fail")
		return
	}
	c.String(http.StatusOK, "success")
}

// WechatNotify 微信支付回调
// @Summary 微信支付回调
// @Tags Payment
// @Router /payments/notify/wechat [post]
func (h *PaymentHandler) WechatNotify(c *gin.Context) {
	if err := h.service.HandleNotify(c.Request.Context(), model.ChannelWechat, c.Request); err != nil {
		logger.Log.Warn("wechat notify failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"code": "FAIL", "message": "notify handling failed"})
		return
	}
	c.Status(http.StatusOK)
}

func canAccess(c *gin.Context, payment *model.PaymentView) bool {
	if payment.UserID == nil {
		claims, ok := middleware.CurrentUser(c)
		return ok && claims.IsAdmin()
	}
	return middleware.CanAccessUser(c, *payment.UserID)
}
