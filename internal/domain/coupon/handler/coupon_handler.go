package handler

import (
	"bookstore_api/internal/domain/coupon/repository"
	"bookstore_api/internal/domain/coupon/service"
	"bookstore_api/pkg/response"
	"bookstore_api/pkg/utils"

	"github.com/gin-gonic/gin"
)

type CouponHandler struct {
	service service.CouponService
}

func NewCouponHandler(service service.CouponService) *CouponHandler {
	return &CouponHandler{service: service}
}

// List 优惠券列表
// @Summary 优惠券列表 (管理员)
// @Tags Coupon
// @Produce json
// @Param user_id query int false "User"
// @Param product_id query int false "Product"
// @Param status query string false "Status"
// @Success 200 {object} response.Response{data=[]model.Coupon}
// @Router /coupons [get]
func (h *CouponHandler) List(c *gin.Context) {
	userID, err := utils.QueryID(c, "user_id")
	if err != nil {
		response.HandleError(c, err)
		return
	}
	productID, err := utils.QueryID(c, "product_id")
	if err != nil {
		response.HandleError(c, err)
		return
	}

	coupons, err := h.service.List(c.Request.Context(), repository.Filter{
		UserID:    userID,
		ProductID: productID,
		Status:    c.Query("status"),
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, coupons)
}

func (h *CouponHandler) Get(c *gin.Context) {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}
	coupon, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, coupon)
}

// GetByCode 校验券码
// @Summary 按券码查询当前可用的优惠券
// @Tags Coupon
// @Produce json
// @Param code path string true "Coupon code"
// @Success 200 {object} response.Response{data=model.Coupon}
// @Router /coupons/code/{code} [get]
func (h *CouponHandler) GetByCode(c *gin.Context) {
	coupon, err := h.service.GetValidByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, coupon)
}

func (h *CouponHandler) Create(c *gin.Context) {
	var input service.CouponInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.HandleError(c, utils.BindError(err))
		return
	}
	coupon, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, coupon)
}

func (h *CouponHandler) Update(c *gin.Context) {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}
	var input service.CouponInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.HandleError(c, utils.BindError(err))
		return
	}
	coupon, err := h.service.Update(c.Request.Context(), id, input)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, coupon)
}

func (h *CouponHandler) Delete(c *gin.Context) {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"coupon_id": id})
}
