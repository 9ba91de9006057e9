package model

import (
	"time"

	baseModel "bookstore_api/pkg/model"

	"github.com/shopspring/decimal"
)

const (
	DiscountPercentage  = "percentage"
	DiscountFixedAmount = "fixed_amount"

	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Coupon 优惠券。UserID / ProductID 为空表示不限用户 / 不限商品
type Coupon struct {
	CouponID      uint            `gorm:"column:coupon_id;primaryKey" json:"coupon_id"`
	CouponCode    string          `gorm:"column:coupon_code;uniqueIndex" json:"coupon_code"`
	DiscountType  string          `gorm:"column:discount_type" json:"discount_type"`
	DiscountValue decimal.Decimal `gorm:"column:discount_value;type:numeric(10,2)" json:"discount_value"`
	StartDate     baseModel.Date  `gorm:"column:start_date" json:"start_date"`
	EndDate       baseModel.Date  `gorm:"column:end_date" json:"end_date"`
	Status        string          `gorm:"column:status;default:active" json:"status"`
	UserID        *uint           `gorm:"column:user_id" json:"user_id"`
	ProductID     *uint           `gorm:"column:product_id" json:"product_id"`
}

func (Coupon) TableName() string { return "coupons" }

func ValidDiscountType(t string) bool {
	return t == DiscountPercentage || t == DiscountFixedAmount
}

// ActiveOn 状态为 active 且 day 落在有效期内（含首尾）
func (c *Coupon) ActiveOn(day time.Time) bool {
	if c.Status != StatusActive {
		return false
	}
	d := baseModel.NewDate(day).String()
	return c.StartDate.String() <= d && d <= c.EndDate.String()
}

// AppliesTo 商品、用户范围匹配
func (c *Coupon) AppliesTo(productID uint, userID *uint) bool {
	if c.ProductID != nil && *c.ProductID != productID {
		return false
	}
	if c.UserID != nil && (userID == nil || *c.UserID != *userID) {
		return false
	}
	return true
}
