package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending  = "pending"
	StatusPaid     = "paid"
	StatusFailed   = "failed"
	StatusRefunded = "refunded"

	ChannelAlipay = "alipay"
	ChannelWechat = "wechat"
)

// ValidStatus 支付状态是否合法
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusPaid, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// Payment 订单的一次支付记录，一个订单可以有多笔
type Payment struct {
	PaymentID         uint            `gorm:"column:payment_id;primaryKey" json:"payment_id"`
	OrderID           uint            `gorm:"column:order_id" json:"order_id"`
	PaymentAmount     decimal.Decimal `gorm:"column:payment_amount;type:numeric(10,2)" json:"payment_amount"`
	PaymentStatus     string          `gorm:"column:payment_status" json:"payment_status"`
	PaymentDate       time.Time       `gorm:"column:payment_date" json:"payment_date"`
	TransactionNumber *string         `gorm:"column:transaction_number" json:"transaction_number"`
}

func (Payment) TableName() string { return "payments" }

// PaymentView 带订单摘要
type PaymentView struct {
	Payment
	UserID      *uint               `gorm:"column:user_id" json:"user_id"`
	OrderTotal  decimal.NullDecimal `gorm:"column:order_total" json:"order_total"`
	OrderStatus *string             `gorm:"column:order_status" json:"order_status"`
	Email       *string             `gorm:"column:email" json:"email"`
	FirstName   *string             `gorm:"column:first_name" json:"first_name"`
	LastName    *string             `gorm:"column:last_name" json:"last_name"`
}
