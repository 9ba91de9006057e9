package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderView 订单读模型：用户信息、最近一笔支付和条目
type OrderView struct {
	OrderID         uint            `db:"order_id" json:"order_id"`
	UserID          uint            `db:"user_id" json:"user_id"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
	OrderDate       time.Time       `db:"order_date" json:"order_date"`
	OrderStatus     string          `db:"order_status" json:"order_status"`
	Status          string          `db:"-" json:"status"`
	DeliveryAddress *string         `db:"delivery_address" json:"delivery_address"`
	ShippingAddress *string         `db:"-" json:"shipping_address"`
	OrderComment    *string         `db:"order_comment" json:"order_comment"`

	FirstName *string `db:"first_name" json:"first_name"`
	LastName  *string `db:"last_name" json:"last_name"`
	Email     *string `db:"email" json:"email"`

	PaymentStatus     *string             `db:"payment_status" json:"payment_status"`
	TransactionNumber *string             `db:"transaction_number" json:"transaction_number"`
	PaymentAmount     decimal.NullDecimal `db:"payment_amount" json:"payment_amount"`

	Items []OrderItemView `db:"-" json:"items"`
}

// OrderItemView price 与 price_at_order 相同
type OrderItemView struct {
	OrderItemID   uint            `db:"order_item_id" json:"order_item_id"`
	OrderID       uint            `db:"order_id" json:"-"`
	ProductID     uint            `db:"product_id" json:"product_id"`
	Quantity      int             `db:"quantity" json:"quantity"`
	Price         decimal.Decimal `db:"price" json:"price"`
	PriceAtOrder  decimal.Decimal `db:"price_at_order" json:"price_at_order"`
	ItemTotal     decimal.Decimal `db:"item_total" json:"item_total"`
	ProductName   *string         `db:"product_name" json:"product_name"`
	ProductAuthor *string         `db:"product_author" json:"product_author"`
}

// Reconcile 填充对外状态和 shipping_address，所有读路径返回前调用
func (v *OrderView) Reconcile() {
	v.Status = ToPresentation(v.OrderStatus)
	v.ShippingAddress = v.DeliveryAddress
	if v.Items == nil {
		v.Items = []OrderItemView{}
	}
}
