package model

import (
	"time"

	"bookstore_api/pkg/errs"

	"github.com/shopspring/decimal"
)

var ErrOrderItemInvalid = errs.Validation(errs.ErrOrderItemInvalid, "order item requires product_id, quantity and price")

// Order 订单头，创建后金额不再变化
type Order struct {
	OrderID         uint            `gorm:"column:order_id;primaryKey" json:"order_id"`
	UserID          uint            `gorm:"column:user_id" json:"user_id"`
	TotalAmount     decimal.Decimal `gorm:"column:total_amount;type:numeric(10,2)" json:"total_amount"`
	OrderDate       time.Time       `gorm:"column:order_date" json:"order_date"`
	OrderStatus     string          `gorm:"column:order_status" json:"order_status"`
	DeliveryAddress *string         `gorm:"column:delivery_address" json:"delivery_address"`
	OrderComment    *string         `gorm:"column:order_comment" json:"order_comment"`
}

func (Order) TableName() string { return "orders" }

// OrderItem 下单时的价格快照
type OrderItem struct {
	OrderItemID  uint            `gorm:"column:order_item_id;primaryKey" json:"order_item_id"`
	OrderID      uint            `gorm:"column:order_id" json:"order_id"`
	ProductID    uint            `gorm:"column:product_id" json:"product_id"`
	Quantity     int             `gorm:"column:quantity" json:"quantity"`
	PriceAtOrder decimal.Decimal `gorm:"column:price_at_order;type:numeric(10,2)" json:"price_at_order"`
	ItemTotal    decimal.Decimal `gorm:"column:item_total;type:numeric(10,2)" json:"item_total"`
}

func (OrderItem) TableName() string { return "order_items" }

// Validate item_total 必须等于 price_at_order * quantity
func (i OrderItem) Validate() error {
	if i.ProductID == 0 || i.Quantity < 1 || !i.PriceAtOrder.IsPositive() {
		return ErrOrderItemInvalid
	}
	if !i.ItemTotal.Equal(i.PriceAtOrder.Mul(decimal.NewFromInt(int64(i.Quantity)))) {
		return ErrOrderItemInvalid
	}
	return nil
}

// NewOrderItem 按单价和数量生成条目
func NewOrderItem(productID uint, quantity int, price decimal.Decimal) OrderItem {
	return OrderItem{
		ProductID:    productID,
		Quantity:     quantity,
		PriceAtOrder: price,
		ItemTotal:    price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}
