package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartEntry 购物车条目，(user_id, product_id) 唯一
type CartEntry struct {
	CartID    uint      `gorm:"column:cart_id;primaryKey" json:"cart_id"`
	UserID    uint      `gorm:"column:user_id" json:"user_id"`
	ProductID uint      `gorm:"column:product_id" json:"product_id"`
	Quantity  int       `gorm:"column:quantity" json:"quantity"`
	DateAdded time.Time `gorm:"column:date_added" json:"date_added"`
}

func (CartEntry) TableName() string { return "cart" }

// CartItem 列表项，带商品字段与折扣
type CartItem struct {
	CartEntry
	Name            string           `gorm:"column:name" json:"name"`
	Author          string           `gorm:"column:author" json:"author"`
	Price           decimal.Decimal  `gorm:"column:price" json:"price"`
	ImageURL        string           `gorm:"column:image_url" json:"image_url"`
	StockQuantity   int              `gorm:"column:stock_quantity" json:"stock_quantity"`
	Status          string           `gorm:"column:status" json:"status"`
	DiscountType    *string          `gorm:"-" json:"discount_type"`
	DiscountValue   decimal.Decimal  `gorm:"-" json:"discount_value"`
	DiscountedPrice *decimal.Decimal `gorm:"-" json:"discounted_price"`
}
