package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusAvailable   = "available"
	StatusUnavailable = "unavailable"
)

// Product 图书
type Product struct {
	ProductID     uint            `gorm:"column:product_id;primaryKey" json:"product_id"`
	Name          string          `gorm:"column:name" json:"name"`
	Description   string          `gorm:"column:description" json:"description"`
	Author        string          `gorm:"column:author" json:"author"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(10,2)" json:"price"`
	ImageURL      string          `gorm:"column:image_url" json:"image_url"`
	StockQuantity int             `gorm:"column:stock_quantity" json:"stock_quantity"`
	Status        string          `gorm:"column:status;default:available" json:"status"`
	CategoryID    *uint           `gorm:"column:category_id" json:"category_id"`
	DateAdded     time.Time       `gorm:"column:date_added;autoCreateTime" json:"date_added"`
}

func (Product) TableName() string { return "products" }

// ProductView 带分类名与折扣信息的商品
type ProductView struct {
	Product
	CategoryName    *string          `gorm:"column:category_name" json:"category_name"`
	DiscountType    *string          `gorm:"-" json:"discount_type"`
	DiscountValue   decimal.Decimal  `gorm:"-" json:"discount_value"`
	DiscountedPrice *decimal.Decimal `gorm:"-" json:"discounted_price"`
}
