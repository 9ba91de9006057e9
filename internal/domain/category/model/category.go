package model

// Category 图书分类
type Category struct {
	CategoryID   uint   `gorm:"column:category_id;primaryKey" json:"category_id"`
	CategoryName string `gorm:"column:category_name;uniqueIndex" json:"category_name"`
	Description  string `gorm:"column:description" json:"description"`
	DisplayOrder int    `gorm:"column:display_order" json:"display_order"`
}

func (Category) TableName() string { return "categories" }
