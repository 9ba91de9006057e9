package repository

import (
	"context"

	"bookstore_api/internal/domain/cart/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	// Upsert 不存在则插入，存在则数量累加；inserted 表示是否新建
	Upsert(ctx context.Context, userID, productID uint, quantity int) (entry *model.CartEntry, inserted bool, err error)
	GetByID(ctx context.Context, cartID uint) (*model.CartEntry, error)
	SetQuantity(ctx context.Context, cartID uint, quantity int) (*model.CartEntry, error)
	Delete(ctx context.Context, cartID uint) error
	ClearByUser(ctx context.Context, userID uint) (int64, error)
	ListByUser(ctx context.Context, userID uint) ([]model.CartItem, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

const upsertSQL = `INSERT INTO cart (user_id, product_id, quantity, date_added)
VALUES (?, ?, ?, NOW())
ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = cart.quantity + EXCLUDED.quantity
RETURNING cart_id, user_id, product_id, quantity, date_added, (xmax = 0) AS inserted`

type upsertRow struct {
	model.CartEntry
	Inserted bool `gorm:"column:inserted"`
}

func (r *cartRepository) Upsert(ctx context.Context, userID, productID uint, quantity int) (*model.CartEntry, bool, error) {
	var row upsertRow
	if err := r.db.WithContext(ctx).Raw(upsertSQL, userID, productID, quantity).Scan(&row).Error; err != nil {
		return nil, false, err
	}
	return &row.CartEntry, row.Inserted, nil
}

func (r *cartRepository) GetByID(ctx context.Context, cartID uint) (*model.CartEntry, error) {
	var entry model.CartEntry
	if err := r.db.WithContext(ctx).First(&entry, "cart_id = ?", cartID).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *cartRepository) SetQuantity(ctx context.Context, cartID uint, quantity int) (*model.CartEntry, error) {
	var entry model.CartEntry
	result := r.db.WithContext(ctx).Model(&entry).
		Clauses(clause.Returning{}).
		Where("cart_id = ?", cartID).
		Update("quantity", quantity)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &entry, nil
}

func (r *cartRepository) Delete(ctx context.Context, cartID uint) error {
	result := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&model.CartEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *cartRepository) ClearByUser(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.CartEntry{})
	return result.RowsAffected, result.Error
}

// ListByUser 最近加入的在前
func (r *cartRepository) ListByUser(ctx context.Context, userID uint) ([]model.CartItem, error) {
	var items []model.CartItem
	err := r.db.WithContext(ctx).
		Table("cart ci").
		Select("ci.cart_id, ci.user_id, ci.product_id, ci.quantity, ci.date_added, p.name, p.author, p.price, p.image_url, p.stock_quantity, p.status").
		Joins("JOIN products p ON p.product_id = ci.product_id").
		Where("ci.user_id = ?", userID).
		Order("ci.date_added DESC, ci.cart_id DESC").
		Scan(&items).Error
	return items, err
}
