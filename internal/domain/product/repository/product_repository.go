package repository

import (
	"context"

	"bookstore_api/internal/domain/product/model"

	"gorm.io/gorm"
)

// Filter 列表筛选
type Filter struct {
	CategoryIDs []uint
	Status      string
}

type ProductRepository interface {
	List(ctx context.Context, filter Filter) ([]model.ProductView, error)
	GetByID(ctx context.Context, id uint) (*model.ProductView, error)
	GetByIDs(ctx context.Context, ids []uint) (map[uint]model.Product, error)
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) viewQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("products p").
		Select("p.*, c.category_name").
		Joins("LEFT JOIN categories c ON c.category_id = p.category_id")
}

// List 新上架在前
func (r *productRepository) List(ctx context.Context, filter Filter) ([]model.ProductView, error) {
	q := r.viewQuery(ctx)
	if len(filter.CategoryIDs) > 0 {
		q = q.Where("p.category_id IN ?", filter.CategoryIDs)
	}
	if filter.Status != "" {
		q = q.Where("p.status = ?", filter.Status)
	}

	var products []model.ProductView
	err := q.Order("p.date_added DESC, p.product_id DESC").Scan(&products).Error
	return products, err
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*model.ProductView, error) {
	var products []model.ProductView
	if err := r.viewQuery(ctx).Where("p.product_id = ?", id).Limit(1).Scan(&products).Error; err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &products[0], nil
}

// GetByIDs 批量取商品，缺失的 ID 不在结果中
func (r *productRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]model.Product, error) {
	out := make(map[uint]model.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []model.Product
	if err := r.db.WithContext(ctx).Where("product_id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ProductID] = p
	}
	return out, nil
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&model.Product{}).Where("product_id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Where("product_id = ?", id).Delete(&model.Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
