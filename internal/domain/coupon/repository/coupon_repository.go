package repository

import (
	"context"
	"time"

	"bookstore_api/internal/domain/coupon/model"
	baseModel "bookstore_api/pkg/model"

	"gorm.io/gorm"
)

// Filter 列表筛选
type Filter struct {
	UserID    *uint
	ProductID *uint
	Status    string
}

type CouponRepository interface {
	Create(ctx context.Context, coupon *model.Coupon) error
	GetByID(ctx context.Context, id uint) (*model.Coupon, error)
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	List(ctx context.Context, filter Filter) ([]model.Coupon, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	FindApplicable(ctx context.Context, productIDs []uint, userID *uint, day time.Time) ([]model.Coupon, error)
}

type couponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *couponRepository) GetByID(ctx context.Context, id uint) (*model.Coupon, error) {
	var coupon model.Coupon
	if err := r.db.WithContext(ctx).First(&coupon, "coupon_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var coupon model.Coupon
	if err := r.db.WithContext(ctx).Where("coupon_code = ?", code).First(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepository) List(ctx context.Context, filter Filter) ([]model.Coupon, error) {
	q := r.db.WithContext(ctx).Model(&model.Coupon{})
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var coupons []model.Coupon
	err := q.Order("start_date DESC, coupon_id DESC").Find(&coupons).Error
	return coupons, err
}

func (r *couponRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&model.Coupon{}).Where("coupon_id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *couponRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Where("coupon_id = ?", id).Delete(&model.Coupon{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindApplicable 查询在 day 当天对任一商品可用的优惠券。
// 匿名用户只能使用不限用户的券。
func (r *couponRepository) FindApplicable(ctx context.Context, productIDs []uint, userID *uint, day time.Time) ([]model.Coupon, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	d := baseModel.NewDate(day).String()

	q := r.db.WithContext(ctx).
		Where("status = ?", model.StatusActive).
		Where("start_date <= ? AND end_date >= ?", d, d).
		Where("(product_id IS NULL OR product_id IN ?)", productIDs)
	if userID != nil {
		q = q.Where("(user_id IS NULL OR user_id = ?)", *userID)
	} else {
		q = q.Where("user_id IS NULL")
	}

	var coupons []model.Coupon
	err := q.Order("coupon_id").Find(&coupons).Error
	return coupons, err
}
