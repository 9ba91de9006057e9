package repository

import (
	"context"

	"bookstore_api/internal/domain/payment/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository interface {
	// OrderOwner 订单所属用户，订单不存在时返回 gorm.ErrRecordNotFound
	OrderOwner(ctx context.Context, orderID uint) (uint, error)
	Create(ctx context.Context, payment *model.Payment) error
	GetByID(ctx context.Context, paymentID uint) (*model.Payment, error)
	// Update 返回更新后的记录，不存在时返回 gorm.ErrRecordNotFound
	Update(ctx context.Context, paymentID uint, fields map[string]interface{}) (*model.Payment, error)
	GetView(ctx context.Context, paymentID uint) (*model.PaymentView, error)
	List(ctx context.Context, orderID *uint) ([]model.PaymentView, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) OrderOwner(ctx context.Context, orderID uint) (uint, error) {
	var owners []uint
	err := r.db.WithContext(ctx).Table("orders").Where("order_id = ?", orderID).Pluck("user_id", &owners).Error
	if err != nil {
		return 0, err
	}
	if len(owners) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return owners[0], nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) GetByID(ctx context.Context, paymentID uint) (*model.Payment, error) {
	var payment model.Payment
	if err := r.db.WithContext(ctx).First(&payment, "payment_id = ?", paymentID).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) Update(ctx context.Context, paymentID uint, fields map[string]interface{}) (*model.Payment, error) {
	var payment model.Payment
	result := r.db.WithContext(ctx).Model(&payment).
		Clauses(clause.Returning{}).
		Where("payment_id = ?", paymentID).
		Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &payment, nil
}

func (r *paymentRepository) viewQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("payments p").
		Select("p.*, o.user_id, o.total_amount AS order_total, o.order_status, u.email, u.first_name, u.last_name").
		Joins("LEFT JOIN orders o ON o.order_id = p.order_id").
		Joins("LEFT JOIN users u ON u.user_id = o.user_id")
}

func (r *paymentRepository) GetView(ctx context.Context, paymentID uint) (*model.PaymentView, error) {
	var views []model.PaymentView
	if err := r.viewQuery(ctx).Where("p.payment_id = ?", paymentID).Limit(1).Scan(&views).Error; err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &views[0], nil
}

// List 最新的支付在前
func (r *paymentRepository) List(ctx context.Context, orderID *uint) ([]model.PaymentView, error) {
	query := r.viewQuery(ctx)
	if orderID != nil {
		query = query.Where("p.order_id = ?", *orderID)
	}

	views := []model.PaymentView{}
	err := query.Order("p.payment_date DESC, p.payment_id DESC").Scan(&views).Error
	return views, err
}
