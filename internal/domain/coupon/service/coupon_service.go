package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"bookstore_api/internal/domain/coupon/model"
	"bookstore_api/internal/domain/coupon/repository"
	"bookstore_api/pkg/database"
	"bookstore_api/pkg/errs"
	baseModel "bookstore_api/pkg/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrCouponNotFound     = errs.NotFound(errs.ErrCouponNotFound, "coupon not found")
	ErrCouponCodeExists   = errs.Conflict(errs.ErrCouponCodeExists, "coupon code already exists")
	ErrCouponInvalid      = errs.Validation(errs.ErrCouponInvalid, "coupon is not currently valid")
	ErrCouponDiscountType = errs.Validation(errs.ErrCouponDiscountType, "discount_type must be percentage or fixed_amount")
	ErrCouponValue        = errs.Validation(errs.ErrInvalidParam, "discount_value is out of range")
	ErrCouponWindow       = errs.Validation(errs.ErrInvalidParam, "start_date must not be after end_date")
	ErrCouponStatus       = errs.Validation(errs.ErrInvalidParam, "status must be active or inactive")
	ErrCouponCodeRequired = errs.Validation(errs.ErrInvalidParam, "coupon_code is required")
)

// CouponInput 创建和部分更新共用
type CouponInput struct {
	CouponCode    *string          `json:"coupon_code"`
	DiscountType  *string          `json:"discount_type"`
	DiscountValue *decimal.Decimal `json:"discount_value"`
	StartDate     *baseModel.Date  `json:"start_date"`
	EndDate       *baseModel.Date  `json:"end_date"`
	Status        *string          `json:"status"`
	UserID        *uint            `json:"user_id"`
	ProductID     *uint            `json:"product_id"`
}

type CouponService interface {
	List(ctx context.Context, filter repository.Filter) ([]model.Coupon, error)
	Get(ctx context.Context, id uint) (*model.Coupon, error)
	GetValidByCode(ctx context.Context, code string) (*model.Coupon, error)
	Create(ctx context.Context, in CouponInput) (*model.Coupon, error)
	Update(ctx context.Context, id uint, in CouponInput) (*model.Coupon, error)
	Delete(ctx context.Context, id uint) error
}

type couponService struct {
	repo repository.CouponRepository
	now  func() time.Time
}

func NewCouponService(repo repository.CouponRepository) CouponService {
	return &couponService{repo: repo, now: time.Now}
}

func (s *couponService) List(ctx context.Context, filter repository.Filter) ([]model.Coupon, error) {
	return s.repo.List(ctx, filter)
}

func (s *couponService) Get(ctx context.Context, id uint) (*model.Coupon, error) {
	coupon, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCouponNotFound
	}
	return coupon, err
}

// GetValidByCode 结算页输入券码时校验
func (s *couponService) GetValidByCode(ctx context.Context, code string) (*model.Coupon, error) {
	coupon, err := s.repo.GetByCode(ctx, strings.TrimSpace(code))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, err
	}
	if !coupon.ActiveOn(s.now()) {
		return nil, ErrCouponInvalid.WithParam("coupon_code", coupon.CouponCode)
	}
	return coupon, nil
}

func (s *couponService) Create(ctx context.Context, in CouponInput) (*model.Coupon, error) {
	if in.CouponCode == nil || strings.TrimSpace(*in.CouponCode) == "" {
		return nil, ErrCouponCodeRequired
	}
	if in.DiscountType == nil || in.DiscountValue == nil || in.StartDate == nil || in.EndDate == nil {
		return nil, errs.Validation(errs.ErrInvalidParam, "discount_type, discount_value, start_date and end_date are required")
	}

	coupon := &model.Coupon{
		CouponCode:    strings.TrimSpace(*in.CouponCode),
		DiscountType:  *in.DiscountType,
		DiscountValue: *in.DiscountValue,
		StartDate:     *in.StartDate,
		EndDate:       *in.EndDate,
		Status:        model.StatusActive,
		UserID:        in.UserID,
		ProductID:     in.ProductID,
	}
	if in.Status != nil {
		coupon.Status = *in.Status
	}
	if err := validate(coupon); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, translate(err)
	}
	return coupon, nil
}

func (s *couponService) Update(ctx context.Context, id uint, in CouponInput) (*model.Coupon, error) {
	coupon, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if in.CouponCode != nil {
		coupon.CouponCode = strings.TrimSpace(*in.CouponCode)
		fields["coupon_code"] = coupon.CouponCode
	}
	if in.DiscountType != nil {
		coupon.DiscountType = *in.DiscountType
		fields["discount_type"] = coupon.DiscountType
	}
	if in.DiscountValue != nil {
		coupon.DiscountValue = *in.DiscountValue
		fields["discount_value"] = coupon.DiscountValue
	}
	if in.StartDate != nil {
		coupon.StartDate = *in.StartDate
		fields["start_date"] = coupon.StartDate
	}
	if in.EndDate != nil {
		coupon.EndDate = *in.EndDate
		fields["end_date"] = coupon.EndDate
	}
	if in.Status != nil {
		coupon.Status = *in.Status
		fields["status"] = coupon.Status
	}
	if in.UserID != nil {
		coupon.UserID = in.UserID
		fields["user_id"] = *in.UserID
	}
	if in.ProductID != nil {
		coupon.ProductID = in.ProductID
		fields["product_id"] = *in.ProductID
	}

	// 合并后整体校验
	if err := validate(coupon); err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := s.repo.Update(ctx, id, fields); err != nil {
			return nil, translate(err)
		}
	}
	return coupon, nil
}

func (s *couponService) Delete(ctx context.Context, id uint) error {
	return translate(s.repo.Delete(ctx, id))
}

func validate(c *model.Coupon) error {
	if c.CouponCode == "" {
		return ErrCouponCodeRequired
	}
	if !model.ValidDiscountType(c.DiscountType) {
		return ErrCouponDiscountType.WithParam("discount_type", c.DiscountType)
	}
	if !c.DiscountValue.IsPositive() {
		return ErrCouponValue
	}
	if c.DiscountType == model.DiscountPercentage && c.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return ErrCouponValue
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() || c.StartDate.After(c.EndDate.Time) {
		return ErrCouponWindow
	}
	if c.Status != model.StatusActive && c.Status != model.StatusInactive {
		return ErrCouponStatus
	}
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrCouponNotFound
	case database.IsUniqueViolation(err):
		return ErrCouponCodeExists
	case database.IsForeignKeyViolation(err):
		return errs.Validation(errs.ErrInvalidParam, "referenced user or product does not exist")
	default:
		return err
	}
}
