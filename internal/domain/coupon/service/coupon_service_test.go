package service

import (
	"context"
	"testing"
	"time"

	"bookstore_api/internal/domain/coupon/model"
	"bookstore_api/internal/domain/coupon/repository"
	"bookstore_api/pkg/errs"
	baseModel "bookstore_api/pkg/model"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	return m.Called(ctx, coupon).Error(0)
}

func (m *MockCouponRepository) GetByID(ctx context.Context, id uint) (*model.Coupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockCouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockCouponRepository) List(ctx context.Context, filter repository.Filter) ([]model.Coupon, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]model.Coupon), args.Error(1)
}

func (m *MockCouponRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *MockCouponRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCouponRepository) FindApplicable(ctx context.Context, productIDs []uint, userID *uint, day time.Time) ([]model.Coupon, error) {
	args := m.Called(ctx, productIDs, userID, day)
	return args.Get(0).([]model.Coupon), args.Error(1)
}

func date(s string) *baseModel.Date {
	d, _ := baseModel.ParseDate(s)
	return &d
}

func str(s string) *string { return &s }

func validInput() CouponInput {
	v := decimal.NewFromInt(15)
	return CouponInput{
		CouponCode:    str("SUMMER15"),
		DiscountType:  str(model.DiscountPercentage),
		DiscountValue: &v,
		StartDate:     date("2024-06-01"),
		EndDate:       date("2024-06-30"),
	}
}

func TestCreateCoupon(t *testing.T) {
	ctx := context.Background()

	t.Run("Success defaults to active", func(t *testing.T) {
		repo := new(MockCouponRepository)
		repo.On("Create", ctx, mock.AnythingOfType("*model.Coupon")).Return(nil)

		coupon, err := NewCouponService(repo).Create(ctx, validInput())

		require.NoError(t, err)
		assert.Equal(t, model.StatusActive, coupon.Status)
		assert.Nil(t, coupon.ProductID)
	})

	t.Run("Bad discount type", func(t *testing.T) {
		in := validInput()
		in.DiscountType = str("bogo")

		_, err := NewCouponService(new(MockCouponRepository)).Create(ctx, in)

		assert.ErrorIs(t, err, ErrCouponDiscountType)
		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	})

	t.Run("Percentage above 100", func(t *testing.T) {
		in := validInput()
		v := decimal.NewFromInt(101)
		in.DiscountValue = &v

		_, err := NewCouponService(new(MockCouponRepository)).Create(ctx, in)
		assert.ErrorIs(t, err, ErrCouponValue)
	})

	t.Run("Inverted window", func(t *testing.T) {
		in := validInput()
		in.StartDate = date("2024-07-01")

		_, err := NewCouponService(new(MockCouponRepository)).Create(ctx, in)
		assert.ErrorIs(t, err, ErrCouponWindow)
	})

	t.Run("Duplicate code", func(t *testing.T) {
		repo := new(MockCouponRepository)
		repo.On("Create", ctx, mock.Anything).Return(&pgconn.PgError{Code: "23505"})

		_, err := NewCouponService(repo).Create(ctx, validInput())

		assert.ErrorIs(t, err, ErrCouponCodeExists)
		assert.Equal(t, errs.KindConflict, errs.KindOf(err))
	})
}

func TestGetValidByCode(t *testing.T) {
	ctx := context.Background()
	coupon := &model.Coupon{
		CouponCode: "SUMMER15",
		Status:     model.StatusActive,
		StartDate:  *date("2024-06-01"),
		EndDate:    *date("2024-06-30"),
	}

	t.Run("Inside window", func(t *testing.T) {
		repo := new(MockCouponRepository)
		repo.On("GetByCode", ctx, "SUMMER15").Return(coupon, nil)
		svc := &couponService{repo: repo, now: func() time.Time { return time.Date(2024, 6, 30, 23, 0, 0, 0, time.UTC) }}

		got, err := svc.GetValidByCode(ctx, " SUMMER15 ")
		require.NoError(t, err)
		assert.Equal(t, "SUMMER15", got.CouponCode)
	})

	t.Run("Expired", func(t *testing.T) {
		repo := new(MockCouponRepository)
		repo.On("GetByCode", ctx, "SUMMER15").Return(coupon, nil)
		svc := &couponService{repo: repo, now: func() time.Time { return time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC) }}

		_, err := svc.GetValidByCode(ctx, "SUMMER15")
		assert.ErrorIs(t, err, ErrCouponInvalid)
	})

	t.Run("Unknown code", func(t *testing.T) {
		repo := new(MockCouponRepository)
		repo.On("GetByCode", ctx, "NOPE").Return(nil, gorm.ErrRecordNotFound)

		_, err := NewCouponService(repo).GetValidByCode(ctx, "NOPE")
		assert.ErrorIs(t, err, ErrCouponNotFound)
	})
}

func TestUpdateCouponValidatesMergedState(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCouponRepository)
	existing := &model.Coupon{
		CouponID:      4,
		CouponCode:    "FLAT5",
		DiscountType:  model.DiscountFixedAmount,
		DiscountValue: decimal.NewFromInt(500),
		StartDate:     *date("2024-06-01"),
		EndDate:       *date("2024-06-30"),
		Status:        model.StatusActive,
	}
	repo.On("GetByID", ctx, uint(4)).Return(existing, nil)

	// 固定金额 500 改为百分比后超出范围
	_, err := NewCouponService(repo).Update(ctx, 4, CouponInput{DiscountType: str(model.DiscountPercentage)})

	assert.ErrorIs(t, err, ErrCouponValue)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}
