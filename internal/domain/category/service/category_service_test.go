package service

import (
	"context"
	"testing"

	"bookstore_api/internal/domain/category/model"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id uint) (*model.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *model.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockCategoryRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func TestCategoryService(t *testing.T) {
	ctx := context.Background()

	t.Run("Create requires name", func(t *testing.T) {
		svc := NewCategoryService(new(MockCategoryRepository))
		blank := "  "
		_, err := svc.Create(ctx, CategoryInput{CategoryName: &blank})
		assert.ErrorIs(t, err, ErrNameRequired)
	})

	t.Run("Duplicate name is conflict", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		svc := NewCategoryService(repo)
		name := "Fiction"
		repo.On("Create", ctx, mock.Anything).Return(&pgconn.PgError{Code: "23505"})

		_, err := svc.Create(ctx, CategoryInput{CategoryName: &name})
		assert.ErrorIs(t, err, ErrCategoryExists)
	})

	t.Run("Delete referenced category", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		svc := NewCategoryService(repo)
		repo.On("Delete", ctx, uint(3)).Return(&pgconn.PgError{Code: "23503"})

		assert.ErrorIs(t, svc.Delete(ctx, 3), ErrCategoryInUse)
	})

	t.Run("Get missing", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		svc := NewCategoryService(repo)
		repo.On("GetByID", ctx, uint(8)).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Get(ctx, 8)
		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})
}
