package service

import (
	"context"
	"errors"
	"strings"

	"bookstore_api/internal/domain/category/model"
	"bookstore_api/internal/domain/category/repository"
	"bookstore_api/pkg/database"
	"bookstore_api/pkg/errs"

	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errs.NotFound(errs.ErrCategoryNotFound, "category not found")
	ErrCategoryExists   = errs.Conflict(errs.ErrCategoryExists, "category name already exists")
	ErrCategoryInUse    = errs.Conflict(errs.ErrCategoryInUse, "category still has products")
	ErrNameRequired     = errs.Validation(errs.ErrInvalidParam, "category_name is required")
)

type CategoryInput struct {
	CategoryName *string `json:"category_name"`
	Description  *string `json:"description"`
	DisplayOrder *int    `json:"display_order"`
}

type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
	Get(ctx context.Context, id uint) (*model.Category, error)
	Create(ctx context.Context, in CategoryInput) (*model.Category, error)
	Update(ctx context.Context, id uint, in CategoryInput) (*model.Category, error)
	Delete(ctx context.Context, id uint) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.repo.List(ctx)
}

func (s *categoryService) Get(ctx context.Context, id uint) (*model.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}
	return category, err
}

func (s *categoryService) Create(ctx context.Context, in CategoryInput) (*model.Category, error) {
	if in.CategoryName == nil || strings.TrimSpace(*in.CategoryName) == "" {
		return nil, ErrNameRequired
	}
	category := &model.Category{CategoryName: strings.TrimSpace(*in.CategoryName)}
	if in.Description != nil {
		category.Description = *in.Description
	}
	if in.DisplayOrder != nil {
		category.DisplayOrder = *in.DisplayOrder
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, s.translate(err)
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id uint, in CategoryInput) (*model.Category, error) {
	fields := make(map[string]interface{})
	if in.CategoryName != nil {
		name := strings.TrimSpace(*in.CategoryName)
		if name == "" {
			return nil, ErrNameRequired
		}
		fields["category_name"] = name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.DisplayOrder != nil {
		fields["display_order"] = *in.DisplayOrder
	}

	if len(fields) > 0 {
		if err := s.repo.Update(ctx, id, fields); err != nil {
			return nil, s.translate(err)
		}
	}
	return s.Get(ctx, id)
}

func (s *categoryService) Delete(ctx context.Context, id uint) error {
	return s.translate(s.repo.Delete(ctx, id))
}

func (s *categoryService) translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrCategoryNotFound
	case database.IsUniqueViolation(err):
		return ErrCategoryExists
	case database.IsForeignKeyViolation(err):
		return ErrCategoryInUse
	default:
		return err
	}
}
