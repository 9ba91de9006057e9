package service

import (
	"context"
	"errors"
	"strings"

	"bookstore_api/internal/domain/pricing"
	"bookstore_api/internal/domain/product/model"
	"bookstore_api/internal/domain/product/repository"
	"bookstore_api/pkg/database"
	"bookstore_api/pkg/errs"
	baseModel "bookstore_api/pkg/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errs.NotFound(errs.ErrProductNotFound, "product not found")
	ErrProductInvalid  = errs.Validation(errs.ErrInvalidParam, "name and a non-negative price are required")
	ErrProductStatus   = errs.Validation(errs.ErrInvalidParam, "status must be available or unavailable")
	ErrProductInUse    = errs.Conflict(errs.ErrConflict, "product is referenced by orders")
	ErrCategoryMissing = errs.Validation(errs.ErrCategoryNotFound, "category does not exist")
)

// PriceResolver 商品定价
type PriceResolver interface {
	ResolveMany(ctx context.Context, items []pricing.Item, userID *uint) (map[uint]pricing.Quote, error)
}

type ProductInput struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Author        *string          `json:"author"`
	Price         *decimal.Decimal `json:"price"`
	ImageURL      *string          `json:"image_url"`
	StockQuantity *int             `json:"stock_quantity"`
	Status        *string          `json:"status"`
	CategoryID    *uint            `json:"category_id"`
}

type ProductService interface {
	List(ctx context.Context, filter repository.Filter, userID *uint) ([]model.ProductView, error)
	Get(ctx context.Context, id uint, userID *uint) (*model.ProductView, error)
	Create(ctx context.Context, in ProductInput) (*model.Product, error)
	Update(ctx context.Context, id uint, in ProductInput) (*model.ProductView, error)
	Delete(ctx context.Context, id uint) error
}

type productService struct {
	repo     repository.ProductRepository
	resolver PriceResolver
}

func NewProductService(repo repository.ProductRepository, resolver PriceResolver) ProductService {
	return &productService{repo: repo, resolver: resolver}
}

// List 每个商品附带对该用户当天生效的折扣
func (s *productService) List(ctx context.Context, filter repository.Filter, userID *uint) ([]model.ProductView, error) {
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.applyPricing(ctx, products, userID); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *productService) Get(ctx context.Context, id uint, userID *uint) (*model.ProductView, error) {
	product, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	views := []model.ProductView{*product}
	if err := s.applyPricing(ctx, views, userID); err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *productService) applyPricing(ctx context.Context, products []model.ProductView, userID *uint) error {
	items := make([]pricing.Item, len(products))
	for i, p := range products {
		items[i] = pricing.Item{ProductID: p.ProductID, Price: p.Price}
	}
	quotes, err := s.resolver.ResolveMany(ctx, items, userID)
	if err != nil {
		return err
	}
	for i := range products {
		q := quotes[products[i].ProductID]
		products[i].DiscountType = q.DiscountType
		products[i].DiscountValue = q.DiscountValue
		products[i].DiscountedPrice = q.DiscountedPrice()
	}
	return nil
}

func validStatus(status string) bool {
	return status == model.StatusAvailable || status == model.StatusUnavailable
}

func (s *productService) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" || in.Price == nil || in.Price.IsNegative() {
		return nil, ErrProductInvalid
	}

	product := &model.Product{
		Name:       strings.TrimSpace(*in.Name),
		Price:      baseModel.Money(*in.Price),
		Status:     model.StatusAvailable,
		CategoryID: in.CategoryID,
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Author != nil {
		product.Author = *in.Author
	}
	if in.ImageURL != nil {
		product.ImageURL = *in.ImageURL
	}
	if in.StockQuantity != nil {
		product.StockQuantity = *in.StockQuantity
	}
	if in.Status != nil {
		if !validStatus(*in.Status) {
			return nil, ErrProductStatus
		}
		product.Status = *in.Status
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, translate(err)
	}
	return product, nil
}

func (s *productService) Update(ctx context.Context, id uint, in ProductInput) (*model.ProductView, error) {
	fields := make(map[string]interface{})
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrProductInvalid
		}
		fields["name"] = name
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, ErrProductInvalid
		}
		fields["price"] = baseModel.Money(*in.Price)
	}
	if in.Status != nil {
		if !validStatus(*in.Status) {
			return nil, ErrProductStatus
		}
		fields["status"] = *in.Status
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Author != nil {
		fields["author"] = *in.Author
	}
	if in.ImageURL != nil {
		fields["image_url"] = *in.ImageURL
	}
	if in.StockQuantity != nil {
		fields["stock_quantity"] = *in.StockQuantity
	}
	if in.CategoryID != nil {
		fields["category_id"] = *in.CategoryID
	}

	if len(fields) > 0 {
		if err := s.repo.Update(ctx, id, fields); err != nil {
			return nil, translate(err)
		}
	}
	return s.Get(ctx, id, nil)
}

func (s *productService) Delete(ctx context.Context, id uint) error {
	err := s.repo.Delete(ctx, id)
	if database.IsForeignKeyViolation(err) {
		return ErrProductInUse
	}
	return translate(err)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrProductNotFound
	case database.IsForeignKeyViolation(err):
		return ErrCategoryMissing
	default:
		return err
	}
}
