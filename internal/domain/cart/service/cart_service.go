package service

import (
	"context"
	"errors"

	"bookstore_api/internal/domain/cart/model"
	"bookstore_api/internal/domain/cart/repository"
	"bookstore_api/internal/domain/pricing"
	"bookstore_api/pkg/database"
	"bookstore_api/pkg/errs"

	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound = errs.NotFound(errs.ErrCartItemNotFound, "cart item not found")
	ErrQuantityInvalid  = errs.Validation(errs.ErrQuantityInvalid, "quantity must be at least 1")
	ErrProductNotFound  = errs.NotFound(errs.ErrProductNotFound, "product not found")
)

// PriceResolver 商品定价
type PriceResolver interface {
	ResolveMany(ctx context.Context, items []pricing.Item, userID *uint) (map[uint]pricing.Quote, error)
}

type CartService interface {
	AddItem(ctx context.Context, userID, productID uint, quantity int) (*model.CartEntry, bool, error)
	SetQuantity(ctx context.Context, cartID uint, quantity int) (*model.CartEntry, error)
	RemoveItem(ctx context.Context, cartID uint) error
	Clear(ctx context.Context, userID uint) error
	ListItems(ctx context.Context, userID uint) ([]model.CartItem, error)
	Get(ctx context.Context, cartID uint) (*model.CartEntry, error)
}

type cartService struct {
	repo     repository.CartRepository
	resolver PriceResolver
}

func NewCartService(repo repository.CartRepository, resolver PriceResolver) CartService {
	return &cartService{repo: repo, resolver: resolver}
}

// AddItem 同一商品重复加入时数量累加，第二个返回值表示是否新建条目
func (s *cartService) AddItem(ctx context.Context, userID, productID uint, quantity int) (*model.CartEntry, bool, error) {
	if quantity < 1 {
		return nil, false, ErrQuantityInvalid
	}

	entry, inserted, err := s.repo.Upsert(ctx, userID, productID, quantity)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, false, ErrProductNotFound.WithParam("product_id", productID)
		}
		return nil, false, err
	}
	return entry, inserted, nil
}

// SetQuantity 数量小于 1 视为错误而不是删除
func (s *cartService) SetQuantity(ctx context.Context, cartID uint, quantity int) (*model.CartEntry, error) {
	if quantity < 1 {
		return nil, ErrQuantityInvalid
	}
	entry, err := s.repo.SetQuantity(ctx, cartID, quantity)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCartItemNotFound
	}
	return entry, err
}

func (s *cartService) RemoveItem(ctx context.Context, cartID uint) error {
	err := s.repo.Delete(ctx, cartID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCartItemNotFound
	}
	return err
}

func (s *cartService) Clear(ctx context.Context, userID uint) error {
	_, err := s.repo.ClearByUser(ctx, userID)
	return err
}

func (s *cartService) Get(ctx context.Context, cartID uint) (*model.CartEntry, error) {
	entry, err := s.repo.GetByID(ctx, cartID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCartItemNotFound
	}
	return entry, err
}

// ListItems 每一项带上服务端计算的折扣，客户端不再自行计算
func (s *cartService) ListItems(ctx context.Context, userID uint) ([]model.CartItem, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	priceItems := make([]pricing.Item, len(items))
	for i, it := range items {
		priceItems[i] = pricing.Item{ProductID: it.ProductID, Price: it.Price}
	}
	quotes, err := s.resolver.ResolveMany(ctx, priceItems, &userID)
	if err != nil {
		return nil, err
	}

	for i := range items {
		q := quotes[items[i].ProductID]
		items[i].DiscountType = q.DiscountType
		items[i].DiscountValue = q.DiscountValue
		items[i].DiscountedPrice = q.DiscountedPrice()
	}
	return items, nil
}
