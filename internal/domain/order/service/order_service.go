package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookstore_api/internal/domain/order/model"
	"bookstore_api/internal/domain/order/repository"
	"bookstore_api/internal/domain/pricing"
	productModel "bookstore_api/internal/domain/product/model"
	"bookstore_api/pkg/errs"
	"bookstore_api/pkg/logger"
	"bookstore_api/pkg/metrics"
	baseModel "bookstore_api/pkg/model"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound      = errs.NotFound(errs.ErrOrderNotFound, "order not found")
	ErrOrderItemsEmpty    = errs.Validation(errs.ErrOrderItemsEmpty, "user_id and items are required")
	ErrOrderTotalInvalid  = errs.Validation(errs.ErrOrderTotalInvalid, "total_amount must be positive")
	ErrOrderItemInvalid   = model.ErrOrderItemInvalid
	ErrOrderStatusInvalid = errs.Validation(errs.ErrOrderStatusInvalid, "invalid order status")
	ErrOrderPriceMismatch = errs.Validation(errs.ErrOrderPriceMismatch, "item price is lower than the current price")
	ErrProductNotFound    = errs.NotFound(errs.ErrProductNotFound, "product not found")
)

// ProductLookup 下单时校验商品存在
type ProductLookup interface {
	GetByIDs(ctx context.Context, ids []uint) (map[uint]productModel.Product, error)
}

// PriceResolver 商品定价
type PriceResolver interface {
	ResolveMany(ctx context.Context, items []pricing.Item, userID *uint) (map[uint]pricing.Quote, error)
}

// StatusNotifier 订单状态变更通知，异步投递
type StatusNotifier interface {
	NotifyOrderStatus(userID, orderID uint, status string)
}

type ItemInput struct {
	ProductID       uint             `json:"product_id"`
	Quantity        int              `json:"quantity"`
	Price           decimal.Decimal  `json:"price"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price"`
}

// FinalPrice 提交的折后价低于原价时取折后价
func (in ItemInput) FinalPrice() decimal.Decimal {
	if in.DiscountedPrice != nil && in.DiscountedPrice.IsPositive() && in.DiscountedPrice.LessThan(in.Price) {
		return baseModel.Money(*in.DiscountedPrice)
	}
	return baseModel.Money(in.Price)
}

type CreateOrderInput struct {
	UserID          uint            `json:"user_id"`
	Items           []ItemInput     `json:"items"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ShippingAddress *string         `json:"shipping_address"`
	Comment         *string         `json:"order_comment"`
}

type Options struct {
	// 客户端总价与服务端总价允许的误差
	TotalTolerance decimal.Decimal
}

type OrderService interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*model.OrderView, error)
	GetOrder(ctx context.Context, orderID uint) (*model.OrderView, error)
	ListOrders(ctx context.Context, userID *uint) ([]model.OrderView, error)
	UpdateStatus(ctx context.Context, orderID uint, status string) (*model.OrderView, error)
}

type orderService struct {
	repo      repository.OrderRepository
	products  ProductLookup
	resolver  PriceResolver
	notifier  StatusNotifier
	collector *metrics.MetricsCollector
	opts      Options
	now       func() time.Time
}

// NewOrderService notifier 可以为 nil
func NewOrderService(repo repository.OrderRepository, products ProductLookup, resolver PriceResolver, notifier StatusNotifier, opts Options) OrderService {
	return &orderService{
		repo:      repo,
		products:  products,
		resolver:  resolver,
		notifier:  notifier,
		collector: metrics.GetGlobalCollector(),
		opts:      opts,
		now:       time.Now,
	}
}

// CreateOrder 校验条目后在一个事务中写入订单并清空购物车，
// 持久化的总价为服务端按条目计算的结果
func (s *orderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*model.OrderView, error) {
	if in.UserID == 0 || len(in.Items) == 0 {
		return nil, ErrOrderItemsEmpty
	}
	if !in.TotalAmount.IsPositive() {
		return nil, ErrOrderTotalInvalid
	}

	items := make([]model.OrderItem, len(in.Items))
	for i, it := range in.Items {
		if it.ProductID == 0 || it.Quantity < 1 || !it.Price.IsPositive() {
			return nil, ErrOrderItemInvalid.WithParam("index", i)
		}
		items[i] = model.NewOrderItem(it.ProductID, it.Quantity, it.FinalPrice())
	}

	if err := s.checkPrices(ctx, in.UserID, items); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.ItemTotal)
	}
	if total.Sub(in.TotalAmount).Abs().GreaterThan(s.opts.TotalTolerance) {
		s.collector.RecordOrderTotalMismatch()
		logger.Log.Warn("order total mismatch",
			zap.Uint("user_id", in.UserID),
			zap.String("client_total", in.TotalAmount.String()),
			zap.String("server_total", total.String()),
		)
	}

	order := &model.Order{
		UserID:          in.UserID,
		TotalAmount:     total,
		OrderDate:       s.now(),
		OrderStatus:     model.StatusNew,
		DeliveryAddress: in.ShippingAddress,
		OrderComment:    in.Comment,
	}
	if err := s.repo.CreateWithItems(ctx, order, items); err != nil {
		if _, ok := errs.As(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("create order: %w", err)
	}
	s.collector.RecordOrderCreated()

	logger.Log.Info("order created",
		zap.Uint("order_id", order.OrderID),
		zap.Uint("user_id", order.UserID),
		zap.Int("items", len(items)),
		zap.String("total", total.String()),
	)

	return s.GetOrder(ctx, order.OrderID)
}

// checkPrices 商品必须存在，且成交价不低于服务端当前定价
func (s *orderService) checkPrices(ctx context.Context, userID uint, items []model.OrderItem) error {
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}

	priceItems := make([]pricing.Item, 0, len(items))
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			return ErrProductNotFound.WithParam("product_id", it.ProductID)
		}
		priceItems = append(priceItems, pricing.Item{ProductID: p.ProductID, Price: p.Price})
	}

	quotes, err := s.resolver.ResolveMany(ctx, priceItems, &userID)
	if err != nil {
		return err
	}

	for _, it := range items {
		q, ok := quotes[it.ProductID]
		if ok && it.PriceAtOrder.LessThan(q.UnitPrice) {
			return ErrOrderPriceMismatch.
				WithParam("product_id", it.ProductID).
				WithParam("expected", q.UnitPrice.String())
		}
	}
	return nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID uint) (*model.OrderView, error) {
	view, err := s.repo.GetView(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	view.Reconcile()
	return view, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID *uint) ([]model.OrderView, error) {
	views, err := s.repo.ListViews(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range views {
		views[i].Reconcile()
	}
	return views, nil
}

// UpdateStatus status 使用对外的状态词汇
func (s *orderService) UpdateStatus(ctx context.Context, orderID uint, status string) (*model.OrderView, error) {
	stored, ok := model.ToStorage(status)
	if !ok {
		return nil, ErrOrderStatusInvalid.WithParam("status", status)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, stored); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	view, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyOrderStatus(view.UserID, view.OrderID, view.Status)
	}
	return view, nil
}
