package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookstore_api/internal/domain/order/model"
	"bookstore_api/internal/domain/pricing"
	productModel "bookstore_api/internal/domain/product/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateWithItems(ctx context.Context, order *model.Order, items []model.OrderItem) error {
	args := m.Called(ctx, order, items)
	if args.Error(0) == nil {
		order.OrderID = 101
	}
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, orderID uint, status string) error {
	return m.Called(ctx, orderID, status).Error(0)
}

func (m *MockOrderRepository) GetView(ctx context.Context, orderID uint) (*model.OrderView, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderView), args.Error(1)
}

func (m *MockOrderRepository) ListViews(ctx context.Context, userID *uint) ([]model.OrderView, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.OrderView), args.Error(1)
}

type MockProductLookup struct {
	mock.Mock
}

func (m *MockProductLookup) GetByIDs(ctx context.Context, ids []uint) (map[uint]productModel.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[uint]productModel.Product), args.Error(1)
}

type MockPriceResolver struct {
	mock.Mock
}

func (m *MockPriceResolver) ResolveMany(ctx context.Context, items []pricing.Item, userID *uint) (map[uint]pricing.Quote, error) {
	args := m.Called(ctx, items, userID)
	return args.Get(0).(map[uint]pricing.Quote), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyOrderStatus(userID, orderID uint, status string) {
	m.Called(userID, orderID, status)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

type fixture struct {
	repo     *MockOrderRepository
	products *MockProductLookup
	resolver *MockPriceResolver
	notifier *MockNotifier
	svc      OrderService
}

func newFixture() *fixture {
	f := &fixture{
		repo:     new(MockOrderRepository),
		products: new(MockProductLookup),
		resolver: new(MockPriceResolver),
		notifier: new(MockNotifier),
	}
	f.svc = NewOrderService(f.repo, f.products, f.resolver, f.notifier, Options{TotalTolerance: dec("0.01")})
	f.svc.(*orderService).now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return f
}

// 商品 A 100 元两本，商品 B 50 元一本、折后 40 元
func (f *fixture) catalog() {
	f.products.On("GetByIDs", mock.Anything, []uint{1, 2}).Return(map[uint]productModel.Product{
		1: {ProductID: 1, Price: dec("100")},
		2: {ProductID: 2, Price: dec("50")},
	}, nil)
	kind := "fixed_amount"
	f.resolver.On("ResolveMany", mock.Anything, mock.Anything, mock.Anything).Return(map[uint]pricing.Quote{
		1: {ProductID: 1, ListPrice: dec("100"), UnitPrice: dec("100")},
		2: {ProductID: 2, ListPrice: dec("50"), UnitPrice: dec("40"), DiscountType: &kind, DiscountValue: dec("10")},
	}, nil)
}

func checkoutInput() CreateOrderInput {
	addr := "Main St 1"
	return CreateOrderInput{
		UserID: 7,
		Items: []ItemInput{
			{ProductID: 1, Quantity: 2, Price: dec("100")},
			{ProductID: 2, Quantity: 1, Price: dec("50"), DiscountedPrice: decPtr("40")},
		},
		TotalAmount:     dec("240"),
		ShippingAddress: &addr,
	}
}

func TestCreateOrderCheckout(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.catalog()

	var savedOrder *model.Order
	var savedItems []model.OrderItem
	f.repo.On("CreateWithItems", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			savedOrder = args.Get(1).(*model.Order)
			savedItems = args.Get(2).([]model.OrderItem)
		}).
		Return(nil)

	addr := "Main St 1"
	f.repo.On("GetView", ctx, uint(101)).Return(&model.OrderView{
		OrderID:         101,
		UserID:          7,
		TotalAmount:     dec("240"),
		OrderStatus:     model.StatusNew,
		DeliveryAddress: &addr,
	}, nil)

	view, err := f.svc.CreateOrder(ctx, checkoutInput())

	require.NoError(t, err)
	assert.Equal(t, model.StatusNew, savedOrder.OrderStatus)
	assert.Equal(t, "240", savedOrder.TotalAmount.String())
	assert.Equal(t, "Main St 1", *savedOrder.DeliveryAddress)

	require.Len(t, savedItems, 2)
	assert.Equal(t, "100", savedItems[0].PriceAtOrder.String())
	assert.Equal(t, "200", savedItems[0].ItemTotal.String())
	assert.Equal(t, "40", savedItems[1].PriceAtOrder.String())
	assert.Equal(t, "40", savedItems[1].ItemTotal.String())

	assert.Equal(t, "pending", view.Status)
	assert.Equal(t, "new", view.OrderStatus)
	assert.Equal(t, "Main St 1", *view.ShippingAddress)
}

func TestCreateOrderRecomputesTotal(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.catalog()

	var savedOrder *model.Order
	f.repo.On("CreateWithItems", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { savedOrder = args.Get(1).(*model.Order) }).
		Return(nil)
	f.repo.On("GetView", ctx, uint(101)).Return(&model.OrderView{OrderID: 101, OrderStatus: model.StatusNew}, nil)

	in := checkoutInput()
	in.TotalAmount = dec("999")

	_, err := f.svc.CreateOrder(ctx, in)

	require.NoError(t, err)
	assert.Equal(t, "240", savedOrder.TotalAmount.String())
}

func TestCreateOrderValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(in *CreateOrderInput)
		want   error
	}{
		{"No items", func(in *CreateOrderInput) { in.Items = nil }, ErrOrderItemsEmpty},
		{"No user", func(in *CreateOrderInput) { in.UserID = 0 }, ErrOrderItemsEmpty},
		{"Zero total", func(in *CreateOrderInput) { in.TotalAmount = decimal.Zero }, ErrOrderTotalInvalid},
		{"Negative total", func(in *CreateOrderInput) { in.TotalAmount = dec("-1") }, ErrOrderTotalInvalid},
		{"Missing product", func(in *CreateOrderInput) { in.Items[1].ProductID = 0 }, ErrOrderItemInvalid},
		{"Missing quantity", func(in *CreateOrderInput) { in.Items[0].Quantity = 0 }, ErrOrderItemInvalid},
		{"Missing price", func(in *CreateOrderInput) { in.Items[0].Price = decimal.Zero }, ErrOrderItemInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			in := checkoutInput()
			tt.mutate(&in)

			_, err := f.svc.CreateOrder(ctx, in)

			assert.ErrorIs(t, err, tt.want)
			f.repo.AssertNotCalled(t, "CreateWithItems", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.products.On("GetByIDs", ctx, []uint{1, 2}).Return(map[uint]productModel.Product{
		1: {ProductID: 1, Price: dec("100")},
	}, nil)

	_, err := f.svc.CreateOrder(ctx, checkoutInput())

	assert.ErrorIs(t, err, ErrProductNotFound)
	f.repo.AssertNotCalled(t, "CreateWithItems", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrderRejectsSelfGrantedDiscount(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.catalog()

	in := checkoutInput()
	in.Items[0].DiscountedPrice = decPtr("1")

	_, err := f.svc.CreateOrder(ctx, in)

	assert.ErrorIs(t, err, ErrOrderPriceMismatch)
	f.repo.AssertNotCalled(t, "CreateWithItems", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrderTransactionFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.catalog()
	f.repo.On("CreateWithItems", ctx, mock.Anything, mock.Anything).Return(errors.New("deadlock detected"))

	_, err := f.svc.CreateOrder(ctx, checkoutInput())

	require.Error(t, err)
	f.repo.AssertNotCalled(t, "GetView", mock.Anything, mock.Anything)
}

func TestItemFinalPrice(t *testing.T) {
	assert.Equal(t, "40", ItemInput{Price: dec("50"), DiscountedPrice: decPtr("40")}.FinalPrice().String())
	assert.Equal(t, "50", ItemInput{Price: dec("50"), DiscountedPrice: decPtr("60")}.FinalPrice().String())
	assert.Equal(t, "10.01", ItemInput{Price: dec("10.005")}.FinalPrice().String())
	assert.Equal(t, "50", ItemInput{Price: dec("50"), DiscountedPrice: decPtr("0")}.FinalPrice().String())
	assert.Equal(t, "50", ItemInput{Price: dec("50")}.FinalPrice().String())
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Maps pending to new and notifies", func(t *testing.T) {
		f := newFixture()
		f.repo.On("UpdateStatus", ctx, uint(5), "new").Return(nil)
		f.repo.On("GetView", ctx, uint(5)).Return(&model.OrderView{OrderID: 5, UserID: 7, OrderStatus: "new"}, nil)
		f.notifier.On("NotifyOrderStatus", uint(7), uint(5), "pending").Return()

		view, err := f.svc.UpdateStatus(ctx, 5, "pending")

		require.NoError(t, err)
		assert.Equal(t, "pending", view.Status)
		f.notifier.AssertExpectations(t)
	})

	t.Run("Unknown status", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.UpdateStatus(ctx, 5, "lost")

		assert.ErrorIs(t, err, ErrOrderStatusInvalid)
		f.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Missing order", func(t *testing.T) {
		f := newFixture()
		f.repo.On("UpdateStatus", ctx, uint(9), "shipped").Return(gorm.ErrRecordNotFound)

		_, err := f.svc.UpdateStatus(ctx, 9, "shipped")

		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestListOrdersReconciles(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uid := uint(7)
	f.repo.On("ListViews", ctx, &uid).Return([]model.OrderView{
		{OrderID: 2, OrderStatus: "shipped"},
		{OrderID: 1, OrderStatus: "new"},
	}, nil)

	views, err := f.svc.ListOrders(ctx, &uid)

	require.NoError(t, err)
	assert.Equal(t, "shipped", views[0].Status)
	assert.Equal(t, "pending", views[1].Status)
}
