package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bookstore_api/internal/domain/order/model"
	"bookstore_api/internal/domain/order/service"
	"bookstore_api/internal/pkg/config"
	"bookstore_api/internal/pkg/middleware"
	"bookstore_api/pkg/errs"
	"bookstore_api/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	config.GlobalConfig.JWT.Secret = "0123456789abcdef0123456789abcdef"
	config.GlobalConfig.JWT.Expire = 1
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, in service.CreateOrderInput) (*model.OrderView, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderView), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID uint) (*model.OrderView, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderView), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, userID *uint) ([]model.OrderView, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.OrderView), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, orderID uint, status string) (*model.OrderView, error) {
	args := m.Called(ctx, orderID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderView), args.Error(1)
}

func setupRouter(svc service.OrderService) *gin.Engine {
	h := NewOrderHandler(svc)
	r := gin.New()
	g := r.Group("/orders", middleware.AuthMiddleware())
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", middleware.AdminMiddleware(), h.UpdateStatus)
	return r
}

func send(t *testing.T, r *gin.Engine, method, path, body string, userID uint, role string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	token, _, err := utils.GenerateToken(userID, role)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// createdView 与服务层返回的结构一致：存储状态 new，已完成对外状态转换
func createdView(orderID, userID uint) *model.OrderView {
	addr := "Main St 1"
	v := &model.OrderView{
		OrderID:         orderID,
		UserID:          userID,
		TotalAmount:     decimal.RequireFromString("240.00"),
		OrderDate:       time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC),
		OrderStatus:     model.StatusNew,
		DeliveryAddress: &addr,
		Items: []model.OrderItemView{
			{OrderItemID: 1, OrderID: orderID, ProductID: 1, Quantity: 2, Price: decimal.NewFromInt(100), PriceAtOrder: decimal.NewFromInt(100), ItemTotal: decimal.NewFromInt(200)},
			{OrderItemID: 2, OrderID: orderID, ProductID: 2, Quantity: 1, Price: decimal.NewFromInt(40), PriceAtOrder: decimal.NewFromInt(40), ItemTotal: decimal.NewFromInt(40)},
		},
	}
	v.Reconcile()
	return v
}

const checkoutBody = `{
	"user_id": 1,
	"items": [
		{"product_id": 1, "quantity": 2, "price": 100},
		{"product_id": 2, "quantity": 1, "price": 50, "discounted_price": 40}
	],
	"total_amount": 240,
	"shipping_address": "Main St 1"
}`

func TestCreateOrder(t *testing.T) {
	t.Run("Created body carries presented status and items", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("CreateOrder", mock.Anything, mock.MatchedBy(func(in service.CreateOrderInput) bool {
			return in.UserID == 1 && len(in.Items) == 2 &&
				in.Items[1].FinalPrice().Equal(decimal.NewFromInt(40)) &&
				in.ShippingAddress != nil && *in.ShippingAddress == "Main St 1"
		})).Return(createdView(11, 1), nil)

		w := send(t, setupRouter(svc), http.MethodPost, "/orders", checkoutBody, 1, utils.RoleUser)

		require.Equal(t, http.StatusCreated, w.Code)

		var body struct {
			Code int                    `json:"code"`
			Data map[string]interface{} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "pending", body.Data["status"])
		assert.Equal(t, "new", body.Data["order_status"])
		assert.Equal(t, "Main St 1", body.Data["shipping_address"])
		assert.Equal(t, body.Data["delivery_address"], body.Data["shipping_address"])
		assert.Equal(t, float64(240), body.Data["total_amount"])

		items, ok := body.Data["items"].([]interface{})
		require.True(t, ok)
		require.Len(t, items, 2)
		second := items[1].(map[string]interface{})
		assert.Equal(t, float64(40), second["price_at_order"])
		assert.Equal(t, float64(40), second["item_total"])
	})

	t.Run("Ordering for another user is forbidden", func(t *testing.T) {
		svc := new(MockOrderService)

		w := send(t, setupRouter(svc), http.MethodPost, "/orders", checkoutBody, 2, utils.RoleUser)

		assert.Equal(t, http.StatusForbidden, w.Code)
		svc.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("Invalid item maps to 400 with index", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, service.ErrOrderItemInvalid.WithParam("index", 1))

		w := send(t, setupRouter(svc), http.MethodPost, "/orders", checkoutBody, 1, utils.RoleUser)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var body struct {
			Code int            `json:"code"`
			Data map[string]int `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, errs.ErrOrderItemInvalid, body.Code)
		assert.Equal(t, 1, body.Data["index"])
	})
}

func TestListOrders(t *testing.T) {
	t.Run("User without filter sees own orders", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("ListOrders", mock.Anything, mock.MatchedBy(func(id *uint) bool { return id != nil && *id == 1 })).
			Return([]model.OrderView{*createdView(11, 1)}, nil)

		w := send(t, setupRouter(svc), http.MethodGet, "/orders", "", 1, utils.RoleUser)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("User asking for another user's orders is forbidden", func(t *testing.T) {
		svc := new(MockOrderService)

		w := send(t, setupRouter(svc), http.MethodGet, "/orders?user_id=2", "", 1, utils.RoleUser)

		assert.Equal(t, http.StatusForbidden, w.Code)
		svc.AssertNotCalled(t, "ListOrders", mock.Anything, mock.Anything)
	})

	t.Run("Admin lists everything", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("ListOrders", mock.Anything, (*uint)(nil)).Return([]model.OrderView{}, nil)

		w := send(t, setupRouter(svc), http.MethodGet, "/orders", "", 9, utils.RoleAdmin)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})
}

func TestGetOrder(t *testing.T) {
	t.Run("Owner", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("GetOrder", mock.Anything, uint(11)).Return(createdView(11, 1), nil)

		w := send(t, setupRouter(svc), http.MethodGet, "/orders/11", "", 1, utils.RoleUser)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Other user's order is forbidden", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("GetOrder", mock.Anything, uint(11)).Return(createdView(11, 1), nil)

		w := send(t, setupRouter(svc), http.MethodGet, "/orders/11", "", 2, utils.RoleUser)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Missing order", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("GetOrder", mock.Anything, uint(404)).Return(nil, service.ErrOrderNotFound)

		w := send(t, setupRouter(svc), http.MethodGet, "/orders/404", "", 1, utils.RoleUser)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	t.Run("Admin only", func(t *testing.T) {
		svc := new(MockOrderService)

		w := send(t, setupRouter(svc), http.MethodPut, "/orders/11", `{"status":"shipped"}`, 1, utils.RoleUser)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Unmapped status", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("UpdateStatus", mock.Anything, uint(11), "lost").Return(nil, service.ErrOrderStatusInvalid)

		w := send(t, setupRouter(svc), http.MethodPut, "/orders/11", `{"status":"lost"}`, 9, utils.RoleAdmin)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
