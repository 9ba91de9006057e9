package repository

import (
	"context"
	"database/sql"
	"errors"

	cartModel "bookstore_api/internal/domain/cart/model"
	"bookstore_api/internal/domain/order/model"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

type OrderRepository interface {
	// CreateWithItems 在同一事务中写入订单头、条目并清空该用户购物车
	CreateWithItems(ctx context.Context, order *model.Order, items []model.OrderItem) error
	UpdateStatus(ctx context.Context, orderID uint, status string) error
	GetView(ctx context.Context, orderID uint) (*model.OrderView, error)
	ListViews(ctx context.Context, userID *uint) ([]model.OrderView, error)
}

type orderRepository struct {
	db *gorm.DB
	// 读模型查询
	rdb *sqlx.DB
}

func NewOrderRepository(db *gorm.DB, rdb *sqlx.DB) OrderRepository {
	return &orderRepository{db: db, rdb: rdb}
}

func (r *orderRepository) CreateWithItems(ctx context.Context, order *model.Order, items []model.OrderItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		for i := range items {
			if err := items[i].Validate(); err != nil {
				return model.ErrOrderItemInvalid.WithParam("index", i)
			}
			items[i].OrderID = order.OrderID
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}

		// 整个购物车清空，包括未下单的商品
		return tx.Where("user_id = ?", order.UserID).Delete(&cartModel.CartEntry{}).Error
	})
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID uint, status string) error {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ?", orderID).
		Update("order_status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

const orderViewSQL = `SELECT o.order_id, o.user_id, o.total_amount, o.order_date, o.order_status,
	o.delivery_address, o.order_comment,
	u.first_name, u.last_name, u.email,
	pm.payment_status, pm.transaction_number, pm.payment_amount
FROM orders o
LEFT JOIN users u ON u.user_id = o.user_id
LEFT JOIN LATERAL (
	SELECT payment_status, transaction_number, payment_amount
	FROM payments
	WHERE payments.order_id = o.order_id
	ORDER BY payments.payment_date DESC, payments.payment_id DESC
	LIMIT 1
) pm ON true`

const orderItemsSQL = `SELECT oi.order_item_id, oi.order_id, oi.product_id, oi.quantity,
	oi.price_at_order AS price, oi.price_at_order, oi.item_total,
	p.name AS product_name, p.author AS product_author
FROM order_items oi
LEFT JOIN products p ON p.product_id = oi.product_id
WHERE oi.order_id IN (?)
ORDER BY oi.order_item_id`

func (r *orderRepository) GetView(ctx context.Context, orderID uint) (*model.OrderView, error) {
	var view model.OrderView
	query := r.rdb.Rebind(orderViewSQL + " WHERE o.order_id = ?")
	if err := r.rdb.GetContext(ctx, &view, query, orderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}

	views := []model.OrderView{view}
	if err := r.attachItems(ctx, views); err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListViews 最新的订单在前，userID 为空时返回全部
func (r *orderRepository) ListViews(ctx context.Context, userID *uint) ([]model.OrderView, error) {
	query := orderViewSQL
	var args []interface{}
	if userID != nil {
		query += " WHERE o.user_id = ?"
		args = append(args, *userID)
	}
	query += " ORDER BY o.order_date DESC, o.order_id DESC"

	views := []model.OrderView{}
	if err := r.rdb.SelectContext(ctx, &views, r.rdb.Rebind(query), args...); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, views); err != nil {
		return nil, err
	}
	return views, nil
}

// attachItems 一次查询取回所有订单条目
func (r *orderRepository) attachItems(ctx context.Context, views []model.OrderView) error {
	if len(views) == 0 {
		return nil
	}

	ids := make([]uint, len(views))
	index := make(map[uint]int, len(views))
	for i, v := range views {
		ids[i] = v.OrderID
		index[v.OrderID] = i
	}

	query, args, err := sqlx.In(orderItemsSQL, ids)
	if err != nil {
		return err
	}

	var items []model.OrderItemView
	if err := r.rdb.SelectContext(ctx, &items, r.rdb.Rebind(query), args...); err != nil {
		return err
	}

	for _, it := range items {
		i := index[it.OrderID]
		views[i].Items = append(views[i].Items, it)
	}
	return nil
}
