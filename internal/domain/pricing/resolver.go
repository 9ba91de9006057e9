// Package pricing 计算商品对某个用户在某一天的实际单价。
//
// 可用优惠券需同时满足：状态为 active、当天在有效期内、商品范围和用户范围匹配
// (范围为空表示不限)。多张券同时可用时取折后单价最低的一张，单价相同取 coupon_id 最小者。
package pricing

import (
	"context"
	"time"

	couponModel "bookstore_api/internal/domain/coupon/model"
	baseModel "bookstore_api/pkg/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CouponFinder 可用优惠券查询
type CouponFinder interface {
	FindApplicable(ctx context.Context, productIDs []uint, userID *uint, day time.Time) ([]couponModel.Coupon, error)
}

// Item 待定价商品
type Item struct {
	ProductID uint
	Price     decimal.Decimal
}

// Quote 定价结果
type Quote struct {
	ProductID     uint
	ListPrice     decimal.Decimal
	UnitPrice     decimal.Decimal
	DiscountType  *string
	DiscountValue decimal.Decimal
	CouponID      *uint
}

// Discounted 是否有折扣生效
func (q Quote) Discounted() bool {
	return q.DiscountType != nil
}

// DiscountedPrice 有折扣时返回折后价，否则为 nil，供接口输出
func (q Quote) DiscountedPrice() *decimal.Decimal {
	if !q.Discounted() {
		return nil
	}
	p := q.UnitPrice
	return &p
}

type Resolver struct {
	coupons CouponFinder
	now     func() time.Time
}

func NewResolver(coupons CouponFinder) *Resolver {
	return &Resolver{coupons: coupons, now: time.Now}
}

// WithClock 替换时钟
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	return &Resolver{coupons: r.coupons, now: now}
}

// Resolve 单个商品定价
func (r *Resolver) Resolve(ctx context.Context, item Item, userID *uint) (Quote, error) {
	quotes, err := r.ResolveMany(ctx, []Item{item}, userID)
	if err != nil {
		return Quote{}, err
	}
	return quotes[item.ProductID], nil
}

// ResolveMany 批量定价，一次查询取回所有候选优惠券
func (r *Resolver) ResolveMany(ctx context.Context, items []Item, userID *uint) (map[uint]Quote, error) {
	quotes := make(map[uint]Quote, len(items))
	if len(items) == 0 {
		return quotes, nil
	}

	day := r.now()
	ids := make([]uint, 0, len(items))
	seen := make(map[uint]bool, len(items))
	for _, it := range items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}

	candidates, err := r.coupons.FindApplicable(ctx, ids, userID, day)
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		quotes[it.ProductID] = Price(it, candidates, userID, day)
	}
	return quotes, nil
}

// Price 纯函数：从候选券中为 item 选出最优券并计算单价
func Price(item Item, candidates []couponModel.Coupon, userID *uint, day time.Time) Quote {
	quote := Quote{
		ProductID:     item.ProductID,
		ListPrice:     item.Price,
		UnitPrice:     item.Price,
		DiscountValue: decimal.Zero,
	}

	best := Best(item, candidates, userID, day)
	if best == nil {
		return quote
	}

	kind := best.DiscountType
	id := best.CouponID
	quote.UnitPrice = ApplyDiscount(item.Price, kind, best.DiscountValue)
	quote.DiscountType = &kind
	quote.DiscountValue = best.DiscountValue
	quote.CouponID = &id
	return quote
}

// Best 选出折后价最低的可用券，价格相同时 coupon_id 小者优先
func Best(item Item, candidates []couponModel.Coupon, userID *uint, day time.Time) *couponModel.Coupon {
	var (
		best      *couponModel.Coupon
		bestPrice decimal.Decimal
	)
	for i := range candidates {
		c := &candidates[i]
		if !c.ActiveOn(day) || !c.AppliesTo(item.ProductID, userID) || !couponModel.ValidDiscountType(c.DiscountType) {
			continue
		}
		price := ApplyDiscount(item.Price, c.DiscountType, c.DiscountValue)
		if best == nil || price.LessThan(bestPrice) || (price.Equal(bestPrice) && c.CouponID < best.CouponID) {
			best = c
			bestPrice = price
		}
	}
	return best
}

// ApplyDiscount 百分比折扣 round(price*(1-v/100), 2)；固定金额 max(price-v, 0)
func ApplyDiscount(price decimal.Decimal, kind string, value decimal.Decimal) decimal.Decimal {
	var out decimal.Decimal
	switch kind {
	case couponModel.DiscountPercentage:
		out = baseModel.Money(price.Mul(decimal.NewFromInt(1).Sub(value.Div(hundred))))
	case couponModel.DiscountFixedAmount:
		out = price.Sub(value)
	default:
		return price
	}
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}
