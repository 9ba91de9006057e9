package strategy

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrOutTradeNo = errors.New("malformed out trade no")

// NotifyResult 网关回调解析结果
type NotifyResult struct {
	OutTradeNo    string
	TransactionID string
	Amount        decimal.Decimal
	Success       bool
}

type PaymentStrategy interface {
	// Pay 发起支付，返回客户端拉起支付所需的参数
	Pay(ctx context.Context, outTradeNo string, amount decimal.Decimal, subject string) (string, error)

	// Notify 验签并解析回调
	Notify(ctx context.Context, params interface{}) (*NotifyResult, error)
}

// OutTradeNo 商户订单号，同一笔支付每次发起都不同
func OutTradeNo(paymentID uint) string {
	return fmt.Sprintf("%d_%s", paymentID, strings.ReplaceAll(uuid.New().String(), "-", "")[:12])
}

// ParsePaymentID 从商户订单号取回支付 ID
func ParsePaymentID(outTradeNo string) (uint, error) {
	prefix, _, ok := strings.Cut(outTradeNo, "_")
	if !ok {
		return 0, ErrOutTradeNo
	}
	id, err := strconv.ParseUint(prefix, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrOutTradeNo
	}
	return uint(id), nil
}
