package strategy

import (
	"context"
	"errors"
	"net/url"

	"bookstore_api/internal/pkg/config"

	"github.com/shopspring/decimal"
	"github.com/smartwalle/alipay/v3"
)

type AlipayStrategy struct {
	client *alipay.Client
	config config.AlipayConfig
}

func NewAlipayStrategy(cfg config.AlipayConfig) (*AlipayStrategy, error) {
	if cfg.AppID == "" {
		return nil, errors.New("alipay config missing")
	}

	client, err := alipay.New(cfg.AppID, cfg.PrivateKey, cfg.IsProduction)
	if err != nil {
		return nil, err
	}

	// 支付宝公钥用于回调验签
	if err = client.LoadAliPayPublicKey(cfg.PublicKey); err != nil {
		return nil, err
	}

	return &AlipayStrategy{
		client: client,
		config: cfg,
	}, nil
}

// Pay App 支付，返回签名后的参数串
func (s *AlipayStrategy) Pay(_ context.Context, outTradeNo string, amount decimal.Decimal, subject string) (string, error) {
	p := alipay.TradeAppPay{}
	p.NotifyURL = s.config.NotifyURL
	p.Subject = subject
	p.OutTradeNo = outTradeNo
	p.TotalAmount = amount.StringFixed(2)
	p.ProductCode = "QUICK_MSECURITY_PAY"

	return s.client.TradeAppPay(p)
}

// Notify params 为回调表单 url.Values
func (s *AlipayStrategy) Notify(_ context.Context, params interface{}) (*NotifyResult, error) {
	values, ok := params.(url.Values)
	if !ok {
		return nil, errors.New("invalid params type, expected url.Values")
	}

	noti, err := s.client.DecodeNotification(values)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(noti.TotalAmount)
	if err != nil {
		return nil, err
	}

	return &NotifyResult{
		OutTradeNo:    noti.OutTradeNo,
		TransactionID: noti.TradeNo,
		Amount:        amount,
		Success:       noti.TradeStatus == alipay.TradeStatusSuccess || noti.TradeStatus == alipay.TradeStatusFinished,
	}, nil
}

var _ PaymentStrategy = (*AlipayStrategy)(nil)
