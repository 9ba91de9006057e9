package strategy

import (
	"context"
	"errors"
	"net/http"

	"bookstore_api/internal/pkg/config"

	"github.com/shopspring/decimal"
	"github.com/wechatpay-apiv3/wechatpay-go/core"
	"github.com/wechatpay-apiv3/wechatpay-go/core/auth/verifiers"
	"github.com/wechatpay-apiv3/wechatpay-go/core/downloader"
	"github.com/wechatpay-apiv3/wechatpay-go/core/notify"
	"github.com/wechatpay-apiv3/wechatpay-go/core/option"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments/app"
	"github.com/wechatpay-apiv3/wechatpay-go/utils"
)

var hundred = decimal.NewFromInt(100)

type WechatStrategy struct {
	client  *core.Client
	config  config.WechatPayConfig
	handler *notify.Handler
}

func NewWechatStrategy(ctx context.Context, cfg config.WechatPayConfig) (*WechatStrategy, error) {
	if cfg.MchID == "" {
		return nil, errors.New("wechat pay config missing")
	}

	mchPrivateKey, err := utils.LoadPrivateKey(cfg.MchPrivateKey)
	if err != nil {
		return nil, err
	}

	// 自动下载并更新平台证书
	client, err := core.NewClient(ctx,
		option.WithWechatPayAutoAuthCipher(cfg.MchID, cfg.MchCertificateSerial, mchPrivateKey, cfg.APIv3Key),
	)
	if err != nil {
		return nil, err
	}

	certVisitor := downloader.MgrInstance().GetCertificateVisitor(cfg.MchID)
	handler := notify.NewNotifyHandler(cfg.APIv3Key, verifiers.NewSHA256WithRSAVerifier(certVisitor))

	return &WechatStrategy{
		client:  client,
		config:  cfg,
		handler: handler,
	}, nil
}

// Pay 返回 prepay_id，金额单位为分
func (s *WechatStrategy) Pay(ctx context.Context, outTradeNo string, amount decimal.Decimal, subject string) (string, error) {
	req := app.PrepayRequest{
		Appid:       core.String(s.config.AppID),
		Mchid:       core.String(s.config.MchID),
		Description: core.String(subject),
		OutTradeNo:  core.String(outTradeNo),
		NotifyUrl:   core.String(s.config.NotifyURL),
		Amount: &app.Amount{
			Total: core.Int64(amount.Mul(hundred).Round(0).IntPart()),
		},
	}

	svc := app.AppApiService{Client: s.client}
	resp, _, err := svc.Prepay(ctx, req)
	if err != nil {
		return "", err
	}
	return *resp.PrepayId, nil
}

// Notify params 为原始 *http.Request，签名信息在请求头中
func (s *WechatStrategy) Notify(ctx context.Context, params interface{}) (*NotifyResult, error) {
	req, ok := params.(*http.Request)
	if !ok {
		return nil, errors.New("invalid params type, expected *http.Request")
	}

	transaction := new(payments.Transaction)
	if _, err := s.handler.ParseNotifyRequest(ctx, req, transaction); err != nil {
		return nil, err
	}
	if transaction.OutTradeNo == nil || transaction.Amount == nil || transaction.Amount.Total == nil {
		return nil, errors.New("incomplete wechat pay transaction")
	}

	result := &NotifyResult{
		OutTradeNo: *transaction.OutTradeNo,
		Amount:     decimal.NewFromInt(*transaction.Amount.Total).Div(hundred),
		Success:    transaction.TradeState != nil && *transaction.TradeState == "SUCCESS",
	}
	if transaction.TransactionId != nil {
		result.TransactionID = *transaction.TransactionId
	}
	return result, nil
}

var _ PaymentStrategy = (*WechatStrategy)(nil)
