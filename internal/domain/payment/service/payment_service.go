package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookstore_api/internal/domain/payment/model"
	"bookstore_api/internal/domain/payment/repository"
	"bookstore_api/internal/domain/payment/strategy"
	"bookstore_api/pkg/database"
	"bookstore_api/pkg/errs"
	"bookstore_api/pkg/logger"
	"bookstore_api/pkg/metrics"
	baseModel "bookstore_api/pkg/model"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound      = errs.NotFound(errs.ErrPaymentNotFound, "payment not found")
	ErrPaymentAmountInvalid = errs.Validation(errs.ErrPaymentAmountInvalid, "order_id and a positive payment_amount are required")
	ErrPaymentStatusInvalid = errs.Validation(errs.ErrPaymentStatusInvalid, "payment_status must be pending, paid, failed or refunded")
	ErrPaymentNotPending    = errs.Conflict(errs.ErrPaymentNotPending, "payment is no longer pending")
	ErrPaymentChannel       = errs.Validation(errs.ErrPaymentChannel, "unsupported payment channel")
	ErrOrderNotFound        = errs.NotFound(errs.ErrOrderNotFound, "order not found")
)

type CreatePaymentInput struct {
	OrderID           uint            `json:"order_id"`
	PaymentAmount     decimal.Decimal `json:"payment_amount"`
	TransactionNumber *string         `json:"transaction_number"`
}

type UpdatePaymentInput struct {
	PaymentStatus     string  `json:"payment_status" binding:"required"`
	TransactionNumber *string `json:"transaction_number"`
}

// PayResult 客户端拉起网关支付所需的数据
type PayResult struct {
	PaymentID  uint   `json:"payment_id"`
	Channel    string `json:"channel"`
	OutTradeNo string `json:"out_trade_no"`
	PayParam   string `json:"pay_param"`
}

type PaymentService interface {
	OrderOwner(ctx context.Context, orderID uint) (uint, error)
	CreatePayment(ctx context.Context, in CreatePaymentInput) (*model.Payment, error)
	UpdatePaymentStatus(ctx context.Context, paymentID uint, in UpdatePaymentInput) (*model.Payment, error)
	GetPayment(ctx context.Context, paymentID uint) (*model.PaymentView, error)
	ListPayments(ctx context.Context, orderID *uint) ([]model.PaymentView, error)
	Pay(ctx context.Context, paymentID uint, channel string) (*PayResult, error)
	HandleNotify(ctx context.Context, channel string, params interface{}) error
	RegisterStrategy(channel string, strategy strategy.PaymentStrategy)
}

type paymentService struct {
	repo       repository.PaymentRepository
	strategies map[string]strategy.PaymentStrategy
	collector  *metrics.MetricsCollector
	now        func() time.Time
}

func NewPaymentService(repo repository.PaymentRepository) PaymentService {
	return &paymentService{
		repo:       repo,
		strategies: make(map[string]strategy.PaymentStrategy),
		collector:  metrics.GetGlobalCollector(),
		now:        time.Now,
	}
}

// RegisterStrategy 注册支付渠道
func (s *paymentService) RegisterStrategy(channel string, strategy strategy.PaymentStrategy) {
	s.strategies[channel] = strategy
}

// OrderOwner 订单所属用户，创建支付前用于权限校验
func (s *paymentService) OrderOwner(ctx context.Context, orderID uint) (uint, error) {
	owner, err := s.repo.OrderOwner(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrOrderNotFound.WithParam("order_id", orderID)
		}
		return 0, err
	}
	return owner, nil
}

// CreatePayment 新支付记录状态为 pending，与订单创建互不影响
func (s *paymentService) CreatePayment(ctx context.Context, in CreatePaymentInput) (*model.Payment, error) {
	if in.OrderID == 0 || !in.PaymentAmount.IsPositive() {
		return nil, ErrPaymentAmountInvalid
	}

	if _, err := s.OrderOwner(ctx, in.OrderID); err != nil {
		return nil, err
	}

	payment := &model.Payment{
		OrderID:           in.OrderID,
		PaymentAmount:     baseModel.Money(in.PaymentAmount),
		PaymentStatus:     model.StatusPending,
		PaymentDate:       s.now(),
		TransactionNumber: nonEmpty(in.TransactionNumber),
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		// 查询与写入之间订单被删除
		if database.IsForeignKeyViolation(err) {
			return nil, ErrOrderNotFound.WithParam("order_id", in.OrderID)
		}
		return nil, err
	}

	s.collector.RecordPaymentStatus(payment.PaymentStatus)
	return payment, nil
}

// UpdatePaymentStatus 置为 paid 时刷新支付时间，交易号非空时覆盖
func (s *paymentService) UpdatePaymentStatus(ctx context.Context, paymentID uint, in UpdatePaymentInput) (*model.Payment, error) {
	if !model.ValidStatus(in.PaymentStatus) {
		return nil, ErrPaymentStatusInvalid.WithParam("payment_status", in.PaymentStatus)
	}

	fields := map[string]interface{}{"payment_status": in.PaymentStatus}
	if in.PaymentStatus == model.StatusPaid {
		fields["payment_date"] = s.now()
	}
	if txn := nonEmpty(in.TransactionNumber); txn != nil {
		fields["transaction_number"] = *txn
	}

	payment, err := s.repo.Update(ctx, paymentID, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	s.collector.RecordPaymentStatus(payment.PaymentStatus)
	return payment, nil
}

func (s *paymentService) GetPayment(ctx context.Context, paymentID uint) (*model.PaymentView, error) {
	view, err := s.repo.GetView(ctx, paymentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaymentNotFound
	}
	return view, err
}

func (s *paymentService) ListPayments(ctx context.Context, orderID *uint) ([]model.PaymentView, error) {
	return s.repo.List(ctx, orderID)
}

// Pay 为待支付记录生成网关支付参数
func (s *paymentService) Pay(ctx context.Context, paymentID uint, channel string) (*PayResult, error) {
	st, ok := s.strategies[channel]
	if !ok {
		return nil, ErrPaymentChannel.WithParam("channel", channel)
	}

	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if payment.PaymentStatus != model.StatusPending {
		return nil, ErrPaymentNotPending.WithParam("payment_status", payment.PaymentStatus)
	}

	outTradeNo := strategy.OutTradeNo(payment.PaymentID)
	subject := fmt.Sprintf("Bookstore order #%d", payment.OrderID)
	param, err := st.Pay(ctx, outTradeNo, payment.PaymentAmount, subject)
	if err != nil {
		return nil, fmt.Errorf("%s pay: %w", channel, err)
	}

	return &PayResult{
		PaymentID:  payment.PaymentID,
		Channel:    channel,
		OutTradeNo: outTradeNo,
		PayParam:   param,
	}, nil
}

// HandleNotify 验签后把网关结果写回支付记录
func (s *paymentService) HandleNotify(ctx context.Context, channel string, params interface{}) error {
	st, ok := s.strategies[channel]
	if !ok {
		return ErrPaymentChannel.WithParam("channel", channel)
	}

	result, err := st.Notify(ctx, params)
	if err != nil {
		return err
	}

	paymentID, err := strategy.ParsePaymentID(result.OutTradeNo)
	if err != nil {
		return err
	}

	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		return err
	}

	// 网关会重复推送，已终结的支付直接确认
	if payment.PaymentStatus != model.StatusPending {
		logger.Log.Info("duplicate payment notify ignored",
			zap.String("channel", channel),
			zap.Uint("payment_id", paymentID),
			zap.String("payment_status", payment.PaymentStatus),
		)
		return nil
	}

	status := model.StatusFailed
	if result.Success {
		if !result.Amount.Equal(payment.PaymentAmount) {
			logger.Log.Error("gateway amount mismatch",
				zap.String("channel", channel),
				zap.Uint("payment_id", paymentID),
				zap.String("expected", payment.PaymentAmount.String()),
				zap.String("notified", result.Amount.String()),
			)
			return ErrPaymentAmountInvalid.WithParam("payment_id", paymentID)
		}
		status = model.StatusPaid
	}

	txn := result.TransactionID
	_, err = s.UpdatePaymentStatus(ctx, paymentID, UpdatePaymentInput{
		PaymentStatus:     status,
		TransactionNumber: &txn,
	})
	if err != nil {
		return err
	}

	logger.Log.Info("payment notified",
		zap.String("channel", channel),
		zap.Uint("payment_id", paymentID),
		zap.String("status", status),
	)
	return nil
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
