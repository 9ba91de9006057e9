package errs

// 业务状态码
const (
	CodeSuccess = 0

	// 用户模块错误 100xx
	ErrUserExists     = 10001
	ErrUserNotFound   = 10002
	ErrAuthFailed     = 10003
	ErrTokenInvalid   = 10004
	ErrNoPermission   = 10005
	ErrAccountBlocked = 10006

	// 优惠券模块错误 200xx
	ErrCouponNotFound     = 20001
	ErrCouponCodeExists   = 20002
	ErrCouponInvalid      = 20003 // 未生效/已过期/已停用
	ErrCouponDiscountType = 20004

	// 商品目录错误 300xx
	ErrCategoryNotFound = 30001
	ErrCategoryExists   = 30002
	ErrCategoryInUse    = 30003
	ErrProductNotFound  = 30004

	// 购物车错误 400xx
	ErrCartItemNotFound = 40001
	ErrQuantityInvalid  = 40002

	// 订单错误 410xx
	ErrOrderNotFound      = 41001
	ErrOrderItemsEmpty    = 41002
	ErrOrderTotalInvalid  = 41003
	ErrOrderItemInvalid   = 41004
	ErrOrderStatusInvalid = 41005
	ErrOrderPriceMismatch = 41006

	// 支付错误 420xx
	ErrPaymentNotFound      = 42001
	ErrPaymentAmountInvalid = 42002
	ErrPaymentStatusInvalid = 42003
	ErrPaymentChannel       = 42004
	ErrPaymentNotPending    = 42005

	// 系统错误 500xx
	ErrServerInternal   = 50001
	ErrInvalidParam     = 50002
	ErrTooManyRequests  = 50003
	ErrConflict         = 50004
	ErrNotFound         = 50005
	ErrDuplicateRequest = 50006
)
