package response

import (
	"errors"
	"net/http"

	"bookstore_api/pkg/database"
	"bookstore_api/pkg/errs"
	"bookstore_api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	// 金额在 JSON 中以数字输出，所有响应都经过本包
	decimal.MarshalJSONWithoutQuotes = true
}

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`    // 业务码
	Message string      `json:"message"` // 提示信息
	Data    interface{} `json:"data"`    // 数据
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    errs.CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应 (HTTP 201)
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    errs.CodeSuccess,
		Message: "created",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, errCode int, msg string) {
	c.JSON(httpCode, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// HandleError 将领域错误转换为 HTTP 响应，未知错误按 500 处理并记录日志
func HandleError(c *gin.Context, err error) {
	appErr := Translate(err)
	if appErr.Kind == errs.KindInternal {
		logger.Log.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
	}

	c.JSON(StatusOf(appErr.Kind), Response{
		Code:    appErr.Code,
		Message: appErr.Message,
		Data:    appErr.Params,
	})
}

// Translate 把存储层错误归类为 *errs.Error
func Translate(err error) *errs.Error {
	if appErr, ok := errs.As(err); ok {
		return appErr
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NotFound(errs.ErrNotFound, "resource not found")
	}

	if database.IsUniqueViolation(err) {
		return errs.Conflict(errs.ErrConflict, "record already exists").WithParam("constraint", database.ConstraintName(err))
	}
	if database.IsForeignKeyViolation(err) {
		return errs.Conflict(errs.ErrConflict, "record is referenced by other data").WithParam("constraint", database.ConstraintName(err))
	}

	return errs.Internal(errs.ErrServerInternal, "internal server error").Wrap(err)
}

// StatusOf 错误分类对应的 HTTP 状态码
func StatusOf(kind errs.Kind) int {
	switch kind {
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindConflict:
		return http.StatusConflict
	case errs.KindUnauthorized:
		return http.StatusUnauthorized
	case errs.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
