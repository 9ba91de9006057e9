// Package errs 定义服务端统一的错误分类与业务码，客户端按 code 做本地化展示。
package errs

import (
	"errors"
	"fmt"
)

// Kind 错误分类，决定 HTTP 状态码
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Error 带业务码和参数的错误
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Params  map[string]any
	cause   error
}

func New(kind Kind, code int, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Validation(code int, msg string) *Error   { return New(KindValidation, code, msg) }
func NotFound(code int, msg string) *Error     { return New(KindNotFound, code, msg) }
func Conflict(code int, msg string) *Error     { return New(KindConflict, code, msg) }
func Unauthorized(code int, msg string) *Error { return New(KindUnauthorized, code, msg) }
func Forbidden(code int, msg string) *Error    { return New(KindForbidden, code, msg) }
func Internal(code int, msg string) *Error     { return New(KindInternal, code, msg) }

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is 按业务码比较，使得带参数的副本仍能匹配哨兵错误
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func (e *Error) clone() *Error {
	c := *e
	if e.Params != nil {
		c.Params = make(map[string]any, len(e.Params))
		for k, v := range e.Params {
			c.Params[k] = v
		}
	}
	return &c
}

// WithParam 返回附带参数的副本，哨兵错误本身不会被修改
func (e *Error) WithParam(key string, value any) *Error {
	c := e.clone()
	if c.Params == nil {
		c.Params = make(map[string]any)
	}
	c.Params[key] = value
	return c
}

// Wrap 返回包裹底层错误的副本
func (e *Error) Wrap(err error) *Error {
	c := e.clone()
	c.cause = err
	return c
}

// As 提取 *Error
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf 返回错误分类，非 *Error 视为内部错误
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}
