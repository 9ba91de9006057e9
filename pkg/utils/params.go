package utils

import (
	"strconv"

	"bookstore_api/pkg/errs"

	"github.com/gin-gonic/gin"
)

// ParamID 解析路径中的正整数 ID
func ParamID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errs.Validation(errs.ErrInvalidParam, "invalid "+name).WithParam("param", name)
	}
	return uint(id), nil
}

// QueryID 解析可选的查询参数，缺省返回 nil
func QueryID(c *gin.Context, name string) (*uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, errs.Validation(errs.ErrInvalidParam, "invalid "+name).WithParam("param", name)
	}
	v := uint(id)
	return &v, nil
}

// QueryIDs 解析可重复的查询参数，如 ?category_id=1&category_id=2
func QueryIDs(c *gin.Context, name string) ([]uint, error) {
	raw := c.QueryArray(name)
	ids := make([]uint, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil || id == 0 {
			return nil, errs.Validation(errs.ErrInvalidParam, "invalid "+name).WithParam("param", name)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// BindError 请求体校验失败
func BindError(err error) error {
	return errs.Validation(errs.ErrInvalidParam, err.Error())
}
