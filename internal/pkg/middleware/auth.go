package middleware

import (
	"net/http"
	"strings"

	"bookstore_api/pkg/errs"
	"bookstore_api/pkg/response"
	"bookstore_api/pkg/utils"

	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// AuthMiddleware JWT认证中间件
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, errs.ErrTokenInvalid, "Authorization header is required")
			c.Abort()
			return
		}

		// 检查格式 "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Error(c, http.StatusUnauthorized, errs.ErrTokenInvalid, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(parts[1])
		if err != nil {
			response.Error(c, http.StatusUnauthorized, errs.ErrTokenInvalid, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(claimsKey, claims)
		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// AdminMiddleware 管理员权限中间件，需在 AuthMiddleware 之后使用
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentUser(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, errs.ErrTokenInvalid, "Unauthorized")
			c.Abort()
			return
		}
		if !claims.IsAdmin() {
			response.Error(c, http.StatusForbidden, errs.ErrNoPermission, "Admin permission required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser 当前登录用户
func CurrentUser(c *gin.Context) (*utils.Claims, bool) {
	v, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}

// CanAccessUser 管理员或本人
func CanAccessUser(c *gin.Context, userID uint) bool {
	claims, ok := CurrentUser(c)
	if !ok {
		return false
	}
	return claims.IsAdmin() || claims.UserID == userID
}

// ErrForbidden 越权访问他人数据
var ErrForbidden = errs.Forbidden(errs.ErrNoPermission, "no permission for this resource")
