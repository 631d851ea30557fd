package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/books-orders/pkg/jwt"
	"github.com/xiebiao/books-orders/pkg/response"
)

// AdminMiddleware 管理面JWT守卫
// 设计说明:
// 1. 租户初始化是管理面操作(建schema是DDL),不对普通调用方开放
// 2. Token格式:Authorization: Bearer <token>,必须带admin角色
type AdminMiddleware struct {
	jwtManager *jwt.Manager
}

// NewAdminMiddleware 创建管理面守卫
func NewAdminMiddleware(jwtManager *jwt.Manager) *AdminMiddleware {
	return &AdminMiddleware{jwtManager: jwtManager}
}

// RequireAdmin 要求管理员身份
func (m *AdminMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.ErrorWithCode(c, 40100, "缺少认证信息")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.ErrorWithCode(c, 40101, "Token格式错误")
			c.Abort()
			return
		}

		// VerifyToken内部校验签名、过期时间和admin角色
		if _, err := m.jwtManager.VerifyToken(parts[1]); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Next()
	}
}
