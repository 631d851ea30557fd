package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/books-orders/internal/domain/tenant"
	"github.com/xiebiao/books-orders/pkg/response"
)

// TenantMiddleware 租户解析中间件
// 设计说明:
// 1. 业务接口必须带X-Tenant头,缺失或不合法直接拒绝
// 2. 确认租户schema已初始化(SchemaManager可能是带Redis缓存的装饰器)
// 3. 租户名写入request context,TxManager据此设置事务的search_path
type TenantMiddleware struct {
	schemas tenant.SchemaManager
}

// NewTenantMiddleware 创建租户中间件
func NewTenantMiddleware(schemas tenant.SchemaManager) *TenantMiddleware {
	return &TenantMiddleware{schemas: schemas}
}

// Resolve 解析并校验租户
// 使用方式:
//
//	api := r.Group("/api/v1", tenantMW.Resolve())
func (m *TenantMiddleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.GetHeader(tenant.HeaderName)
		if name == "" {
			response.Error(c, tenant.ErrMissing)
			c.Abort()
			return
		}
		if !tenant.ValidName(name) {
			response.Error(c, tenant.ErrInvalidName)
			c.Abort()
			return
		}

		exists, err := m.schemas.Exists(c.Request.Context(), name)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if !exists {
			response.Error(c, tenant.ErrNotFound)
			c.Abort()
			return
		}

		// 双写:gin context给response包组装meta,request context给TxManager
		c.Set(response.CtxKeyTenant, name)
		c.Request = c.Request.WithContext(tenant.NewContext(c.Request.Context(), name))

		c.Next()
	}
}
