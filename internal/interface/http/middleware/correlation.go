package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xiebiao/books-orders/pkg/logger"
	"github.com/xiebiao/books-orders/pkg/response"
)

// HeaderRequestID 请求ID头
const HeaderRequestID = "X-Request-ID"

// Correlation 请求关联中间件
// 设计说明:
// 1. 客户端带X-Request-ID则沿用,没带则生成UUID
// 2. 响应头回写同一个ID,客户端排障时拿ID来查日志
// 3. 请求ID写入gin context,response包组装meta时读取
func Correlation() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(response.CtxKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		c.Next()
	}
}

// RequestLogger 请求日志中间件
// 每个请求一条结构化访问日志,带请求ID和租户
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		l := logger.WithRequest(c.GetString(response.CtxKeyRequestID), c.GetString(response.CtxKeyTenant))
		l.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}
