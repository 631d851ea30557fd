package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/xiebiao/books-orders/pkg/errors"
)

// Context键：由中间件写入，响应时读取
const (
	CtxKeyRequestID = "request_id"
	CtxKeyTenant    = "tenant"
)

// Meta 响应元信息
// 设计说明：request_id和tenant由中间件注入，方便客户端排障时携带定位信息
type Meta struct {
	RequestID string `json:"request_id"`
	Tenant    string `json:"tenant"`
}

// Response 统一响应结构
// 设计说明：
// 1. Code是业务错误码（非HTTP状态码），方便客户端判断错误类型
// 2. Message是用户友好的提示信息
// 3. Data是业务数据，成功时返回，失败时为null
// 4. Details是结构化错误详情（如缺货清单），仅部分错误携带
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
	Meta    Meta        `json:"meta"`
}

func buildMeta(c *gin.Context) Meta {
	return Meta{
		RequestID: c.GetString(CtxKeyRequestID),
		Tenant:    c.GetString(CtxKeyTenant),
	}
}

// Success 成功响应（Code=0表示成功）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
		Meta:    buildMeta(c),
	})
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	result, err := confirmUseCase.Execute(...)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	// 提取AppError
	appErr := apperrors.GetAppError(err)

	// 内部错误只进日志，不返回给客户端
	if appErr.Err != nil {
		log.Error().
			Err(appErr.Err).
			Int("code", appErr.Code).
			Str("request_id", c.GetString(CtxKeyRequestID)).
			Str("tenant", c.GetString(CtxKeyTenant)).
			Str("path", c.FullPath()).
			Msg("请求处理失败")
	}

	c.JSON(httpStatus(appErr.Code), Response{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
		Meta:    buildMeta(c),
	})
}

// ErrorWithCode 自定义错误码和消息
func ErrorWithCode(c *gin.Context, code int, message string) {
	c.JSON(httpStatus(code), Response{
		Code:    code,
		Message: message,
		Meta:    buildMeta(c),
	})
}

// httpStatus 业务错误码映射HTTP状态码
// 映射规则按错误码段划分：
// - 401xx 认证 → 401
// - 404xx 资源不存在、40201 租户不存在 → 404
// - 40001 库存不足、41xxx 订单状态 → 409（冲突，可稍后重试）
// - 其余4xxxx → 400
// - 5xxxx → 500
func httpStatus(code int) int {
	switch {
	case code == 0:
		return http.StatusOK
	case code == apperrors.ErrCodeInsufficientStock:
		return http.StatusConflict
	case code >= 41000 && code < 42000:
		return http.StatusConflict
	case code >= 40100 && code < 40200:
		return http.StatusUnauthorized
	case code == apperrors.ErrCodeTenantNotFound:
		return http.StatusNotFound
	case code >= 40400 && code < 40500:
		return http.StatusNotFound
	case code >= 40000 && code < 50000:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// =========================================
// 分页响应结构
// =========================================

// ListData 列表数据封装（limit/offset分页）
type ListData struct {
	List   interface{} `json:"list"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
	Count  int         `json:"count"` // 本次返回条数
}

// SuccessWithList 列表成功响应
func SuccessWithList(c *gin.Context, list interface{}, limit, offset, count int) {
	Success(c, ListData{
		List:   list,
		Limit:  limit,
		Offset: offset,
		Count:  count,
	})
}
