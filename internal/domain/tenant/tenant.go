package tenant

import (
	"context"
	"regexp"

	apperrors "github.com/xiebiao/books-orders/pkg/errors"
)

// 租户领域
// 设计说明:
// 1. 每个租户对应一个PostgreSQL schema,数据完全隔离
// 2. 租户名直接作为schema名,必须严格校验(防SQL注入)
// 3. 请求范围内的租户名通过context传递,TxManager据此设置search_path

// HeaderName 携带租户名的请求头
const HeaderName = "X-Tenant"

// nameRe schema命名规则:字母数字、连字符、下划线,1-63字符(PostgreSQL标识符长度上限)
var nameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,63}$`)

// ValidName 校验租户名是否可以安全用作schema名
func ValidName(name string) bool {
	return nameRe.MatchString(name)
}

// 租户领域错误定义
var (
	// ErrMissing 请求未携带X-Tenant头
	ErrMissing = apperrors.New(apperrors.ErrCodeTenantMissing, "缺少X-Tenant请求头")

	// ErrNotFound 租户schema不存在
	ErrNotFound = apperrors.New(apperrors.ErrCodeTenantNotFound, "租户不存在")

	// ErrInvalidName 租户名不合法
	ErrInvalidName = apperrors.New(apperrors.ErrCodeInvalidTenant, "租户名只能包含字母、数字、连字符和下划线,长度1-63")
)

// SchemaManager 租户schema管理接口(依赖倒置)
// 由infrastructure层的PostgreSQL实现提供
type SchemaManager interface {
	// Exists 判断租户schema是否存在
	Exists(ctx context.Context, name string) (bool, error)

	// Bootstrap 创建租户schema并迁移表结构(幂等,重复调用无副作用)
	Bootstrap(ctx context.Context, name string) error
}

// =========================================
// Context传递
// =========================================

type ctxKey struct{}

// NewContext 将租户名写入context
func NewContext(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ctxKey{}, name)
}

// FromContext 从context读取租户名
func FromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(ctxKey{}).(string)
	return name, ok && name != ""
}
