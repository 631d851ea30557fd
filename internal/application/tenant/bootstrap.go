package tenant

import (
	"context"

	"github.com/xiebiao/books-orders/internal/domain/tenant"
)

// BootstrapUseCase 租户初始化用例
// 设计说明:
// 1. 每个租户一个PostgreSQL schema,初始化=建schema+建表
// 2. 操作是幂等的(CREATE SCHEMA IF NOT EXISTS + AutoMigrate),重复调用无害
// 3. 该接口属于管理面,由JWT管理员守卫保护,不走X-Tenant中间件
type BootstrapUseCase struct {
	schemas tenant.SchemaManager
}

// NewBootstrapUseCase 创建初始化用例
func NewBootstrapUseCase(schemas tenant.SchemaManager) *BootstrapUseCase {
	return &BootstrapUseCase{schemas: schemas}
}

// BootstrapResponse 初始化响应DTO
type BootstrapResponse struct {
	Tenant string `json:"tenant"`
	Status string `json:"status"`
}

// Execute 执行租户初始化
func (uc *BootstrapUseCase) Execute(ctx context.Context, name string) (*BootstrapResponse, error) {
	// 租户名白名单校验:不合法的名字绝不能拼进DDL
	if !tenant.ValidName(name) {
		return nil, tenant.ErrInvalidName
	}

	if err := uc.schemas.Bootstrap(ctx, name); err != nil {
		return nil, err
	}

	return &BootstrapResponse{
		Tenant: name,
		Status: "ready",
	}, nil
}
