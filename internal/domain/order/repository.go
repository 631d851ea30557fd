package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository 订单仓储接口(依赖倒置原则)
// 事务通过context传递(TxManager注入事务DB,仓储方法自动感知)
type Repository interface {
	// CreateDraft 创建草稿订单(订单和订单行必须在同一事务中落库)
	CreateDraft(ctx context.Context, o *Order) error

	// FindByID 根据ID查找订单(包含订单行,按Position排序)
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// UpdateStatus 条件更新订单状态
	// 带WHERE status=from守卫:0行受影响返回ErrInvalidStatusTransition,
	// 防止两个并发确认同时把DRAFT翻成CONFIRMED后重复扣库存
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
}
