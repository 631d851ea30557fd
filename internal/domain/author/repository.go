package author

import (
	"context"

	"github.com/google/uuid"
)

// Repository 作者仓储接口(依赖倒置原则)
// 由domain层定义接口,infrastructure层实现
type Repository interface {
	// Create 创建作者
	Create(ctx context.Context, a *Author) error

	// FindByID 根据ID查找作者
	FindByID(ctx context.Context, id uuid.UUID) (*Author, error)

	// List 查询作者列表(按名字排序)
	// q为模糊搜索关键词,空串表示不过滤
	List(ctx context.Context, q string, limit, offset int) ([]*Author, error)
}
