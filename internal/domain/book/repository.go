package book

import (
	"context"

	"github.com/google/uuid"
)

// ListParams 列表查询参数
type ListParams struct {
	AuthorID *uuid.UUID // 按作者过滤,nil表示不过滤
	Keyword  string     // 标题模糊搜索
	Sort     string     // 排序字段: title | published_at
	Limit    int
	Offset   int
}

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现,便于Mock测试
// 2. TryDecrementStock是库存台账的唯一扣减入口:
//    业务上的库存不足不是error,用返回值表达;error只代表存储层故障
type Repository interface {
	// Create 创建图书(库存台账随图书一起建账)
	Create(ctx context.Context, b *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id uuid.UUID) (*Book, error)

	// List 分页查询图书列表
	List(ctx context.Context, params ListParams) ([]*Book, error)

	// ExistsDuplicate 判断同作者同年份的同名图书是否已存在
	ExistsDuplicate(ctx context.Context, title string, authorID uuid.UUID, year int) (bool, error)

	// TryDecrementStock 条件扣减库存(乐观锁CAS)
	//
	// 语义:
	//   - 图书不存在: 返回 (false, 0, nil)
	//   - 库存不足:   返回 (false, 当前库存, nil),不写库
	//   - CAS落败(并发写者抢先): 返回 (false, 读到的库存, nil),调用方不在本次确认内重试
	//   - 成功:       返回 (true, 扣减前库存, nil),stock-=qty且version+=1,恰好一次
	//
	// observed始终是本次尝试前读到的库存值,用于缺货上报
	TryDecrementStock(ctx context.Context, id uuid.UUID, qty int) (ok bool, observed int, err error)
}
