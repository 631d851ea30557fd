package order

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// IdempotencyRecord 幂等记录
// 设计说明:
// 1. Key由调用方自选(Idempotency-Key请求头),租户内唯一
// 2. Response保存首次确认的完整响应JSON,重放时原样返回(字节级一致)
// 3. 记录只写一次,不更新不删除;同Key重复写入是静默no-op(first-writer-wins)
type IdempotencyRecord struct {
	Key       string
	OrderID   uuid.UUID
	Response  []byte // 序列化后的确认响应
	CreatedAt time.Time
}

// IdempotencyStore 幂等记录存储接口
type IdempotencyStore interface {
	// Get 按Key查找记录,不存在返回(nil, nil)
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)

	// Save 写入记录(insert-if-absent)
	// Key已存在时静默忽略,不报错,已有记录保持不变
	Save(ctx context.Context, rec *IdempotencyRecord) error
}
