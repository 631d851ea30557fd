package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/books-orders/internal/domain/order"
	apperrors "github.com/xiebiao/books-orders/pkg/errors"
)

// idempotencyStore 幂等记录存储实现(PostgreSQL)
// 幂等表和业务表在同一个租户schema内:Key天然按租户隔离
type idempotencyStore struct {
	db *gorm.DB
}

// NewIdempotencyStore 创建幂等记录存储
func NewIdempotencyStore(db *gorm.DB) order.IdempotencyStore {
	return &idempotencyStore{db: db}
}

// Get 按Key查找记录,不存在返回(nil, nil)
func (s *idempotencyStore) Get(ctx context.Context, key string) (*order.IdempotencyRecord, error) {
	var model IdempotencyKeyModel
	err := getDB(ctx, s.db).First(&model, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "查询幂等记录失败")
	}
	return &order.IdempotencyRecord{
		Key:       model.Key,
		OrderID:   model.OrderID,
		Response:  model.Response,
		CreatedAt: model.CreatedAt,
	}, nil
}

// Save 写入记录(insert-if-absent)
// 教学要点:ON CONFLICT DO NOTHING实现first-writer-wins——
// 两个并发请求带同一个Key到达,后写者静默落败,存档保持先写者的响应
func (s *idempotencyStore) Save(ctx context.Context, rec *order.IdempotencyRecord) error {
	model := &IdempotencyKeyModel{
		Key:      rec.Key,
		OrderID:  rec.OrderID,
		Response: rec.Response,
	}
	err := getDB(ctx, s.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model).Error
	if err != nil {
		return apperrors.Wrap(err, "写入幂等记录失败")
	}
	return nil
}
