package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xiebiao/books-orders/internal/domain/book"
	"github.com/xiebiao/books-orders/internal/domain/order"
	apperrors "github.com/xiebiao/books-orders/pkg/errors"
)

// orderRepository 订单仓储实现(PostgreSQL)
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// CreateDraft 创建草稿订单(订单和订单行在同一事务中落库)
// 订单行的ProductID外键冲突说明引用了不存在的图书
func (r *orderRepository) CreateDraft(ctx context.Context, o *order.Order) error {
	model := &OrderModel{
		ID:     o.ID,
		Status: string(o.Status),
		Items:  make([]OrderItemModel, len(o.Lines)),
	}
	for i, line := range o.Lines {
		model.Items[i] = OrderItemModel{
			ID:        uuid.New(),
			OrderID:   o.ID,
			ProductID: line.ProductID,
			Qty:       line.Qty,
			Position:  line.Position,
		}
	}

	// GORM的关联写入:Create会连同Items一起INSERT
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isForeignKeyError(err) {
			return book.ErrBookNotFound
		}
		return apperrors.Wrap(err, "创建订单失败")
	}

	o.CreatedAt = model.CreatedAt
	return nil
}

// FindByID 根据ID查找订单(订单行按Position排序)
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model OrderModel
	err := getDB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	return toOrderEntity(&model), nil
}

// UpdateStatus 条件更新订单状态
// 教学要点:WHERE status=from是并发确认的守卫——
// 两个事务同时走到这里,只有一个能匹配到行;另一个0行受影响,
// 返回ErrInvalidStatusTransition让调用方整体回滚
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to order.Status) error {
	result := getDB(ctx, r.db).Model(&OrderModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Update("status", string(to))
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新订单状态失败")
	}
	if result.RowsAffected == 0 {
		return order.ErrInvalidStatusTransition
	}
	return nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toOrderEntity(model *OrderModel) *order.Order {
	lines := make([]order.Line, len(model.Items))
	for i, item := range model.Items {
		lines[i] = order.Line{
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Qty:       item.Qty,
			Position:  item.Position,
		}
	}
	return &order.Order{
		ID:        model.ID,
		Status:    order.Status(model.Status),
		Lines:     lines,
		CreatedAt: model.CreatedAt,
	}
}
