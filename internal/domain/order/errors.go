package order

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	apperrors "github.com/xiebiao/books-orders/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在")

	// ErrInvalidStatusTransition 非法的状态转换
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidOrderStatus, "订单状态不允许此操作")

	// ErrOrderCancelled 订单已取消,不能确认
	ErrOrderCancelled = apperrors.New(apperrors.ErrCodeOrderCancelled, "订单已取消,无法确认")

	// ErrEmptyLines 订单行为空
	ErrEmptyLines = apperrors.New(apperrors.ErrCodeInvalidParams, "订单明细不能为空")

	// ErrInvalidQty 购买数量不合法
	ErrInvalidQty = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")
)

// Shortage 单行缺货信息
// Available是扣减尝试前读到的库存(并发竞争时可能与最终值有偏差,容忍)
type Shortage struct {
	ProductID uuid.UUID `json:"product_id"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}

// InsufficientStockError 库存不足错误
// 设计说明:
// 1. 不是普通的sentinel error:携带完整的缺货清单(确认时评估所有行,一次返回全貌)
// 2. 实现pkg/errors的AppError()接口,HTTP层自动转成带details的冲突响应
type InsufficientStockError struct {
	Shortages []Shortage
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("库存不足: %d个商品缺货", len(e.Shortages))
}

// AppError 转换为应用错误(details携带缺货清单)
func (e *InsufficientStockError) AppError() *apperrors.AppError {
	return apperrors.NewWithDetails(
		apperrors.ErrCodeInsufficientStock,
		"库存不足",
		map[string]interface{}{"shortages": e.Shortages},
	)
}

// IsInsufficientStock 判断错误是否为库存不足
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}
