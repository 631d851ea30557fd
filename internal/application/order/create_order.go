package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/xiebiao/books-orders/internal/application/port"
	"github.com/xiebiao/books-orders/internal/domain/order"
)

// CreateOrderUseCase 创建草稿订单用例
// 设计说明:
// 1. 创建只落草稿,不碰库存;库存扣减全部发生在确认环节
// 2. 订单和订单行在同一事务中写入;ProductID的外键校验交给数据库,
//    外键冲突由仓储层翻译成"图书不存在"
type CreateOrderUseCase struct {
	orderRepo order.Repository
	txManager port.TxManager
}

// NewCreateOrderUseCase 创建下单用例
func NewCreateOrderUseCase(orderRepo order.Repository, txManager port.TxManager) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		orderRepo: orderRepo,
		txManager: txManager,
	}
}

// CreateOrderRequest 下单请求DTO
type CreateOrderRequest struct {
	Lines []CreateOrderLine
}

// CreateOrderLine 订单行输入
type CreateOrderLine struct {
	ProductID uuid.UUID
	Qty       int
}

// OrderLineView 订单行视图
type OrderLineView struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
	Position  int    `json:"position"`
}

// CreateOrderResponse 下单响应DTO
type CreateOrderResponse struct {
	OrderID   string          `json:"order_id"`
	Status    string          `json:"status"`
	Lines     []OrderLineView `json:"lines"`
	CreatedAt string          `json:"created_at"`
}

// Execute 执行下单
func (uc *CreateOrderUseCase) Execute(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	inputs := make([]order.LineInput, len(req.Lines))
	for i, l := range req.Lines {
		inputs[i] = order.LineInput{ProductID: l.ProductID, Qty: l.Qty}
	}

	// 工厂方法校验:至少一行、数量>0,行序号按传入顺序编号
	o, err := order.NewDraft(inputs)
	if err != nil {
		return nil, err
	}

	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		return uc.orderRepo.CreateDraft(txCtx, o)
	})
	if err != nil {
		return nil, err
	}

	lines := make([]OrderLineView, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderLineView{
			ProductID: l.ProductID.String(),
			Qty:       l.Qty,
			Position:  l.Position,
		}
	}
	return &CreateOrderResponse{
		OrderID:   o.ID.String(),
		Status:    string(o.Status),
		Lines:     lines,
		CreatedAt: o.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}
