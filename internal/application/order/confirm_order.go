package order

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/xiebiao/books-orders/internal/application/port"
	"github.com/xiebiao/books-orders/internal/domain/book"
	"github.com/xiebiao/books-orders/internal/domain/order"
	"github.com/xiebiao/books-orders/pkg/metrics"
)

// RoutingKeyOrderConfirmed 订单确认事件的路由键
const RoutingKeyOrderConfirmed = "order.confirmed"

// ConfirmOrderUseCase 确认订单用例(整个系统最核心的用例)
//
// 教学要点:确认 = 幂等重放 + 乐观锁扣库存 + 守卫式状态翻转,三件事缺一不可
//
// 核心问题1:库存超卖
// 场景:库存10本,100个请求同时确认
// 方案:乐观锁CAS —— UPDATE ... SET stock=stock-?, version=version+1
//
//	WHERE id=? AND version=? AND stock>=?
//
// 只有version没变的那个写者成功,落败者在本次确认内不重试,直接上报
//
// 核心问题2:重复提交
// 场景:客户端超时重发同一个确认请求
// 方案:Idempotency-Key请求头 + 幂等记录表,首次成功的响应JSON存档,
// 重放时原样返回(字节级一致),库存绝不二次扣减
//
// 核心问题3:并发确认同一订单
// 场景:两个请求同时确认同一个DRAFT订单
// 方案:状态翻转带WHERE status='DRAFT'守卫,只有一个事务翻转成功,
// 落败事务整体回滚,已做的扣减一并撤销
type ConfirmOrderUseCase struct {
	orderRepo order.Repository
	bookRepo  book.Repository
	idemStore order.IdempotencyStore
	txManager port.TxManager
	publisher port.EventPublisher // 可为nil(未配置MQ时)
}

// NewConfirmOrderUseCase 创建确认用例
func NewConfirmOrderUseCase(
	orderRepo order.Repository,
	bookRepo book.Repository,
	idemStore order.IdempotencyStore,
	txManager port.TxManager,
	publisher port.EventPublisher,
) *ConfirmOrderUseCase {
	return &ConfirmOrderUseCase{
		orderRepo: orderRepo,
		bookRepo:  bookRepo,
		idemStore: idemStore,
		txManager: txManager,
		publisher: publisher,
	}
}

// ConfirmOrderRequest 确认请求DTO
type ConfirmOrderRequest struct {
	OrderID        uuid.UUID
	IdempotencyKey string // Idempotency-Key请求头,可为空
}

// ConfirmOrderResponse 确认响应DTO(首次确认时构建并存档)
// created_at是订单的创建时间,不是确认时间:同一订单无论确认几次,响应内容都一样
type ConfirmOrderResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// ConfirmOrderResult 确认结果
// Body是最终要返回给客户端的JSON:重放时为存档原文,保证字节级一致
type ConfirmOrderResult struct {
	Body     json.RawMessage
	Replayed bool // 是否为幂等重放
}

// confirmedEvent 发往MQ的订单确认事件
type confirmedEvent struct {
	OrderID     string    `json:"order_id"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// Execute 执行确认
//
// 流程:
//  1. 有幂等Key → 查幂等记录,命中直接重放存档响应
//  2. 加载订单:CONFIRMED → 幂等成功;CANCELLED → 拒绝;非DRAFT其余 → 拒绝
//  3. 单事务:按行序逐行CAS扣库存(收集全部缺货行,不提前退出)
//     + 守卫式状态翻转;任何失败整体回滚
//  4. 提交后:尽力写幂等记录、发确认事件(失败只记日志,不影响结果)
func (uc *ConfirmOrderUseCase) Execute(ctx context.Context, req ConfirmOrderRequest) (*ConfirmOrderResult, error) {
	start := time.Now()

	// ========================================
	// 步骤1:幂等重放检查 + 加载订单
	// ========================================
	var (
		replay []byte
		o      *order.Order
	)
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if req.IdempotencyKey != "" {
			rec, err := uc.idemStore.Get(txCtx, req.IdempotencyKey)
			if err != nil {
				return err
			}
			if rec != nil {
				// 命中幂等记录:后面不再加载订单,直接重放
				replay = rec.Response
				return nil
			}
		}
		var err error
		o, err = uc.orderRepo.FindByID(txCtx, req.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if replay != nil {
		return &ConfirmOrderResult{Body: replay, Replayed: true}, nil
	}

	// ========================================
	// 步骤2:状态检查
	// ========================================
	switch {
	case o.Status == order.StatusConfirmed:
		// 已确认的订单重复确认是幂等成功:合成响应,不碰库存
		// 教学要点:这条路径也要补写幂等记录,让后续重放拿到一致的响应
		body, err := uc.buildResponse(o)
		if err != nil {
			return nil, err
		}
		uc.saveIdempotencyRecord(ctx, req.IdempotencyKey, o.ID, body)
		return &ConfirmOrderResult{Body: body}, nil

	case o.Status == order.StatusCancelled:
		return nil, order.ErrOrderCancelled

	case !o.IsDraft():
		return nil, order.ErrInvalidStatusTransition
	}

	// ========================================
	// 步骤3:单事务扣库存 + 状态翻转
	// ========================================
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		var shortages []order.Shortage

		// 按Position顺序逐行扣减
		// 教学要点:固定扣减顺序能降低(虽不能消除)跨订单的冲突概率;
		// 缺货不触发提前退出,要把所有缺货行收齐后一次性上报
		for _, line := range o.Lines {
			ok, observed, err := uc.bookRepo.TryDecrementStock(txCtx, line.ProductID, line.Qty)
			if err != nil {
				return err
			}
			if ok {
				continue
			}
			if observed >= line.Qty {
				// 库存本来够,是version变了(并发写者抢先):CAS落败
				metrics.IncConfirmConflicts()
			}
			shortages = append(shortages, order.Shortage{
				ProductID: line.ProductID,
				Requested: line.Qty,
				Available: observed,
			})
		}

		if len(shortages) > 0 {
			// 返回error触发ROLLBACK:已成功扣减的行一并撤销,库存不会被部分占用
			metrics.AddShortageLines(len(shortages))
			return &order.InsufficientStockError{Shortages: shortages}
		}

		// 守卫式状态翻转:WHERE status='DRAFT',并发确认只有一个能成功
		return uc.orderRepo.UpdateStatus(txCtx, o.ID, order.StatusDraft, order.StatusConfirmed)
	})
	if err != nil {
		// 状态翻转落败:另一边刚刚确认成功,重新加载后按幂等成功处理
		if errors.Is(err, order.ErrInvalidStatusTransition) {
			return uc.replayAfterRace(ctx, req)
		}
		return nil, err
	}

	// ========================================
	// 步骤4:提交后的尽力而为动作
	// ========================================
	body, err := uc.buildResponse(o)
	if err != nil {
		return nil, err
	}
	uc.saveIdempotencyRecord(ctx, req.IdempotencyKey, o.ID, body)
	uc.publishConfirmed(ctx, o.ID)

	metrics.IncOrdersConfirmed()
	metrics.ObserveConfirmDuration(time.Since(start).Seconds())

	return &ConfirmOrderResult{Body: body}, nil
}

// buildResponse 构建确认响应JSON
// 设计说明:只序列化一次,同一份字节既存档又返回,保证重放字节级一致
func (uc *ConfirmOrderUseCase) buildResponse(o *order.Order) ([]byte, error) {
	resp := ConfirmOrderResponse{
		ID:        o.ID.String(),
		Status:    string(order.StatusConfirmed),
		CreatedAt: o.CreatedAt.UTC().Format(time.RFC3339),
	}
	return json.Marshal(resp)
}

// replayAfterRace 并发确认落败后的兜底
// 重新加载订单:对方已翻成CONFIRMED则按幂等成功返回,否则原样报错
func (uc *ConfirmOrderUseCase) replayAfterRace(ctx context.Context, req ConfirmOrderRequest) (*ConfirmOrderResult, error) {
	var o *order.Order
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		o, err = uc.orderRepo.FindByID(txCtx, req.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if o.Status != order.StatusConfirmed {
		return nil, order.ErrInvalidStatusTransition
	}

	body, err := uc.buildResponse(o)
	if err != nil {
		return nil, err
	}
	uc.saveIdempotencyRecord(ctx, req.IdempotencyKey, o.ID, body)
	return &ConfirmOrderResult{Body: body}, nil
}

// saveIdempotencyRecord 尽力写幂等记录(提交后执行,失败只记日志)
// 教学要点:Save是insert-if-absent,两个带同Key的请求并发到这里,
// 先到者的响应成为存档,后到者静默落败 —— first-writer-wins
func (uc *ConfirmOrderUseCase) saveIdempotencyRecord(ctx context.Context, key string, orderID uuid.UUID, body []byte) {
	if key == "" {
		return
	}
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		return uc.idemStore.Save(txCtx, &order.IdempotencyRecord{
			Key:       key,
			OrderID:   orderID,
			Response:  body,
			CreatedAt: time.Now(),
		})
	})
	if err != nil {
		log.Warn().Err(err).
			Str("idempotency_key", key).
			Str("order_id", orderID.String()).
			Msg("写幂等记录失败,客户端重试时将重新合成响应")
	}
}

// publishConfirmed 尽力发布订单确认事件
func (uc *ConfirmOrderUseCase) publishConfirmed(ctx context.Context, orderID uuid.UUID) {
	if uc.publisher == nil {
		return
	}
	ev := confirmedEvent{
		OrderID:     orderID.String(),
		ConfirmedAt: time.Now().UTC(),
	}
	if err := uc.publisher.Publish(ctx, RoutingKeyOrderConfirmed, ev); err != nil {
		log.Warn().Err(err).
			Str("order_id", orderID.String()).
			Msg("发布订单确认事件失败")
	}
}
