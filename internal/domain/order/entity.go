package order

import (
	"time"

	"github.com/google/uuid"
)

// Status 订单状态
// 设计说明:
// 1. 直接存字符串(与API返回值一致,数据库加CHECK约束)
// 2. DRAFT是唯一可变状态;CONFIRMED和CANCELLED是终态,不可逆转
type Status string

const (
	StatusDraft     Status = "DRAFT"     // 草稿,等待确认
	StatusConfirmed Status = "CONFIRMED" // 已确认(终态,库存已扣减)
	StatusCancelled Status = "CANCELLED" // 已取消(终态,由外部取消流程产生)
)

// Valid 判断是否为合法状态值
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusConfirmed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal 判断是否为终态
func (s Status) Terminal() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

// transitions 合法的状态转换表
// 状态机设计:终态没有后续状态,保证单调性(一旦CONFIRMED/CANCELLED不会回到DRAFT)
var transitions = map[Status][]Status{
	StatusDraft:     {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {},
	StatusCancelled: {},
}

// Order 订单实体(聚合根)
// 设计说明:
// 1. Order是聚合根,Line是子实体,必须通过Order访问
// 2. Lines按Position排列(创建时的插入顺序),确认时按此顺序逐行扣库存
type Order struct {
	ID        uuid.UUID
	Status    Status
	Lines     []Line
	CreatedAt time.Time
}

// Line 订单行
// 创建后不可变;ProductID引用图书(跨聚合只存ID,不持有Book对象)
type Line struct {
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Qty       int
	Position  int // 行序号,从1开始
}

// NewDraft 创建草稿订单(工厂方法)
// 业务规则:至少一行,每行数量>0;行序号按传入顺序编号
func NewDraft(lines []LineInput) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyLines
	}

	id := uuid.New()
	orderLines := make([]Line, len(lines))
	for i, in := range lines {
		if in.Qty <= 0 {
			return nil, ErrInvalidQty
		}
		orderLines[i] = Line{
			OrderID:   id,
			ProductID: in.ProductID,
			Qty:       in.Qty,
			Position:  i + 1,
		}
	}

	return &Order{
		ID:        id,
		Status:    StatusDraft,
		Lines:     orderLines,
		CreatedAt: time.Now(),
	}, nil
}

// LineInput 创建订单行的输入
type LineInput struct {
	ProductID uuid.UUID
	Qty       int
}

// CanTransitionTo 检查是否可以转换到目标状态
func (o *Order) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[o.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态转换(非法跳转返回错误)
func (o *Order) TransitionTo(target Status) error {
	if !o.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	o.Status = target
	return nil
}

// Confirm 确认订单(领域行为)
func (o *Order) Confirm() error {
	return o.TransitionTo(StatusConfirmed)
}

// Cancel 取消订单(领域行为,由外部取消流程调用)
func (o *Order) Cancel() error {
	return o.TransitionTo(StatusCancelled)
}

// IsDraft 是否处于草稿状态
func (o *Order) IsDraft() bool {
	return o.Status == StatusDraft
}
