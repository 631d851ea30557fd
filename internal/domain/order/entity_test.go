package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewDraft 草稿订单创建
func TestNewDraft(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()

	o, err := NewDraft([]LineInput{
		{ProductID: p1, Qty: 3},
		{ProductID: p2, Qty: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusDraft, o.Status)
	assert.NotEqual(t, uuid.Nil, o.ID)
	assert.False(t, o.CreatedAt.IsZero())

	require.Len(t, o.Lines, 2)
	// 行序号按传入顺序编号
	assert.Equal(t, 1, o.Lines[0].Position)
	assert.Equal(t, 2, o.Lines[1].Position)
	assert.Equal(t, p1, o.Lines[0].ProductID)
	assert.Equal(t, o.ID, o.Lines[0].OrderID)
}

// TestNewDraft_Invalid 非法输入
func TestNewDraft_Invalid(t *testing.T) {
	_, err := NewDraft(nil)
	assert.ErrorIs(t, err, ErrEmptyLines)

	_, err = NewDraft([]LineInput{{ProductID: uuid.New(), Qty: 0}})
	assert.ErrorIs(t, err, ErrInvalidQty)

	_, err = NewDraft([]LineInput{{ProductID: uuid.New(), Qty: -1}})
	assert.ErrorIs(t, err, ErrInvalidQty)
}

// TestOrder_StateMachine 状态机转换规则
func TestOrder_StateMachine(t *testing.T) {
	newOrder := func(s Status) *Order {
		o, err := NewDraft([]LineInput{{ProductID: uuid.New(), Qty: 1}})
		require.NoError(t, err)
		o.Status = s
		return o
	}

	t.Run("草稿可以确认", func(t *testing.T) {
		o := newOrder(StatusDraft)
		require.NoError(t, o.Confirm())
		assert.Equal(t, StatusConfirmed, o.Status)
	})

	t.Run("草稿可以取消", func(t *testing.T) {
		o := newOrder(StatusDraft)
		require.NoError(t, o.Cancel())
		assert.Equal(t, StatusCancelled, o.Status)
	})

	t.Run("终态不可再转换", func(t *testing.T) {
		for _, s := range []Status{StatusConfirmed, StatusCancelled} {
			o := newOrder(s)
			assert.ErrorIs(t, o.Confirm(), ErrInvalidStatusTransition)
			assert.ErrorIs(t, o.Cancel(), ErrInvalidStatusTransition)
			assert.ErrorIs(t, o.TransitionTo(StatusDraft), ErrInvalidStatusTransition)
			assert.Equal(t, s, o.Status, "失败的转换不应改变状态")
		}
	})
}

// TestStatus_Helpers 状态辅助方法
func TestStatus_Helpers(t *testing.T) {
	assert.True(t, StatusDraft.Valid())
	assert.True(t, StatusConfirmed.Valid())
	assert.True(t, StatusCancelled.Valid())
	assert.False(t, Status("SHIPPED").Valid())

	assert.False(t, StatusDraft.Terminal())
	assert.True(t, StatusConfirmed.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

// TestInsufficientStockError 缺货错误携带结构化清单
func TestInsufficientStockError(t *testing.T) {
	p := uuid.New()
	err := &InsufficientStockError{Shortages: []Shortage{
		{ProductID: p, Requested: 10, Available: 5},
	}}

	assert.True(t, IsInsufficientStock(err))
	assert.Contains(t, err.Error(), "1")

	appErr := err.AppError()
	assert.Equal(t, 40001, appErr.Code)
	details, ok := appErr.Details.(map[string]interface{})
	require.True(t, ok)
	shortages, ok := details["shortages"].([]Shortage)
	require.True(t, ok)
	require.Len(t, shortages, 1)
	assert.Equal(t, p, shortages[0].ProductID)
	assert.Equal(t, 10, shortages[0].Requested)
	assert.Equal(t, 5, shortages[0].Available)
}
