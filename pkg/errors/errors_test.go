package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAppError_Error 错误信息格式
func TestAppError_Error(t *testing.T) {
	e := New(ErrCodeOrderNotFound, "订单不存在")
	assert.Equal(t, "[40403] 订单不存在", e.Error())

	wrapped := Wrap(errors.New("connection refused"), "数据库错误")
	assert.Contains(t, wrapped.Error(), "connection refused")
	assert.Equal(t, ErrCodeInternal, wrapped.Code)
}

// TestAppError_Unwrap 支持errors.Is穿透
func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	e := Wrap(inner, "外层")
	assert.ErrorIs(t, e, inner)
}

// TestGetAppError_Passthrough AppError原样提取（包括被fmt.Errorf包裹的）
func TestGetAppError_Passthrough(t *testing.T) {
	e := New(ErrCodeInsufficientStock, "库存不足")

	got := GetAppError(e)
	assert.Same(t, e, got)

	wrapped := fmt.Errorf("确认失败: %w", e)
	got = GetAppError(wrapped)
	assert.Same(t, e, got)
}

// TestGetAppError_Unknown 未知错误包装成Internal
func TestGetAppError_Unknown(t *testing.T) {
	got := GetAppError(errors.New("boom"))
	require.NotNil(t, got)
	assert.Equal(t, ErrCodeInternal, got.Code)
	assert.NotNil(t, got.Err)
}

// detailedErr 实现appErrorProvider的领域错误
type detailedErr struct{ n int }

func (e *detailedErr) Error() string { return "缺货" }
func (e *detailedErr) AppError() *AppError {
	return NewWithDetails(ErrCodeInsufficientStock, "库存不足", map[string]int{"lines": e.n})
}

// TestGetAppError_Provider 领域错误通过AppError()转换并保留详情
func TestGetAppError_Provider(t *testing.T) {
	err := fmt.Errorf("confirm: %w", &detailedErr{n: 2})

	got := GetAppError(err)
	assert.Equal(t, ErrCodeInsufficientStock, got.Code)
	assert.Equal(t, map[string]int{"lines": 2}, got.Details)
}
