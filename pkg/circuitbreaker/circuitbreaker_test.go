package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// newTestBreaker 创建时间可控的熔断器
func newTestBreaker(threshold int, cooldown time.Duration) (*Breaker, *time.Time) {
	b := New(threshold, cooldown)
	now := time.Now()
	b.now = func() time.Time { return now }
	return b, &now
}

// TestBreaker_StaysClosedOnSuccess 连续成功保持CLOSED
func TestBreaker_StaysClosedOnSuccess(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	for i := 0; i < 10; i++ {
		err := b.Execute(func() error { return nil })
		require.NoError(t, err)
	}

	assert.Equal(t, StateClosed, b.State())
}

// TestBreaker_TripsAfterThreshold 连续失败达到阈值后熔断
func TestBreaker_TripsAfterThreshold(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	for i := 0; i < 3; i++ {
		err := b.Execute(func() error { return errBoom })
		assert.ErrorIs(t, err, errBoom)
	}

	assert.Equal(t, StateOpen, b.State())

	// OPEN状态直接拒绝，不执行fn
	called := false
	err := b.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called, "OPEN状态不应该执行fn")
}

// TestBreaker_SuccessResetsFailureCount 中途成功会清零失败计数
func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	_ = b.Execute(func() error { return errBoom })
	_ = b.Execute(func() error { return errBoom })
	_ = b.Execute(func() error { return nil })
	_ = b.Execute(func() error { return errBoom })
	_ = b.Execute(func() error { return errBoom })

	assert.Equal(t, StateClosed, b.State(), "失败未连续，应仍为CLOSED")
}

// TestBreaker_HalfOpenRecovery 冷却后半开，试探成功恢复CLOSED
func TestBreaker_HalfOpenRecovery(t *testing.T) {
	b, now := newTestBreaker(1, time.Minute)

	_ = b.Execute(func() error { return errBoom })
	require.Equal(t, StateOpen, b.State())

	// 冷却时间到，转为HALF_OPEN
	*now = now.Add(time.Minute + time.Second)
	assert.Equal(t, StateHalfOpen, b.State())

	// 试探成功 → CLOSED
	err := b.Execute(func() error { return nil })
	require.NoError(t, err)
	assert.Equal(t, StateClosed, b.State())
}

// TestBreaker_HalfOpenFailureReopens 半开试探失败立即回到OPEN
func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b, now := newTestBreaker(1, time.Minute)

	_ = b.Execute(func() error { return errBoom })
	*now = now.Add(time.Minute + time.Second)
	require.Equal(t, StateHalfOpen, b.State())

	err := b.Execute(func() error { return errBoom })
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, StateOpen, b.State())
}
