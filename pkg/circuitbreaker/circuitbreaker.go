// Package circuitbreaker 提供三态熔断器
//
// 状态机：
//
//	CLOSED（正常）--连续失败达到阈值--> OPEN（熔断）
//	OPEN --冷却时间到--> HALF_OPEN（试探）
//	HALF_OPEN --试探成功--> CLOSED
//	HALF_OPEN --试探失败--> OPEN
//
// 用途：保护对Redis等旁路依赖的调用，依赖故障时快速失败，
// 由调用方降级（如租户缓存不可用时直接查数据库）
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State 熔断器状态
type State int

const (
	StateClosed   State = iota // 正常放行
	StateOpen                  // 熔断，直接拒绝
	StateHalfOpen              // 半开，放行一个试探请求
)

// String 实现Stringer接口(方便日志输出)
func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// ErrOpen 熔断器处于OPEN状态，调用被拒绝
var ErrOpen = errors.New("circuit breaker is open")

// Breaker 熔断器
type Breaker struct {
	mu sync.Mutex

	failureThreshold int           // 连续失败多少次后熔断
	cooldown         time.Duration // OPEN状态持续时间

	state    State
	failures int       // 连续失败计数
	openedAt time.Time // 进入OPEN状态的时间
	now      func() time.Time
}

// New 创建熔断器
func New(failureThreshold int, cooldown time.Duration) *Breaker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Breaker{
		failureThreshold: failureThreshold,
		cooldown:         cooldown,
		state:            StateClosed,
		now:              time.Now,
	}
}

// Execute 在熔断器保护下执行fn
// OPEN状态直接返回ErrOpen，不执行fn
func (b *Breaker) Execute(fn func() error) error {
	if err := b.allow(); err != nil {
		return err
	}

	err := fn()
	b.record(err == nil)
	return err
}

// State 返回当前状态（OPEN超过冷却时间会先转为HALF_OPEN）
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()
	return b.state
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refresh()
	if b.state == StateOpen {
		return ErrOpen
	}
	return nil
}

// refresh OPEN状态冷却结束后转入HALF_OPEN（调用方必须持有锁）
func (b *Breaker) refresh() {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cooldown {
		b.state = StateHalfOpen
	}
}

func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if success {
		b.failures = 0
		b.state = StateClosed
		return
	}

	// HALF_OPEN试探失败立即回到OPEN
	if b.state == StateHalfOpen {
		b.trip()
		return
	}

	b.failures++
	if b.failures >= b.failureThreshold {
		b.trip()
	}
}

// trip 进入OPEN状态（调用方必须持有锁）
func (b *Breaker) trip() {
	b.state = StateOpen
	b.failures = 0
	b.openedAt = b.now()
}
