// Package metrics 提供基于Prometheus的指标收集
//
// 指标分两类：
// 1. HTTP层指标：请求总数、耗时分布、并发数（由metrics中间件记录）
// 2. 订单确认业务指标：确认成功数、乐观锁冲突数、缺货行数、确认耗时
//
// 命名规范：
// - Counter以_total结尾，Histogram以单位结尾（_seconds）
// - 标签只用低基数维度（method/path/status），不要用order_id等高基数值
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册）
	initialized bool

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method（GET/POST）、path（路由模板）、status（HTTP状态码）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 订单确认业务指标

	// OrdersConfirmedTotal 确认成功的订单总数（Counter）
	OrdersConfirmedTotal prometheus.Counter

	// OrderConfirmConflictsTotal 确认过程中乐观锁CAS落败次数（Counter）
	// 含义：读到的version在条件更新前被并发写者抢先，该行按缺货上报
	OrderConfirmConflictsTotal prometheus.Counter

	// OrderShortageLinesTotal 确认失败时上报的缺货行总数（Counter）
	OrderShortageLinesTotal prometheus.Counter

	// OrderConfirmDuration 订单确认耗时（Histogram）
	OrderConfirmDuration prometheus.Histogram
)

// InitMetrics 初始化并注册所有指标
// 必须在HTTP服务启动前调用一次；重复调用会被忽略
func InitMetrics() {
	if initialized {
		return
	}
	initialized = true

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP请求总数",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP请求耗时分布",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	}, []string{"method", "path"})

	HTTPRequestsInProgress = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_in_progress",
		Help: "正在处理的HTTP请求数",
	})

	OrdersConfirmedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_confirmed_total",
		Help: "确认成功的订单总数",
	})

	OrderConfirmConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_confirm_conflicts_total",
		Help: "订单确认中乐观锁冲突次数",
	})

	OrderShortageLinesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_shortage_lines_total",
		Help: "订单确认失败上报的缺货行总数",
	})

	OrderConfirmDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_confirm_duration_seconds",
		Help:    "订单确认耗时分布",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
}

// =========================================
// nil安全的记录函数
// =========================================
// 单元测试不调用InitMetrics，业务代码统一走这些函数避免空指针

// IncOrdersConfirmed 记录一次确认成功
func IncOrdersConfirmed() {
	if OrdersConfirmedTotal != nil {
		OrdersConfirmedTotal.Inc()
	}
}

// IncConfirmConflicts 记录一次乐观锁冲突
func IncConfirmConflicts() {
	if OrderConfirmConflictsTotal != nil {
		OrderConfirmConflictsTotal.Inc()
	}
}

// AddShortageLines 记录一次确认失败的缺货行数
func AddShortageLines(n int) {
	if OrderShortageLinesTotal != nil && n > 0 {
		OrderShortageLinesTotal.Add(float64(n))
	}
}

// ObserveConfirmDuration 记录一次确认耗时（秒）
func ObserveConfirmDuration(seconds float64) {
	if OrderConfirmDuration != nil {
		OrderConfirmDuration.Observe(seconds)
	}
}
