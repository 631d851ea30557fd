// Package port 定义应用层依赖的基础设施接口
// 设计说明:应用层只面向接口编程,具体实现(PostgreSQL事务、RabbitMQ)在组装时注入,
// 单元测试用内存假实现替换
package port

import "context"

// TxManager 事务管理器接口
// Transaction内fn的所有仓储操作在同一数据库事务中执行:
// fn返回error自动ROLLBACK,返回nil自动COMMIT。
// 实现还负责把context中的租户名落成本事务的search_path
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher 领域事件发布接口(RabbitMQ实现)
// 发布失败不影响主流程(调用方自行决定是否忽略错误)
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body interface{}) error
}
