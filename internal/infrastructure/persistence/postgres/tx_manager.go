package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/xiebiao/books-orders/internal/domain/tenant"
)

// TxManager 事务管理器
// 教学要点:
// 1. 封装GORM的Transaction方法,fn返回error自动ROLLBACK,返回nil自动COMMIT
// 2. 通过context传递事务DB(避免全局变量),Repository的getDB方法从context提取
// 3. 租户隔离的落点就在这里:事务的第一条语句把context中的租户
//    设置为本事务的search_path,之后所有不带schema前缀的表名都解析到租户schema
//
// SET LOCAL的作用域是当前事务:COMMIT/ROLLBACK后自动还原,
// 连接归还连接池时不会携带上一个租户的search_path(不会串租户)
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 在租户schema内执行事务
// context中必须携带租户(由X-Tenant中间件写入),否则拒绝执行——
// 宁可报错也不能让查询落到错误的schema
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	name, ok := tenant.FromContext(ctx)
	if !ok {
		return tenant.ErrMissing
	}
	// 双保险:中间件已校验过,这里再挡一次,租户名绝不能带注入字符进DDL/SQL
	if !tenant.ValidName(name) {
		return tenant.ErrInvalidName
	}

	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// search_path带public兜底:citext等扩展装在public下
		setPath := fmt.Sprintf(`SET LOCAL search_path TO %q, public`, name)
		if err := tx.Exec(setPath).Error; err != nil {
			return fmt.Errorf("设置租户search_path失败: %w", err)
		}
		return fn(withTx(ctx, tx))
	})
}
