package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// txCtxKey context中事务DB的键
type txCtxKey struct{}

// withTx 把事务DB注入context
func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txCtxKey{}, tx)
}

// getDB 从context获取事务DB,没有则使用默认DB
// 教学要点:事务传递机制——TxManager注入,各Repository提取,
// 同一个fn内的所有仓储操作自然落在同一事务(同一search_path)里
func getDB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txCtxKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}

// isDuplicateError 判断是否为唯一约束冲突
// PostgreSQL错误码23505: unique_violation
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "SQLSTATE 23505")
}

// isForeignKeyError 判断是否为外键约束冲突
// PostgreSQL错误码23503: foreign_key_violation
func isForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(err.Error(), "SQLSTATE 23503")
}

// constraintIn 判断冲突错误是否来自指定约束(按约束名匹配)
func constraintIn(err error, name string) bool {
	return err != nil && strings.Contains(err.Error(), name)
}
