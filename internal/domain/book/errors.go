package book

import (
	apperrors "github.com/xiebiao/books-orders/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrEmptyTitle 标题为空
	ErrEmptyTitle = apperrors.New(apperrors.ErrCodeInvalidParams, "图书标题不能为空")

	// ErrInvalidPrice 无效的价格
	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "价格不能为负数")

	// ErrInvalidStock 无效的库存
	ErrInvalidStock = apperrors.New(apperrors.ErrCodeInvalidParams, "库存不能为负数")

	// ErrDuplicateBook 同作者同年份的同名图书已存在
	ErrDuplicateBook = apperrors.New(apperrors.ErrCodeDuplicateEntry, "同作者同年份的同名图书已存在")

	// ErrAuthorNotExists 引用的作者不存在(外键约束)
	ErrAuthorNotExists = apperrors.New(apperrors.ErrCodeInvalidParams, "author_id对应的作者不存在")
)
