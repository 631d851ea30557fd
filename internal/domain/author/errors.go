package author

import (
	apperrors "github.com/xiebiao/books-orders/pkg/errors"
)

// 作者领域错误定义
var (
	// ErrAuthorNotFound 作者不存在
	ErrAuthorNotFound = apperrors.New(apperrors.ErrCodeAuthorNotFound, "作者不存在")

	// ErrEmptyName 名字为空
	ErrEmptyName = apperrors.New(apperrors.ErrCodeInvalidParams, "作者名字不能为空")

	// ErrNameDuplicate 名字已存在
	ErrNameDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "作者名字已存在")

	// ErrEmailDuplicate 邮箱已存在
	ErrEmailDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "作者邮箱已存在")
)
