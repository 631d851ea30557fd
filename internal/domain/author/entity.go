package author

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Author 作者实体(聚合根)
// 设计说明:
// 1. 名字租户内唯一(数据库层保证唯一性)
// 2. Email可选,数据库用citext存储(大小写不敏感唯一)
type Author struct {
	ID        uuid.UUID
	Name      string
	Email     string // 可选,空串表示未填写
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAuthor 创建新作者(工厂方法)
// 名字首尾空白会被裁剪,空名字返回错误
func NewAuthor(name, email string) (*Author, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	now := time.Now()
	return &Author{
		ID:        uuid.New(),
		Name:      name,
		Email:     strings.TrimSpace(email),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
