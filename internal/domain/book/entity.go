package book

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Book 图书实体(聚合根),同时是库存台账的记账对象
// 设计说明:
// 1. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 2. Stock是当前可售库存,只能通过库存台账的条件扣减操作变更
// 3. Version是乐观锁版本号,从1开始,每次扣减成功+1,失败不变
// 4. PublishedAt可选(有些书录入时不知道出版日期)
type Book struct {
	ID          uuid.UUID
	Title       string
	AuthorID    uuid.UUID // 关联作者(跨聚合只存ID)
	Price       int64     // 价格(单位:分,1元=100分)
	Stock       int       // 库存数量,恒>=0
	PublishedAt *time.Time
	Version     int // 乐观锁版本号
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBook 创建新图书(工厂方法)
// 业务规则:标题非空,价格>=0,库存>=0
func NewBook(title string, authorID uuid.UUID, price int64, stock int, publishedAt *time.Time) (*Book, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if price < 0 {
		return nil, ErrInvalidPrice
	}
	if stock < 0 {
		return nil, ErrInvalidStock
	}

	now := time.Now()
	return &Book{
		ID:          uuid.New(),
		Title:       title,
		AuthorID:    authorID,
		Price:       price,
		Stock:       stock,
		PublishedAt: publishedAt,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// PublishedYear 出版年份(未填出版日期返回0)
func (b *Book) PublishedYear() int {
	if b.PublishedAt == nil {
		return 0
	}
	return b.PublishedAt.Year()
}
