package book

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/xiebiao/books-orders/internal/application/port"
	"github.com/xiebiao/books-orders/internal/domain/author"
	"github.com/xiebiao/books-orders/internal/domain/book"
)

// CreateBookUseCase 创建图书用例
// 设计说明:
// 1. 作者必须存在(外键),应用层先查作者再建书,并发窗口由数据库外键兜底
// 2. 重复定义:同作者+同标题+同出版年份视为重复
type CreateBookUseCase struct {
	bookRepo   book.Repository
	authorRepo author.Repository
	txManager  port.TxManager
}

// NewCreateBookUseCase 创建用例
func NewCreateBookUseCase(
	bookRepo book.Repository,
	authorRepo author.Repository,
	txManager port.TxManager,
) *CreateBookUseCase {
	return &CreateBookUseCase{
		bookRepo:   bookRepo,
		authorRepo: authorRepo,
		txManager:  txManager,
	}
}

// CreateBookRequest 创建图书请求DTO
type CreateBookRequest struct {
	Title       string     // 书名(必填)
	AuthorID    uuid.UUID  // 作者ID
	Price       int64      // 价格(分),必须>=0
	Stock       int        // 初始库存,必须>=0
	PublishedAt *time.Time // 出版日期(可选)
}

// CreateBookResponse 创建图书响应DTO
type CreateBookResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	AuthorID    string `json:"author_id"`
	Price       int64  `json:"price"`
	Stock       int    `json:"stock"`
	PublishedAt string `json:"published_at,omitempty"`
	Version     int    `json:"version"`
	CreatedAt   string `json:"created_at"`
}

// Execute 执行创建图书
func (uc *CreateBookUseCase) Execute(ctx context.Context, req CreateBookRequest) (*CreateBookResponse, error) {
	b, err := book.NewBook(req.Title, req.AuthorID, req.Price, req.Stock, req.PublishedAt)
	if err != nil {
		return nil, err
	}

	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 步骤1:确认作者存在
		if _, err := uc.authorRepo.FindByID(txCtx, req.AuthorID); err != nil {
			return book.ErrAuthorNotExists
		}

		// 步骤2:重复检查(同作者+同标题+同出版年份)
		dup, err := uc.bookRepo.ExistsDuplicate(txCtx, b.Title, b.AuthorID, b.PublishedYear())
		if err != nil {
			return err
		}
		if dup {
			return book.ErrDuplicateBook
		}

		// 步骤3:落库(version从1开始)
		return uc.bookRepo.Create(txCtx, b)
	})
	if err != nil {
		return nil, err
	}

	resp := &CreateBookResponse{
		ID:        b.ID.String(),
		Title:     b.Title,
		AuthorID:  b.AuthorID.String(),
		Price:     b.Price,
		Stock:     b.Stock,
		Version:   b.Version,
		CreatedAt: b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if b.PublishedAt != nil {
		resp.PublishedAt = b.PublishedAt.Format("2006-01-02")
	}
	return resp, nil
}
