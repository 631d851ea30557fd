package book

import (
	"context"

	"github.com/google/uuid"

	appauthor "github.com/xiebiao/books-orders/internal/application/author"
	"github.com/xiebiao/books-orders/internal/application/port"
	"github.com/xiebiao/books-orders/internal/domain/book"
)

// ListBooksUseCase 图书列表用例
// 支持按作者过滤、标题关键字搜索和排序
type ListBooksUseCase struct {
	bookRepo  book.Repository
	txManager port.TxManager
}

// NewListBooksUseCase 创建列表用例
func NewListBooksUseCase(bookRepo book.Repository, txManager port.TxManager) *ListBooksUseCase {
	return &ListBooksUseCase{
		bookRepo:  bookRepo,
		txManager: txManager,
	}
}

// ListBooksRequest 列表请求DTO
type ListBooksRequest struct {
	AuthorID *uuid.UUID // 按作者过滤(可选)
	Keyword  string     // 标题模糊搜索(可选)
	Sort     string     // 排序:title/published_at,默认created_at
	Limit    int
	Offset   int
}

// BookItem 列表项
type BookItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	AuthorID    string `json:"author_id"`
	Price       int64  `json:"price"`
	Stock       int    `json:"stock"`
	PublishedAt string `json:"published_at,omitempty"`
	Version     int    `json:"version"`
	CreatedAt   string `json:"created_at"`
}

// Execute 执行列表查询
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) ([]BookItem, error) {
	limit, offset := appauthor.NormalizePage(req.Limit, req.Offset)
	params := book.ListParams{
		AuthorID: req.AuthorID,
		Keyword:  req.Keyword,
		Sort:     req.Sort,
		Limit:    limit,
		Offset:   offset,
	}

	var books []*book.Book
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		books, err = uc.bookRepo.List(txCtx, params)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]BookItem, 0, len(books))
	for _, b := range books {
		item := BookItem{
			ID:        b.ID.String(),
			Title:     b.Title,
			AuthorID:  b.AuthorID.String(),
			Price:     b.Price,
			Stock:     b.Stock,
			Version:   b.Version,
			CreatedAt: b.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if b.PublishedAt != nil {
			item.PublishedAt = b.PublishedAt.Format("2006-01-02")
		}
		items = append(items, item)
	}
	return items, nil
}
