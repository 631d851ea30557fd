package author

import (
	"context"

	"github.com/xiebiao/books-orders/internal/application/port"
	"github.com/xiebiao/books-orders/internal/domain/author"
)

// ListAuthorsUseCase 作者列表用例
type ListAuthorsUseCase struct {
	authorRepo author.Repository
	txManager  port.TxManager
}

// NewListAuthorsUseCase 创建列表用例
func NewListAuthorsUseCase(authorRepo author.Repository, txManager port.TxManager) *ListAuthorsUseCase {
	return &ListAuthorsUseCase{
		authorRepo: authorRepo,
		txManager:  txManager,
	}
}

// ListAuthorsRequest 列表请求DTO
type ListAuthorsRequest struct {
	Query  string // 姓名模糊搜索(可选)
	Limit  int    // 每页数量,默认20,最大100
	Offset int    // 偏移量,默认0
}

// AuthorItem 列表项
type AuthorItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at"`
}

// NormalizePage 规整分页参数
// 教学要点:分页参数从查询串来,必须服务端兜底,防止limit=0或超大offset拖垮数据库
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Execute 执行列表查询
func (uc *ListAuthorsUseCase) Execute(ctx context.Context, req ListAuthorsRequest) ([]AuthorItem, error) {
	limit, offset := NormalizePage(req.Limit, req.Offset)

	var authors []*author.Author
	// 只读查询同样走事务管理器:search_path只在事务内生效
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		authors, err = uc.authorRepo.List(txCtx, req.Query, limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]AuthorItem, 0, len(authors))
	for _, a := range authors {
		items = append(items, AuthorItem{
			ID:        a.ID.String(),
			Name:      a.Name,
			Email:     a.Email,
			CreatedAt: a.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return items, nil
}
