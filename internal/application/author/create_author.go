package author

import (
	"context"

	"github.com/xiebiao/books-orders/internal/application/port"
	"github.com/xiebiao/books-orders/internal/domain/author"
)

// CreateAuthorUseCase 创建作者用例
// 设计说明:
// 1. 应用层负责用例编排,输入输出使用DTO,与HTTP层解耦
// 2. 唯一性约束(姓名、邮箱)由数据库唯一索引兜底,仓储层把冲突翻译成领域错误
type CreateAuthorUseCase struct {
	authorRepo author.Repository
	txManager  port.TxManager
}

// NewCreateAuthorUseCase 创建用例
func NewCreateAuthorUseCase(authorRepo author.Repository, txManager port.TxManager) *CreateAuthorUseCase {
	return &CreateAuthorUseCase{
		authorRepo: authorRepo,
		txManager:  txManager,
	}
}

// CreateAuthorRequest 创建作者请求DTO
type CreateAuthorRequest struct {
	Name  string // 姓名(必填,自动去除首尾空白)
	Email string // 邮箱(可选,不区分大小写去重)
}

// CreateAuthorResponse 创建作者响应DTO
type CreateAuthorResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Execute 执行创建作者
func (uc *CreateAuthorUseCase) Execute(ctx context.Context, req CreateAuthorRequest) (*CreateAuthorResponse, error) {
	// 领域工厂方法负责校验和规整(去空白、邮箱小写)
	a, err := author.NewAuthor(req.Name, req.Email)
	if err != nil {
		return nil, err
	}

	// 教学要点:写操作统一走事务管理器,事务的第一条语句会把
	// context中的租户落成本事务的search_path,保证写入正确的schema
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		return uc.authorRepo.Create(txCtx, a)
	})
	if err != nil {
		return nil, err
	}

	return &CreateAuthorResponse{
		ID:        a.ID.String(),
		Name:      a.Name,
		Email:     a.Email,
		CreatedAt: a.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}
