package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xiebiao/books-orders/internal/domain/author"
	apperrors "github.com/xiebiao/books-orders/pkg/errors"
)

// authorRepository 作者仓储实现(PostgreSQL)
// 设计说明:
// 1. 实现domain/author/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 唯一约束冲突按约束名区分是姓名重复还是邮箱重复,转换为业务错误
type authorRepository struct {
	db *gorm.DB
}

// NewAuthorRepository 创建作者仓储
func NewAuthorRepository(db *gorm.DB) author.Repository {
	return &authorRepository{db: db}
}

// Create 创建作者
func (r *authorRepository) Create(ctx context.Context, a *author.Author) error {
	model := toAuthorModel(a)

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			if constraintIn(err, "uq_authors_email") {
				return author.ErrEmailDuplicate
			}
			return author.ErrNameDuplicate
		}
		return apperrors.Wrap(err, "创建作者失败")
	}

	a.CreatedAt = model.CreatedAt
	a.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找作者
func (r *authorRepository) FindByID(ctx context.Context, id uuid.UUID) (*author.Author, error) {
	var model AuthorModel
	err := getDB(ctx, r.db).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, author.ErrAuthorNotFound
		}
		return nil, apperrors.Wrap(err, "查询作者失败")
	}
	return toAuthorEntity(&model), nil
}

// List 分页查询作者列表(按姓名模糊搜索)
func (r *authorRepository) List(ctx context.Context, q string, limit, offset int) ([]*author.Author, error) {
	var models []AuthorModel

	query := getDB(ctx, r.db).Model(&AuthorModel{})
	if q != "" {
		query = query.Where("name ILIKE ?", "%"+q+"%")
	}

	err := query.Order("name ASC").Limit(limit).Offset(offset).Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询作者列表失败")
	}

	authors := make([]*author.Author, len(models))
	for i := range models {
		authors[i] = toAuthorEntity(&models[i])
	}
	return authors, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toAuthorModel(a *author.Author) *AuthorModel {
	model := &AuthorModel{
		ID:   a.ID,
		Name: a.Name,
	}
	// 空邮箱存NULL:citext唯一索引对NULL不生效,允许多个作者不填邮箱
	if a.Email != "" {
		email := a.Email
		model.Email = &email
	}
	return model
}

func toAuthorEntity(model *AuthorModel) *author.Author {
	a := &author.Author{
		ID:        model.ID,
		Name:      model.Name,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	if model.Email != nil {
		a.Email = *model.Email
	}
	return a
}
