package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xiebiao/books-orders/internal/domain/book"
	apperrors "github.com/xiebiao/books-orders/pkg/errors"
)

// bookRepository 图书仓储实现(PostgreSQL)
// TryDecrementStock是整个系统并发正确性的基石,详见方法注释
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isForeignKeyError(err) {
			return book.ErrAuthorNotExists
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uuid.UUID) (*book.Book, error) {
	var model BookModel
	err := getDB(ctx, r.db).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

// List 分页查询图书列表
func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, error) {
	var models []BookModel

	query := getDB(ctx, r.db).Model(&BookModel{})
	if params.AuthorID != nil {
		query = query.Where("author_id = ?", *params.AuthorID)
	}
	if params.Keyword != "" {
		query = query.Where("title ILIKE ?", "%"+params.Keyword+"%")
	}

	// 排序白名单:排序字段来自查询串,绝不能直接拼SQL
	switch params.Sort {
	case "title":
		query = query.Order("title ASC")
	case "published_at":
		query = query.Order("published_at DESC NULLS LAST")
	default:
		query = query.Order("created_at DESC")
	}

	err := query.Limit(params.Limit).Offset(params.Offset).Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询图书列表失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, nil
}

// ExistsDuplicate 判断同作者同年份的同名图书是否已存在
// year为0表示未填出版日期,此时按published_at IS NULL匹配
func (r *bookRepository) ExistsDuplicate(ctx context.Context, title string, authorID uuid.UUID, year int) (bool, error) {
	query := getDB(ctx, r.db).Model(&BookModel{}).
		Where("title = ? AND author_id = ?", title, authorID)
	if year == 0 {
		query = query.Where("published_at IS NULL")
	} else {
		query = query.Where("EXTRACT(YEAR FROM published_at) = ?", year)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, apperrors.Wrap(err, "查询图书重复失败")
	}
	return count > 0, nil
}

// TryDecrementStock 条件扣减库存(乐观锁CAS)
//
// 教学重点:防止超卖的无锁实现
//
// 悲观锁方案(SELECT FOR UPDATE)在高并发下会让请求排队等锁;
// 乐观锁把"检查+扣减"压缩成一条带version守卫的UPDATE:
//
//	UPDATE books SET stock = stock - ?, version = version + 1
//	WHERE id = ? AND version = ? AND stock >= ?
//
// 两个并发写者读到同一个version,只有先提交的UPDATE能匹配到行;
// 后者0行受影响,即CAS落败。落败不在本方法内重试,由调用方决定策略
func (r *bookRepository) TryDecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, int, error) {
	db := getDB(ctx, r.db)

	// 步骤1:读当前库存和version(observed用于缺货上报)
	var row struct {
		Stock   int
		Version int
	}
	err := db.Model(&BookModel{}).Select("stock", "version").
		Where("id = ?", id).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, 0, nil
		}
		return false, 0, apperrors.Wrap(err, "读取库存失败")
	}

	// 步骤2:库存不足直接短路,不发UPDATE
	if row.Stock < qty {
		return false, row.Stock, nil
	}

	// 步骤3:CAS扣减
	result := db.Model(&BookModel{}).
		Where("id = ? AND version = ? AND stock >= ?", id, row.Version, qty).
		Updates(map[string]interface{}{
			"stock":   gorm.Expr("stock - ?", qty),
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, row.Stock, apperrors.Wrap(result.Error, "扣减库存失败")
	}
	if result.RowsAffected == 0 {
		// version变了:并发写者抢先提交,CAS落败
		return false, row.Stock, nil
	}
	return true, row.Stock, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:          b.ID,
		Title:       b.Title,
		AuthorID:    b.AuthorID,
		Price:       b.Price,
		Stock:       b.Stock,
		Version:     b.Version,
		PublishedAt: b.PublishedAt,
	}
}

func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:          model.ID,
		Title:       model.Title,
		AuthorID:    model.AuthorID,
		Price:       model.Price,
		Stock:       model.Stock,
		Version:     model.Version,
		PublishedAt: model.PublishedAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
