package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/books-orders/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明:
// 1. 使用GORM v2作为ORM框架,驱动为pgx
// 2. 配置连接池参数(MaxOpenConns、MaxIdleConns、ConnMaxLifetime)
// 3. 开发环境开启SQL日志,生产环境关闭
// 4. 这里不做AutoMigrate:表结构按租户schema迁移,见tenant_schema.go
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	return db, nil
}

// =========================================
// GORM数据模型
// 设计说明:
// 1. infrastructure层的数据模型,包含GORM tag;domain层实体不依赖GORM
// 2. Repository负责两者之间的转换
// 3. 模型不带schema前缀:表落在哪个schema由事务的search_path决定
// =========================================

// AuthorModel GORM作者模型
// Email使用citext类型,唯一索引天然不区分大小写
type AuthorModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"uniqueIndex:uq_authors_name;size:200;not null"`
	Email     *string   `gorm:"uniqueIndex:uq_authors_email;type:citext"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定表名
func (AuthorModel) TableName() string {
	return "authors"
}

// BookModel GORM图书模型
// 教学要点:
// 1. Version列是乐观锁的全部:每次成功扣库存version+1,
//    并发写者按旧version更新时0行受影响,即CAS落败
// 2. CHECK约束兜底:即使应用层有bug,库存也不可能为负
type BookModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Title       string     `gorm:"index:idx_books_title;size:500;not null"`
	AuthorID    uuid.UUID  `gorm:"type:uuid;index;not null"`
	Author      *AuthorModel `gorm:"foreignKey:AuthorID"`
	Price       int64      `gorm:"not null;check:price >= 0"` // 价格(分)
	Stock       int        `gorm:"not null;default:0;check:stock >= 0"`
	Version     int        `gorm:"not null;default:1"`
	PublishedAt *time.Time `gorm:"type:date"`
	CreatedAt   time.Time  `gorm:"index"`
	UpdatedAt   time.Time
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// OrderModel GORM订单模型
// Status直接存字符串,CHECK约束限定合法值
type OrderModel struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Status    string           `gorm:"size:20;not null;default:DRAFT;check:status IN ('DRAFT','CONFIRMED','CANCELLED')"`
	Items     []OrderItemModel `gorm:"foreignKey:OrderID"` // 一对多关联
	CreatedAt time.Time        `gorm:"index"`
	UpdatedAt time.Time
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel GORM订单行模型
// Position记录行序号:确认时按此顺序逐行扣库存,同一订单内唯一
type OrderItemModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;uniqueIndex:uq_order_items_position;not null"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null"`
	Product   *BookModel `gorm:"foreignKey:ProductID"`
	Qty       int       `gorm:"not null;check:qty > 0"`
	Position  int       `gorm:"uniqueIndex:uq_order_items_position;not null"`
}

// TableName 指定表名
func (OrderItemModel) TableName() string {
	return "order_items"
}

// IdempotencyKeyModel GORM幂等记录模型
// Key是主键:insert-if-absent靠主键冲突+ON CONFLICT DO NOTHING实现
type IdempotencyKeyModel struct {
	Key       string    `gorm:"primaryKey;size:255"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Response  []byte    `gorm:"type:jsonb;not null"` // 首次确认的完整响应JSON
	CreatedAt time.Time
}

// TableName 指定表名
func (IdempotencyKeyModel) TableName() string {
	return "idempotency_keys"
}

// tenantModels 每个租户schema需要迁移的全部模型
func tenantModels() []interface{} {
	return []interface{}{
		&AuthorModel{},
		&BookModel{},
		&OrderModel{},
		&OrderItemModel{},
		&IdempotencyKeyModel{},
	}
}
