//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明:
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入不同,Wire在编译期生成代码:零运行时开销、
//    类型安全、编译期检测循环依赖
// 3. 工作流程:编写本文件 → `wire gen ./cmd/api` → 生成wire_gen.go
package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	appauthor "github.com/xiebiao/books-orders/internal/application/author"
	appbook "github.com/xiebiao/books-orders/internal/application/book"
	apporder "github.com/xiebiao/books-orders/internal/application/order"
	"github.com/xiebiao/books-orders/internal/application/port"
	apptenant "github.com/xiebiao/books-orders/internal/application/tenant"
	"github.com/xiebiao/books-orders/internal/domain/tenant"
	"github.com/xiebiao/books-orders/internal/infrastructure/config"
	"github.com/xiebiao/books-orders/internal/infrastructure/persistence/postgres"
	"github.com/xiebiao/books-orders/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/books-orders/internal/interface/http/handler"
	"github.com/xiebiao/books-orders/internal/interface/http/middleware"
	"github.com/xiebiao/books-orders/pkg/jwt"
	"github.com/xiebiao/books-orders/pkg/mq"
	"github.com/xiebiao/books-orders/pkg/response"
)

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	config.Load,
	postgres.NewDB,
	redis.NewClient,
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	postgres.NewAuthorRepository,
	postgres.NewBookRepository,
	postgres.NewOrderRepository,
	postgres.NewIdempotencyStore,
	postgres.NewTxManager,
	wire.Bind(new(port.TxManager), new(*postgres.TxManager)),
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appauthor.NewCreateAuthorUseCase,
	appauthor.NewListAuthorsUseCase,
	appbook.NewCreateBookUseCase,
	appbook.NewListBooksUseCase,
	apporder.NewCreateOrderUseCase,
	apporder.NewConfirmOrderUseCase,
	apptenant.NewBootstrapUseCase,
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideSchemaManager,
	middleware.NewTenantMiddleware,
	middleware.NewAdminMiddleware,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewAuthorHandler,
	handler.NewBookHandler,
	handler.NewOrderHandler,
	handler.NewTenantHandler,
)

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire)
}

// provideSchemaManager 组装schema管理器(PostgreSQL实现+Redis缓存装饰器)
func provideSchemaManager(db *gorm.DB, client *goredis.Client, cfg *config.Config) tenant.SchemaManager {
	return redis.NewTenantCache(postgres.NewSchemaManager(db), client, cfg.Redis.SchemaTTL)
}

// providePublisher 从配置创建事件发布器(MQ未启用时为nil,确认事件静默跳过)
func providePublisher(cfg *config.Config) (port.EventPublisher, error) {
	if !cfg.MQ.Enabled {
		return nil, nil
	}
	return mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
}

// provideGinEngine 创建并配置Gin引擎
func provideGinEngine(
	cfg *config.Config,
	authorHandler *handler.AuthorHandler,
	bookHandler *handler.BookHandler,
	orderHandler *handler.OrderHandler,
	tenantHandler *handler.TenantHandler,
	tenantMW *middleware.TenantMiddleware,
	adminMW *middleware.AdminMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Correlation())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		tenants := v1.Group("/tenants")
		tenants.Use(adminMW.RequireAdmin())
		{
			tenants.POST("/:tenant/bootstrap", tenantHandler.Bootstrap)
		}

		scoped := v1.Group("", tenantMW.Resolve())
		{
			authors := scoped.Group("/authors")
			{
				authors.POST("", authorHandler.Create)
				authors.GET("", authorHandler.List)
			}
			books := scoped.Group("/books")
			{
				books.POST("", bookHandler.Create)
				books.GET("", bookHandler.List)
			}
			orders := scoped.Group("/orders")
			{
				orders.POST("", orderHandler.Create)
				orders.POST("/:id/confirm", orderHandler.Confirm)
			}
		}
	}

	return r
}

// InitializeApp 初始化整个应用(Wire Injector)
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		applicationSet,
		middlewareSet,
		handlerSet,
		providePublisher,
		provideGinEngine,
	)
	return nil, nil
}
