package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

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
	"github.com/xiebiao/books-orders/pkg/logger"
	"github.com/xiebiao/books-orders/pkg/metrics"
	"github.com/xiebiao/books-orders/pkg/mq"
	"github.com/xiebiao/books-orders/pkg/response"
	"github.com/xiebiao/books-orders/pkg/tracing"

	_ "github.com/xiebiao/books-orders/docs" // swagger文档
)

// @title           Books Orders API
// @version         1.0
// @description     多租户图书订单服务:schema-per-tenant隔离,订单确认带乐观锁扣库存和幂等重放
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	if err := logger.Setup(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	log.Info().
		Int("port", cfg.Server.Port).
		Str("mode", cfg.Server.Mode).
		Str("database", fmt.Sprintf("%s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)).
		Msg("配置加载成功")

	// 3. 初始化指标和链路追踪
	metrics.InitMetrics()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer("books-orders", cfg.Tracing.Endpoint)
		if err != nil {
			log.Fatal().Err(err).Msg("初始化链路追踪失败")
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				log.Warn().Err(err).Msg("关闭链路追踪失败")
			}
		}()
	}

	// 4. 初始化基础设施连接
	db, err := postgres.NewDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("初始化数据库失败")
	}

	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("初始化Redis失败")
	}

	// MQ可选:未启用时确认事件静默跳过
	var publisher port.EventPublisher
	if cfg.MQ.Enabled {
		p, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
		if err != nil {
			log.Fatal().Err(err).Msg("初始化MQ失败")
		}
		defer p.Close()
		publisher = p
	}

	// 5. 依赖注入(手动组装;wire.go提供等价的Wire版本)
	// 依赖链:Repository ← UseCase ← Handler

	// 基础设施层
	authorRepo := postgres.NewAuthorRepository(db)
	bookRepo := postgres.NewBookRepository(db)
	orderRepo := postgres.NewOrderRepository(db)
	idemStore := postgres.NewIdempotencyStore(db)
	txManager := postgres.NewTxManager(db)
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire)

	// schema管理器套Redis缓存:中间件每个请求都查租户存在性,缓存挡掉绝大多数查询
	var schemas tenant.SchemaManager = postgres.NewSchemaManager(db)
	schemas = redis.NewTenantCache(schemas, redisClient, cfg.Redis.SchemaTTL)

	// 应用层
	createAuthorUseCase := appauthor.NewCreateAuthorUseCase(authorRepo, txManager)
	listAuthorsUseCase := appauthor.NewListAuthorsUseCase(authorRepo, txManager)
	createBookUseCase := appbook.NewCreateBookUseCase(bookRepo, authorRepo, txManager)
	listBooksUseCase := appbook.NewListBooksUseCase(bookRepo, txManager)
	createOrderUseCase := apporder.NewCreateOrderUseCase(orderRepo, txManager)
	confirmOrderUseCase := apporder.NewConfirmOrderUseCase(orderRepo, bookRepo, idemStore, txManager, publisher)
	bootstrapUseCase := apptenant.NewBootstrapUseCase(schemas)

	// 接口层
	authorHandler := handler.NewAuthorHandler(createAuthorUseCase, listAuthorsUseCase)
	bookHandler := handler.NewBookHandler(createBookUseCase, listBooksUseCase)
	orderHandler := handler.NewOrderHandler(createOrderUseCase, confirmOrderUseCase)
	tenantHandler := handler.NewTenantHandler(bootstrapUseCase)
	tenantMW := middleware.NewTenantMiddleware(schemas)
	adminMW := middleware.NewAdminMiddleware(jwtManager)

	// 6. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Correlation())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	if cfg.Tracing.Enabled {
		r.Use(tracing.Middleware("books-orders"))
	}

	registerRoutes(r, authorHandler, bookHandler, orderHandler, tenantHandler, tenantMW, adminMW)

	// 7. 启动服务(优雅停机)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("服务启动")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("启动服务失败")
		}
	}()

	// 等待停机信号,给在途请求10秒收尾
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("收到停机信号,开始优雅停机")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("优雅停机失败")
	}
	log.Info().Msg("服务已停止")
}

// registerRoutes 注册路由
func registerRoutes(
	r *gin.Engine,
	authorHandler *handler.AuthorHandler,
	bookHandler *handler.BookHandler,
	orderHandler *handler.OrderHandler,
	tenantHandler *handler.TenantHandler,
	tenantMW *middleware.TenantMiddleware,
	adminMW *middleware.AdminMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 租户模块(管理面,JWT守卫,不走租户中间件)
		tenants := v1.Group("/tenants")
		tenants.Use(adminMW.RequireAdmin())
		{
			tenants.POST("/:tenant/bootstrap", tenantHandler.Bootstrap)
		}

		// 业务接口全部要求X-Tenant头
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
}
