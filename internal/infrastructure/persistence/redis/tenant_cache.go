package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/xiebiao/books-orders/internal/domain/tenant"
	"github.com/xiebiao/books-orders/pkg/circuitbreaker"
)

// TenantCache 租户schema存在性缓存(装饰器模式)
//
// 设计说明:
// 1. X-Tenant中间件每个请求都要确认租户存在,不加缓存等于每个请求
//    多打一次information_schema查询
// 2. 只缓存"存在"这个事实:schema建了就不会消失,TTL只是防御性过期;
//    "不存在"不缓存,否则刚bootstrap完的租户要等TTL过期才能用
// 3. Redis故障不能拖垮主链路:熔断器打开后直接穿透到数据库查询,
//    缓存层降级为no-op
type TenantCache struct {
	inner   tenant.SchemaManager
	client  stringCache
	breaker *circuitbreaker.Breaker
	ttl     time.Duration
}

// stringCache 缓存只用到的两个Redis命令(*redis.Client天然满足)
type stringCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// NewTenantCache 创建租户缓存
func NewTenantCache(inner tenant.SchemaManager, client stringCache, ttl time.Duration) *TenantCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &TenantCache{
		inner:   inner,
		client:  client,
		breaker: circuitbreaker.New(5, 30*time.Second),
		ttl:     ttl,
	}
}

// cacheKey 缓存键
func cacheKey(name string) string {
	return "tenant:exists:" + name
}

// Exists 判断租户schema是否存在(缓存命中时不打数据库)
func (c *TenantCache) Exists(ctx context.Context, name string) (bool, error) {
	// 缓存读:熔断器保护,Redis故障时静默穿透
	// 教学要点:缓存未命中(redis.Nil)是健康结果,不能算熔断器失败,
	// 否则连续查询未知租户名(可被外部任意构造)就能把整个缓存层熔断掉
	var cached bool
	err := c.breaker.Execute(func() error {
		v, err := c.client.Get(ctx, cacheKey(name)).Result()
		if err == redis.Nil {
			return nil
		}
		if err != nil {
			return err
		}
		cached = v == "1"
		return nil
	})
	if err == nil && cached {
		return true, nil
	}
	if err != nil && err != circuitbreaker.ErrOpen {
		log.Debug().Err(err).Str("tenant", name).Msg("租户缓存读取失败,穿透到数据库")
	}

	exists, err := c.inner.Exists(ctx, name)
	if err != nil {
		return false, err
	}

	// 回填缓存(只缓存存在,尽力而为)
	if exists {
		_ = c.breaker.Execute(func() error {
			return c.client.Set(ctx, cacheKey(name), "1", c.ttl).Err()
		})
	}
	return exists, nil
}

// Bootstrap 创建租户schema并预热缓存
func (c *TenantCache) Bootstrap(ctx context.Context, name string) error {
	if err := c.inner.Bootstrap(ctx, name); err != nil {
		return err
	}
	_ = c.breaker.Execute(func() error {
		return c.client.Set(ctx, cacheKey(name), "1", c.ttl).Err()
	})
	return nil
}
