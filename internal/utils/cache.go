package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/patrickmn/go-cache"
)

// Cache 全局缓存实例
var Cache *cache.Cache

// InitCache 初始化缓存
func InitCache() {
	// 默认过期时间5分钟，清理间隔10分钟
	Cache = cache.New(5*time.Minute, 10*time.Minute)
}

func CacheGet(key string) (interface{}, bool) {
	if Cache == nil {
		return nil, false
	}
	return Cache.Get(key)
}

func CacheSet(key string, value interface{}, duration time.Duration) {
	if Cache == nil {
		return
	}
	Cache.Set(key, value, duration)
}

func CacheDelete(key string) {
	if Cache == nil {
		return
	}
	Cache.Delete(key)
}

// CacheClear 清空所有缓存（管理后台写操作后调用）
func CacheClear() {
	if Cache == nil {
		return
	}
	Cache.Flush()
}

type ttlItem[T any] struct {
	value     T
	expiredAt time.Time
}

// TTLCache 带过期时间的 LRU 缓存，并发安全
type TTLCache[T any] struct {
	storage *lru.Cache[string, ttlItem[T]]
	ttl     time.Duration
}

// NewTTLCache size 为最大条数，ttl 为有效期
func NewTTLCache[T any](size int, ttl time.Duration) *TTLCache[T] {
	if size <= 0 {
		size = 1024
	}
	c, _ := lru.New[string, ttlItem[T]](size)
	return &TTLCache[T]{storage: c, ttl: ttl}
}

func (c *TTLCache[T]) Set(key string, value T) {
	c.storage.Add(key, ttlItem[T]{value: value, expiredAt: time.Now().Add(c.ttl)})
}

// Get 过期条目视为不存在并顺带删除
func (c *TTLCache[T]) Get(key string) (T, bool) {
	var zero T
	item, ok := c.storage.Get(key)
	if !ok {
		return zero, false
	}
	if time.Now().After(item.expiredAt) {
		c.storage.Remove(key)
		return zero, false
	}
	return item.value, true
}

func (c *TTLCache[T]) Delete(key string) {
	c.storage.Remove(key)
}

func (c *TTLCache[T]) Clear() {
	c.storage.Purge()
}

func (c *TTLCache[T]) Len() int {
	return c.storage.Len()
}
