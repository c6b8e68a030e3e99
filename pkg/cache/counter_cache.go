package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CounterCache 计数缓存（点赞数、未读数）
// 写操作提交后删除对应 key，读操作 miss 时回源并回填
type CounterCache interface {
	Get(ctx context.Context, key string) (int64, bool, error)
	Set(ctx context.Context, key string, value int64, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const (
	LikeCountTTL   = time.Minute * 10
	UnreadCountTTL = time.Minute * 5
)

// LikeCountKey 帖子点赞数缓存键
func LikeCountKey(postID uint) string {
	return fmt.Sprintf("like:count:%d", postID)
}

// UnreadCountKey 用户未读通知数缓存键
func UnreadCountKey(userID uint) string {
	return fmt.Sprintf("notification:unread:%d", userID)
}

// RedisCounterCache Redis 实现
type RedisCounterCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCounterCache(client *redis.Client, prefix string) *RedisCounterCache {
	if prefix == "" {
		prefix = "vibelog:"
	}
	return &RedisCounterCache{client: client, prefix: prefix}
}

func (c *RedisCounterCache) getKey(key string) string {
	return c.prefix + key
}

func (c *RedisCounterCache) Get(ctx context.Context, key string) (int64, bool, error) {
	val, err := c.client.Get(ctx, c.getKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("cache get error: %w", err)
	}

	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("cache decode error: %w", err)
	}
	return n, true, nil
}

func (c *RedisCounterCache) Set(ctx context.Context, key string, value int64, expiration time.Duration) error {
	if err := c.client.Set(ctx, c.getKey(key), value, expiration).Err(); err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

func (c *RedisCounterCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.getKey(k)
	}
	return c.client.Del(ctx, full...).Err()
}

// NoopCounterCache 未启用 Redis 时使用，永远 miss
type NoopCounterCache struct{}

func (NoopCounterCache) Get(context.Context, string) (int64, bool, error) { return 0, false, nil }
func (NoopCounterCache) Set(context.Context, string, int64, time.Duration) error { return nil }
func (NoopCounterCache) Delete(context.Context, ...string) error { return nil }

// ReadThrough 命中直接返回；miss 或缓存异常时回源，并尽力回填
// 缓存异常不影响结果
func ReadThrough(ctx context.Context, c CounterCache, key string, ttl time.Duration, load func(ctx context.Context) (int64, error)) (int64, error) {
	if n, ok, err := c.Get(ctx, key); err == nil && ok {
		return n, nil
	}
	n, err := load(ctx)
	if err != nil {
		return 0, err
	}
	_ = c.Set(ctx, key, n, ttl)
	return n, nil
}

// MemoryCounterCache 进程内实现，测试使用
type MemoryCounterCache struct {
	mu     sync.Mutex
	values map[string]int64
}

func NewMemoryCounterCache() *MemoryCounterCache {
	return &MemoryCounterCache{values: make(map[string]int64)}
}

func (c *MemoryCounterCache) Get(_ context.Context, key string) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.values[key]
	return n, ok, nil
}

func (c *MemoryCounterCache) Set(_ context.Context, key string, value int64, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *MemoryCounterCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}
