package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// 公开 API 响应缓存的键前缀与默认 TTL。
const (
	keyPrefix  = "phportfolio:cache:"
	DefaultTTL = 5 * time.Minute
)

// ErrMiss 表示键不存在（或已过期）。
var ErrMiss = errors.New("cache miss")

// Cache 是公开读 API 的 redis 响应缓存。
// 缓存故障永远不阻塞请求：读失败按 miss 处理，写失败只记日志。
type Cache struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

func New(client *redis.Client, logger *slog.Logger, ttl time.Duration) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, logger: logger, ttl: ttl}
}

// Get 取缓存并反序列化到 dst。未命中返回 ErrMiss。
func (c *Cache) Get(ctx context.Context, key string, dst any) error {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		c.logger.Warn("cache read failed", slog.String("key", key), slog.Any("error", err))
		return ErrMiss
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.Warn("cache entry corrupted", slog.String("key", key), slog.Any("error", err))
		return ErrMiss
	}
	return nil
}

// Set 序列化 value 并按默认 TTL 写入。
func (c *Cache) Set(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache marshal failed", slog.String("key", key), slog.Any("error", err))
		return
	}
	if err := c.client.Set(ctx, keyPrefix+key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}

// InvalidateAll 清掉全部响应缓存。后台任何一次成功的保存/删除后调用；
// 键空间很小，SCAN+DEL 足够。
func (c *Cache) InvalidateAll(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("cache scan failed", slog.Any("error", err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache invalidate failed", slog.Any("error", err))
	}
}

// EntityKey 组合公开实体列表的缓存键。
func EntityKey(lang, entityType, category string) string {
	return fmt.Sprintf("entities:%s:%s:%s", lang, entityType, category)
}

// ProfileKey 组合个人资料的缓存键。
func ProfileKey(lang string) string {
	return "profile:" + lang
}

// SkillsKey 组合技能树的缓存键。
func SkillsKey(lang string) string {
	return "skills:" + lang
}
