package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

/*
RedisStore 基于 Redis 的 TTL 键值存储
功能：实现与 MemoryStore 相同的 Store 接口，用于多实例部署时
共享限流/锁定/缓存状态。过期由 Redis 原生 TTL 完成，
Cleanup 因此为空操作。

错误处理：Redis 操作失败按约定表现为未命中并记录日志，
不向调用方传播——对缓存类数据，降级为未命中是安全行为。
*/
type RedisStore struct {
	client *redis.Client
	ctx    context.Context
	logger *zap.Logger
}

/*
NewRedisStore 创建 Redis 存储
功能：建立连接并 Ping 验证，失败时返回错误由调用方决定降级策略
*/
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("Redis 连接失败 [%s]: %w", addr, err)
	}

	return &RedisStore{
		client: client,
		ctx:    ctx,
		logger: zap.L().Named("redis-store"),
	}, nil
}

/* Get 读取键值，错误视为未命中 */
func (s *RedisStore) Get(key string) ([]byte, bool) {
	val, err := s.client.Get(s.ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("Redis GET 失败", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return val, true
}

/* Set 写入键值，ttl <= 0 表示永不过期 */
func (s *RedisStore) Set(key string, value []byte, ttl time.Duration) {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(s.ctx, key, value, ttl).Err(); err != nil {
		s.logger.Warn("Redis SET 失败", zap.String("key", key), zap.Error(err))
	}
}

/* Delete 删除单个键 */
func (s *RedisStore) Delete(key string) {
	if err := s.client.Del(s.ctx, key).Err(); err != nil {
		s.logger.Warn("Redis DEL 失败", zap.String("key", key), zap.Error(err))
	}
}

/*
DeleteByPrefix 删除所有以 prefix 开头的键
功能：SCAN 增量遍历替代 KEYS，避免阻塞 Redis
*/
func (s *RedisStore) DeleteByPrefix(prefix string) {
	iter := s.client.Scan(s.ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(s.ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn("Redis SCAN 失败", zap.String("prefix", prefix), zap.Error(err))
		return
	}
	if len(keys) > 0 {
		if err := s.client.Del(s.ctx, keys...).Err(); err != nil {
			s.logger.Warn("Redis 批量 DEL 失败", zap.Int("count", len(keys)), zap.Error(err))
		}
	}
}

/* Has 检查键是否存在 */
func (s *RedisStore) Has(key string) bool {
	n, err := s.client.Exists(s.ctx, key).Result()
	if err != nil {
		s.logger.Warn("Redis EXISTS 失败", zap.String("key", key), zap.Error(err))
		return false
	}
	return n > 0
}

/* Cleanup 空操作，Redis 原生 TTL 负责过期 */
func (s *RedisStore) Cleanup() {}

/* Destroy 关闭 Redis 连接 */
func (s *RedisStore) Destroy() {
	if err := s.client.Close(); err != nil {
		s.logger.Warn("Redis 关闭失败", zap.Error(err))
	}
}
