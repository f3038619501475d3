// Package redisutil 提供 Redis 客户端与 Streams 辅助函数
package redisutil

import (
	"context"

	"attendance-rebuilder/internal/config"

	"github.com/go-redis/redis/v8"
)

// NewClient 创建 Redis 客户端
func NewClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping 测试 Redis 连接
func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

// Close 关闭 Redis 连接
func Close(client *redis.Client) error {
	return client.Close()
}
