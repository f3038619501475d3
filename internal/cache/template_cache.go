// Package cache 提供班次模板的 Redis 缓存
//
// 模板变更频率很低，每次批处理前先查缓存，未命中时再回源数据库
// 并回填。缓存内容为整张模板表的 JSON 快照。
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"attendance-rebuilder/internal/config"
	"attendance-rebuilder/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// TemplateCache 班次模板缓存
type TemplateCache struct {
	cfg         *config.Config
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewTemplateCache 创建模板缓存
func NewTemplateCache(cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) *TemplateCache {
	return &TemplateCache{
		cfg:         cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

func (c *TemplateCache) key() string {
	return c.cfg.Cache.TemplateKeyPrefix + "all"
}

// Get 读取缓存的模板表
//
// 未命中返回 (nil, nil)；内容损坏按未命中处理（记警告日志）。
func (c *TemplateCache) Get(ctx context.Context) (map[string]models.ShiftTemplate, error) {
	data, err := c.redisClient.Get(ctx, c.key()).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read template cache: %w", err)
	}

	var templates map[string]models.ShiftTemplate
	if err := json.Unmarshal(data, &templates); err != nil {
		c.logger.Warn("Corrupt template cache entry, treating as miss", zap.Error(err))
		return nil, nil
	}
	return templates, nil
}

// Set 写入模板表快照
func (c *TemplateCache) Set(ctx context.Context, templates map[string]models.ShiftTemplate) error {
	data, err := json.Marshal(templates)
	if err != nil {
		return fmt.Errorf("failed to marshal templates: %w", err)
	}

	ttl := time.Duration(c.cfg.Cache.TemplateTTL) * time.Second
	if err := c.redisClient.Set(ctx, c.key(), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write template cache: %w", err)
	}
	return nil
}

// Invalidate 删除缓存快照（模板变更后调用）
func (c *TemplateCache) Invalidate(ctx context.Context) error {
	return c.redisClient.Del(ctx, c.key()).Err()
}
