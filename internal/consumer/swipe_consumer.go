// Package consumer 提供刷卡批次的 Redis Streams 消费
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"attendance-rebuilder/internal/config"
	"attendance-rebuilder/internal/pipeline"
	"attendance-rebuilder/internal/redisutil"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SwipeBatchMessage 输入流上的一个刷卡批次
type SwipeBatchMessage struct {
	BatchID string              `json:"batch_id"`
	Swipes  []pipeline.RawSwipe `json:"swipes"`
}

// BatchRunner 批处理执行器（由 service 层实现，便于测试替换）
type BatchRunner interface {
	RunBatch(ctx context.Context, swipes []pipeline.RawSwipe) (*pipeline.Result, error)
}

// SwipeConsumer 刷卡批次消费者
//
// 从输入流以消费组方式读取批次，交给执行器重建，
// 并把生成的记录批量发布到输出流。
type SwipeConsumer struct {
	config      *config.Config
	redisClient *redis.Client
	runner      BatchRunner
	logger      *zap.Logger
}

// NewSwipeConsumer 创建刷卡批次消费者
func NewSwipeConsumer(cfg *config.Config, redisClient *redis.Client, runner BatchRunner, logger *zap.Logger) *SwipeConsumer {
	return &SwipeConsumer{
		config:      cfg,
		redisClient: redisClient,
		runner:      runner,
		logger:      logger,
	}
}

// Start 启动消费循环
//
// 消费失败按指数退避重试；上下文取消时退出。
func (c *SwipeConsumer) Start(ctx context.Context) error {
	if err := redisutil.EnsureConsumerGroup(ctx, c.redisClient, c.config.Stream.SwipeStream, c.config.Stream.ConsumerGroup); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	c.logger.Info("Swipe consumer started",
		zap.String("stream", c.config.Stream.SwipeStream),
		zap.String("consumer_group", c.config.Stream.ConsumerGroup),
		zap.String("consumer_name", c.config.Stream.ConsumerName),
	)

	backoff := time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := c.consumeOnce(ctx); err != nil {
				c.logger.Error("Failed to consume swipe stream",
					zap.Error(err),
					zap.Duration("backoff", backoff),
				)
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(backoff):
					backoff *= 2
					if backoff > maxBackoff {
						backoff = maxBackoff
					}
				}
				continue
			}
			backoff = time.Second
		}
	}
}

// consumeOnce 读取并处理一轮消息
func (c *SwipeConsumer) consumeOnce(ctx context.Context) error {
	messages, err := redisutil.ReadFromStream(
		ctx,
		c.redisClient,
		c.config.Stream.SwipeStream,
		c.config.Stream.ConsumerGroup,
		c.config.Stream.ConsumerName,
		c.config.Stream.BatchSize,
	)
	if err != nil {
		return err
	}

	for _, msg := range messages {
		if err := c.handleMessage(ctx, msg); err != nil {
			// 单条消息失败不中断本轮；不 ack，留待重投
			c.logger.Error("Failed to handle swipe batch message",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			continue
		}
		if err := redisutil.AckMessage(ctx, c.redisClient, c.config.Stream.SwipeStream, c.config.Stream.ConsumerGroup, msg.ID); err != nil {
			c.logger.Error("Failed to ack message",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// handleMessage 处理单个批次消息
func (c *SwipeConsumer) handleMessage(ctx context.Context, msg redisutil.StreamMessage) error {
	raw, ok := msg.Values["data"].(string)
	if !ok {
		return fmt.Errorf("message %s has no data field", msg.ID)
	}

	var batch SwipeBatchMessage
	if err := json.Unmarshal([]byte(raw), &batch); err != nil {
		return fmt.Errorf("failed to unmarshal swipe batch: %w", err)
	}
	if batch.BatchID == "" {
		batch.BatchID = uuid.New().String()
	}

	result, err := c.runner.RunBatch(ctx, batch.Swipes)
	if err != nil {
		return fmt.Errorf("failed to rebuild batch %s: %w", batch.BatchID, err)
	}

	if _, err := redisutil.PublishJSONToStream(ctx, c.redisClient, c.config.Stream.RecordStream, map[string]interface{}{
		"batch_id": batch.BatchID,
		"result":   result,
	}); err != nil {
		return fmt.Errorf("failed to publish records for batch %s: %w", batch.BatchID, err)
	}

	c.logger.Info("Swipe batch processed",
		zap.String("batch_id", batch.BatchID),
		zap.Int("records", result.Counters.RecordsGenerated),
		zap.Int("for_review", result.Counters.RecordsForReview),
	)
	return nil
}
