// Package cluster 提供刷卡事件的活动簇合并
//
// 生物识别闸机会在几秒内产生大量近重复刷卡。这里把同一员工
// 间隔不超过阈值的连续刷卡合并为一个 Burst，代表一次物理进出。
package cluster

import (
	"sort"
	"time"

	"attendance-rebuilder/internal/models"

	"go.uber.org/zap"
)

// DefaultGapThresholdMinutes 默认合并间隔阈值（分钟）
const DefaultGapThresholdMinutes = 2

// BurstClusterer 活动簇合并器
type BurstClusterer struct {
	gapThreshold time.Duration
	logger       *zap.Logger
}

// NewBurstClusterer 创建活动簇合并器
// gapThresholdMinutes <= 0 时使用默认值 2 分钟
func NewBurstClusterer(gapThresholdMinutes int, logger *zap.Logger) *BurstClusterer {
	if gapThresholdMinutes <= 0 {
		gapThresholdMinutes = DefaultGapThresholdMinutes
	}
	return &BurstClusterer{
		gapThreshold: time.Duration(gapThresholdMinutes) * time.Minute,
		logger:       logger,
	}
}

// Cluster 合并单个员工的刷卡列表为有序 Burst 列表
//
// 输入无需预先排序（内部做稳定排序，相同时间戳按输入顺序）。
// 单次前向扫描：当 next.Timestamp - current.End <= 阈值时并入当前
// Burst，否则关闭当前 Burst 并开启新的。相同时间戳必然并入同一
// Burst。每个 Burst 至少包含一条刷卡。
func (c *BurstClusterer) Cluster(employeeKey string, swipes []models.SwipeEvent) []models.Burst {
	if len(swipes) == 0 {
		return nil
	}

	// 稳定排序，保证相同时间戳的并列顺序由输入顺序决定（确定性要求）
	sorted := make([]models.SwipeEvent, len(swipes))
	copy(sorted, swipes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var bursts []models.Burst
	current := models.Burst{
		EmployeeKey: employeeKey,
		Start:       sorted[0].Timestamp,
		End:         sorted[0].Timestamp,
		SwipeCount:  1,
	}

	for _, sw := range sorted[1:] {
		if sw.Timestamp.Sub(current.End) <= c.gapThreshold {
			current.End = sw.Timestamp
			current.SwipeCount++
			continue
		}
		bursts = append(bursts, current)
		current = models.Burst{
			EmployeeKey: employeeKey,
			Start:       sw.Timestamp,
			End:         sw.Timestamp,
			SwipeCount:  1,
		}
	}
	bursts = append(bursts, current)

	c.logger.Debug("Clustered swipes into bursts",
		zap.String("employee_key", employeeKey),
		zap.Int("swipe_count", len(sorted)),
		zap.Int("burst_count", len(bursts)),
	)

	return bursts
}
