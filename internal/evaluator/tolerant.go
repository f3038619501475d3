package evaluator

import (
	"strings"

	"attendance-rebuilder/internal/models"
)

// TolerantPolicy 容忍缺失时间戳的策略
//
// 在严格策略的阈值语义之上增加缺失处理：
//   - checkIn 缺失 → 立即终结，状态 "INVALID - No Check-In"，
//     完整度 0、质量 critical、需人工复核，不再做其他比较；
//   - breakOut / breakIn / checkOut 缺失 → 记录固定严重程度的
//     缺失条目并把该字段排除出阈值比较；
//   - 状态串 = 触发标签（或 "On Time"）+ " [Missing: ...]" 后缀，
//     字段按 checkIn→breakOut→breakIn→checkOut 固定顺序列出；
//   - requiresReview 由工时风险驱动：质量 critical 或 checkOut
//     缺失（即使完整度恰为 75%）。
type TolerantPolicy struct{}

// Name 策略标识
func (p *TolerantPolicy) Name() PolicyName {
	return PolicyTolerant
}

// Evaluate 评估
func (p *TolerantPolicy) Evaluate(times ResolvedTimes, tpl *models.ShiftTemplate) Assessment {
	// checkIn 缺失是终结性结果
	if times.CheckIn == nil {
		return Assessment{
			Status: StatusInvalidNoCheckIn,
			Flags:  models.DeviationFlags{HasMissing: true},
			Missing: []models.MissingTimestampEntry{{
				Field:        models.FieldCheckIn,
				ExpectedTime: expectedTimeFor(models.FieldCheckIn, tpl),
				Severity:     models.SeverityFor(models.FieldCheckIn),
			}},
			CompletenessPercentage: 0,
			QualityTier:            models.TierCritical,
			RequiresReview:         true,
		}
	}

	var missing []models.MissingTimestampEntry
	record := func(field models.TimestampField) {
		missing = append(missing, models.MissingTimestampEntry{
			Field:        field,
			ExpectedTime: expectedTimeFor(field, tpl),
			Severity:     models.SeverityFor(field),
		})
	}
	if times.BreakOut == nil {
		record(models.FieldBreakOut)
	}
	if times.BreakIn == nil {
		record(models.FieldBreakIn)
	}
	checkOutMissing := times.CheckOut == nil
	if checkOutMissing {
		record(models.FieldCheckOut)
	}

	// 缺失字段已被排除（nil 字段不参与比较）
	flags := deviationFlags(times, tpl)
	flags.HasMissing = len(missing) > 0

	status := joinLabels(flags)
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, m := range missing {
			names = append(names, m.Field.DisplayName())
		}
		status += " [Missing: " + strings.Join(names, ", ") + "]"
	}

	pct := models.CompletenessPercent(len(missing))
	tier := models.TierForCompleteness(pct)

	return Assessment{
		Status:                 status,
		Flags:                  flags,
		Missing:                missing,
		CompletenessPercentage: pct,
		QualityTier:            tier,
		RequiresReview:         tier == models.TierCritical || checkOutMissing,
	}
}
