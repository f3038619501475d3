package evaluator

import (
	"attendance-rebuilder/internal/models"
)

// StrictPolicy 严格策略
//
// 假定四个时间戳齐备，只对存在的字段做阈值比较；缺省字段不产生
// 缺失条目，也不附加 Missing 后缀，在记录中保持为空。
// 完整度与质量等级仍按全局不变式计算，保证两种策略互相一致。
type StrictPolicy struct{}

// Name 策略标识
func (p *StrictPolicy) Name() PolicyName {
	return PolicyStrict
}

// Evaluate 评估
func (p *StrictPolicy) Evaluate(times ResolvedTimes, tpl *models.ShiftTemplate) Assessment {
	flags := deviationFlags(times, tpl)

	missingCount := 0
	if times.CheckIn == nil {
		missingCount++
	}
	if times.BreakOut == nil {
		missingCount++
	}
	if times.BreakIn == nil {
		missingCount++
	}
	if times.CheckOut == nil {
		missingCount++
	}

	pct := models.CompletenessPercent(missingCount)
	tier := models.TierForCompleteness(pct)

	return Assessment{
		Status:                 joinLabels(flags),
		Flags:                  flags,
		CompletenessPercentage: pct,
		QualityTier:            tier,
		RequiresReview:         tier == models.TierCritical || times.CheckOut == nil,
	}
}
