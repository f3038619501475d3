// Package evaluator 提供考勤偏差与数据质量评估
//
// 两种策略共享同一套阈值语义，只在空值处理上不同；
// 调用方在流水线构造时显式选定一种，单次运行内不混用。
package evaluator

import (
	"strings"

	"attendance-rebuilder/internal/models"
	"attendance-rebuilder/internal/timeofday"
)

// 状态串中的规范偏差标签
const (
	LabelLateCheckIn   = "Late Check-in"
	LabelEarlyBreakOut = "Leave Soon Break Out"
	LabelLateBreakIn   = "Late Break In"
	LabelEarlyCheckOut = "Leave Soon Check Out"

	StatusOnTime           = "On Time"
	StatusInvalidNoCheckIn = "INVALID - No Check-In"
)

// PolicyName 策略标识
type PolicyName string

const (
	PolicyStrict   PolicyName = "strict"
	PolicyTolerant PolicyName = "tolerant"
)

// ResolvedTimes 一个班次实例解析出的四个时间戳，任一可缺省
type ResolvedTimes struct {
	CheckIn  *timeofday.TimeOfDay
	BreakOut *timeofday.TimeOfDay
	BreakIn  *timeofday.TimeOfDay
	CheckOut *timeofday.TimeOfDay
}

// Assessment 评估结果
type Assessment struct {
	Status                 string
	Flags                  models.DeviationFlags
	Missing                []models.MissingTimestampEntry
	CompletenessPercentage int
	QualityTier            models.QualityTier
	RequiresReview         bool
}

// Policy 评估策略（构造期注入，不使用全局开关）
type Policy interface {
	Name() PolicyName
	Evaluate(times ResolvedTimes, tpl *models.ShiftTemplate) Assessment
}

// NewPolicy 按名称构造策略，未知名称回退为 tolerant
func NewPolicy(name PolicyName) Policy {
	if name == PolicyStrict {
		return &StrictPolicy{}
	}
	return &TolerantPolicy{}
}

// deviationFlags 对已存在字段做阈值比较，两种策略共用
func deviationFlags(times ResolvedTimes, tpl *models.ShiftTemplate) models.DeviationFlags {
	var flags models.DeviationFlags
	if times.CheckIn != nil && *times.CheckIn >= tpl.LateThreshold {
		flags.LateCheckIn = true
	}
	if times.BreakOut != nil && *times.BreakOut < tpl.ExpectedBreakOutTime {
		flags.EarlyBreakOut = true
	}
	if times.BreakIn != nil && *times.BreakIn >= tpl.BreakLateThreshold {
		flags.LateBreakIn = true
	}
	if times.CheckOut != nil && *times.CheckOut < tpl.ExpectedCheckOutTime {
		flags.EarlyCheckOut = true
	}
	return flags
}

// joinLabels 把触发的偏差标签拼成状态串主体
func joinLabels(flags models.DeviationFlags) string {
	var labels []string
	if flags.LateCheckIn {
		labels = append(labels, LabelLateCheckIn)
	}
	if flags.EarlyBreakOut {
		labels = append(labels, LabelEarlyBreakOut)
	}
	if flags.LateBreakIn {
		labels = append(labels, LabelLateBreakIn)
	}
	if flags.EarlyCheckOut {
		labels = append(labels, LabelEarlyCheckOut)
	}
	if len(labels) == 0 {
		return StatusOnTime
	}
	return strings.Join(labels, ", ")
}

// expectedTimeFor 缺失条目对应的期望时间
func expectedTimeFor(field models.TimestampField, tpl *models.ShiftTemplate) timeofday.TimeOfDay {
	switch field {
	case models.FieldCheckIn:
		return tpl.ShiftStart
	case models.FieldBreakOut:
		return tpl.ExpectedBreakOutTime
	case models.FieldBreakIn:
		return tpl.BreakEndTime
	default:
		return tpl.ExpectedCheckOutTime
	}
}
