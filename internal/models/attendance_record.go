package models

import (
	"attendance-rebuilder/internal/timeofday"
)

// TimestampField 考勤记录的四个期望时间戳字段
type TimestampField string

const (
	FieldCheckIn  TimestampField = "checkIn"
	FieldBreakOut TimestampField = "breakOut"
	FieldBreakIn  TimestampField = "breakIn"
	FieldCheckOut TimestampField = "checkOut"
)

// DisplayName 字段的展示名（"Check In" 等）
func (f TimestampField) DisplayName() string {
	switch f {
	case FieldCheckIn:
		return "Check In"
	case FieldBreakOut:
		return "Break Out"
	case FieldBreakIn:
		return "Break In"
	case FieldCheckOut:
		return "Check Out"
	}
	return string(f)
}

// ShortCode 字段的短代码（报表列用）
func (f TimestampField) ShortCode() string {
	switch f {
	case FieldCheckIn:
		return "CI"
	case FieldCheckOut:
		return "CO"
	case FieldBreakOut:
		return "BTO"
	case FieldBreakIn:
		return "BTI"
	}
	return string(f)
}

// MissingSeverity 缺失时间戳的严重程度
type MissingSeverity string

const (
	SeverityLow    MissingSeverity = "low"
	SeverityMedium MissingSeverity = "medium"
	SeverityHigh   MissingSeverity = "high"
)

// SeverityFor 各字段缺失时的固定严重程度
// breakOut=low，breakIn=medium，checkOut=high，checkIn=high
func SeverityFor(f TimestampField) MissingSeverity {
	switch f {
	case FieldBreakOut:
		return SeverityLow
	case FieldBreakIn:
		return SeverityMedium
	default:
		return SeverityHigh
	}
}

// MissingTimestampEntry 缺失时间戳条目
type MissingTimestampEntry struct {
	Field        TimestampField      `json:"field"`
	ExpectedTime timeofday.TimeOfDay `json:"expected_time"`
	Severity     MissingSeverity     `json:"severity"`
}

// QualityTier 数据质量等级
type QualityTier string

const (
	TierComplete QualityTier = "complete" // 100%
	TierPartial  QualityTier = "partial"  // >= 75%
	TierCritical QualityTier = "critical" // < 75%
)

// CompletenessPercent 由缺失字段数计算完整度百分比
// completeness = round((4 - missing) / 4 * 100)
func CompletenessPercent(missingCount int) int {
	return int(float64(4-missingCount)/4.0*100.0 + 0.5)
}

// TierForCompleteness 由完整度百分比得出质量等级
func TierForCompleteness(pct int) QualityTier {
	switch {
	case pct >= 100:
		return TierComplete
	case pct >= 75:
		return TierPartial
	default:
		return TierCritical
	}
}

// DeviationFlags 逐字段偏差标志（状态串的结构化形式）
type DeviationFlags struct {
	LateCheckIn   bool `json:"late_check_in"`
	EarlyBreakOut bool `json:"early_break_out"`
	LateBreakIn   bool `json:"late_break_in"`
	EarlyCheckOut bool `json:"early_check_out"`
	HasMissing    bool `json:"has_missing"`
}

// AttendanceRecord 单条考勤重建结果
//
// 每个班次实例生成一条，创建后不再修改；由外部报表端只读消费。
// 四个时间字段为 "HH:MM:SS" 或空串。
type AttendanceRecord struct {
	RecordID     string `json:"record_id"`
	Date         string `json:"date"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	ShiftLabel   string `json:"shift_label"`

	CheckIn  string `json:"check_in"`
	BreakOut string `json:"break_out"`
	BreakIn  string `json:"break_in"`
	CheckOut string `json:"check_out"`

	Status                 string                  `json:"status"`
	QualityTier            QualityTier             `json:"quality_tier"`
	CompletenessPercentage int                     `json:"completeness_percentage"`
	RequiresReview         bool                    `json:"requires_review"`
	Flags                  DeviationFlags          `json:"flags"`
	MissedPunches          []MissingTimestampEntry `json:"missed_punches,omitempty"`
	MissedPunchSummary     string                  `json:"missed_punch_summary"`
}

// BatchCounters 一次批处理的聚合计数
type BatchCounters struct {
	EventsAccepted   int `json:"events_accepted"`
	BurstsFormed     int `json:"bursts_formed"`
	InstancesFound   int `json:"instances_found"`
	RecordsGenerated int `json:"records_generated"`
	RecordsForReview int `json:"records_for_review"`
}

// EventDiagnostic 单条事件的解析/过滤诊断
type EventDiagnostic struct {
	Position int    `json:"position"` // 事件在输入批次中的原始位置（从 0 起）
	Reason   string `json:"reason"`
}
