package models

import (
	"time"

	"attendance-rebuilder/internal/timeofday"
)

// SwipeEvent 原始刷卡事件（由外部采集端产生，不可变）
//
// 排序键为 Timestamp；CalendarDate/ClockTime 为采集端给出的
// 原始日期与时刻字段，仅用于展示与诊断。
type SwipeEvent struct {
	EmployeeKey  string              `json:"employee_key"`
	CalendarDate string              `json:"calendar_date"` // "YYYY-MM-DD"
	ClockTime    timeofday.TimeOfDay `json:"clock_time"`
	Timestamp    time.Time           `json:"timestamp"`
	StatusCode   string              `json:"status_code"`
}

// Burst 合并后的活动簇
//
// 同一员工的若干次近重复刷卡合并为一个 Burst，代表一次物理进出。
// 不变式：同一员工的 Burst 互不相交、按 Start 有序，
// 且每条输入刷卡恰好归属一个 Burst。
type Burst struct {
	EmployeeKey string    `json:"employee_key"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	SwipeCount  int       `json:"swipe_count"`
}

// StartOfDay Burst 起点在一天内的时间点
func (b Burst) StartOfDay() timeofday.TimeOfDay {
	return timeofday.FromTime(b.Start)
}

// EndOfDay Burst 终点在一天内的时间点
func (b Burst) EndOfDay() timeofday.TimeOfDay {
	return timeofday.FromTime(b.End)
}
