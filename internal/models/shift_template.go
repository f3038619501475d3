package models

import (
	"time"

	"attendance-rebuilder/internal/timeofday"
)

// ShiftTemplate 班次模板（按班次代码，如 "A"/"B"/"C"）
//
// 每个班次的签到/签退/休息窗口与各项阈值。每次运行加载一次，
// 运行期间不可变；算法层只接收已校验的模板值。
type ShiftTemplate struct {
	Code  string `json:"code"`
	Label string `json:"label"`

	// 签到窗口与阈值
	CheckInStart  timeofday.TimeOfDay `json:"check_in_start"`
	CheckInEnd    timeofday.TimeOfDay `json:"check_in_end"`
	ShiftStart    timeofday.TimeOfDay `json:"shift_start"`
	OnTimeCutoff  timeofday.TimeOfDay `json:"on_time_cutoff"`
	LateThreshold timeofday.TimeOfDay `json:"late_threshold"`

	// 签退窗口与阈值
	CheckOutStart        timeofday.TimeOfDay `json:"check_out_start"`
	CheckOutEnd          timeofday.TimeOfDay `json:"check_out_end"`
	ExpectedCheckOutTime timeofday.TimeOfDay `json:"expected_check_out_time"`

	// 休息窗口与阈值
	BreakSearchStart     timeofday.TimeOfDay `json:"break_search_start"`
	BreakSearchEnd       timeofday.TimeOfDay `json:"break_search_end"`
	BreakCheckpoint      timeofday.TimeOfDay `json:"break_checkpoint"`
	ExpectedBreakOutTime timeofday.TimeOfDay `json:"expected_break_out_time"`
	BreakMidpoint        timeofday.TimeOfDay `json:"break_midpoint"`
	MinimumBreakGapMin   int                 `json:"minimum_break_gap_minutes"`
	BreakEndTime         timeofday.TimeOfDay `json:"break_end_time"`
	BreakOnTimeCutoff    timeofday.TimeOfDay `json:"break_on_time_cutoff"`
	BreakLateThreshold   timeofday.TimeOfDay `json:"break_late_threshold"`
}

// ShiftInstance 班次实例（某员工在某日对某班次的一次重建结果）
//
// CheckIn 取首个归属 Burst 的起点；CheckOut 取落在签退窗口内的
// 最晚 Burst 终点，不存在时为 nil（从不由活动窗口边界推断）。
type ShiftInstance struct {
	ShiftCode   string     `json:"shift_code"`
	ShiftDate   string     `json:"shift_date"` // "YYYY-MM-DD"
	EmployeeKey string     `json:"employee_key"`
	CheckIn     time.Time  `json:"check_in"`
	CheckOut    *time.Time `json:"check_out,omitempty"`
	Bursts      []Burst    `json:"bursts"`
}
