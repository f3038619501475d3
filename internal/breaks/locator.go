// Package breaks 提供班次内的休息时段定位
//
// 在班次模板给定的休息搜索窗口内，从归属 Burst 的边界时间点中
// 选出休息外出（break-out）与休息返回（break-in）候选。
package breaks

import (
	"attendance-rebuilder/internal/models"
	"attendance-rebuilder/internal/timeofday"

	"go.uber.org/zap"
)

// BreakTimes 定位结果，任一字段都可能缺省
type BreakTimes struct {
	BreakOut *timeofday.TimeOfDay
	BreakIn  *timeofday.TimeOfDay
}

// BreakLocator 休息时段定位器
type BreakLocator struct {
	logger *zap.Logger
}

// NewBreakLocator 创建休息时段定位器
func NewBreakLocator(logger *zap.Logger) *BreakLocator {
	return &BreakLocator{logger: logger}
}

// Locate 在休息搜索窗口内定位 break-out / break-in
//
// 候选规则（行为由测试钉死）：
//   - 候选集合为归属 Burst 的边界时间点中落在搜索窗口
//     [BreakSearchStart, BreakSearchEnd] 内者；
//   - break-out 从 Burst 终点中选取：t <= BreakMidpoint 且
//     t <= BreakSearchEnd - MinimumBreakGapMin（否则窗口内已无
//     合理的返回余地），多个命中时取距 BreakCheckpoint 最近者，
//     距离相同取较晚者；
//   - break-in 从 Burst 起点中选取：t > BreakMidpoint 且
//     t >= BreakSearchStart + MinimumBreakGapMin，取最早者。
//
// 两侧的选取互相独立：任一侧缺省不影响另一侧；
// MinimumBreakGapMin 仅作为单侧候选的合理性约束参与。
func (l *BreakLocator) Locate(inst *models.ShiftInstance, tpl *models.ShiftTemplate) BreakTimes {
	var result BreakTimes

	winStart := tpl.BreakSearchStart
	winEnd := tpl.BreakSearchEnd
	gapSec := tpl.MinimumBreakGapMin * 60

	// break-out：Burst 终点，前半段，距检查点最近
	var bestOut *timeofday.TimeOfDay
	for i := range inst.Bursts {
		t := inst.Bursts[i].EndOfDay()
		if !t.InWindow(winStart, winEnd) {
			continue
		}
		if t > tpl.BreakMidpoint {
			continue
		}
		if winEnd.DiffSeconds(t) < gapSec {
			continue
		}
		if bestOut == nil ||
			t.AbsDiffSeconds(tpl.BreakCheckpoint) < bestOut.AbsDiffSeconds(tpl.BreakCheckpoint) ||
			(t.AbsDiffSeconds(tpl.BreakCheckpoint) == bestOut.AbsDiffSeconds(tpl.BreakCheckpoint) && t > *bestOut) {
			v := t
			bestOut = &v
		}
	}
	result.BreakOut = bestOut

	// break-in：Burst 起点，后半段，取最早
	var bestIn *timeofday.TimeOfDay
	for i := range inst.Bursts {
		t := inst.Bursts[i].StartOfDay()
		if !t.InWindow(winStart, winEnd) {
			continue
		}
		if t <= tpl.BreakMidpoint {
			continue
		}
		if t.DiffSeconds(winStart) < gapSec {
			continue
		}
		if bestIn == nil || t < *bestIn {
			v := t
			bestIn = &v
		}
	}
	result.BreakIn = bestIn

	if bestOut == nil && bestIn == nil {
		l.logger.Debug("No break candidates in search window",
			zap.String("employee_key", inst.EmployeeKey),
			zap.String("shift_code", inst.ShiftCode),
			zap.String("shift_date", inst.ShiftDate),
		)
	}

	return result
}
