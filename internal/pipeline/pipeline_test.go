package pipeline

import (
	"testing"

	"attendance-rebuilder/internal/evaluator"
	"attendance-rebuilder/internal/models"
	"attendance-rebuilder/internal/timeofday"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func tod(s string) timeofday.TimeOfDay {
	return timeofday.MustParse(s)
}

func testTemplates() map[string]models.ShiftTemplate {
	return map[string]models.ShiftTemplate{
		"A": {
			Code: "A", Label: "Shift A",
			CheckInStart: tod("05:00:00"), CheckInEnd: tod("07:00:00"),
			ShiftStart: tod("06:00:00"), OnTimeCutoff: tod("06:05:00"), LateThreshold: tod("06:15:00"),
			CheckOutStart: tod("13:30:00"), CheckOutEnd: tod("15:30:00"), ExpectedCheckOutTime: tod("14:00:00"),
			BreakSearchStart: tod("09:30:00"), BreakSearchEnd: tod("11:30:00"),
			BreakCheckpoint: tod("10:00:00"), ExpectedBreakOutTime: tod("10:00:00"),
			BreakMidpoint: tod("10:30:00"), MinimumBreakGapMin: 20,
			BreakEndTime: tod("10:30:00"), BreakOnTimeCutoff: tod("10:35:00"), BreakLateThreshold: tod("10:45:00"),
		},
		"C": {
			Code: "C", Label: "Shift C",
			CheckInStart: tod("21:00:00"), CheckInEnd: tod("23:00:00"),
			ShiftStart: tod("22:00:00"), OnTimeCutoff: tod("22:05:00"), LateThreshold: tod("22:15:00"),
			CheckOutStart: tod("05:30:00"), CheckOutEnd: tod("07:30:00"), ExpectedCheckOutTime: tod("06:00:00"),
			BreakSearchStart: tod("01:30:00"), BreakSearchEnd: tod("03:30:00"),
			BreakCheckpoint: tod("02:00:00"), ExpectedBreakOutTime: tod("02:00:00"),
			BreakMidpoint: tod("02:30:00"), MinimumBreakGapMin: 20,
			BreakEndTime: tod("02:30:00"), BreakOnTimeCutoff: tod("02:35:00"), BreakLateThreshold: tod("02:45:00"),
		},
	}
}

func testConfig() RunConfig {
	return RunConfig{
		GapThresholdMinutes: 2,
		AllowedStatusCodes:  []string{"0", "1"},
		Policy:              evaluator.PolicyTolerant,
		OvernightShiftCode:  "C",
	}
}

func swipe(emp, date, clock, status string) RawSwipe {
	return RawSwipe{EmployeeKey: emp, Date: date, Time: clock, StatusCode: status}
}

func TestRun_FullDay(t *testing.T) {
	p := NewPipeline(testConfig(), testTemplates(), zap.NewNop())
	raw := []RawSwipe{
		swipe("emp-1", "2025-03-10", "06:00:00", "0"),
		swipe("emp-1", "2025-03-10", "06:00:05", "0"), // 近重复 → 同一簇
		swipe("emp-1", "2025-03-10", "10:00:00", "0"),
		swipe("emp-1", "2025-03-10", "10:35:00", "0"),
		swipe("emp-1", "2025-03-10", "14:00:00", "0"),
	}

	result, err := p.Run(raw, map[string]string{"emp-1": "Alex Chen"})
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	rec := result.Records[0]
	assert.Equal(t, "emp-1|2025-03-10|A", rec.RecordID)
	assert.Equal(t, "2025-03-10", rec.Date)
	assert.Equal(t, "emp-1", rec.EmployeeID)
	assert.Equal(t, "Alex Chen", rec.EmployeeName)
	assert.Equal(t, "Shift A", rec.ShiftLabel)
	assert.Equal(t, "06:00:00", rec.CheckIn)
	assert.Equal(t, "10:00:00", rec.BreakOut)
	assert.Equal(t, "10:35:00", rec.BreakIn)
	assert.Equal(t, "14:00:00", rec.CheckOut)
	assert.Equal(t, "On Time", rec.Status)
	assert.Equal(t, models.TierComplete, rec.QualityTier)
	assert.Equal(t, 100, rec.CompletenessPercentage)
	assert.False(t, rec.RequiresReview)
	assert.Empty(t, rec.MissedPunchSummary)

	assert.Equal(t, 5, result.Counters.EventsAccepted)
	assert.Equal(t, 4, result.Counters.BurstsFormed)
	assert.Equal(t, 1, result.Counters.InstancesFound)
	assert.Equal(t, 1, result.Counters.RecordsGenerated)
	assert.Equal(t, 0, result.Counters.RecordsForReview)
}

func TestRun_MissingBreaksProduceReviewRecord(t *testing.T) {
	p := NewPipeline(testConfig(), testTemplates(), zap.NewNop())
	raw := []RawSwipe{
		swipe("emp-1", "2025-03-10", "06:00:00", "0"),
		swipe("emp-1", "2025-03-10", "14:00:00", "0"),
	}

	result, err := p.Run(raw, nil)
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	rec := result.Records[0]
	assert.Equal(t, "On Time [Missing: Break Out, Break In]", rec.Status)
	assert.Equal(t, 50, rec.CompletenessPercentage)
	assert.Equal(t, models.TierCritical, rec.QualityTier)
	assert.True(t, rec.RequiresReview)
	assert.Equal(t, "BTO,BTI", rec.MissedPunchSummary)
	assert.Equal(t, "", rec.EmployeeName) // 目录中无此员工
	assert.Equal(t, 1, result.Counters.RecordsForReview)
}

func TestRun_OvernightShift(t *testing.T) {
	p := NewPipeline(testConfig(), testTemplates(), zap.NewNop())
	raw := []RawSwipe{
		swipe("emp-9", "2025-03-10", "22:00:00", "0"),
		swipe("emp-9", "2025-03-11", "02:00:00", "0"),
		swipe("emp-9", "2025-03-11", "06:00:00", "0"),
	}

	result, err := p.Run(raw, nil)
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	rec := result.Records[0]
	assert.Equal(t, "2025-03-10", rec.Date) // 班次日期是开启日
	assert.Equal(t, "Shift C", rec.ShiftLabel)
	assert.Equal(t, "22:00:00", rec.CheckIn)
	assert.Equal(t, "06:00:00", rec.CheckOut)
}

func TestRun_ParseFailureDiagnostics(t *testing.T) {
	p := NewPipeline(testConfig(), testTemplates(), zap.NewNop())
	raw := []RawSwipe{
		swipe("emp-1", "2025-03-10", "06:00:00", "0"),
		swipe("emp-1", "bad-date", "06:01:00", "0"),
		swipe("", "2025-03-10", "06:02:00", "0"),
		swipe("emp-1", "2025-03-10", "14:00:00", "0"),
	}

	result, err := p.Run(raw, nil)
	require.NoError(t, err)

	require.Len(t, result.Diagnostics, 2)
	assert.Equal(t, 1, result.Diagnostics[0].Position)
	assert.Contains(t, result.Diagnostics[0].Reason, "unparseable timestamp")
	assert.Equal(t, 2, result.Diagnostics[1].Position)
	assert.Contains(t, result.Diagnostics[1].Reason, "missing employee key")
	assert.Equal(t, 2, result.Counters.EventsAccepted)
}

func TestRun_StatusFilter(t *testing.T) {
	p := NewPipeline(testConfig(), testTemplates(), zap.NewNop())
	raw := []RawSwipe{
		swipe("emp-1", "2025-03-10", "06:00:00", "0"),
		swipe("emp-1", "2025-03-10", "06:30:00", "9"), // 不在允许名单
		swipe("emp-1", "2025-03-10", "14:00:00", "1"),
	}

	result, err := p.Run(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Counters.EventsAccepted)
}

// 过滤后批内无有效事件 → 整批致命错误，携带诊断计数
func TestRun_EmptyBatchFatal(t *testing.T) {
	p := NewPipeline(testConfig(), testTemplates(), zap.NewNop())
	raw := []RawSwipe{
		swipe("emp-1", "not-a-date", "06:00:00", "0"),
		swipe("emp-1", "2025-03-10", "06:30:00", "9"),
	}

	result, err := p.Run(raw, nil)

	assert.Nil(t, result)
	var batchErr *BatchValidationError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 1, batchErr.ParseFailures)
	assert.Equal(t, 1, batchErr.FilteredByStatus)
}

func TestRun_EmptyAllowListAcceptsAll(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedStatusCodes = nil
	p := NewPipeline(cfg, testTemplates(), zap.NewNop())
	raw := []RawSwipe{
		swipe("emp-1", "2025-03-10", "06:00:00", "77"),
	}

	result, err := p.Run(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Counters.EventsAccepted)
}

// 无名义班次代码且无开启实例 → 孤儿 Burst，不产生记录
func TestRun_OrphanBurstNoRecord(t *testing.T) {
	p := NewPipeline(testConfig(), testTemplates(), zap.NewNop())
	raw := []RawSwipe{
		swipe("emp-1", "2025-03-10", "12:00:00", "0"),
	}

	result, err := p.Run(raw, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	assert.Equal(t, 1, result.Counters.BurstsFormed)
	assert.Equal(t, 0, result.Counters.InstancesFound)
}

// 多员工互相独立，记录按员工键排序输出
func TestRun_MultipleEmployees(t *testing.T) {
	p := NewPipeline(testConfig(), testTemplates(), zap.NewNop())
	raw := []RawSwipe{
		swipe("emp-2", "2025-03-10", "06:05:00", "0"),
		swipe("emp-1", "2025-03-10", "06:00:00", "0"),
		swipe("emp-2", "2025-03-10", "14:05:00", "0"),
		swipe("emp-1", "2025-03-10", "14:00:00", "0"),
	}

	result, err := p.Run(raw, nil)
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	assert.Equal(t, "emp-1", result.Records[0].EmployeeID)
	assert.Equal(t, "emp-2", result.Records[1].EmployeeID)
}

// 确定性：相同输入两次运行，输出完全一致
func TestRun_Deterministic(t *testing.T) {
	raw := []RawSwipe{
		swipe("emp-2", "2025-03-10", "06:05:00", "0"),
		swipe("emp-1", "2025-03-10", "06:00:00", "0"),
		swipe("emp-1", "2025-03-10", "06:00:00", "0"), // 相同时间戳
		swipe("emp-3", "2025-03-10", "22:01:00", "0"),
		swipe("emp-1", "2025-03-10", "14:00:00", "0"),
		swipe("emp-3", "2025-03-11", "06:10:00", "0"),
	}
	names := map[string]string{"emp-1": "A", "emp-2": "B", "emp-3": "C"}

	p1 := NewPipeline(testConfig(), testTemplates(), zap.NewNop())
	r1, err := p1.Run(raw, names)
	require.NoError(t, err)

	p2 := NewPipeline(testConfig(), testTemplates(), zap.NewNop())
	r2, err := p2.Run(raw, names)
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
}

// 严格策略下缺省字段在记录中保持为空，状态串无 Missing 后缀
func TestRun_StrictPolicy(t *testing.T) {
	cfg := testConfig()
	cfg.Policy = evaluator.PolicyStrict
	p := NewPipeline(cfg, testTemplates(), zap.NewNop())
	raw := []RawSwipe{
		swipe("emp-1", "2025-03-10", "06:00:00", "0"),
		swipe("emp-1", "2025-03-10", "14:00:00", "0"),
	}

	result, err := p.Run(raw, nil)
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	rec := result.Records[0]
	assert.Equal(t, "On Time", rec.Status)
	assert.Equal(t, "", rec.BreakOut)
	assert.Equal(t, "", rec.BreakIn)
	assert.Empty(t, rec.MissedPunches)
}
