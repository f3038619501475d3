// Package pipeline 提供考勤重建批处理的编排
//
// 单次调用：一批原始刷卡事件进，一组 AttendanceRecord 出。
// 四个阶段严格串行：簇合并 → 班次分类 → 休息定位 → 偏差评估；
// 各员工的子计算互相独立，互不共享可变状态。
// 确定性要求：相同输入（含相同时间戳的并列顺序，由稳定输入序
// 决定）必须产生字节级相同的输出，因此员工按键排序遍历，
// 记录 ID 由自然键构造。
package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"attendance-rebuilder/internal/breaks"
	"attendance-rebuilder/internal/classifier"
	"attendance-rebuilder/internal/cluster"
	"attendance-rebuilder/internal/evaluator"
	"attendance-rebuilder/internal/models"
	"attendance-rebuilder/internal/timeofday"

	"go.uber.org/zap"
)

// RawSwipe 采集端交付的原始刷卡行
type RawSwipe struct {
	EmployeeKey string `json:"employee_key"`
	Date        string `json:"date"` // "2006-01-02"
	Time        string `json:"time"` // "15:04:05"
	StatusCode  string `json:"status_code"`
}

// RunConfig 单次运行配置
type RunConfig struct {
	GapThresholdMinutes int
	AllowedStatusCodes  []string // 空表示接受全部状态码
	Policy              evaluator.PolicyName
	OvernightShiftCode  string
}

// Result 批处理输出
type Result struct {
	Records     []models.AttendanceRecord `json:"records"`
	Counters    models.BatchCounters      `json:"counters"`
	Diagnostics []models.EventDiagnostic  `json:"diagnostics,omitempty"`
}

// BatchValidationError 整批致命校验错误：过滤后没有任何有效事件
type BatchValidationError struct {
	ParseFailures    int
	FilteredByStatus int
}

func (e *BatchValidationError) Error() string {
	return fmt.Sprintf("no valid swipe events in batch (parse failures: %d, filtered by status: %d)",
		e.ParseFailures, e.FilteredByStatus)
}

// Pipeline 考勤重建流水线
type Pipeline struct {
	cfg        RunConfig
	templates  map[string]models.ShiftTemplate
	clusterer  *cluster.BurstClusterer
	classifier *classifier.ShiftClassifier
	locator    *breaks.BreakLocator
	policy     evaluator.Policy
	logger     *zap.Logger
}

// NewPipeline 创建流水线
//
// 评估策略在这里一次性选定（显式策略对象，不用全局开关）。
func NewPipeline(cfg RunConfig, templates map[string]models.ShiftTemplate, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		templates:  templates,
		clusterer:  cluster.NewBurstClusterer(cfg.GapThresholdMinutes, logger),
		classifier: classifier.NewShiftClassifier(templates, cfg.OvernightShiftCode, logger),
		locator:    breaks.NewBreakLocator(logger),
		policy:     evaluator.NewPolicy(cfg.Policy),
		logger:     logger,
	}
}

// Run 执行一次批处理
//
// employeeNames 为员工目录快照（键 → 姓名），未知键的姓名留空。
// 过滤后批内无任何有效事件时返回 *BatchValidationError。
func (p *Pipeline) Run(rawEvents []RawSwipe, employeeNames map[string]string) (*Result, error) {
	result := &Result{}

	events, diags, filteredByStatus := p.parseAndFilter(rawEvents)
	result.Diagnostics = diags
	result.Counters.EventsAccepted = len(events)

	if len(events) == 0 {
		return nil, &BatchValidationError{
			ParseFailures:    len(diags),
			FilteredByStatus: filteredByStatus,
		}
	}

	// 按员工分组，组内保持输入顺序（相同时间戳的并列顺序由此决定）
	byEmployee := make(map[string][]models.SwipeEvent)
	for _, ev := range events {
		byEmployee[ev.EmployeeKey] = append(byEmployee[ev.EmployeeKey], ev)
	}
	keys := make([]string, 0, len(byEmployee))
	for k := range byEmployee {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		bursts := p.clusterer.Cluster(key, byEmployee[key])
		result.Counters.BurstsFormed += len(bursts)

		instances := p.classifier.Classify(key, bursts)
		result.Counters.InstancesFound += len(instances)

		for i := range instances {
			record := p.buildRecord(&instances[i], employeeNames[key])
			if record == nil {
				continue
			}
			result.Records = append(result.Records, *record)
			result.Counters.RecordsGenerated++
			if record.RequiresReview {
				result.Counters.RecordsForReview++
			}
		}
	}

	p.logger.Info("Batch reconstruction finished",
		zap.Int("events_accepted", result.Counters.EventsAccepted),
		zap.Int("bursts_formed", result.Counters.BurstsFormed),
		zap.Int("instances_found", result.Counters.InstancesFound),
		zap.Int("records_generated", result.Counters.RecordsGenerated),
		zap.Int("records_for_review", result.Counters.RecordsForReview),
		zap.Int("diagnostics", len(result.Diagnostics)),
	)

	return result, nil
}

// parseAndFilter 解析原始行并应用状态码允许名单
//
// 逐条失败只记诊断（带原始位置），不中断整批。
func (p *Pipeline) parseAndFilter(rawEvents []RawSwipe) ([]models.SwipeEvent, []models.EventDiagnostic, int) {
	allowed := make(map[string]bool, len(p.cfg.AllowedStatusCodes))
	for _, code := range p.cfg.AllowedStatusCodes {
		allowed[code] = true
	}

	var events []models.SwipeEvent
	var diags []models.EventDiagnostic
	filteredByStatus := 0

	for i, raw := range rawEvents {
		if raw.EmployeeKey == "" {
			diags = append(diags, models.EventDiagnostic{Position: i, Reason: "missing employee key"})
			continue
		}

		ts, err := time.Parse("2006-01-02 15:04:05", raw.Date+" "+raw.Time)
		if err != nil {
			diags = append(diags, models.EventDiagnostic{
				Position: i,
				Reason:   fmt.Sprintf("unparseable timestamp %q %q", raw.Date, raw.Time),
			})
			continue
		}

		if len(allowed) > 0 && !allowed[raw.StatusCode] {
			filteredByStatus++
			continue
		}

		events = append(events, models.SwipeEvent{
			EmployeeKey:  raw.EmployeeKey,
			CalendarDate: raw.Date,
			ClockTime:    timeofday.FromTime(ts),
			Timestamp:    ts,
			StatusCode:   raw.StatusCode,
		})
	}

	if len(diags) > 0 {
		p.logger.Warn("Some swipe events were skipped",
			zap.Int("skipped", len(diags)),
			zap.Int("filtered_by_status", filteredByStatus),
		)
	}

	return events, diags, filteredByStatus
}

// buildRecord 由一个班次实例生成考勤记录
//
// 未知班次代码的实例不应出现（分类器只用已加载模板），
// 防御性跳过并记日志。
func (p *Pipeline) buildRecord(inst *models.ShiftInstance, employeeName string) *models.AttendanceRecord {
	tpl, ok := p.templates[inst.ShiftCode]
	if !ok {
		p.logger.Warn("Shift instance references unknown template",
			zap.String("shift_code", inst.ShiftCode),
			zap.String("employee_key", inst.EmployeeKey),
		)
		return nil
	}

	breakTimes := p.locator.Locate(inst, &tpl)

	checkIn := timeofday.FromTime(inst.CheckIn)
	times := evaluator.ResolvedTimes{
		CheckIn:  &checkIn,
		BreakOut: breakTimes.BreakOut,
		BreakIn:  breakTimes.BreakIn,
	}
	if inst.CheckOut != nil {
		co := timeofday.FromTime(*inst.CheckOut)
		times.CheckOut = &co
	}

	assessment := p.policy.Evaluate(times, &tpl)

	label := tpl.Label
	if label == "" {
		label = tpl.Code
	}

	record := &models.AttendanceRecord{
		RecordID:     fmt.Sprintf("%s|%s|%s", inst.EmployeeKey, inst.ShiftDate, inst.ShiftCode),
		Date:         inst.ShiftDate,
		EmployeeID:   inst.EmployeeKey,
		EmployeeName: employeeName,
		ShiftLabel:   label,

		CheckIn:  formatTime(times.CheckIn),
		BreakOut: formatTime(times.BreakOut),
		BreakIn:  formatTime(times.BreakIn),
		CheckOut: formatTime(times.CheckOut),

		Status:                 assessment.Status,
		QualityTier:            assessment.QualityTier,
		CompletenessPercentage: assessment.CompletenessPercentage,
		RequiresReview:         assessment.RequiresReview,
		Flags:                  assessment.Flags,
		MissedPunches:          assessment.Missing,
		MissedPunchSummary:     missedPunchSummary(assessment.Missing),
	}
	return record
}

func formatTime(t *timeofday.TimeOfDay) string {
	if t == nil {
		return ""
	}
	return t.String()
}

// missedPunchSummary 缺失字段的紧凑短代码串（如 "BTO,BTI"）
func missedPunchSummary(missing []models.MissingTimestampEntry) string {
	if len(missing) == 0 {
		return ""
	}
	codes := make([]string, 0, len(missing))
	for _, m := range missing {
		codes = append(codes, m.Field.ShortCode())
	}
	return strings.Join(codes, ",")
}
