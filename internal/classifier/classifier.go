// Package classifier 提供班次窗口分类
//
// 把同一员工的有序 Burst 列表划分为班次实例，处理相邻班次类型
// 之间的窗口重叠以及跨午夜的签退窗口。
package classifier

import (
	"sort"
	"time"

	"attendance-rebuilder/internal/models"
	"attendance-rebuilder/internal/timeofday"

	"go.uber.org/zap"
)

// ShiftClassifier 班次窗口分类器
type ShiftClassifier struct {
	templates     map[string]models.ShiftTemplate
	codes         []string // 排序后的班次代码，保证扫描顺序确定
	overnightCode string   // 指定的跨夜班次代码（夜班按定义跨午夜）
	logger        *zap.Logger
}

// NewShiftClassifier 创建班次分类器
func NewShiftClassifier(templates map[string]models.ShiftTemplate, overnightCode string, logger *zap.Logger) *ShiftClassifier {
	codes := make([]string, 0, len(templates))
	for code := range templates {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	return &ShiftClassifier{
		templates:     templates,
		codes:         codes,
		overnightCode: overnightCode,
		logger:        logger,
	}
}

// FindShiftCode 查找签到窗口包含给定时间点的班次代码
//
// 班次数量固定且很小，线性扫描等效 O(1)。无命中返回空串。
func (c *ShiftClassifier) FindShiftCode(t timeofday.TimeOfDay) string {
	for _, code := range c.codes {
		tpl := c.templates[code]
		if t.InWindow(tpl.CheckInStart, tpl.CheckInEnd) {
			return code
		}
	}
	return ""
}

// Classify 把单个员工的有序 Burst 列表划分为班次实例
//
// 单次扫描算法：
//  1. 预先给每个 Burst 标注名义班次代码（起点落入哪个签到窗口）。
//  2. 从左到右扫描，跳过无代码或已归属的 Burst。
//  3. 遇到未归属且有代码 S 的 Burst 时开启新实例，计算活动窗口
//     终点（S 的签退窗口终点；当该终点小时为 0 或 S 为跨夜班次时
//     投影到次日）。
//  4. 自开启 Burst 起前向扫描，候选起点不超过活动窗口终点时：
//     - 候选落在 S 自己的签退窗口内 → 必归属（签退优先级规则）；
//     - 候选名义代码为不同班次 T 且其时间点已达到 T 签退窗口的
//       起点（T 窗口跨午夜时用跨午夜 OR 比较）→ 关闭当前实例；
//       仅有名义代码尚不足以开启新班次——早于 T 自身签退窗口
//       起点的时间仍可能是当前班次的拖班；
//     - 其余情况归属当前实例并标记已处理。
//
// 归属标记用与 Burst 列表等长的显式 bool 数组承载。每个 Burst
// 在整个扫描中至多被归属一次，整体摊销 O(n)。
//
// 签退时间取归属 Burst 中终点时间点落在 S 签退窗口内的最晚者，
// 不存在时缺省（从不由活动窗口边界推断）。
//
// 无名义代码且未被任何开启实例捕获的 Burst 为孤儿，不产生实例。
func (c *ShiftClassifier) Classify(employeeKey string, bursts []models.Burst) []models.ShiftInstance {
	if len(bursts) == 0 {
		return nil
	}

	n := len(bursts)
	nominal := make([]string, n)
	assigned := make([]bool, n)
	for i, b := range bursts {
		nominal[i] = c.FindShiftCode(b.StartOfDay())
	}

	var instances []models.ShiftInstance

	for i := 0; i < n; i++ {
		if assigned[i] || nominal[i] == "" {
			continue
		}

		code := nominal[i]
		tpl := c.templates[code]
		assigned[i] = true
		instBursts := []models.Burst{bursts[i]}

		activityEnd := c.activityWindowEnd(&tpl, bursts[i].Start)

		for j := i + 1; j < n; j++ {
			if bursts[j].Start.After(activityEnd) {
				break
			}
			if assigned[j] {
				continue
			}

			t := bursts[j].StartOfDay()

			// 签退优先：落在自身签退窗口内的 Burst 总是归属当前班次
			if t.InWindow(tpl.CheckOutStart, tpl.CheckOutEnd) {
				assigned[j] = true
				instBursts = append(instBursts, bursts[j])
				continue
			}

			// 不同班次边界判定
			if other := nominal[j]; other != "" && other != code {
				otherTpl := c.templates[other]
				if t.AtOrAfterWithMidnight(otherTpl.CheckOutStart, otherTpl.CheckOutEnd) {
					break
				}
			}

			assigned[j] = true
			instBursts = append(instBursts, bursts[j])
		}

		instances = append(instances, models.ShiftInstance{
			ShiftCode:   code,
			ShiftDate:   bursts[i].Start.Format("2006-01-02"),
			EmployeeKey: employeeKey,
			CheckIn:     bursts[i].Start,
			CheckOut:    c.resolveCheckOut(&tpl, instBursts),
			Bursts:      instBursts,
		})
	}

	c.logger.Debug("Classified bursts into shift instances",
		zap.String("employee_key", employeeKey),
		zap.Int("burst_count", n),
		zap.Int("instance_count", len(instances)),
	)

	return instances
}

// activityWindowEnd 计算活动窗口终点
//
// 基准为开启 Burst 当天投影的签退窗口终点；当终点小时为 0 或
// 班次为指定跨夜班次时投影到次日。
func (c *ShiftClassifier) activityWindowEnd(tpl *models.ShiftTemplate, opening time.Time) time.Time {
	end := tpl.CheckOutEnd.OnDate(opening)
	if tpl.CheckOutEnd.Hour() == 0 || tpl.Code == c.overnightCode {
		end = end.AddDate(0, 0, 1)
	}
	return end
}

// resolveCheckOut 取归属 Burst 中落在签退窗口内的最晚终点
func (c *ShiftClassifier) resolveCheckOut(tpl *models.ShiftTemplate, bursts []models.Burst) *time.Time {
	var checkOut *time.Time
	for i := range bursts {
		end := bursts[i].End
		if !bursts[i].EndOfDay().InWindow(tpl.CheckOutStart, tpl.CheckOutEnd) {
			continue
		}
		if checkOut == nil || end.After(*checkOut) {
			t := end
			checkOut = &t
		}
	}
	return checkOut
}
