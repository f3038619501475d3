// Package status 提供状态串与结构化偏差标志之间的双向转换
//
// 展示层只拿到规范状态串；这里把它解析回逐字段偏差标志与
// 缺失字段短代码，供单元格高亮与紧凑报表列使用。
package status

import (
	"regexp"
	"strings"

	"attendance-rebuilder/internal/models"
)

// 每种偏差的全部已知规范写法（两种策略的输出都要兼容）
var (
	lateCheckInPhrases   = []string{"Late Check-in", "Check-in Late"}
	earlyBreakOutPhrases = []string{"Leave Soon Break Out", "Break Out Early"}
	lateBreakInPhrases   = []string{"Late Break In", "Break In Late"}
	earlyCheckOutPhrases = []string{"Leave Soon Check Out", "Check Out Early"}
)

// missingPattern 宽容匹配 "[Missing: ...]" 段：
// 要求字面 "[Missing:" 开头并有配对的 "]"，中间任意非 "]" 内容
var missingPattern = regexp.MustCompile(`\[Missing:([^\]]*)\]`)

// 缺失字段名到短代码的映射
var shortCodes = map[string]string{
	"Check In":  "CI",
	"Check Out": "CO",
	"Break Out": "BTO",
	"Break In":  "BTI",
}

func containsAny(status string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(status, p) {
			return true
		}
	}
	return false
}

// Parse 从状态串解析逐字段偏差标志
//
// 未被其他关键词限定的裸 "Leave Soon" 默认视为签退早退；
// 含 "[Missing:" 段时置缺失标志。
func Parse(status string) models.DeviationFlags {
	flags := models.DeviationFlags{
		LateCheckIn:   containsAny(status, lateCheckInPhrases),
		EarlyBreakOut: containsAny(status, earlyBreakOutPhrases),
		LateBreakIn:   containsAny(status, lateBreakInPhrases),
		EarlyCheckOut: containsAny(status, earlyCheckOutPhrases),
		HasMissing:    strings.Contains(status, "[Missing:"),
	}

	// 裸 "Leave Soon"：未被 Break Out / Check Out 限定时默认算签退早退
	if !flags.EarlyBreakOut && !flags.EarlyCheckOut && strings.Contains(status, "Leave Soon") {
		flags.EarlyCheckOut = true
	}

	return flags
}

// ExtractMissing 提取缺失字段的短代码列表
//
// 逗号分割、逐项去空白后映射为短代码（CI/CO/BTO/BTI），
// 未知名称原样透传。括号段缺失或畸形时返回空列表，从不报错。
func ExtractMissing(status string) []string {
	m := missingPattern.FindStringSubmatch(status)
	if m == nil {
		return nil
	}

	var codes []string
	for _, token := range strings.Split(m[1], ",") {
		name := strings.TrimSpace(token)
		if name == "" {
			continue
		}
		if code, ok := shortCodes[name]; ok {
			codes = append(codes, code)
		} else {
			codes = append(codes, name)
		}
	}
	return codes
}

// ToDeviationText 字段的紧凑偏差列取值："Late"、"Early" 或空串
func ToDeviationText(flags models.DeviationFlags, field models.TimestampField) string {
	switch field {
	case models.FieldCheckIn:
		if flags.LateCheckIn {
			return "Late"
		}
	case models.FieldBreakOut:
		if flags.EarlyBreakOut {
			return "Early"
		}
	case models.FieldBreakIn:
		if flags.LateBreakIn {
			return "Late"
		}
	case models.FieldCheckOut:
		if flags.EarlyCheckOut {
			return "Early"
		}
	}
	return ""
}

// Serialize 由结构化标志重建规范状态串（用于往返校验与样例生成）
func Serialize(flags models.DeviationFlags, missing []models.TimestampField) string {
	var labels []string
	if flags.LateCheckIn {
		labels = append(labels, "Late Check-in")
	}
	if flags.EarlyBreakOut {
		labels = append(labels, "Leave Soon Break Out")
	}
	if flags.LateBreakIn {
		labels = append(labels, "Late Break In")
	}
	if flags.EarlyCheckOut {
		labels = append(labels, "Leave Soon Check Out")
	}

	s := "On Time"
	if len(labels) > 0 {
		s = strings.Join(labels, ", ")
	}

	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, f := range missing {
			names = append(names, f.DisplayName())
		}
		s += " [Missing: " + strings.Join(names, ", ") + "]"
	}
	return s
}
