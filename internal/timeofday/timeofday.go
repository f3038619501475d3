// Package timeofday 提供一天内时间点的规范化表示
//
// 刷卡阈值和班次窗口均以 "HH:MM:SS" 形式配置，这里统一转换为
// 从午夜起的秒数（int），所有比较（包括跨午夜比较）都基于整数进行，
// 避免字符串比较带来的隐式约定。
package timeofday

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay 一天内的时间点（从午夜起的秒数，0 <= t < 86400）
type TimeOfDay int

// SecondsPerDay 一天的总秒数
const SecondsPerDay = 24 * 60 * 60

// Parse 解析 "HH:MM:SS" 或 "HH:MM" 格式的时间字符串
func Parse(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid time of day: %q", s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("invalid time of day: %q", s)
		}
		nums[i] = n
	}

	h, m, sec := nums[0], nums[1], nums[2]
	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("time of day out of range: %q", s)
	}
	return TimeOfDay(h*3600 + m*60 + sec), nil
}

// MustParse 解析时间字符串，失败时 panic（仅用于常量和测试）
func MustParse(s string) TimeOfDay {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// FromTime 从 time.Time 提取一天内的时间点
func FromTime(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// Hour 小时部分（0-23）
func (t TimeOfDay) Hour() int {
	return int(t) / 3600
}

// Minute 分钟部分（0-59）
func (t TimeOfDay) Minute() int {
	return (int(t) % 3600) / 60
}

// Second 秒部分（0-59）
func (t TimeOfDay) Second() int {
	return int(t) % 60
}

// String 格式化为 "HH:MM:SS"
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

// AddMinutes 偏移指定分钟数（结果对一天取模）
func (t TimeOfDay) AddMinutes(minutes int) TimeOfDay {
	v := (int(t) + minutes*60) % SecondsPerDay
	if v < 0 {
		v += SecondsPerDay
	}
	return TimeOfDay(v)
}

// DiffSeconds 与另一时间点的差值（秒，t - other）
func (t TimeOfDay) DiffSeconds(other TimeOfDay) int {
	return int(t) - int(other)
}

// AbsDiffSeconds 与另一时间点差值的绝对值（秒）
func (t TimeOfDay) AbsDiffSeconds(other TimeOfDay) int {
	d := int(t) - int(other)
	if d < 0 {
		return -d
	}
	return d
}

// InWindow 判断时间点是否落在 [start, end] 窗口内
//
// 窗口允许跨午夜：当 start > end 时表示窗口跨越午夜
// （如 [22:00, 02:00]），此时采用 OR 语义：t >= start 或 t <= end。
func (t TimeOfDay) InWindow(start, end TimeOfDay) bool {
	if start <= end {
		return t >= start && t <= end
	}
	// 跨午夜窗口
	return t >= start || t <= end
}

// AtOrAfterWithMidnight 判断 t 是否达到跨午夜窗口的起点
//
// 当窗口 [start, end] 跨午夜（start > end）时，"已进入窗口起点之后"
// 的判断同样采用 OR 语义：t >= start 或 t <= end；
// 否则退化为简单的 t >= start。
func (t TimeOfDay) AtOrAfterWithMidnight(start, end TimeOfDay) bool {
	if start > end {
		return t >= start || t <= end
	}
	return t >= start
}

// OnDate 将时间点投影到指定日期，返回该日期上的完整时间戳
func (t TimeOfDay) OnDate(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), t.Second(), 0, date.Location())
}
