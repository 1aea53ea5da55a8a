package analyzer

import (
	"fmt"
	"math"
	"time"

	"github.com/afumu/gptrace/internal/model"
)

// Granularity 时间序列的聚合粒度
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// ParseGranularity 解析粒度参数，空字符串视为 daily。
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case "", Daily:
		return Daily, nil
	case Weekly:
		return Weekly, nil
	case Monthly:
		return Monthly, nil
	}
	return "", fmt.Errorf("不支持的聚合粒度: %s", s)
}

// 年份限制在 1..9999，保证日期键定长、可按字典序排序
const (
	minUnixSeconds = -62135596800 // 0001-01-01T00:00:00Z
	maxUnixSeconds = 253402300799 // 9999-12-31T23:59:59Z
)

// Clock 把时间戳换算成日历日期和小时。一次分析中所有按时间分桶的计算都必须共用同一个 Clock。
type Clock struct {
	loc *time.Location
}

// NewClock 创建 Clock，loc 为 nil 时使用本地时区。
func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return Clock{loc: loc}
}

// Location 返回 Clock 使用的时区。
func (c Clock) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// In 把时间戳转换为 Clock 时区下的时间，无效或越界的时间戳返回 false。
func (c Clock) In(ts model.Timestamp) (time.Time, bool) {
	if !ts.Valid {
		return time.Time{}, false
	}
	// 边界留出一天余量，避免换算到本地时区后跨出 1..9999 年
	// NaN 与任何数比较都为 false，必须单独排除
	if math.IsNaN(ts.Seconds) || ts.Seconds < minUnixSeconds+86400 || ts.Seconds > maxUnixSeconds-86400 {
		return time.Time{}, false
	}
	t, ok := ts.Time()
	if !ok {
		return time.Time{}, false
	}
	return t.In(c.Location()), true
}

// Day 返回 YYYY-MM-DD。
func (c Clock) Day(ts model.Timestamp) (string, bool) {
	t, ok := c.In(ts)
	if !ok {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// Hour 返回 0-23。
func (c Clock) Hour(ts model.Timestamp) (int, bool) {
	t, ok := c.In(ts)
	if !ok {
		return 0, false
	}
	return t.Hour(), true
}

// Key 按粒度返回分桶键：daily 为日期，weekly 为所在周的周日，monthly 为 YYYY-MM。
func (c Clock) Key(ts model.Timestamp, g Granularity) (string, bool) {
	t, ok := c.In(ts)
	if !ok {
		return "", false
	}
	switch g {
	case Weekly:
		start := time.Date(t.Year(), t.Month(), t.Day()-int(t.Weekday()), 0, 0, 0, 0, t.Location())
		return start.Format("2006-01-02"), true
	case Monthly:
		return t.Format("2006-01"), true
	default:
		return t.Format("2006-01-02"), true
	}
}
