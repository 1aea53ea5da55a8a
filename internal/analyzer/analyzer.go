package analyzer

import (
	"time"

	"github.com/afumu/gptrace/internal/model"
)

// Analyzer 把一次导出转换为完整报告。它不持有跨调用的状态，可以并发使用。
type Analyzer struct {
	clock Clock
	now   func() time.Time
}

// Option 配置 Analyzer
type Option func(*Analyzer)

// WithLocation 指定分桶使用的时区。
func WithLocation(loc *time.Location) Option {
	return func(a *Analyzer) { a.clock = NewClock(loc) }
}

// WithNow 替换报告生成时间的来源，测试中使用。
func WithNow(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// New 创建 Analyzer，默认使用本地时区。
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		clock: NewClock(nil),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Clock 返回分析使用的 Clock。
func (a *Analyzer) Clock() Clock { return a.clock }

// Analyze 运行完整流水线：展开 -> 指标 -> 序列 -> 分组。
func (a *Analyzer) Analyze(convs []model.Conversation) *model.Report {
	flat := FlattenAll(convs)

	metrics := ComputeMetrics(flat, a.clock)
	daily := DailyVolume(flat, a.clock)

	return &model.Report{
		Metrics:     metrics,
		Daily:       daily,
		Hourly:      a.hourly(flat),
		Lengths:     MessageLengths(flat, a.clock),
		Groups:      GroupByCreationDay(flat, a.clock),
		Highlights:  ComputeHighlights(metrics, daily),
		Timezone:    a.clock.Location().String(),
		GeneratedAt: a.now(),
	}
}

// 空导出时所有序列都为空
func (a *Analyzer) hourly(flat []FlatConversation) []model.TimeSeriesPoint {
	if len(flat) == 0 {
		return []model.TimeSeriesPoint{}
	}
	return HourlyVolume(flat, a.clock)
}

// FlattenAll 逐个展开会话。
func FlattenAll(convs []model.Conversation) []FlatConversation {
	flat := make([]FlatConversation, 0, len(convs))
	for i := range convs {
		flat = append(flat, Flatten(&convs[i]))
	}
	return flat
}

// UserPrompts 返回所有非空的用户消息文本，供词云使用。
func UserPrompts(convs []model.Conversation) []string {
	var texts []string
	for _, fc := range FlattenAll(convs) {
		for _, msg := range fc.Messages {
			if msg.Role == model.RoleUser && msg.Text != "" {
				texts = append(texts, msg.Text)
			}
		}
	}
	return texts
}
