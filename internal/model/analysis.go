package model

import "time"

// DerivedMetrics 全量导出的汇总指标
type DerivedMetrics struct {
	TotalConversations            int     `json:"totalConversations"`
	MessageCount                  int     `json:"messageCount"`
	UserMessages                  int     `json:"userMessages"`
	AssistantMessages             int     `json:"assistantMessages"`
	AverageTurns                  float64 `json:"averageTurns"` // 每个会话的平均消息数
	TotalUserChars                int     `json:"totalUserChars"`
	TotalAssistantChars           int     `json:"totalAssistantChars"`
	TotalUserWords                int     `json:"totalUserWords"`
	TotalAssistantWords           int     `json:"totalAssistantWords"`
	AverageUserPromptLength       float64 `json:"averageUserPromptLength"`  // 字符
	AverageBotResponseLength      float64 `json:"averageBotResponseLength"` // 字符
	AverageUserWords              float64 `json:"averageUserWords"`
	AverageAssistantWords         float64 `json:"averageAssistantWords"`
	PeakUsageHour                 int     `json:"peakUsageHour"` // 0-23
	CodeContainingPercentage      float64 `json:"codeContainingPercentage"`
	ShortConversationsPercentage  float64 `json:"shortConversationsPercentage"`  // 1 条用户消息
	MediumConversationsPercentage float64 `json:"mediumConversationsPercentage"` // 2-3 条
	LongConversationsPercentage   float64 `json:"longConversationsPercentage"`   // 3 条以上
}

// TimeSeriesPoint 时间序列数据点
type TimeSeriesPoint struct {
	Date  string  `json:"date"` // YYYY-MM-DD / YYYY-MM / HH:00
	Value float64 `json:"value"`
	Type  string  `json:"type,omitempty"`
}

// LengthSeries 按角色拆分的每日平均消息长度
type LengthSeries struct {
	UserLengths []TimeSeriesPoint `json:"userLengths"`
	BotLengths  []TimeSeriesPoint `json:"botLengths"`
}

// Merged 把两条序列合并为带 type 标签的一条序列（user 在前）。
func (s LengthSeries) Merged() []TimeSeriesPoint {
	out := make([]TimeSeriesPoint, 0, len(s.UserLengths)+len(s.BotLengths))
	for _, p := range s.UserLengths {
		p.Type = RoleUser
		out = append(out, p)
	}
	for _, p := range s.BotLengths {
		p.Type = RoleAssistant
		out = append(out, p)
	}
	return out
}

// ConversationEntry 最近会话列表中的一行
type ConversationEntry struct {
	Title        string `json:"title"`
	MessageCount int    `json:"messageCount"`
	FirstMessage string `json:"firstMessage"`
	ID           string `json:"id,omitempty"`
}

// ConversationGroup 按创建日期分组的会话
type ConversationGroup struct {
	Date          string              `json:"date"` // YYYY-MM-DD
	Conversations []ConversationEntry `json:"conversations"`
}

// GroupPage 分组列表的一页，分页跨越分组边界
type GroupPage struct {
	Page       int                 `json:"page"`
	PageSize   int                 `json:"pageSize"`
	TotalItems int                 `json:"totalItems"`
	TotalPages int                 `json:"totalPages"`
	Groups     []ConversationGroup `json:"groups"`
}

// Highlights 基于指标的定性标签
type Highlights struct {
	UsageTrend         string  `json:"usageTrend"`
	PeakPeriod         string  `json:"peakPeriod"`
	ConversationStyle  string  `json:"conversationStyle"`
	CodingProfile      string  `json:"codingProfile"`
	UserWordShare      float64 `json:"userWordShare"`
	AssistantWordShare float64 `json:"assistantWordShare"`
}

// Report 一次完整分析的结果。Metrics 为 nil 表示导出为空。
type Report struct {
	Metrics     *DerivedMetrics     `json:"metrics"`
	Daily       []TimeSeriesPoint   `json:"daily"`
	Hourly      []TimeSeriesPoint   `json:"hourly"`
	Lengths     LengthSeries        `json:"lengths"`
	Groups      []ConversationGroup `json:"groups"`
	Highlights  *Highlights         `json:"highlights"`
	Timezone    string              `json:"timezone"`
	GeneratedAt time.Time           `json:"generatedAt"`
}

// ExportRecord 已入库的导出文件
type ExportRecord struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Source        string    `json:"source"` // upload | inbox | cli
	ContentHash   string    `json:"contentHash"`
	SizeBytes     int64     `json:"sizeBytes"`
	Conversations int       `json:"conversations"`
	Messages      int       `json:"messages"`
	CreatedAt     time.Time `json:"createdAt"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)
