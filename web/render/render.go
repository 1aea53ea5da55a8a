package render

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/afumu/gptrace/internal/model"
)

// Format 报告导出格式
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
	FormatYAML Format = "yaml"
)

// ParseFormat 解析格式名，空串视为 json
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatXLSX, FormatDOCX, FormatPDF, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("不支持的导出格式: %s", s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatPDF:
		return "application/pdf"
	case FormatYAML:
		return "application/yaml; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}

// Filename 生成下载文件名
func (f Format) Filename(base string) string {
	base = strings.TrimSuffix(base, ".json")
	base = strings.TrimSuffix(base, ".zip")
	if base == "" {
		base = "report"
	}
	return fmt.Sprintf("%s_report.%s", base, f)
}

// Render 把报告渲染为指定格式
func Render(report *model.Report, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return CSV(report)
	case FormatXLSX:
		return XLSX(report)
	case FormatDOCX:
		return DOCX(report)
	case FormatPDF:
		return PDF(report)
	case FormatYAML:
		return YAML(report)
	case FormatJSON:
		return json.MarshalIndent(report, "", "  ")
	}
	return nil, fmt.Errorf("不支持的导出格式: %s", f)
}

// section 表格化的报告片段，各格式共用
type section struct {
	Title  string
	Header []string
	Rows   [][]any // nil 单元格表示缺失值
	Widths []float64
}

func sections(r *model.Report) []section {
	return []section{
		metricsSection(r.Metrics),
		seriesSection("每日会话", "日期", r.Daily),
		seriesSection("时段分布", "小时", r.Hourly),
		lengthsSection(r.Lengths),
		groupsSection(r.Groups),
		highlightsSection(r.Highlights),
	}
}

func metricsSection(m *model.DerivedMetrics) section {
	s := section{Title: "概览", Header: []string{"指标", "值"}, Widths: []float64{28, 16}}
	if m == nil {
		return s
	}
	s.Rows = [][]any{
		{"会话总数", m.TotalConversations},
		{"消息总数", m.MessageCount},
		{"用户消息数", m.UserMessages},
		{"助手消息数", m.AssistantMessages},
		{"平均每会话消息数", m.AverageTurns},
		{"用户字符总数", m.TotalUserChars},
		{"助手字符总数", m.TotalAssistantChars},
		{"用户词数", m.TotalUserWords},
		{"助手词数", m.TotalAssistantWords},
		{"用户平均提问长度", m.AverageUserPromptLength},
		{"助手平均回复长度", m.AverageBotResponseLength},
		{"用户平均词数", m.AverageUserWords},
		{"助手平均词数", m.AverageAssistantWords},
		{"高峰时段", fmt.Sprintf("%02d:00", m.PeakUsageHour)},
		{"含代码会话占比(%)", m.CodeContainingPercentage},
		{"短会话占比(%)", m.ShortConversationsPercentage},
		{"中会话占比(%)", m.MediumConversationsPercentage},
		{"长会话占比(%)", m.LongConversationsPercentage},
	}
	return s
}

func seriesSection(title, label string, points []model.TimeSeriesPoint) section {
	s := section{Title: title, Header: []string{label, "会话数"}, Widths: []float64{14, 10}}
	for _, p := range points {
		s.Rows = append(s.Rows, []any{p.Date, p.Value})
	}
	return s
}

func lengthsSection(l model.LengthSeries) section {
	s := section{Title: "消息长度", Header: []string{"日期", "用户平均长度", "助手平均长度"}, Widths: []float64{14, 14, 14}}

	byDate := make(map[string][2]any)
	for _, p := range l.UserLengths {
		v := byDate[p.Date]
		v[0] = p.Value
		byDate[p.Date] = v
	}
	for _, p := range l.BotLengths {
		v := byDate[p.Date]
		v[1] = p.Value
		byDate[p.Date] = v
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	for _, d := range dates {
		v := byDate[d]
		s.Rows = append(s.Rows, []any{d, v[0], v[1]})
	}
	return s
}

func groupsSection(groups []model.ConversationGroup) section {
	s := section{Title: "会话分组", Header: []string{"日期", "标题", "消息数", "首条提问"}, Widths: []float64{14, 30, 10, 60}}
	for _, g := range groups {
		for _, c := range g.Conversations {
			s.Rows = append(s.Rows, []any{g.Date, c.Title, c.MessageCount, c.FirstMessage})
		}
	}
	return s
}

func highlightsSection(h *model.Highlights) section {
	s := section{Title: "洞察", Header: []string{"项目", "结果"}, Widths: []float64{20, 30}}
	if h == nil {
		return s
	}
	s.Rows = [][]any{
		{"使用趋势", h.UsageTrend},
		{"活跃时段", h.PeakPeriod},
		{"对话风格", h.ConversationStyle},
		{"编程使用", h.CodingProfile},
		{"用户词数占比(%)", h.UserWordShare},
		{"助手词数占比(%)", h.AssistantWordShare},
	}
	return s
}
