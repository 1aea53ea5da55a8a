package cli

import (
	"fmt"
	"strings"

	"github.com/afumu/gptrace/internal/model"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(22)

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))
)

// barWidth 小时分布条形图的最大宽度
const barWidth = 30

func renderText(r *model.Report, page model.GroupPage) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("ChatGPT 使用报告"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("时区 %s", r.Timezone)))
	b.WriteString("\n")

	if r.Metrics == nil {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("导出中没有会话。"))
		b.WriteString("\n")
		return b.String()
	}

	m := r.Metrics
	section(&b, "概览")
	row(&b, "会话总数", fmt.Sprintf("%d", m.TotalConversations))
	row(&b, "消息总数", fmt.Sprintf("%d（用户 %d / 助手 %d）", m.MessageCount, m.UserMessages, m.AssistantMessages))
	row(&b, "平均每会话消息数", fmt.Sprintf("%.1f", m.AverageTurns))
	row(&b, "平均提问长度", fmt.Sprintf("%.0f 字符 / %.1f 词", m.AverageUserPromptLength, m.AverageUserWords))
	row(&b, "平均回复长度", fmt.Sprintf("%.0f 字符 / %.1f 词", m.AverageBotResponseLength, m.AverageAssistantWords))
	row(&b, "高峰时段", fmt.Sprintf("%02d:00", m.PeakUsageHour))
	row(&b, "含代码会话", fmt.Sprintf("%.1f%%", m.CodeContainingPercentage))
	row(&b, "短 / 中 / 长会话", fmt.Sprintf("%.1f%% / %.1f%% / %.1f%%",
		m.ShortConversationsPercentage, m.MediumConversationsPercentage, m.LongConversationsPercentage))

	if h := r.Highlights; h != nil {
		section(&b, "洞察")
		row(&b, "使用趋势", h.UsageTrend)
		row(&b, "活跃时段", h.PeakPeriod)
		row(&b, "对话风格", h.ConversationStyle)
		row(&b, "编程使用", h.CodingProfile)
	}

	if len(r.Hourly) > 0 {
		section(&b, "时段分布")
		peak := 0.0
		for _, p := range r.Hourly {
			peak = max(peak, p.Value)
		}
		for _, p := range r.Hourly {
			n := 0
			if peak > 0 {
				n = int(p.Value / peak * barWidth)
			}
			fmt.Fprintf(&b, "%s %s %s\n", dimStyle.Render(p.Date), strings.Repeat("█", n), dimStyle.Render(fmt.Sprintf("%.0f", p.Value)))
		}
	}

	section(&b, fmt.Sprintf("会话分组（第 %d/%d 页，共 %d 个）", page.Page, max(page.TotalPages, 1), page.TotalItems))
	for _, g := range page.Groups {
		b.WriteString(valueStyle.Render(g.Date))
		b.WriteString("\n")
		for _, c := range g.Conversations {
			fmt.Fprintf(&b, "  %s %s\n", c.Title, dimStyle.Render(fmt.Sprintf("(%d 条)", c.MessageCount)))
			if c.FirstMessage != "" {
				fmt.Fprintf(&b, "    %s\n", dimStyle.Render(truncate(c.FirstMessage, 80)))
			}
		}
	}

	return b.String()
}

func section(b *strings.Builder, title string) {
	b.WriteString(sectionStyle.Render(title))
	b.WriteString("\n")
}

func row(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(label))
	b.WriteString(valueStyle.Render(value))
	b.WriteString("\n")
}

// truncate 按字符截断，单行展示
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
