package analyzer

import "github.com/afumu/gptrace/internal/model"

// 使用趋势
const (
	TrendNone        = "none"
	TrendExponential = "exponential"
	TrendGrowing     = "growing"
	TrendDeclining   = "declining"
	TrendSteady      = "steady"
)

// ComputeHighlights 根据指标和每日序列生成定性标签，metrics 为 nil 时返回 nil。
func ComputeHighlights(m *model.DerivedMetrics, daily []model.TimeSeriesPoint) *model.Highlights {
	if m == nil {
		return nil
	}

	h := &model.Highlights{
		UsageTrend:        usageTrend(daily),
		PeakPeriod:        peakPeriod(m.PeakUsageHour),
		ConversationStyle: conversationStyle(m),
		CodingProfile:     codingProfile(m.CodeContainingPercentage),
	}

	totalWords := m.TotalUserWords + m.TotalAssistantWords
	if totalWords > 0 {
		h.UserWordShare = float64(m.TotalUserWords) / float64(totalWords) * 100
		h.AssistantWordShare = float64(m.TotalAssistantWords) / float64(totalWords) * 100
	}
	return h
}

// usageTrend 比较最后一天和第一天的消息量
func usageTrend(daily []model.TimeSeriesPoint) string {
	if len(daily) == 0 {
		return TrendNone
	}
	first, last := daily[0].Value, daily[len(daily)-1].Value
	switch {
	case last > first*2:
		return TrendExponential
	case last > first:
		return TrendGrowing
	case last < first*0.5:
		return TrendDeclining
	default:
		return TrendSteady
	}
}

func peakPeriod(hour int) string {
	switch {
	case hour < 5:
		return "late-night"
	case hour < 9:
		return "early-morning"
	case hour < 12:
		return "morning"
	case hour < 14:
		return "lunch"
	case hour < 18:
		return "afternoon"
	case hour < 22:
		return "evening"
	default:
		return "night"
	}
}

func conversationStyle(m *model.DerivedMetrics) string {
	switch {
	case m.LongConversationsPercentage > 50:
		return "debater"
	case m.MediumConversationsPercentage > 50:
		return "balanced"
	default:
		return "quick"
	}
}

func codingProfile(pct float64) string {
	switch {
	case pct > 75:
		return "heavy"
	case pct > 50:
		return "half"
	case pct > 25:
		return "casual"
	default:
		return "light"
	}
}
