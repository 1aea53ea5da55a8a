package analyzer

import "github.com/afumu/gptrace/internal/model"

// ComputeMetrics 把所有会话折叠成汇总指标。空导出返回 nil，调用方应把它当作 "尚无数据" 的正常状态。
// 分母为 0 的平均值记为 0。
func ComputeMetrics(convs []FlatConversation, clock Clock) *model.DerivedMetrics {
	if len(convs) == 0 {
		return nil
	}

	m := &model.DerivedMetrics{TotalConversations: len(convs)}
	var codeCount, shortCount, mediumCount, longCount int

	for _, fc := range convs {
		m.MessageCount += len(fc.Messages)
		userInConv := 0

		for _, msg := range fc.Messages {
			switch msg.Role {
			case model.RoleUser:
				userInConv++
				m.UserMessages++
				m.TotalUserChars += msg.Chars
				m.TotalUserWords += msg.Words
			case model.RoleAssistant:
				m.AssistantMessages++
				m.TotalAssistantChars += msg.Chars
				m.TotalAssistantWords += msg.Words
			}
		}

		if fc.HasCode {
			codeCount++
		}

		// 长度分布只看用户消息数；0 条用户消息的会话不落入任何分桶
		switch {
		case userInConv == 1:
			shortCount++
		case userInConv >= 2 && userInConv <= 3:
			mediumCount++
		case userInConv > 3:
			longCount++
		}
	}

	total := float64(m.TotalConversations)
	m.AverageTurns = ratio(m.MessageCount, m.TotalConversations)
	m.AverageUserPromptLength = ratio(m.TotalUserChars, m.UserMessages)
	m.AverageBotResponseLength = ratio(m.TotalAssistantChars, m.AssistantMessages)
	m.AverageUserWords = ratio(m.TotalUserWords, m.UserMessages)
	m.AverageAssistantWords = ratio(m.TotalAssistantWords, m.AssistantMessages)
	m.PeakUsageHour = peakHour(hourHistogram(convs, clock))
	m.CodeContainingPercentage = float64(codeCount) / total * 100
	m.ShortConversationsPercentage = float64(shortCount) / total * 100
	m.MediumConversationsPercentage = float64(mediumCount) / total * 100
	m.LongConversationsPercentage = float64(longCount) / total * 100

	return m
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// hourHistogram 统计每个本地小时的消息数，无有效时间戳的消息不计入
func hourHistogram(convs []FlatConversation, clock Clock) [24]int {
	var hist [24]int
	for _, fc := range convs {
		for _, msg := range fc.Messages {
			if h, ok := clock.Hour(msg.Time); ok {
				hist[h]++
			}
		}
	}
	return hist
}

// peakHour 返回最大桶的下标，并列时取最小的小时
func peakHour(hist [24]int) int {
	peak := 0
	for h := 1; h < len(hist); h++ {
		if hist[h] > hist[peak] {
			peak = h
		}
	}
	return peak
}
