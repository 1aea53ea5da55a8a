package analyzer

import (
	"fmt"
	"sort"

	"github.com/afumu/gptrace/internal/model"
)

// DailyVolume 每天的消息数，按日期升序。
func DailyVolume(convs []FlatConversation, clock Clock) []model.TimeSeriesPoint {
	return Volume(convs, clock, Daily)
}

// Volume 按给定粒度统计消息数，按键升序。
func Volume(convs []FlatConversation, clock Clock, g Granularity) []model.TimeSeriesPoint {
	counts := make(map[string]int)
	for _, fc := range convs {
		for _, msg := range fc.Messages {
			if key, ok := clock.Key(msg.Time, g); ok {
				counts[key]++
			}
		}
	}

	points := make([]model.TimeSeriesPoint, 0, len(counts))
	for key, n := range counts {
		points = append(points, model.TimeSeriesPoint{Date: key, Value: float64(n)})
	}
	sortPoints(points)
	return points
}

// HourlyVolume 全量数据在 24 个小时上的消息分布，与 peakUsageHour 共用同一张直方图。
func HourlyVolume(convs []FlatConversation, clock Clock) []model.TimeSeriesPoint {
	hist := hourHistogram(convs, clock)
	points := make([]model.TimeSeriesPoint, 24)
	for h, n := range hist {
		points[h] = model.TimeSeriesPoint{Date: fmt.Sprintf("%02d:00", h), Value: float64(n)}
	}
	return points
}

// MessageLengths 每天的平均消息长度（字符），用户和助手分开统计。
func MessageLengths(convs []FlatConversation, clock Clock) model.LengthSeries {
	return MessageLengthsBy(convs, clock, Daily)
}

type lengthAcc struct {
	total int
	count int
}

// MessageLengthsBy 按粒度计算平均长度。某个桶里没有某角色的消息时，该角色序列在此处没有数据点（而不是 0）。
func MessageLengthsBy(convs []FlatConversation, clock Clock, g Granularity) model.LengthSeries {
	user := make(map[string]*lengthAcc)
	bot := make(map[string]*lengthAcc)

	for _, fc := range convs {
		for _, msg := range fc.Messages {
			var target map[string]*lengthAcc
			switch msg.Role {
			case model.RoleUser:
				target = user
			case model.RoleAssistant:
				target = bot
			default:
				continue
			}

			key, ok := clock.Key(msg.Time, g)
			if !ok {
				continue
			}
			acc, ok := target[key]
			if !ok {
				acc = &lengthAcc{}
				target[key] = acc
			}
			acc.total += msg.Chars
			acc.count++
		}
	}

	return model.LengthSeries{
		UserLengths: meanPoints(user),
		BotLengths:  meanPoints(bot),
	}
}

func meanPoints(accs map[string]*lengthAcc) []model.TimeSeriesPoint {
	points := make([]model.TimeSeriesPoint, 0, len(accs))
	for key, acc := range accs {
		points = append(points, model.TimeSeriesPoint{
			Date:  key,
			Value: float64(acc.total) / float64(acc.count),
		})
	}
	sortPoints(points)
	return points
}

// 日期键定长补零，字典序即时间序
func sortPoints(points []model.TimeSeriesPoint) {
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
}
