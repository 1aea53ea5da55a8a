package analyzer

import (
	"testing"

	"github.com/afumu/gptrace/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeHighlights(t *testing.T) {
	assert.Nil(t, ComputeHighlights(nil, nil))

	m := &model.DerivedMetrics{
		PeakUsageHour:               23,
		LongConversationsPercentage: 60,
		CodeContainingPercentage:    80,
		TotalUserWords:              25,
		TotalAssistantWords:         75,
	}
	daily := []model.TimeSeriesPoint{{Date: "2024-01-01", Value: 2}, {Date: "2024-01-02", Value: 5}}

	h := ComputeHighlights(m, daily)
	require.NotNil(t, h)
	assert.Equal(t, TrendExponential, h.UsageTrend)
	assert.Equal(t, "night", h.PeakPeriod)
	assert.Equal(t, "debater", h.ConversationStyle)
	assert.Equal(t, "heavy", h.CodingProfile)
	assert.InDelta(t, 25.0, h.UserWordShare, 1e-9)
	assert.InDelta(t, 75.0, h.AssistantWordShare, 1e-9)
}

func TestUsageTrend(t *testing.T) {
	pts := func(first, last float64) []model.TimeSeriesPoint {
		return []model.TimeSeriesPoint{{Value: first}, {Value: last}}
	}
	assert.Equal(t, TrendNone, usageTrend(nil))
	assert.Equal(t, TrendGrowing, usageTrend(pts(4, 6)))
	assert.Equal(t, TrendDeclining, usageTrend(pts(10, 4)))
	assert.Equal(t, TrendSteady, usageTrend(pts(10, 8)))
	assert.Equal(t, TrendSteady, usageTrend(pts(3, 3)))
}

func TestHighlights_NoWords(t *testing.T) {
	h := ComputeHighlights(&model.DerivedMetrics{PeakUsageHour: 10}, nil)
	require.NotNil(t, h)
	assert.Zero(t, h.UserWordShare)
	assert.Equal(t, "morning", h.PeakPeriod)
	assert.Equal(t, "quick", h.ConversationStyle)
	assert.Equal(t, "light", h.CodingProfile)
}
