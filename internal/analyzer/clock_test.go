package analyzer

import (
	"math"
	"testing"
	"time"

	"github.com/afumu/gptrace/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestClock_DayAndHour(t *testing.T) {
	ts := model.Unix(jan1 + 23*hour + 30*60) // 2024-01-01 23:30 UTC

	day, ok := utcClock.Day(ts)
	assert.True(t, ok)
	assert.Equal(t, "2024-01-01", day)
	h, _ := utcClock.Hour(ts)
	assert.Equal(t, 23, h)

	// 同一时刻在 UTC+8 已是第二天早上
	shanghai := NewClock(time.FixedZone("UTC+8", 8*3600))
	day, _ = shanghai.Day(ts)
	assert.Equal(t, "2024-01-02", day)
	h, _ = shanghai.Hour(ts)
	assert.Equal(t, 7, h)
}

func TestClock_InvalidTimestamps(t *testing.T) {
	for name, ts := range map[string]model.Timestamp{
		"missing":  {},
		"nan":      {Seconds: math.NaN(), Valid: true},
		"nan ctor": model.Unix(math.NaN()),
		"inf":      {Seconds: math.Inf(1), Valid: true},
		"huge":     model.Unix(1e18),
		"negative": model.Unix(-1e15),
	} {
		_, ok := utcClock.Day(ts)
		assert.False(t, ok, name)
		_, ok = utcClock.Hour(ts)
		assert.False(t, ok, name)
	}
}

func TestClock_FractionalSeconds(t *testing.T) {
	h, ok := utcClock.Hour(model.Unix(jan1 + 3*hour + 0.999))
	assert.True(t, ok)
	assert.Equal(t, 3, h)
}

func TestClock_Key(t *testing.T) {
	// 2024-01-04 是周四，所在周从 2023-12-31（周日）开始
	ts := model.Unix(jan1 + 3*day + 10*hour)

	k, _ := utcClock.Key(ts, Daily)
	assert.Equal(t, "2024-01-04", k)
	k, _ = utcClock.Key(ts, Weekly)
	assert.Equal(t, "2023-12-31", k)
	k, _ = utcClock.Key(ts, Monthly)
	assert.Equal(t, "2024-01", k)
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity("")
	assert.NoError(t, err)
	assert.Equal(t, Daily, g)

	g, err = ParseGranularity("monthly")
	assert.NoError(t, err)
	assert.Equal(t, Monthly, g)

	_, err = ParseGranularity("yearly")
	assert.Error(t, err)
}
