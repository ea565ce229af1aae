package workday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 2026-10-12 is a Monday.
var monday = Date(2026, time.October, 12)

func TestDay_TruncatesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	in := time.Date(2026, time.October, 13, 1, 30, 0, 0, loc)

	got := Day(in)
	assert.Equal(t, Date(2026, time.October, 13), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestDays(t *testing.T) {
	assert.Equal(t, 1, Days(monday, monday))
	assert.Equal(t, 7, Days(monday, monday.AddDate(0, 0, 6)))
	assert.Equal(t, 0, Days(monday, monday.AddDate(0, 0, -1)))
}

func TestDays_BeyondDurationRange(t *testing.T) {
	// One Gregorian cycle is exactly 146097 days.
	start := Date(2000, time.January, 1)
	assert.Equal(t, 146097+1, Days(start, Date(2400, time.January, 1)))
	assert.Equal(t, 3652059, Days(Date(1, time.January, 1), Date(9999, time.December, 31)))
	// 146097 days is 20871 whole weeks.
	assert.Equal(t, 20871*5, Count(start, Date(2399, time.December, 31)))
}

func TestCount(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"single monday", monday, monday, 1},
		{"mon-fri", monday, monday.AddDate(0, 0, 4), 5},
		{"full week", monday, monday.AddDate(0, 0, 6), 5},
		{"weekend only", monday.AddDate(0, 0, 5), monday.AddDate(0, 0, 6), 0},
		{"fri-mon", monday.AddDate(0, 0, 4), monday.AddDate(0, 0, 7), 2},
		{"three weeks", monday, monday.AddDate(0, 0, 20), 15},
		{"wed to next tue", monday.AddDate(0, 0, 2), monday.AddDate(0, 0, 8), 5},
		{"reversed", monday.AddDate(0, 0, 3), monday, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Count(tt.start, tt.end))
		})
	}
}

func TestCount_MatchesNaiveLoop(t *testing.T) {
	for offset := 0; offset < 7; offset++ {
		start := monday.AddDate(0, 0, offset)
		for length := 0; length < 40; length++ {
			end := start.AddDate(0, 0, length)
			naive := 0
			for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
				if IsWeekday(d) {
					naive++
				}
			}
			assert.Equal(t, naive, Count(start, end), "start=%s end=%s", start.Format("2006-01-02"), end.Format("2006-01-02"))
		}
	}
}

func TestWeek(t *testing.T) {
	for i := 0; i < 7; i++ {
		mon, sun := Week(monday.AddDate(0, 0, i).Add(15 * time.Hour))
		assert.Equal(t, monday, mon)
		assert.Equal(t, monday.AddDate(0, 0, 6), sun)
	}
}

func TestQuarter(t *testing.T) {
	assert.Equal(t, 1, Quarter(Date(2026, time.January, 1)))
	assert.Equal(t, 1, Quarter(Date(2026, time.March, 31)))
	assert.Equal(t, 2, Quarter(Date(2026, time.April, 1)))
	assert.Equal(t, 4, Quarter(Date(2026, time.December, 31)))
}

func TestOverlap(t *testing.T) {
	start, end, ok := Overlap(monday, monday.AddDate(0, 0, 10), monday.AddDate(0, 0, 5), monday.AddDate(0, 0, 20))
	assert.True(t, ok)
	assert.Equal(t, monday.AddDate(0, 0, 5), start)
	assert.Equal(t, monday.AddDate(0, 0, 10), end)

	_, _, ok = Overlap(monday, monday.AddDate(0, 0, 1), monday.AddDate(0, 0, 2), monday.AddDate(0, 0, 3))
	assert.False(t, ok)

	// Touching ranges share one day.
	start, end, ok = Overlap(monday, monday.AddDate(0, 0, 2), monday.AddDate(0, 0, 2), monday.AddDate(0, 0, 4))
	assert.True(t, ok)
	assert.Equal(t, start, end)
}
