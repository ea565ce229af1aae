package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zulandar/resourcepro/internal/workday"
)

var testNow = workday.Date(2026, time.October, 14).Add(12 * time.Hour)

func series(role string, hours ...float64) []Record {
	start := workday.Date(2026, time.October, 1)
	recs := make([]Record, len(hours))
	for i, h := range hours {
		recs[i] = Record{Date: start.AddDate(0, 0, i), Role: role, AllocatedHours: h}
	}
	return recs
}

func TestPeriod(t *testing.T) {
	start, end := Period(testNow, 0)
	assert.Equal(t, workday.Date(2026, time.October, 15), start, "zero horizon means tomorrow")
	assert.Equal(t, workday.Date(2026, time.October, 22), end)

	start, _ = Period(testNow, 30)
	assert.Equal(t, workday.Date(2026, time.November, 13), start)
}

func TestBootstrap_LastFiveTimesBenchmark(t *testing.T) {
	recs := series("Developer", 100, 10, 20, 30, 40, 50)
	hours, conf := bootstrap(recs, 80)
	assert.InDelta(t, 24.0, hours, 1e-9) // mean(10..50)=30 * 0.8
	assert.Equal(t, 0.5, conf)
}

func TestBenchmarkFor(t *testing.T) {
	assert.Equal(t, 85.0, benchmarkFor(nil, "Developer"))
	assert.Equal(t, DefaultBenchmark, benchmarkFor(nil, "Astronaut"))
	assert.Equal(t, 60.0, benchmarkFor(map[string]float64{"Developer": 60}, "Developer"))
}

func TestTrend_ExtrapolatesLine(t *testing.T) {
	hours, conf := trend(series("Developer", 2, 4, 6, 8, 10), 35)
	assert.InDelta(t, 12.0, hours, 1e-9)
	assert.InDelta(t, 0.75, conf, 1e-9)

	_, conf = trend(series("Developer", 2, 4, 6, 8, 10), 60)
	assert.Equal(t, 0.8, conf, "confidence is capped")
}

func TestTrend_FewPointsUsesMean(t *testing.T) {
	hours, _ := trend(series("Developer", 3, 5), 10)
	assert.Equal(t, 4.0, hours)
}

func TestStatistical_Confidence(t *testing.T) {
	hours, conf := statistical(series("Developer", 8, 8, 8, 8, 8, 8, 8, 8), testNow)
	assert.Equal(t, 8.0, hours)
	assert.Equal(t, 0.95, conf, "no variation caps at 0.95")

	hours, conf = statistical(series("Developer", 0, 0, 0), testNow)
	assert.Zero(t, hours)
	assert.Equal(t, 0.5, conf, "zero mean uses the fallback variation")

	_, conf = statistical(series("Developer", 1, 20, 1, 20), testNow)
	assert.Equal(t, 0.5, conf, "high variation floors at 0.5")
}

func TestGenerate_OnePerRoleClampedAndSorted(t *testing.T) {
	recs := append(series("Tester", 9, 7, 5, 3, 1), series("Developer", 1, 2, 3, 4, 5)...)
	sel := Selection{Method: MethodTrend, Tier: 2, DataDays: 40}

	out := generate(sel, recs, generateOpts{now: testNow, daysAhead: 1})
	require.Len(t, out, 2)
	assert.Equal(t, "Developer", out[0].Role.String())
	assert.InDelta(t, 6.0, out[0].PredictedHours, 1e-9)
	assert.Equal(t, "Tester", out[1].Role.String())
	assert.Zero(t, out[1].PredictedHours, "negative extrapolation clamps to zero")
	for _, f := range out {
		assert.Equal(t, MethodTrend, f.Method)
		assert.Equal(t, workday.Date(2026, time.October, 15), f.PeriodStart)
		assert.Equal(t, 7*24*time.Hour, f.PeriodEnd.Sub(f.PeriodStart))
	}
}

func TestGenerate_AdvancedRunsStatistical(t *testing.T) {
	recs := series("Developer", 8, 8, 8, 8, 8, 8, 8)
	adv := generate(Selection{Method: MethodAdvanced, Tier: 4}, recs, generateOpts{now: testNow})
	stat := generate(Selection{Method: MethodStatistical, Tier: 3}, recs, generateOpts{now: testNow})
	require.Len(t, adv, 1)
	assert.Equal(t, stat[0].PredictedHours, adv[0].PredictedHours)
	assert.Equal(t, stat[0].Confidence, adv[0].Confidence)
	assert.Equal(t, 4, adv[0].Tier)
}

func TestGenerate_InsufficientIsEmpty(t *testing.T) {
	assert.Empty(t, generate(Selection{Method: MethodInsufficient}, series("Developer", 1), generateOpts{now: testNow}))
}
