package forecast

import (
	"math"
	"sort"
	"time"

	"github.com/zulandar/resourcepro/internal/workday"
)

// DefaultBenchmark is the target utilization percentage for unknown roles.
const DefaultBenchmark = 80.0

// DefaultBenchmarks are industry target utilization percentages by role.
var DefaultBenchmarks = map[string]float64{
	"Developer":          85,
	"Senior Developer":   85,
	"Frontend Developer": 85,
	"Backend Developer":  85,
	"DevOps Engineer":    80,
	"QA Engineer":        80,
	"Designer":           75,
	"UX Designer":        75,
	"Data Scientist":     75,
	"Project Manager":    70,
	"Business Analyst":   70,
}

const (
	bootstrapSample     = 5
	bootstrapConfidence = 0.5
	cvFallback          = 0.7
)

// Forecast is one role's predicted demand for a period.
type Forecast struct {
	ID             uint      `json:"id,omitempty"`
	Role           RoleKey   `json:"resource_role"`
	Method         Method    `json:"method"`
	Tier           int       `json:"tier"`
	PredictedHours float64   `json:"predicted_demand_hours"`
	Confidence     float64   `json:"confidence_score"`
	PeriodStart    time.Time `json:"period_start"`
	PeriodEnd      time.Time `json:"period_end"`
}

// Period returns the forecast window: daysAhead days from today (at least
// one) through seven days later.
func Period(now time.Time, daysAhead int) (time.Time, time.Time) {
	if daysAhead < 1 {
		daysAhead = 1
	}
	start := workday.Day(now).AddDate(0, 0, daysAhead)
	return start, start.AddDate(0, 0, 7)
}

type generateOpts struct {
	now        time.Time
	daysAhead  int
	skill      string
	benchmarks map[string]float64
}

// generate produces one forecast per role observed in records using the
// selected method. Insufficient selections produce nothing.
func generate(sel Selection, records []Record, opts generateOpts) []Forecast {
	if !sel.Sufficient() {
		return nil
	}
	byRole := make(map[string][]Record)
	var roles []string
	for _, r := range records {
		if _, ok := byRole[r.Role]; !ok {
			roles = append(roles, r.Role)
		}
		byRole[r.Role] = append(byRole[r.Role], r)
	}
	sort.Strings(roles)

	start, end := Period(opts.now, opts.daysAhead)
	out := make([]Forecast, 0, len(roles))
	for _, role := range roles {
		recs := byRole[role]
		var hours, conf float64
		switch sel.Method {
		case MethodBootstrap:
			hours, conf = bootstrap(recs, benchmarkFor(opts.benchmarks, role))
		case MethodTrend:
			hours, conf = trend(recs, sel.DataDays)
		default:
			hours, conf = statistical(recs, opts.now)
		}
		out = append(out, Forecast{
			Role:           RoleKey{Role: role, Skill: opts.skill},
			Method:         sel.Method,
			Tier:           sel.Tier,
			PredictedHours: round2(math.Max(0, hours)),
			Confidence:     round2(conf),
			PeriodStart:    start,
			PeriodEnd:      end,
		})
	}
	return out
}

func benchmarkFor(overrides map[string]float64, role string) float64 {
	if pct, ok := overrides[role]; ok {
		return pct
	}
	if pct, ok := DefaultBenchmarks[role]; ok {
		return pct
	}
	return DefaultBenchmark
}

// bootstrap scales the mean of the most recent allocations by the role's
// benchmark utilization.
func bootstrap(recs []Record, benchmark float64) (float64, float64) {
	sorted := append([]Record(nil), recs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	if len(sorted) > bootstrapSample {
		sorted = sorted[len(sorted)-bootstrapSample:]
	}
	hours := make([]float64, len(sorted))
	for i, r := range sorted {
		hours[i] = r.AllocatedHours
	}
	return mean(hours) * benchmark / 100, bootstrapConfidence
}

// trend extrapolates a least-squares line one day past the daily series.
func trend(recs []Record, dataDays int) (float64, float64) {
	ys := values(dailySeries(recs))
	var hours float64
	if len(ys) >= 5 {
		slope, intercept := linearFit(ys)
		hours = slope*float64(len(ys)) + intercept
	} else if r7, ok := rollingMean(ys, 7); ok {
		hours = r7
	} else {
		hours = mean(ys)
	}
	return hours, math.Min(0.8, 0.4+float64(dataDays)/100)
}

// statistical scales the recent 7-day mean by the current quarter's
// seasonal factor. Confidence falls as variability rises.
func statistical(recs []Record, now time.Time) (float64, float64) {
	series := dailySeries(recs)
	ys := values(series)
	base, ok := rollingMean(ys, 7)
	if !ok {
		base = mean(ys)
	}
	hours := base * seasonalFactor(series, now)

	cv := cvFallback
	if m := mean(ys); m != 0 {
		cv = sampleStdev(ys) / m
	}
	return hours, clamp(1-cv, 0.5, 0.95)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
