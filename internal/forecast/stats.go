package forecast

import (
	"math"
	"sort"
	"time"

	"github.com/zulandar/resourcepro/internal/workday"
)

// point is one day of summed allocated hours for a role.
type point struct {
	Date  time.Time
	Hours float64
}

// dailySeries sums hours per date and orders the result by date.
func dailySeries(recs []Record) []point {
	byDate := make(map[time.Time]float64)
	for _, r := range recs {
		byDate[r.Date] += r.AllocatedHours
	}
	series := make([]point, 0, len(byDate))
	for d, h := range byDate {
		series = append(series, point{Date: d, Hours: h})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	return series
}

func values(series []point) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Hours
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStdev is the n-1 standard deviation; zero below two values.
func sampleStdev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// rollingMean returns the mean of the last window values, and false when
// fewer than window values exist.
func rollingMean(xs []float64, window int) (float64, bool) {
	if window <= 0 || len(xs) < window {
		return 0, false
	}
	return mean(xs[len(xs)-window:]), true
}

// linearFit fits y = slope*x + intercept by least squares over x = 0..n-1.
func linearFit(ys []float64) (slope, intercept float64) {
	n := float64(len(ys))
	if n == 0 {
		return 0, 0
	}
	if n == 1 {
		return 0, ys[0]
	}
	var sx, sy, sxy, sxx float64
	for i, y := range ys {
		x := float64(i)
		sx += x
		sy += y
		sxy += x * y
		sxx += x * x
	}
	slope = (n*sxy - sx*sy) / (n*sxx - sx*sx)
	intercept = (sy - slope*sx) / n
	return slope, intercept
}

// seasonalFactor compares the mean of days falling in now's quarter number
// with the overall mean. It is 1 when either is undefined.
func seasonalFactor(series []point, now time.Time) float64 {
	overall := mean(values(series))
	if overall == 0 {
		return 1
	}
	q := workday.Quarter(now)
	var inQuarter []float64
	for _, p := range series {
		if workday.Quarter(p.Date) == q {
			inQuarter = append(inQuarter, p.Hours)
		}
	}
	if len(inQuarter) == 0 {
		return 1
	}
	return mean(inQuarter) / overall
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
