// Package workday provides civil-date helpers for capacity math: day
// normalization, inclusive weekday counts, week bounds and quarters.
package workday

import "time"

// Day truncates t to midnight UTC of its calendar date in t's own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a UTC civil date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Days returns the inclusive number of calendar days in [start, end].
// It is zero when end is before start.
func Days(start, end time.Time) int {
	from, to := dayNumber(start), dayNumber(end)
	if to < from {
		return 0
	}
	return int(to-from) + 1
}

// dayNumber counts whole days since the Unix epoch, without the ~292 year
// ceiling of time.Duration.
func dayNumber(t time.Time) int64 {
	return Day(t).Unix() / 86400
}

// IsWeekday reports whether t falls Monday through Friday.
func IsWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// Count returns the inclusive number of weekdays in [start, end].
func Count(start, end time.Time) int {
	n := Days(start, end)
	if n == 0 {
		return 0
	}
	full := n / 7
	count := full * 5
	d := Day(start).AddDate(0, 0, full*7)
	for i := 0; i < n%7; i++ {
		if IsWeekday(d) {
			count++
		}
		d = d.AddDate(0, 0, 1)
	}
	return count
}

// Week returns Monday and Sunday of the week containing t.
func Week(t time.Time) (time.Time, time.Time) {
	d := Day(t)
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	monday := d.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 6)
}

// Quarter returns the calendar quarter (1-4) of t.
func Quarter(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// Overlap returns the intersection of two inclusive date ranges and whether
// they intersect at all.
func Overlap(aStart, aEnd, bStart, bEnd time.Time) (time.Time, time.Time, bool) {
	start := Day(aStart)
	if s := Day(bStart); s.After(start) {
		start = s
	}
	end := Day(aEnd)
	if e := Day(bEnd); e.Before(end) {
		end = e
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
