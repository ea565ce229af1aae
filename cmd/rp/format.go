package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zulandar/resourcepro/internal/workday"
)

const dateLayout = "2006-01-02"

// parseDateFlag parses an optional YYYY-MM-DD flag value. Empty yields the zero time.
func parseDateFlag(name, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: want YYYY-MM-DD", name, v)
	}
	return workday.Day(t), nil
}

// resolveRange fills missing bounds from the current Monday-Sunday week.
func resolveRange(startFlag, endFlag string) (time.Time, time.Time, error) {
	start, end := workday.Week(nowFunc())
	s, err := parseDateFlag("start", startFlag)
	if err != nil {
		return start, end, err
	}
	e, err := parseDateFlag("end", endFlag)
	if err != nil {
		return start, end, err
	}
	if !s.IsZero() {
		start = s
	}
	if !e.IsZero() {
		end = e
	}
	if end.Before(start) {
		return start, end, fmt.Errorf("--end %s is before --start %s", end.Format(dateLayout), start.Format(dateLayout))
	}
	return start, end, nil
}

// formatPercent renders a utilization figure, flagging over-allocation.
func formatPercent(pct float64) string {
	s := fmt.Sprintf("%.1f%%", pct)
	if pct > 100 {
		s += " !"
	}
	return s
}

// formatMoney renders a decimal amount with two places.
func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// formatBudget renders an optional budget.
func formatBudget(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return formatMoney(d.Decimal)
}
