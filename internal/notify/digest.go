package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/zulandar/resourcepro/internal/forecast"
	"github.com/zulandar/resourcepro/internal/models"
)

// maxListed caps the lines in one digest section.
const maxListed = 10

// OverAllocationDigest reports resources above threshold percent on date.
// ok is false when nobody is above the threshold.
func OverAllocationDigest(date time.Time, recs []models.HistoricalUtilization, threshold float64) (Message, bool) {
	var lines []string
	var over int
	for _, r := range recs {
		if r.UtilizationPercentage <= threshold {
			continue
		}
		over++
		if over <= maxListed {
			name := r.Resource.Name
			if name == "" {
				name = fmt.Sprintf("resource %d", r.ResourceID)
			}
			lines = append(lines, fmt.Sprintf("%s: %.1f%% (%.1fh of %.1fh)", name, r.UtilizationPercentage, r.AllocatedHours, r.AvailableHours))
		}
	}
	if over == 0 {
		return Message{}, false
	}
	if over > maxListed {
		lines = append(lines, fmt.Sprintf("...and %d more", over-maxListed))
	}
	return Message{
		Text: fmt.Sprintf("%d over-allocated resources on %s", over, date.Format("Jan 2")),
		Sections: []Section{{
			Title: "Over-allocation",
			Body:  strings.Join(lines, "\n"),
			Color: ColorError,
			Fields: []Field{
				{Name: "Threshold", Value: fmt.Sprintf("%.0f%%", threshold), Short: true},
				{Name: "Resources", Value: fmt.Sprintf("%d", over), Short: true},
			},
		}},
	}, true
}

// ForecastDigest summarizes a forecast run. ok is false for insufficient runs.
func ForecastDigest(res *forecast.Result) (Message, bool) {
	if res == nil || res.Status == forecast.StatusInsufficient || len(res.Forecasts) == 0 {
		return Message{}, false
	}
	adjusted := make(map[uint]forecast.Adjustment, len(res.Adjustments))
	for _, a := range res.Adjustments {
		adjusted[a.ForecastID] = a
	}

	var lines []string
	for i, f := range res.Forecasts {
		if i == maxListed {
			lines = append(lines, fmt.Sprintf("...and %d more", len(res.Forecasts)-maxListed))
			break
		}
		line := fmt.Sprintf("%s: %.1fh (confidence %.0f%%)", f.Role, f.PredictedHours, f.Confidence*100)
		if a, ok := adjusted[f.ID]; ok {
			line += fmt.Sprintf(" → %.1fh adjusted", a.AdjustedHours)
		}
		lines = append(lines, line)
	}

	first := res.Forecasts[0]
	color := ColorInfo
	if res.Status == forecast.StatusDegraded {
		color = ColorWarning
	}
	sec := Section{
		Title: fmt.Sprintf("Demand forecast %s – %s", first.PeriodStart.Format("Jan 2"), first.PeriodEnd.Format("Jan 2")),
		Body:  strings.Join(lines, "\n"),
		Color: color,
		Fields: []Field{
			{Name: "Method", Value: string(res.Selection.Method), Short: true},
			{Name: "History", Value: fmt.Sprintf("%d days, %d records", res.Selection.DataDays, res.Selection.TotalPoints), Short: true},
		},
	}
	if res.Status == forecast.StatusDegraded {
		sec.Fields = append(sec.Fields, Field{Name: "Degraded", Value: res.Reason})
	}
	return Message{
		Text:     fmt.Sprintf("Demand forecast: %d roles", len(res.Forecasts)),
		Sections: []Section{sec},
	}, true
}

// SkillGapDigest lists skills whose demand score exceeds minScore. ok is
// false when there are none.
func SkillGapDigest(recs []models.SkillDemandAnalysis, minScore float64) (Message, bool) {
	var lines []string
	for _, r := range recs {
		if r.DemandScore <= minScore {
			continue
		}
		if len(lines) == maxListed {
			break
		}
		lines = append(lines, fmt.Sprintf("%s: %d open tasks, %d resources (score %.2f)", r.SkillName, r.CurrentDemand, r.AvailableResources, r.DemandScore))
	}
	if len(lines) == 0 {
		return Message{}, false
	}
	return Message{
		Text: fmt.Sprintf("%d skills in short supply", len(lines)),
		Sections: []Section{{
			Title: "Skill gaps",
			Body:  strings.Join(lines, "\n"),
			Color: ColorWarning,
		}},
	}, true
}
