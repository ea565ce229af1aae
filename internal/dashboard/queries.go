package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/zulandar/resourcepro/internal/models"
	"github.com/zulandar/resourcepro/internal/store"
	"github.com/zulandar/resourcepro/internal/utilization"
	"gorm.io/gorm"
)

// UtilizationRow holds one resource's utilization for a range.
type UtilizationRow struct {
	ResourceID     uint    `json:"resource_id"`
	Name           string  `json:"name"`
	Role           string  `json:"role"`
	AllocatedHours float64 `json:"allocated_hours"`
	AvailableHours float64 `json:"available_hours"`
	Utilization    float64 `json:"utilization_percentage"`
	OverAllocated  bool    `json:"over_allocated"`
}

// RoleSummary aggregates utilization rows by role.
type RoleSummary struct {
	Role               string  `json:"role"`
	Resources          int     `json:"resources"`
	OverAllocated      int     `json:"over_allocated"`
	AverageUtilization float64 `json:"average_utilization"`
}

// UtilizationOverview is the body of GET /api/utilization.
type UtilizationOverview struct {
	Start     time.Time        `json:"start"`
	End       time.Time        `json:"end"`
	Resources []UtilizationRow `json:"resources"`
	Roles     []RoleSummary    `json:"roles"`
}

// UtilizationSummary computes the breakdown of every resource over [start, end].
func UtilizationSummary(ctx context.Context, db *gorm.DB, calc *utilization.Calculator, start, end time.Time) (*UtilizationOverview, error) {
	resources, err := store.ListResources(db.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	rows := make([]UtilizationRow, 0, len(resources))
	for i := range resources {
		b, err := calc.Breakdown(ctx, &resources[i], start, end)
		if err != nil {
			return nil, fmt.Errorf("dashboard: utilization for resource %d: %w", resources[i].ID, err)
		}
		rows = append(rows, UtilizationRow{
			ResourceID:     b.ResourceID,
			Name:           b.ResourceName,
			Role:           b.Role,
			AllocatedHours: b.AllocatedHours,
			AvailableHours: b.AvailableHours,
			Utilization:    b.Utilization,
			OverAllocated:  b.OverAllocated,
		})
	}
	return &UtilizationOverview{
		Start:     start,
		End:       end,
		Resources: rows,
		Roles:     summarizeRoles(rows),
	}, nil
}

// summarizeRoles groups rows by role, sorted by role name.
func summarizeRoles(rows []UtilizationRow) []RoleSummary {
	roleMap := make(map[string]*RoleSummary)
	totals := make(map[string]float64)
	for _, r := range rows {
		rs, ok := roleMap[r.Role]
		if !ok {
			rs = &RoleSummary{Role: r.Role}
			roleMap[r.Role] = rs
		}
		rs.Resources++
		if r.OverAllocated {
			rs.OverAllocated++
		}
		totals[r.Role] += r.Utilization
	}

	result := make([]RoleSummary, 0, len(roleMap))
	for role, rs := range roleMap {
		rs.AverageUtilization = float64(int(totals[role]/float64(rs.Resources)*10+0.5)) / 10
		result = append(result, *rs)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Role < result[j].Role })
	return result
}

// TrendRow is one historical utilization point for display.
type TrendRow struct {
	ResourceID     uint      `json:"resource_id"`
	Name           string    `json:"name"`
	Date           time.Time `json:"date"`
	Utilization    float64   `json:"utilization_percentage"`
	AllocatedHours float64   `json:"allocated_hours"`
	AvailableHours float64   `json:"available_hours"`
}

// TrendRows converts historical records into display rows.
func TrendRows(recs []models.HistoricalUtilization) []TrendRow {
	rows := make([]TrendRow, len(recs))
	for i, h := range recs {
		rows[i] = TrendRow{
			ResourceID:     h.ResourceID,
			Name:           h.Resource.Name,
			Date:           h.Date,
			Utilization:    h.UtilizationPercentage,
			AllocatedHours: h.AllocatedHours,
			AvailableHours: h.AvailableHours,
		}
	}
	return rows
}

// SkillRow is one skill's latest demand analysis for display.
type SkillRow struct {
	Skill                 string    `json:"skill"`
	AnalysisDate          time.Time `json:"analysis_date"`
	CurrentDemand         int       `json:"current_demand"`
	AvailableResources    int       `json:"available_resources"`
	DemandScore           float64   `json:"demand_score"`
	PredictedFutureDemand int       `json:"predicted_future_demand"`
}

// SkillRows converts analyses into display rows.
func SkillRows(recs []models.SkillDemandAnalysis) []SkillRow {
	rows := make([]SkillRow, len(recs))
	for i, r := range recs {
		rows[i] = SkillRow{
			Skill:                 r.SkillName,
			AnalysisDate:          r.AnalysisDate,
			CurrentDemand:         r.CurrentDemand,
			AvailableResources:    r.AvailableResources,
			DemandScore:           r.DemandScore,
			PredictedFutureDemand: r.PredictedFutureDemand,
		}
	}
	return rows
}
