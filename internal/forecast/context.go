package forecast

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zulandar/resourcepro/internal/models"
	"github.com/zulandar/resourcepro/internal/store"
	"github.com/zulandar/resourcepro/internal/utilization"
	"github.com/zulandar/resourcepro/internal/workday"
	"gorm.io/gorm"
)

// Thresholds used when describing the business situation.
const (
	OverUtilizedAbove   = 95.0
	UnderUtilizedBelow  = 60.0
	HighDemandScore     = 2.0
	highPriorityMinimum = 4
)

// BusinessContext summarizes the organization for forecast enhancement.
type BusinessContext struct {
	ActiveProjects       int      `json:"active_projects"`
	HighPriorityProjects int      `json:"high_priority_projects"`
	OverUtilizedRoles    []string `json:"over_utilized_roles"`
	UnderUtilizedRoles   []string `json:"under_utilized_roles"`
	HighDemandSkills     []string `json:"high_demand_skills"`
}

// String renders the context as a short paragraph.
func (bc BusinessContext) String() string {
	var parts []string
	if bc.ActiveProjects > 0 {
		parts = append(parts, fmt.Sprintf("Currently %d active projects", bc.ActiveProjects))
		if bc.HighPriorityProjects > 0 {
			parts = append(parts, fmt.Sprintf("%d high-priority projects requiring immediate attention", bc.HighPriorityProjects))
		}
	}
	if len(bc.OverUtilizedRoles) > 0 {
		parts = append(parts, "Overutilized roles: "+strings.Join(bc.OverUtilizedRoles, ", "))
	}
	if len(bc.UnderUtilizedRoles) > 0 {
		parts = append(parts, "Underutilized roles: "+strings.Join(bc.UnderUtilizedRoles, ", "))
	}
	if len(bc.HighDemandSkills) > 0 {
		parts = append(parts, "High-demand skills: "+strings.Join(bc.HighDemandSkills, ", "))
	}
	if len(parts) == 0 {
		return "Standard business operations"
	}
	return strings.Join(parts, ". ")
}

// GatherContext builds a BusinessContext from projects, current utilization
// and the last week of skill analyses.
func GatherContext(ctx context.Context, db *gorm.DB, calc *utilization.Calculator, now time.Time) (BusinessContext, error) {
	var bc BusinessContext
	db = db.WithContext(ctx)

	var active []models.Project
	if err := db.Where("status IN ?", []string{models.ProjectPlanning, models.ProjectActive}).
		Find(&active).Error; err != nil {
		return bc, fmt.Errorf("forecast: context projects: %w", err)
	}
	bc.ActiveProjects = len(active)
	for _, p := range active {
		if p.Priority >= highPriorityMinimum {
			bc.HighPriorityProjects++
		}
	}

	resources, err := store.ListResources(db)
	if err != nil {
		return bc, fmt.Errorf("forecast: context: %w", err)
	}
	over, under := map[string]bool{}, map[string]bool{}
	for i := range resources {
		pct, err := calc.CurrentUtilization(ctx, &resources[i])
		if err != nil {
			return bc, fmt.Errorf("forecast: context: %w", err)
		}
		switch {
		case pct > OverUtilizedAbove:
			over[resources[i].Role] = true
		case pct < UnderUtilizedBelow:
			under[resources[i].Role] = true
		}
	}
	bc.OverUtilizedRoles = sortedKeys(over)
	bc.UnderUtilizedRoles = sortedKeys(under)

	var analyses []models.SkillDemandAnalysis
	if err := db.Where("analysis_date >= ?", workday.Day(now).AddDate(0, 0, -7)).
		Order("demand_score DESC").
		Limit(5).
		Find(&analyses).Error; err != nil {
		return bc, fmt.Errorf("forecast: context skills: %w", err)
	}
	seen := map[string]bool{}
	for _, a := range analyses {
		if a.DemandScore > HighDemandScore && !seen[a.SkillName] {
			seen[a.SkillName] = true
			bc.HighDemandSkills = append(bc.HighDemandSkills, a.SkillName)
		}
	}
	return bc, nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
