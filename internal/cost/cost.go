// Package cost tracks estimated and actual project cost against budget.
package cost

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/zulandar/resourcepro/internal/models"
	"github.com/zulandar/resourcepro/internal/store"
	"github.com/zulandar/resourcepro/internal/workday"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var hundred = decimal.NewFromInt(100)

// Tracker computes project costs from assignments and time entries.
type Tracker struct {
	DB  *gorm.DB
	Now func() time.Time
}

// NewTracker returns a Tracker using the wall clock.
func NewTracker(db *gorm.DB) *Tracker {
	return &Tracker{DB: db, Now: time.Now}
}

// EstimatedCost sums allocated hours times the resource's hourly cost over
// every assignment on the project's tasks.
func (t *Tracker) EstimatedCost(ctx context.Context, projectID uint) (decimal.Decimal, error) {
	db := t.DB.WithContext(ctx)
	var assignments []models.Assignment
	if err := db.Preload("Resource").
		Where("task_id IN (?)", projectTasks(db, projectID)).
		Find(&assignments).Error; err != nil {
		return decimal.Zero, fmt.Errorf("cost: estimated cost for project %d: %w", projectID, err)
	}
	total := decimal.Zero
	for _, a := range assignments {
		total = total.Add(decimal.NewFromInt(int64(a.AllocatedHours)).Mul(a.Resource.CostPerHour))
	}
	return total, nil
}

// ActualCost sums logged hours times the resource's hourly cost.
func (t *Tracker) ActualCost(ctx context.Context, projectID uint) (decimal.Decimal, error) {
	db := t.DB.WithContext(ctx)
	var entries []models.TimeEntry
	if err := db.Preload("Resource").
		Where("task_id IN (?)", projectTasks(db, projectID)).
		Find(&entries).Error; err != nil {
		return decimal.Zero, fmt.Errorf("cost: actual cost for project %d: %w", projectID, err)
	}
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Hours.Mul(e.Resource.CostPerHour))
	}
	return total, nil
}

// UpdateProjectCosts upserts today's cost snapshot for one project, or for
// every project when projectID is zero.
func (t *Tracker) UpdateProjectCosts(ctx context.Context, projectID uint) ([]models.ProjectCostTracking, error) {
	db := t.DB.WithContext(ctx)
	var projects []models.Project
	q := db.Order("id ASC")
	if projectID != 0 {
		q = q.Where("id = ?", projectID)
	}
	if err := q.Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("cost: list projects: %w", err)
	}
	if projectID != 0 && len(projects) == 0 {
		return nil, fmt.Errorf("cost: project %w: %d", store.ErrNotFound, projectID)
	}

	today := workday.Day(t.now())
	out := make([]models.ProjectCostTracking, 0, len(projects))
	for _, p := range projects {
		est, err := t.EstimatedCost(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		act, err := t.ActualCost(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		variance := decimal.Zero
		if p.Budget.Valid {
			variance = p.Budget.Decimal.Sub(act)
		}
		rec := models.ProjectCostTracking{
			ProjectID:      p.ID,
			Date:           today,
			EstimatedCost:  est,
			ActualCost:     act,
			BudgetVariance: variance,
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"estimated_cost", "actual_cost", "budget_variance", "updated_at"}),
		}).Create(&rec).Error; err != nil {
			return nil, fmt.Errorf("cost: save snapshot for project %d: %w", p.ID, err)
		}
		out = append(out, rec)
	}
	log.Info().Int("projects", len(out)).Msg("updated project costs")
	return out, nil
}

// ReportFilter narrows a variance report. Zero values match everything.
type ReportFilter struct {
	Status string
	Start  time.Time // projects ending on or after Start
	End    time.Time // projects starting on or before End
}

// ReportRow is one project's cost position.
type ReportRow struct {
	ProjectID          uint                `json:"project_id"`
	Project            string              `json:"project"`
	Status             string              `json:"status"`
	EstimatedCost      decimal.Decimal     `json:"estimated_cost"`
	ActualCost         decimal.Decimal     `json:"actual_cost"`
	Variance           decimal.Decimal     `json:"variance"`
	VariancePercentage decimal.Decimal     `json:"variance_percentage"`
	Budget             decimal.NullDecimal `json:"budget"`
	BudgetUtilization  decimal.Decimal     `json:"budget_utilization"`
}

// VarianceReport compares estimated with actual cost per project. Variance is
// estimate minus actual and is zero until both are non-zero.
func (t *Tracker) VarianceReport(ctx context.Context, f ReportFilter) ([]ReportRow, error) {
	q := t.DB.WithContext(ctx).Order("name ASC, id ASC")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if !f.Start.IsZero() {
		q = q.Where("end_date >= ?", workday.Day(f.Start))
	}
	if !f.End.IsZero() {
		q = q.Where("start_date <= ?", workday.Day(f.End))
	}
	var projects []models.Project
	if err := q.Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("cost: report projects: %w", err)
	}

	rows := make([]ReportRow, 0, len(projects))
	for _, p := range projects {
		est, err := t.EstimatedCost(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		act, err := t.ActualCost(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		row := ReportRow{
			ProjectID:          p.ID,
			Project:            p.Name,
			Status:             p.Status,
			EstimatedCost:      est,
			ActualCost:         act,
			Variance:           decimal.Zero,
			VariancePercentage: decimal.Zero,
			Budget:             p.Budget,
			BudgetUtilization:  decimal.Zero,
		}
		if !est.IsZero() && !act.IsZero() {
			row.Variance = est.Sub(act)
		}
		if est.IsPositive() {
			row.VariancePercentage = row.Variance.Div(est).Mul(hundred).Round(2)
		}
		if p.Budget.Valid && !p.Budget.Decimal.IsZero() {
			row.BudgetUtilization = act.Div(p.Budget.Decimal).Mul(hundred).Round(2)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Snapshots returns recorded cost snapshots for a project, oldest first.
func (t *Tracker) Snapshots(ctx context.Context, projectID uint) ([]models.ProjectCostTracking, error) {
	var p models.Project
	if err := t.DB.WithContext(ctx).First(&p, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cost: project %w: %d", store.ErrNotFound, projectID)
		}
		return nil, fmt.Errorf("cost: get project %d: %w", projectID, err)
	}
	var recs []models.ProjectCostTracking
	if err := t.DB.WithContext(ctx).Where("project_id = ?", projectID).Order("date ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("cost: snapshots for project %d: %w", projectID, err)
	}
	return recs, nil
}

func projectTasks(db *gorm.DB, projectID uint) *gorm.DB {
	return db.Model(&models.Task{}).Select("id").Where("project_id = ?", projectID)
}

func (t *Tracker) now() time.Time {
	if t.Now == nil {
		return time.Now()
	}
	return t.Now()
}
