package utilization

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zulandar/resourcepro/internal/metrics"
	"github.com/zulandar/resourcepro/internal/models"
	"github.com/zulandar/resourcepro/internal/store"
	"github.com/zulandar/resourcepro/internal/workday"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Tracker records daily utilization snapshots.
type Tracker struct {
	DB   *gorm.DB
	Calc *Calculator
}

// NewTracker returns a Tracker sharing the calculator's database and clock.
func NewTracker(calc *Calculator) *Tracker {
	return &Tracker{DB: calc.DB, Calc: calc}
}

// DailySummary reports what one RecordDaily call wrote.
type DailySummary struct {
	Date          time.Time
	Records       int
	OverAllocated []models.HistoricalUtilization
}

// RecordDaily upserts one HistoricalUtilization per resource for date.
// Re-running it for the same date overwrites the previous values. The
// upserts share one transaction, so a failed date writes nothing.
func (t *Tracker) RecordDaily(ctx context.Context, date time.Time) (*DailySummary, error) {
	date = workday.Day(date)
	db := t.DB.WithContext(ctx)

	resources, err := store.ListResources(db)
	if err != nil {
		return nil, fmt.Errorf("utilization: record %s: %w", date.Format("2006-01-02"), err)
	}

	// Snapshots read through the calculator's own handle, so build them all
	// before opening the write transaction.
	recs := make([]*models.HistoricalUtilization, len(resources))
	for i := range resources {
		rec, err := t.snapshot(ctx, &resources[i], date)
		if err != nil {
			return nil, err
		}
		recs[i] = rec
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, rec := range recs {
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "resource_id"}, {Name: "date"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"utilization_percentage", "allocated_hours", "available_hours", "updated_at",
				}),
			}).Create(rec).Error; err != nil {
				return fmt.Errorf("utilization: upsert resource %d on %s: %w", rec.ResourceID, date.Format("2006-01-02"), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sum := &DailySummary{Date: date, Records: len(recs)}
	for i, rec := range recs {
		if rec.UtilizationPercentage > 100 {
			rec.Resource = resources[i]
			sum.OverAllocated = append(sum.OverAllocated, *rec)
		}
	}

	metrics.UtilizationRecordsTotal.Add(float64(sum.Records))
	metrics.OverAllocatedResources.Set(float64(len(sum.OverAllocated)))
	log.Info().
		Str("date", date.Format("2006-01-02")).
		Int("records", sum.Records).
		Int("over_allocated", len(sum.OverAllocated)).
		Msg("recorded daily utilization")
	return sum, nil
}

// snapshot builds the record for one resource on one day. Allocated hours
// spread each assignment over the task's calendar days.
func (t *Tracker) snapshot(ctx context.Context, res *models.Resource, date time.Time) (*models.HistoricalUtilization, error) {
	pct, err := t.Calc.Utilization(ctx, res, date, date)
	if err != nil {
		return nil, err
	}
	assignments, err := store.OverlappingAssignments(t.DB.WithContext(ctx), res.ID, date, date)
	if err != nil {
		return nil, fmt.Errorf("utilization: resource %d: %w", res.ID, err)
	}
	var allocated float64
	for _, a := range assignments {
		days := workday.Days(a.Task.StartDate, a.Task.EndDate)
		if days < 1 {
			days = 1
		}
		allocated += float64(a.AllocatedHours) / float64(days)
	}
	return &models.HistoricalUtilization{
		ResourceID:            res.ID,
		Date:                  date,
		UtilizationPercentage: pct,
		AllocatedHours:        round(allocated, 2),
		AvailableHours:        round(float64(res.Capacity)/5, 2),
	}, nil
}

// Backfill records today and the previous days-1 days, oldest first. It
// returns the number of days recorded.
func (t *Tracker) Backfill(ctx context.Context, days int) (int, error) {
	if days < 1 {
		days = 1
	}
	today := workday.Day(t.Calc.CurrentTime())
	for i := days - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return days - 1 - i, err
		}
		if _, err := t.RecordDaily(ctx, today.AddDate(0, 0, -i)); err != nil {
			return days - 1 - i, err
		}
	}
	return days, nil
}

// Trends returns recorded utilization for the last days days (today
// included) ordered by date. A zero resourceID returns every resource.
func (t *Tracker) Trends(ctx context.Context, resourceID uint, days int) ([]models.HistoricalUtilization, error) {
	if days < 1 {
		days = 30
	}
	today := workday.Day(t.Calc.CurrentTime())
	q := t.DB.WithContext(ctx).
		Preload("Resource").
		Where("date >= ? AND date <= ?", today.AddDate(0, 0, -(days-1)), today)
	if resourceID != 0 {
		q = q.Where("resource_id = ?", resourceID)
	}
	var recs []models.HistoricalUtilization
	if err := q.Order("date ASC, resource_id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("utilization: trends: %w", err)
	}
	return recs, nil
}
