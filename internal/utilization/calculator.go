// Package utilization turns assignments into utilization percentages and
// records them as a daily time series.
package utilization

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/zulandar/resourcepro/internal/models"
	"github.com/zulandar/resourcepro/internal/store"
	"github.com/zulandar/resourcepro/internal/workday"
	"gorm.io/gorm"
)

// Calculator computes utilization from the current assignment state.
type Calculator struct {
	DB  *gorm.DB
	Now func() time.Time
}

// NewCalculator returns a Calculator using the wall clock.
func NewCalculator(db *gorm.DB) *Calculator {
	return &Calculator{DB: db, Now: time.Now}
}

// Item is one assignment's contribution to a range.
type Item struct {
	AssignmentID   uint    `json:"assignment_id"`
	TaskID         uint    `json:"task_id"`
	TaskName       string  `json:"task_name"`
	AllocatedHours int     `json:"allocated_hours"`
	ProratedHours  float64 `json:"prorated_hours"`
}

// Breakdown explains a utilization figure.
type Breakdown struct {
	ResourceID     uint      `json:"resource_id"`
	ResourceName   string    `json:"resource_name"`
	Role           string    `json:"role"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Items          []Item    `json:"items"`
	AllocatedHours float64   `json:"allocated_hours"`
	AvailableHours float64   `json:"available_hours"`
	Utilization    float64   `json:"utilization"`
	OverAllocated  bool      `json:"over_allocated"`
}

// Utilization returns allocated hours as a percentage of available hours for
// the inclusive range [start, end], rounded to one decimal. A range without
// work days yields 0.
func (c *Calculator) Utilization(ctx context.Context, res *models.Resource, start, end time.Time) (float64, error) {
	b, err := c.Breakdown(ctx, res, start, end)
	if err != nil {
		return 0, err
	}
	return b.Utilization, nil
}

// CurrentUtilization returns utilization for the Monday-Sunday week containing now.
func (c *Calculator) CurrentUtilization(ctx context.Context, res *models.Resource) (float64, error) {
	start, end := workday.Week(c.CurrentTime())
	return c.Utilization(ctx, res, start, end)
}

// Breakdown returns the per-assignment detail behind Utilization.
func (c *Calculator) Breakdown(ctx context.Context, res *models.Resource, start, end time.Time) (*Breakdown, error) {
	start, end = workday.Day(start), workday.Day(end)
	b := &Breakdown{
		ResourceID:   res.ID,
		ResourceName: res.Name,
		Role:         res.Role,
		Start:        start,
		End:          end,
		Items:        []Item{},
	}
	if end.Before(start) {
		return b, nil
	}

	assignments, err := store.OverlappingAssignments(c.DB.WithContext(ctx), res.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("utilization: resource %d: %w", res.ID, err)
	}

	for _, a := range assignments {
		hours := prorate(a, start, end)
		b.Items = append(b.Items, Item{
			AssignmentID:   a.ID,
			TaskID:         a.TaskID,
			TaskName:       a.Task.Name,
			AllocatedHours: a.AllocatedHours,
			ProratedHours:  round(hours, 2),
		})
		b.AllocatedHours += hours
	}
	b.AvailableHours = float64(res.Capacity) / 5 * float64(workday.Count(start, end))
	if b.AvailableHours > 0 {
		b.Utilization = round(b.AllocatedHours/b.AvailableHours*100, 1)
	}
	b.AllocatedHours = round(b.AllocatedHours, 2)
	b.OverAllocated = b.Utilization > 100
	return b, nil
}

// prorate spreads an assignment's hours evenly across its task's work days and
// returns the share falling inside [start, end].
func prorate(a models.Assignment, start, end time.Time) float64 {
	taskDays := workday.Count(a.Task.StartDate, a.Task.EndDate)
	if taskDays == 0 {
		return 0
	}
	from, to, ok := workday.Overlap(a.Task.StartDate, a.Task.EndDate, start, end)
	if !ok {
		return 0
	}
	return float64(a.AllocatedHours) * float64(workday.Count(from, to)) / float64(taskDays)
}

// CurrentTime returns the calculator clock, defaulting to the wall clock.
func (c *Calculator) CurrentTime() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
