package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/zulandar/resourcepro/internal/models"
	"github.com/zulandar/resourcepro/internal/workday"
	"gorm.io/gorm"
)

// Record is one historical assignment observation.
type Record struct {
	Date           time.Time
	Role           string
	AllocatedHours float64
	ResourceID     uint
	TaskID         uint
}

// Windows searched by GatherHistory, in order.
var historyWindows = []int{180, 90, 60, 30, 14, 7}

const (
	minWindowRecords = 10
	minWindowDates   = 3
	fallbackRecords  = 50
	skillWindowDays  = 180
)

// GatherHistory collects assignment records for forecasting. The first
// window holding at least 10 records over at least 3 distinct dates wins;
// otherwise the 50 most recent assignments are used regardless of age.
func GatherHistory(ctx context.Context, db *gorm.DB, now time.Time) ([]Record, error) {
	db = db.WithContext(ctx)
	today := workday.Day(now)

	var widest []models.Assignment
	if err := db.Preload("Resource").
		Where("created_at >= ?", today.AddDate(0, 0, -historyWindows[0])).
		Order("created_at ASC, id ASC").
		Find(&widest).Error; err != nil {
		return nil, fmt.Errorf("forecast: gather history: %w", err)
	}

	for _, days := range historyWindows {
		since := today.AddDate(0, 0, -days)
		var recs []Record
		for _, a := range widest {
			if !a.CreatedAt.Before(since) {
				recs = append(recs, toRecord(a))
			}
		}
		if len(recs) >= minWindowRecords && distinctDates(recs) >= minWindowDates {
			return recs, nil
		}
	}

	var recent []models.Assignment
	if err := db.Preload("Resource").
		Order("created_at DESC, id DESC").
		Limit(fallbackRecords).
		Find(&recent).Error; err != nil {
		return nil, fmt.Errorf("forecast: gather recent history: %w", err)
	}
	recs := make([]Record, len(recent))
	for i := range recent {
		// Oldest first, like the windowed path.
		recs[len(recent)-1-i] = toRecord(recent[i])
	}
	return recs, nil
}

// GatherSkillHistory collects the last 180 days of assignments held by
// resources with the skill on tasks requiring it.
func GatherSkillHistory(ctx context.Context, db *gorm.DB, skillID uint, now time.Time) ([]Record, error) {
	holders := db.Model(&models.ResourceSkill{}).Select("resource_id").Where("skill_id = ?", skillID)
	tasks := db.Table("task_skills").Select("task_id").Where("skill_id = ?", skillID)

	var assignments []models.Assignment
	err := db.WithContext(ctx).Preload("Resource").
		Where("resource_id IN (?) AND task_id IN (?)", holders, tasks).
		Where("created_at >= ?", workday.Day(now).AddDate(0, 0, -skillWindowDays)).
		Order("created_at ASC, id ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("forecast: gather skill %d history: %w", skillID, err)
	}
	recs := make([]Record, len(assignments))
	for i, a := range assignments {
		recs[i] = toRecord(a)
	}
	return recs, nil
}

func toRecord(a models.Assignment) Record {
	return Record{
		Date:           workday.Day(a.CreatedAt),
		Role:           a.Resource.Role,
		AllocatedHours: float64(a.AllocatedHours),
		ResourceID:     a.ResourceID,
		TaskID:         a.TaskID,
	}
}

func distinctDates(recs []Record) int {
	seen := make(map[time.Time]struct{}, len(recs))
	for _, r := range recs {
		seen[r.Date] = struct{}{}
	}
	return len(seen)
}
