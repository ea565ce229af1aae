// Package skilldemand compares how many open tasks need each skill with how
// many resources hold it.
package skilldemand

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zulandar/resourcepro/internal/metrics"
	"github.com/zulandar/resourcepro/internal/models"
	"github.com/zulandar/resourcepro/internal/workday"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxDemandScore is stored when demand cannot be divided by supply.
const MaxDemandScore = 99.99

const (
	lookbackDays = 90
	growthFactor = 0.3
)

// Analyzer writes one SkillDemandAnalysis per skill per day.
type Analyzer struct {
	DB  *gorm.DB
	Now func() time.Time
}

// NewAnalyzer returns an Analyzer using the wall clock.
func NewAnalyzer(db *gorm.DB) *Analyzer {
	return &Analyzer{DB: db, Now: time.Now}
}

// Score divides demand by supply, rounded to two decimals and capped at
// MaxDemandScore. Zero supply scores the cap.
func Score(demand, supply int) float64 {
	if supply <= 0 {
		return MaxDemandScore
	}
	s := math.Round(float64(demand)/float64(supply)*100) / 100
	return math.Min(MaxDemandScore, s)
}

// Analyze computes and upserts today's analysis for every skill, ordered by
// skill name.
func (a *Analyzer) Analyze(ctx context.Context) ([]models.SkillDemandAnalysis, error) {
	now := a.now()
	today := workday.Day(now)
	db := a.DB.WithContext(ctx)

	var skills []models.Skill
	if err := db.Order("name ASC").Find(&skills).Error; err != nil {
		return nil, fmt.Errorf("skilldemand: list skills: %w", err)
	}

	out := make([]models.SkillDemandAnalysis, 0, len(skills))
	shortages := 0
	for _, skill := range skills {
		demand, err := countTasks(db, skill.ID, func(q *gorm.DB) *gorm.DB {
			return q.Where("tasks.status <> ?", models.TaskCompleted)
		})
		if err != nil {
			return nil, fmt.Errorf("skilldemand: demand for %q: %w", skill.Name, err)
		}
		recent, err := countTasks(db, skill.ID, func(q *gorm.DB) *gorm.DB {
			return q.Where("tasks.created_at >= ?", today.AddDate(0, 0, -lookbackDays))
		})
		if err != nil {
			return nil, fmt.Errorf("skilldemand: history for %q: %w", skill.Name, err)
		}
		var supply int64
		if err := db.Model(&models.ResourceSkill{}).Where("skill_id = ?", skill.ID).Count(&supply).Error; err != nil {
			return nil, fmt.Errorf("skilldemand: supply for %q: %w", skill.Name, err)
		}

		rec := models.SkillDemandAnalysis{
			SkillName:             skill.Name,
			AnalysisDate:          today,
			CurrentDemand:         int(demand),
			AvailableResources:    int(supply),
			DemandScore:           Score(int(demand), int(supply)),
			PredictedFutureDemand: int(float64(recent) * growthFactor),
		}
		if err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "skill_name"}, {Name: "analysis_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"current_demand", "available_resources", "demand_score", "predicted_future_demand", "updated_at",
			}),
		}).Create(&rec).Error; err != nil {
			return nil, fmt.Errorf("skilldemand: save %q: %w", skill.Name, err)
		}
		if supply == 0 && demand > 0 {
			shortages++
		}
		out = append(out, rec)
	}

	metrics.SkillShortages.Set(float64(shortages))
	log.Info().Int("skills", len(out)).Int("shortages", shortages).Msg("analyzed skill demand")
	return out, nil
}

// Latest returns the analyses from the most recent analysis date, highest
// demand score first.
func (a *Analyzer) Latest(ctx context.Context) ([]models.SkillDemandAnalysis, error) {
	db := a.DB.WithContext(ctx)
	var last models.SkillDemandAnalysis
	if err := db.Order("analysis_date DESC").First(&last).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.SkillDemandAnalysis{}, nil
		}
		return nil, fmt.Errorf("skilldemand: latest: %w", err)
	}
	var recs []models.SkillDemandAnalysis
	if err := db.Where("analysis_date = ?", last.AnalysisDate).
		Order("demand_score DESC, skill_name ASC").
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("skilldemand: latest: %w", err)
	}
	return recs, nil
}

func countTasks(db *gorm.DB, skillID uint, scope func(*gorm.DB) *gorm.DB) (int64, error) {
	var n int64
	q := db.Model(&models.Task{}).
		Joins("JOIN task_skills ON task_skills.task_id = tasks.id").
		Where("task_skills.skill_id = ?", skillID)
	err := scope(q).Count(&n).Error
	return n, err
}

func (a *Analyzer) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}
