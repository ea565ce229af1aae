package db

import (
	"fmt"

	"github.com/zulandar/resourcepro/internal/models"
	"gorm.io/gorm"
)

// AllModels returns every GORM model for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Skill{},
		&models.Resource{},
		&models.ResourceSkill{},
		&models.Project{},
		&models.Task{},
		&models.Assignment{},
		&models.TimeEntry{},
		&models.HistoricalUtilization{},
		&models.ResourceDemandForecast{},
		&models.ForecastAdjustment{},
		&models.SkillDemandAnalysis{},
		&models.ProjectCostTracking{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
