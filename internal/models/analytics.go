package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// HistoricalUtilization is a point-in-time snapshot of one resource on one day.
type HistoricalUtilization struct {
	ID                    uint      `gorm:"primaryKey;autoIncrement"`
	ResourceID            uint      `gorm:"not null;uniqueIndex:idx_hist_resource_date"`
	Date                  time.Time `gorm:"type:date;not null;uniqueIndex:idx_hist_resource_date;index"`
	UtilizationPercentage float64   `gorm:"type:decimal(10,2)"`
	AllocatedHours        float64   `gorm:"type:decimal(8,2)"`
	AvailableHours        float64   `gorm:"type:decimal(8,2)"`
	CreatedAt             time.Time
	UpdatedAt             time.Time

	Resource Resource `gorm:"foreignKey:ResourceID"`
}

// TableName keeps the table name stable across GORM naming strategies.
func (HistoricalUtilization) TableName() string {
	return "historical_utilizations"
}

// ResourceDemandForecast is one role's predicted demand for a period. Records
// written by the same generation share a RunID.
type ResourceDemandForecast struct {
	ID                   uint      `gorm:"primaryKey;autoIncrement"`
	RunID                string    `gorm:"size:36;index"`
	ForecastDate         time.Time `gorm:"type:date;not null;index"`
	ResourceRole         string    `gorm:"size:150;not null;index"`
	Method               string    `gorm:"size:16"`
	Tier                 int
	PredictedDemandHours float64   `gorm:"type:decimal(8,2)"`
	ConfidenceScore      float64   `gorm:"type:decimal(3,2)"`
	PeriodStart          time.Time `gorm:"type:date"`
	PeriodEnd            time.Time `gorm:"type:date"`
	CreatedAt            time.Time `gorm:"index"`
}

// ForecastAdjustment stores an enhancer's suggested change to a forecast.
type ForecastAdjustment struct {
	ID                   uint    `gorm:"primaryKey;autoIncrement"`
	ForecastID           uint    `gorm:"not null;index"`
	AdjustedDemandHours  float64 `gorm:"type:decimal(8,2)"`
	AdjustmentPercentage float64 `gorm:"type:decimal(6,2)"`
	Reasoning            string  `gorm:"type:text"`
	ContextFactors       datatypes.JSON
	ConfidenceScore      float64 `gorm:"type:decimal(3,2)"`
	CreatedAt            time.Time

	Forecast ResourceDemandForecast `gorm:"foreignKey:ForecastID"`
}

// SkillDemandAnalysis compares how many active tasks need a skill with how
// many resources hold it.
type SkillDemandAnalysis struct {
	ID                    uint      `gorm:"primaryKey;autoIncrement"`
	SkillName             string    `gorm:"size:100;not null;uniqueIndex:idx_skill_date"`
	AnalysisDate          time.Time `gorm:"type:date;not null;uniqueIndex:idx_skill_date;index"`
	CurrentDemand         int
	AvailableResources    int
	DemandScore           float64 `gorm:"type:decimal(5,2)"`
	PredictedFutureDemand int
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// ProjectCostTracking is a daily cost snapshot for a project.
type ProjectCostTracking struct {
	ID             uint            `gorm:"primaryKey;autoIncrement"`
	ProjectID      uint            `gorm:"not null;uniqueIndex:idx_cost_project_date"`
	Date           time.Time       `gorm:"type:date;not null;uniqueIndex:idx_cost_project_date"`
	EstimatedCost  decimal.Decimal `gorm:"type:decimal(12,2)"`
	ActualCost     decimal.Decimal `gorm:"type:decimal(12,2)"`
	BudgetVariance decimal.Decimal `gorm:"type:decimal(12,2)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Project Project `gorm:"foreignKey:ProjectID"`
}
