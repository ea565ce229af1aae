package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project statuses.
const (
	ProjectPlanning  = "planning"
	ProjectActive    = "active"
	ProjectOnHold    = "on_hold"
	ProjectCompleted = "completed"
	ProjectCancelled = "cancelled"
)

// Task statuses.
const (
	TaskNotStarted = "not_started"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
	TaskBlocked    = "blocked"
)

// Project groups tasks under a budget.
type Project struct {
	ID        uint                `gorm:"primaryKey;autoIncrement"`
	Name      string              `gorm:"size:100;not null"`
	Status    string              `gorm:"size:20;default:planning;index"`
	Priority  int                 `gorm:"default:3"`
	Budget    decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	StartDate time.Time           `gorm:"type:date"`
	EndDate   time.Time           `gorm:"type:date"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Tasks []Task `gorm:"foreignKey:ProjectID"`
}

// Task is a dated unit of work. Only StartDate, EndDate, EstimatedHours and
// Status matter to utilization math.
type Task struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	ProjectID      uint      `gorm:"not null;index"`
	Name           string    `gorm:"size:100;not null"`
	StartDate      time.Time `gorm:"type:date;not null;index"`
	EndDate        time.Time `gorm:"type:date;not null;index"`
	EstimatedHours int
	Status         string `gorm:"size:20;default:not_started;index"`
	Priority       int    `gorm:"default:3"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Project        Project      `gorm:"foreignKey:ProjectID"`
	SkillsRequired []Skill      `gorm:"many2many:task_skills"`
	Assignments    []Assignment `gorm:"foreignKey:TaskID"`
}

// TimeEntry records hours actually worked by a resource on a task.
type TimeEntry struct {
	ID         uint            `gorm:"primaryKey;autoIncrement"`
	ResourceID uint            `gorm:"not null;index"`
	TaskID     uint            `gorm:"not null;index"`
	Date       time.Time       `gorm:"type:date;not null"`
	Hours      decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	CreatedAt  time.Time

	Resource Resource `gorm:"foreignKey:ResourceID"`
	Task     Task     `gorm:"foreignKey:TaskID"`
}
