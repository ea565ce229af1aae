package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Skill is a capability a resource can hold and a task can require.
type Skill struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"size:100;not null;uniqueIndex"`
	Description string `gorm:"type:text"`
}

// Resource is a person whose weekly capacity is allocated to tasks.
type Resource struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"`
	Name        string          `gorm:"size:100;not null"`
	Role        string          `gorm:"size:100;not null;index"`
	Department  string          `gorm:"size:100"`
	Capacity    int             `gorm:"default:40"` // hours per week
	CostPerHour decimal.Decimal `gorm:"type:decimal(10,2);default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Skills      []ResourceSkill `gorm:"foreignKey:ResourceID"`
	Assignments []Assignment    `gorm:"foreignKey:ResourceID"`
}

// ResourceSkill links a resource to a skill with a 1-10 proficiency.
type ResourceSkill struct {
	ID          uint `gorm:"primaryKey;autoIncrement"`
	ResourceID  uint `gorm:"not null;uniqueIndex:idx_resource_skill"`
	SkillID     uint `gorm:"not null;uniqueIndex:idx_resource_skill;index"`
	Proficiency int  `gorm:"default:5"`

	Skill Skill `gorm:"foreignKey:SkillID"`
}
