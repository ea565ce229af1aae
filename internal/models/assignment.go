package models

import "time"

// Assignment allocates hours of a resource to a task. AllocatedHours may exceed
// the task estimate.
type Assignment struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	ResourceID     uint      `gorm:"not null;uniqueIndex:idx_assignment_pair"`
	TaskID         uint      `gorm:"not null;uniqueIndex:idx_assignment_pair;index"`
	AllocatedHours int       `gorm:"not null"`
	Notes          string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"index"`
	UpdatedAt      time.Time

	Resource Resource `gorm:"foreignKey:ResourceID"`
	Task     Task     `gorm:"foreignKey:TaskID"`
}
