// Package store provides the create/read operations the capacity engine
// consumes: resources, skills, projects, tasks, assignments and time entries.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zulandar/resourcepro/internal/models"
	"github.com/zulandar/resourcepro/internal/workday"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is wrapped by lookups whose target record does not exist.
var ErrNotFound = errors.New("not found")

// ResourceOpts holds parameters for creating a resource.
type ResourceOpts struct {
	Name        string
	Role        string
	Department  string
	Capacity    int // weekly hours, default 40
	CostPerHour decimal.Decimal
	Skills      map[string]int // skill name -> proficiency
}

// TaskOpts holds parameters for creating a task.
type TaskOpts struct {
	ProjectID      uint
	Name           string
	Start          time.Time
	End            time.Time
	EstimatedHours int
	Status         string
	Priority       int
	Skills         []string
}

// EnsureSkill returns the skill with the given name, creating it if needed.
func EnsureSkill(db *gorm.DB, name string) (*models.Skill, error) {
	if name == "" {
		return nil, fmt.Errorf("store: skill name is required")
	}
	skill := models.Skill{Name: name}
	if err := db.Where(models.Skill{Name: name}).FirstOrCreate(&skill).Error; err != nil {
		return nil, fmt.Errorf("store: ensure skill %q: %w", name, err)
	}
	return &skill, nil
}

// CreateResource creates a resource and links its skills.
func CreateResource(db *gorm.DB, opts ResourceOpts) (*models.Resource, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("store: resource name is required")
	}
	if opts.Role == "" {
		return nil, fmt.Errorf("store: resource role is required")
	}
	if opts.Capacity == 0 {
		opts.Capacity = 40
	}
	if opts.Capacity < 0 {
		return nil, fmt.Errorf("store: resource capacity must not be negative")
	}

	res := models.Resource{
		Name:        opts.Name,
		Role:        opts.Role,
		Department:  opts.Department,
		Capacity:    opts.Capacity,
		CostPerHour: opts.CostPerHour,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&res).Error; err != nil {
			return fmt.Errorf("store: create resource %q: %w", opts.Name, err)
		}
		for name, prof := range opts.Skills {
			if err := addResourceSkill(tx, res.ID, name, prof); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// AddResourceSkill links a skill to a resource, updating proficiency if linked.
func AddResourceSkill(db *gorm.DB, resourceID uint, skillName string, proficiency int) error {
	return addResourceSkill(db, resourceID, skillName, proficiency)
}

func addResourceSkill(db *gorm.DB, resourceID uint, skillName string, proficiency int) error {
	if proficiency < 1 || proficiency > 10 {
		return fmt.Errorf("store: proficiency %d for %q must be 1-10", proficiency, skillName)
	}
	skill, err := EnsureSkill(db, skillName)
	if err != nil {
		return err
	}
	link := models.ResourceSkill{ResourceID: resourceID, SkillID: skill.ID, Proficiency: proficiency}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "resource_id"}, {Name: "skill_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"proficiency"}),
	}).Create(&link).Error; err != nil {
		return fmt.Errorf("store: link skill %q to resource %d: %w", skillName, resourceID, err)
	}
	return nil
}

// CreateProject creates a project. Budget is optional.
func CreateProject(db *gorm.DB, p models.Project) (*models.Project, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("store: project name is required")
	}
	if p.Status == "" {
		p.Status = models.ProjectPlanning
	}
	if p.Priority == 0 {
		p.Priority = 3
	}
	p.StartDate = workday.Day(p.StartDate)
	p.EndDate = workday.Day(p.EndDate)
	if err := db.Create(&p).Error; err != nil {
		return nil, fmt.Errorf("store: create project %q: %w", p.Name, err)
	}
	return &p, nil
}

// CreateTask creates a task and links its required skills.
func CreateTask(db *gorm.DB, opts TaskOpts) (*models.Task, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("store: task name is required")
	}
	if opts.ProjectID == 0 {
		return nil, fmt.Errorf("store: task project is required")
	}
	start, end := workday.Day(opts.Start), workday.Day(opts.End)
	if end.Before(start) {
		return nil, fmt.Errorf("store: task %q ends before it starts", opts.Name)
	}
	if opts.Status == "" {
		opts.Status = models.TaskNotStarted
	}
	if opts.Priority == 0 {
		opts.Priority = 3
	}

	task := models.Task{
		ProjectID:      opts.ProjectID,
		Name:           opts.Name,
		StartDate:      start,
		EndDate:        end,
		EstimatedHours: opts.EstimatedHours,
		Status:         opts.Status,
		Priority:       opts.Priority,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, name := range opts.Skills {
			skill, err := EnsureSkill(tx, name)
			if err != nil {
				return err
			}
			task.SkillsRequired = append(task.SkillsRequired, *skill)
		}
		if err := tx.Omit("SkillsRequired.*").Create(&task).Error; err != nil {
			return fmt.Errorf("store: create task %q: %w", opts.Name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Assign allocates hours of a resource to a task. Re-assigning the same pair
// replaces the allocated hours.
func Assign(db *gorm.DB, resourceID, taskID uint, hours int) (*models.Assignment, error) {
	if hours < 0 {
		return nil, fmt.Errorf("store: allocated hours must not be negative")
	}
	a := models.Assignment{ResourceID: resourceID, TaskID: taskID, AllocatedHours: hours}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "resource_id"}, {Name: "task_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"allocated_hours", "updated_at"}),
	}).Create(&a).Error; err != nil {
		return nil, fmt.Errorf("store: assign resource %d to task %d: %w", resourceID, taskID, err)
	}
	return &a, nil
}

// Unassign removes the (resource, task) assignment if present.
func Unassign(db *gorm.DB, resourceID, taskID uint) error {
	if err := db.Where("resource_id = ? AND task_id = ?", resourceID, taskID).
		Delete(&models.Assignment{}).Error; err != nil {
		return fmt.Errorf("store: unassign resource %d from task %d: %w", resourceID, taskID, err)
	}
	return nil
}

// LogTime records hours worked by a resource on a task.
func LogTime(db *gorm.DB, resourceID, taskID uint, date time.Time, hours decimal.Decimal) (*models.TimeEntry, error) {
	if hours.IsNegative() {
		return nil, fmt.Errorf("store: time entry hours must not be negative")
	}
	e := models.TimeEntry{ResourceID: resourceID, TaskID: taskID, Date: workday.Day(date), Hours: hours}
	if err := db.Create(&e).Error; err != nil {
		return nil, fmt.Errorf("store: log time for resource %d: %w", resourceID, err)
	}
	return &e, nil
}

// GetResource retrieves a resource by ID.
func GetResource(db *gorm.DB, id uint) (*models.Resource, error) {
	var res models.Resource
	if err := db.Where("id = ?", id).First(&res).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("store: resource %w: %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("store: get resource %d: %w", id, err)
	}
	return &res, nil
}

// ListResources returns all resources ordered by name.
func ListResources(db *gorm.DB) ([]models.Resource, error) {
	var resources []models.Resource
	if err := db.Order("name ASC, id ASC").Find(&resources).Error; err != nil {
		return nil, fmt.Errorf("store: list resources: %w", err)
	}
	return resources, nil
}

// OverlappingAssignments returns a resource's assignments whose task span
// intersects [start, end] inclusively, with the task preloaded.
func OverlappingAssignments(db *gorm.DB, resourceID uint, start, end time.Time) ([]models.Assignment, error) {
	tasks := db.Model(&models.Task{}).Select("id").
		Where("start_date <= ? AND end_date >= ?", workday.Day(end), workday.Day(start))

	var assignments []models.Assignment
	err := db.Preload("Task").
		Where("resource_id = ? AND task_id IN (?)", resourceID, tasks).
		Order("id ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("store: assignments for resource %d: %w", resourceID, err)
	}
	return assignments, nil
}
