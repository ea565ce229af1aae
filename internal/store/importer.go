package store

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zulandar/resourcepro/internal/models"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// Dataset is the YAML document accepted by Import.
type Dataset struct {
	Resources []ResourceDoc `yaml:"resources"`
	Projects  []ProjectDoc  `yaml:"projects"`
}

// ResourceDoc describes a resource in an import file.
type ResourceDoc struct {
	Name        string         `yaml:"name"`
	Role        string         `yaml:"role"`
	Department  string         `yaml:"department"`
	Capacity    int            `yaml:"capacity"`
	CostPerHour string         `yaml:"cost_per_hour"`
	Skills      map[string]int `yaml:"skills"`
}

// ProjectDoc describes a project and its tasks in an import file.
type ProjectDoc struct {
	Name     string    `yaml:"name"`
	Status   string    `yaml:"status"`
	Priority int       `yaml:"priority"`
	Budget   string    `yaml:"budget"`
	Start    string    `yaml:"start"`
	End      string    `yaml:"end"`
	Tasks    []TaskDoc `yaml:"tasks"`
}

// TaskDoc describes a task, its skills, assignments and logged time.
type TaskDoc struct {
	Name           string         `yaml:"name"`
	Start          string         `yaml:"start"`
	End            string         `yaml:"end"`
	EstimatedHours int            `yaml:"estimated_hours"`
	Status         string         `yaml:"status"`
	Priority       int            `yaml:"priority"`
	Skills         []string       `yaml:"skills"`
	Assignments    map[string]int `yaml:"assignments"` // resource name -> hours
	TimeEntries    []TimeEntryDoc `yaml:"time_entries"`
}

// TimeEntryDoc is one logged block of work.
type TimeEntryDoc struct {
	Resource string `yaml:"resource"`
	Date     string `yaml:"date"`
	Hours    string `yaml:"hours"`
}

// ImportSummary counts what an import created.
type ImportSummary struct {
	Resources   int
	Projects    int
	Tasks       int
	Assignments int
	TimeEntries int
}

// ImportFile reads a YAML dataset from path and imports it.
func ImportFile(db *gorm.DB, path string) (*ImportSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("store: parse %s: %w", path, err)
	}
	return Import(db, ds)
}

// Import writes a dataset in one transaction. Assignments reference resources
// by name, so resources are created first.
func Import(db *gorm.DB, ds Dataset) (*ImportSummary, error) {
	sum := &ImportSummary{}
	err := db.Transaction(func(tx *gorm.DB) error {
		byName := make(map[string]uint)
		for _, rd := range ds.Resources {
			cost, err := parseDecimal(rd.CostPerHour)
			if err != nil {
				return fmt.Errorf("store: resource %q cost_per_hour: %w", rd.Name, err)
			}
			res, err := CreateResource(tx, ResourceOpts{
				Name:        rd.Name,
				Role:        rd.Role,
				Department:  rd.Department,
				Capacity:    rd.Capacity,
				CostPerHour: cost,
				Skills:      rd.Skills,
			})
			if err != nil {
				return err
			}
			byName[rd.Name] = res.ID
			sum.Resources++
		}

		for _, pd := range ds.Projects {
			if err := importProject(tx, pd, byName, sum); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sum, nil
}

func importProject(tx *gorm.DB, pd ProjectDoc, byName map[string]uint, sum *ImportSummary) error {
	start, err := parseDate(pd.Start)
	if err != nil {
		return fmt.Errorf("store: project %q start: %w", pd.Name, err)
	}
	end, err := parseDate(pd.End)
	if err != nil {
		return fmt.Errorf("store: project %q end: %w", pd.Name, err)
	}
	p := models.Project{Name: pd.Name, Status: pd.Status, Priority: pd.Priority, StartDate: start, EndDate: end}
	if pd.Budget != "" {
		b, err := decimal.NewFromString(pd.Budget)
		if err != nil {
			return fmt.Errorf("store: project %q budget: %w", pd.Name, err)
		}
		p.Budget = decimal.NewNullDecimal(b)
	}
	proj, err := CreateProject(tx, p)
	if err != nil {
		return err
	}
	sum.Projects++

	for _, td := range pd.Tasks {
		ts, err := parseDate(td.Start)
		if err != nil {
			return fmt.Errorf("store: task %q start: %w", td.Name, err)
		}
		te, err := parseDate(td.End)
		if err != nil {
			return fmt.Errorf("store: task %q end: %w", td.Name, err)
		}
		task, err := CreateTask(tx, TaskOpts{
			ProjectID:      proj.ID,
			Name:           td.Name,
			Start:          ts,
			End:            te,
			EstimatedHours: td.EstimatedHours,
			Status:         td.Status,
			Priority:       td.Priority,
			Skills:         td.Skills,
		})
		if err != nil {
			return err
		}
		sum.Tasks++

		for resName, hours := range td.Assignments {
			id, ok := byName[resName]
			if !ok {
				return fmt.Errorf("store: task %q assigns unknown resource %q", td.Name, resName)
			}
			if _, err := Assign(tx, id, task.ID, hours); err != nil {
				return err
			}
			sum.Assignments++
		}

		for _, ed := range td.TimeEntries {
			id, ok := byName[ed.Resource]
			if !ok {
				return fmt.Errorf("store: task %q logs time for unknown resource %q", td.Name, ed.Resource)
			}
			date, err := parseDate(ed.Date)
			if err != nil {
				return fmt.Errorf("store: time entry date: %w", err)
			}
			hours, err := parseDecimal(ed.Hours)
			if err != nil {
				return fmt.Errorf("store: time entry hours: %w", err)
			}
			if _, err := LogTime(tx, id, task.ID, date, hours); err != nil {
				return err
			}
			sum.TimeEntries++
		}
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
