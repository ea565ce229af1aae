package daemon

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zulandar/resourcepro/internal/db"
	"github.com/zulandar/resourcepro/internal/models"
	"github.com/zulandar/resourcepro/internal/notify"
	"github.com/zulandar/resourcepro/internal/store"
	"github.com/zulandar/resourcepro/internal/workday"
	"gorm.io/gorm"
)

var monday = workday.Date(2026, time.October, 12)

type recordingNotifier struct {
	err error
	got []notify.Message
}

func (r *recordingNotifier) Platform() string { return "test" }

func (r *recordingNotifier) Send(_ context.Context, msg notify.Message) error {
	r.got = append(r.got, msg)
	return r.err
}

// seed books Ada twice over for the week on tasks needing a skill nobody holds.
func seed(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.OpenMemory()
	require.NoError(t, err)
	proj, err := store.CreateProject(gormDB, models.Project{Name: "Apollo", Status: models.ProjectActive})
	require.NoError(t, err)
	ada, err := store.CreateResource(gormDB, store.ResourceOpts{Name: "Ada", Role: "Developer", Capacity: 40})
	require.NoError(t, err)
	for _, name := range []string{"api", "ui"} {
		task, err := store.CreateTask(gormDB, store.TaskOpts{
			ProjectID: proj.ID, Name: name, Start: monday, End: monday.AddDate(0, 0, 4),
			EstimatedHours: 40, Status: models.TaskInProgress, Skills: []string{"Rust"},
		})
		require.NoError(t, err)
		_, err = store.Assign(gormDB, ada.ID, task.ID, 40)
		require.NoError(t, err)
	}
	return gormDB
}

func newDaemon(t *testing.T, gormDB *gorm.DB, n notify.Notifier, backfill int) *Daemon {
	t.Helper()
	d, err := New(Opts{
		DB:           gormDB,
		BackfillDays: backfill,
		DaysAhead:    7,
		Notifiers:    []notify.Notifier{n},
		Now:          func() time.Time { return monday.Add(2 * time.Hour) },
	})
	require.NoError(t, err)
	return d
}

func TestNew_RequiresDB(t *testing.T) {
	_, err := New(Opts{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db is required")
}

func TestNew_RejectsBadSchedule(t *testing.T) {
	gormDB, err := db.OpenMemory()
	require.NoError(t, err)
	_, err = New(Opts{DB: gormDB, Schedule: "every day"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse schedule")
}

func TestNext_DefaultSchedule(t *testing.T) {
	gormDB, err := db.OpenMemory()
	require.NoError(t, err)
	d, err := New(Opts{DB: gormDB})
	require.NoError(t, err)

	assert.Equal(t, monday.Add(1*time.Hour), d.Next(monday))
	assert.Equal(t, monday.AddDate(0, 0, 1).Add(1*time.Hour), d.Next(monday.Add(2*time.Hour)))
}

func TestRunOnce_RunsEveryJobAndNotifies(t *testing.T) {
	gormDB := seed(t)
	n := &recordingNotifier{}
	d := newDaemon(t, gormDB, n, 1)

	require.NoError(t, d.RunOnce(context.Background()))

	var hist []models.HistoricalUtilization
	require.NoError(t, gormDB.Find(&hist).Error)
	require.Len(t, hist, 1)
	assert.Equal(t, 200.0, hist[0].UtilizationPercentage)

	var skills []models.SkillDemandAnalysis
	require.NoError(t, gormDB.Find(&skills).Error)
	require.Len(t, skills, 1)
	assert.Equal(t, 99.99, skills[0].DemandScore)

	var costs int64
	require.NoError(t, gormDB.Model(&models.ProjectCostTracking{}).Count(&costs).Error)
	assert.Equal(t, int64(1), costs)

	// History is too thin to forecast, so only the over-allocation and skill gap digests go out.
	require.Len(t, n.got, 2)
	assert.Contains(t, n.got[0].Text, "over-allocated")
	assert.Contains(t, n.got[0].Sections[0].Body, "Ada: 200.0%")
	assert.Contains(t, n.got[1].Text, "skills in short supply")
	assert.Contains(t, n.got[1].Sections[0].Body, "Rust")
}

func TestRunOnce_IsIdempotent(t *testing.T) {
	gormDB := seed(t)
	d := newDaemon(t, gormDB, &recordingNotifier{}, 1)

	require.NoError(t, d.RunOnce(context.Background()))
	require.NoError(t, d.RunOnce(context.Background()))

	for _, model := range []interface{}{
		&models.HistoricalUtilization{}, &models.SkillDemandAnalysis{}, &models.ProjectCostTracking{},
	} {
		var n int64
		require.NoError(t, gormDB.Model(model).Count(&n).Error)
		assert.Equal(t, int64(1), n, "%T", model)
	}
}

func TestRunOnce_BackfillRecordsEarlierDays(t *testing.T) {
	gormDB := seed(t)
	d := newDaemon(t, gormDB, &recordingNotifier{}, 3)

	require.NoError(t, d.RunOnce(context.Background()))

	var dates []time.Time
	require.NoError(t, gormDB.Model(&models.HistoricalUtilization{}).Order("date ASC").Pluck("date", &dates).Error)
	require.Len(t, dates, 3)
	assert.Equal(t, "2026-10-10", dates[0].Format("2006-01-02"))
	assert.Equal(t, "2026-10-12", dates[2].Format("2006-01-02"))
}

func TestRunOnce_NotifierFailureDoesNotFailRun(t *testing.T) {
	gormDB := seed(t)
	n := &recordingNotifier{err: errors.New("invalid_auth")}
	d := newDaemon(t, gormDB, n, 1)

	require.NoError(t, d.RunOnce(context.Background()))
	assert.Len(t, n.got, 2)
}

func TestRunOnce_CancelledContextSkipsJobs(t *testing.T) {
	gormDB := seed(t)
	n := &recordingNotifier{}
	d := newDaemon(t, gormDB, n, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := d.RunOnce(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	var hist int64
	require.NoError(t, gormDB.Model(&models.HistoricalUtilization{}).Count(&hist).Error)
	assert.Zero(t, hist)
	assert.Empty(t, n.got)
}

func TestRun_StopsOnCancel(t *testing.T) {
	gormDB, err := db.OpenMemory()
	require.NoError(t, err)
	var out bytes.Buffer
	d, err := New(Opts{DB: gormDB, Out: &out})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, strings.Contains(out.String(), "Daemon stopped."), out.String())
}
