package cost

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zulandar/resourcepro/internal/db"
	"github.com/zulandar/resourcepro/internal/models"
	"github.com/zulandar/resourcepro/internal/store"
	"github.com/zulandar/resourcepro/internal/workday"
	"gorm.io/gorm"
)

var (
	ctx   = context.Background()
	today = workday.Date(2026, time.October, 14)
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// seed builds one budgeted project with 10h planned for Ada ($100/h) and
// 20h for Bob ($50/h), of which Ada logged 4h and Bob 6h.
func seed(t *testing.T) (*gorm.DB, *Tracker, *models.Project) {
	t.Helper()
	gormDB, err := db.OpenMemory()
	require.NoError(t, err)

	ada, err := store.CreateResource(gormDB, store.ResourceOpts{Name: "Ada", Role: "Developer", CostPerHour: d("100")})
	require.NoError(t, err)
	bob, err := store.CreateResource(gormDB, store.ResourceOpts{Name: "Bob", Role: "Designer", CostPerHour: d("50")})
	require.NoError(t, err)

	proj, err := store.CreateProject(gormDB, models.Project{
		Name: "Apollo", Status: models.ProjectActive, Budget: decimal.NewNullDecimal(d("5000")),
		StartDate: today.AddDate(0, -1, 0), EndDate: today.AddDate(0, 2, 0),
	})
	require.NoError(t, err)
	task, err := store.CreateTask(gormDB, store.TaskOpts{ProjectID: proj.ID, Name: "Build", Start: today, End: today.AddDate(0, 0, 4)})
	require.NoError(t, err)

	_, err = store.Assign(gormDB, ada.ID, task.ID, 10)
	require.NoError(t, err)
	_, err = store.Assign(gormDB, bob.ID, task.ID, 20)
	require.NoError(t, err)
	_, err = store.LogTime(gormDB, ada.ID, task.ID, today, d("4"))
	require.NoError(t, err)
	_, err = store.LogTime(gormDB, bob.ID, task.ID, today, d("6"))
	require.NoError(t, err)

	tr := NewTracker(gormDB)
	tr.Now = func() time.Time { return today.Add(8 * time.Hour) }
	return gormDB, tr, proj
}

func TestEstimatedAndActualCost(t *testing.T) {
	_, tr, proj := seed(t)

	est, err := tr.EstimatedCost(ctx, proj.ID)
	require.NoError(t, err)
	assert.True(t, est.Equal(d("2000")), "estimated = %s", est)

	act, err := tr.ActualCost(ctx, proj.ID)
	require.NoError(t, err)
	assert.True(t, act.Equal(d("700")), "actual = %s", act)
}

func TestUpdateProjectCosts_UpsertsDailySnapshot(t *testing.T) {
	gormDB, tr, proj := seed(t)

	recs, err := tr.UpdateProjectCosts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].BudgetVariance.Equal(d("4300")))

	_, err = tr.UpdateProjectCosts(ctx, proj.ID)
	require.NoError(t, err)

	snaps, err := tr.Snapshots(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.True(t, snaps[0].ActualCost.Equal(d("700")))

	_, err = tr.UpdateProjectCosts(ctx, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorContains(t, err, "project not found")
	_, err = tr.Snapshots(ctx, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)

	var count int64
	gormDB.Model(&models.ProjectCostTracking{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpdateProjectCosts_NoBudget(t *testing.T) {
	gormDB, tr, _ := seed(t)
	p, err := store.CreateProject(gormDB, models.Project{Name: "Skunkworks"})
	require.NoError(t, err)

	recs, err := tr.UpdateProjectCosts(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].BudgetVariance.IsZero())
}

func TestVarianceReport(t *testing.T) {
	gormDB, tr, _ := seed(t)
	_, err := store.CreateProject(gormDB, models.Project{
		Name: "Archive", Status: models.ProjectCompleted,
		StartDate: today.AddDate(-1, 0, 0), EndDate: today.AddDate(0, -6, 0),
	})
	require.NoError(t, err)

	rows, err := tr.VarianceReport(ctx, ReportFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	apollo := rows[0]
	assert.Equal(t, "Apollo", apollo.Project)
	assert.True(t, apollo.Variance.Equal(d("1300")))
	assert.True(t, apollo.VariancePercentage.Equal(d("65")))
	assert.True(t, apollo.BudgetUtilization.Equal(d("14")))
	assert.True(t, rows[1].Variance.IsZero(), "no costs means no variance")

	rows, err = tr.VarianceReport(ctx, ReportFilter{Status: models.ProjectActive})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	rows, err = tr.VarianceReport(ctx, ReportFilter{Start: today})
	require.NoError(t, err)
	require.Len(t, rows, 1, "Archive ended before the range")
	assert.Equal(t, "Apollo", rows[0].Project)
}
