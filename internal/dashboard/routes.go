package dashboard

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zulandar/resourcepro/internal/cost"
	"github.com/zulandar/resourcepro/internal/metrics"
	"github.com/zulandar/resourcepro/internal/store"
	"github.com/zulandar/resourcepro/internal/workday"
)

const dateLayout = "2006-01-02"

// registerRoutes sets up all API routes on the Gin router.
func registerRoutes(router *gin.Engine, a *api) {
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	g := router.Group("/api")
	g.GET("/health", handleHealth(a))
	g.GET("/resources/:id/utilization", handleResourceUtilization(a))
	g.GET("/utilization", handleUtilization(a))
	g.GET("/utilization/trends", handleTrends(a))
	g.GET("/forecasts", handleLatestForecast(a))
	g.POST("/forecasts", handleGenerateForecast(a))
	g.GET("/skills/demand", handleSkillDemand(a))
	g.POST("/skills/demand", handleAnalyzeSkills(a))
	g.GET("/costs", handleCosts(a))
}

func handleHealth(a *api) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := a.db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func handleResourceUtilization(a *api) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			badRequest(c, "invalid resource id: "+c.Param("id"))
			return
		}
		start, end, ok := dateRange(c, a)
		if !ok {
			return
		}
		res, err := store.GetResource(a.db.WithContext(c.Request.Context()), uint(id))
		if err != nil {
			fail(c, err)
			return
		}
		b, err := a.calc.Breakdown(c.Request.Context(), res, start, end)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

func handleUtilization(a *api) gin.HandlerFunc {
	return func(c *gin.Context) {
		start, end, ok := dateRange(c, a)
		if !ok {
			return
		}
		overview, err := UtilizationSummary(c.Request.Context(), a.db, a.calc, start, end)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, overview)
	}
}

func handleTrends(a *api) gin.HandlerFunc {
	return func(c *gin.Context) {
		days, ok := intQuery(c, "days", 30)
		if !ok {
			return
		}
		resourceID, ok := intQuery(c, "resource", 0)
		if !ok {
			return
		}
		recs, err := a.tracker.Trends(c.Request.Context(), uint(resourceID), days)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"days": days, "trends": TrendRows(recs)})
	}
}

func handleLatestForecast(a *api) gin.HandlerFunc {
	return func(c *gin.Context) {
		run, err := a.forecasts.LatestRun(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		if run == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no forecasts generated yet"})
			return
		}
		c.JSON(http.StatusOK, run)
	}
}

type forecastRequest struct {
	DaysAhead *int   `json:"days_ahead"`
	Skill     string `json:"skill"`
}

func handleGenerateForecast(a *api) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req forecastRequest
		// Chunked requests report ContentLength -1, so test the body itself.
		if c.Request.Body != nil && c.Request.Body != http.NoBody {
			if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
				badRequest(c, "invalid request body: "+err.Error())
				return
			}
		}
		daysAhead := a.daysAhead
		if req.DaysAhead != nil {
			daysAhead = *req.DaysAhead
		}
		if daysAhead < 0 {
			badRequest(c, "days_ahead must not be negative")
			return
		}

		ctx := c.Request.Context()
		var err error
		var body any
		if req.Skill != "" {
			body, err = a.forecasts.GenerateSkillDemand(ctx, req.Skill, daysAhead)
		} else {
			body, err = a.forecasts.GenerateResourceDemand(ctx, daysAhead)
		}
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, body)
	}
}

func handleSkillDemand(a *api) gin.HandlerFunc {
	return func(c *gin.Context) {
		recs, err := a.skills.Latest(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"skills": SkillRows(recs)})
	}
}

func handleAnalyzeSkills(a *api) gin.HandlerFunc {
	return func(c *gin.Context) {
		recs, err := a.skills.Analyze(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"skills": SkillRows(recs)})
	}
}

func handleCosts(a *api) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := cost.ReportFilter{Status: c.Query("status")}
		var ok bool
		if f.Start, ok = dateQuery(c, "start"); !ok {
			return
		}
		if f.End, ok = dateQuery(c, "end"); !ok {
			return
		}
		rows, err := a.costs.VarianceReport(c.Request.Context(), f)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"projects": rows})
	}
}

// dateRange reads ?start and ?end, defaulting to the current Monday-Sunday week.
func dateRange(c *gin.Context, a *api) (time.Time, time.Time, bool) {
	start, end := workday.Week(a.calc.CurrentTime())
	s, ok := dateQuery(c, "start")
	if !ok {
		return start, end, false
	}
	e, ok := dateQuery(c, "end")
	if !ok {
		return start, end, false
	}
	if !s.IsZero() {
		start = s
	}
	if !e.IsZero() {
		end = e
	}
	if end.Before(start) {
		badRequest(c, "end must not be before start")
		return start, end, false
	}
	return start, end, true
}

// dateQuery parses an optional YYYY-MM-DD query parameter. It writes a 400
// and returns false when the value is malformed.
func dateQuery(c *gin.Context, key string) (time.Time, bool) {
	v := c.Query(key)
	if v == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		badRequest(c, "invalid "+key+" date "+strconv.Quote(v)+", want YYYY-MM-DD")
		return time.Time{}, false
	}
	return workday.Day(t), true
}

func intQuery(c *gin.Context, key string, def int) (int, bool) {
	v := c.Query(key)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		badRequest(c, "invalid "+key+": "+v)
		return 0, false
	}
	return n, true
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, store.ErrNotFound) {
		status = http.StatusNotFound
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
