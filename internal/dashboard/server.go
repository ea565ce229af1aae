// Package dashboard serves the read-mostly JSON API consumed by dashboards,
// plus Prometheus metrics.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/zulandar/resourcepro/internal/cost"
	"github.com/zulandar/resourcepro/internal/forecast"
	"github.com/zulandar/resourcepro/internal/skilldemand"
	"github.com/zulandar/resourcepro/internal/utilization"
	"gorm.io/gorm"
)

// StartOpts holds configuration for the dashboard server.
type StartOpts struct {
	DB         *gorm.DB
	Port       int
	Out        io.Writer
	DaysAhead  int               // default horizon for POST /api/forecasts
	Enhancer   forecast.Enhancer // optional
	Benchmarks map[string]float64
	Now        func() time.Time // defaults to time.Now
}

// Start launches the dashboard HTTP server. It blocks until ctx is cancelled,
// then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.DB == nil {
		return fmt.Errorf("dashboard: db is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	gin.SetMode(gin.ReleaseMode)
	router := NewRouter(opts)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Dashboard API running at http://localhost:%d/api\n", opts.Port)
	}
	log.Info().Int("port", opts.Port).Msg("dashboard listening")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(opts StartOpts) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	registerRoutes(router, newAPI(opts))
	return router
}

// api bundles the services handlers call into.
type api struct {
	db        *gorm.DB
	calc      *utilization.Calculator
	tracker   *utilization.Tracker
	forecasts *forecast.Service
	skills    *skilldemand.Analyzer
	costs     *cost.Tracker
	daysAhead int
}

func newAPI(opts StartOpts) *api {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	calc := utilization.NewCalculator(opts.DB)
	calc.Now = now
	svc := forecast.NewService(opts.DB, calc)
	svc.Enhancer = opts.Enhancer
	svc.Benchmarks = opts.Benchmarks
	skills := skilldemand.NewAnalyzer(opts.DB)
	skills.Now = now
	costs := cost.NewTracker(opts.DB)
	costs.Now = now
	return &api{
		db:        opts.DB,
		calc:      calc,
		tracker:   utilization.NewTracker(calc),
		forecasts: svc,
		skills:    skills,
		costs:     costs,
		daysAhead: opts.DaysAhead,
	}
}

// requestLogger logs each request at debug level, and server errors at warn.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		evt := log.Debug()
		if status >= http.StatusInternalServerError {
			evt = log.Warn()
		}
		evt.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	}
}
