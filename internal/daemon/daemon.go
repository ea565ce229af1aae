// Package daemon runs the daily ResourcePro jobs on a cron schedule:
// utilization recording, skill analysis, forecasting, cost snapshots and
// notification digests.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/zulandar/resourcepro/internal/cost"
	"github.com/zulandar/resourcepro/internal/forecast"
	"github.com/zulandar/resourcepro/internal/metrics"
	"github.com/zulandar/resourcepro/internal/notify"
	"github.com/zulandar/resourcepro/internal/skilldemand"
	"github.com/zulandar/resourcepro/internal/utilization"
	"github.com/zulandar/resourcepro/internal/workday"
	"gorm.io/gorm"
)

// DefaultSchedule fires once a day at 01:00.
const DefaultSchedule = "0 1 * * *"

// skillGapScore is the demand score above which a skill is reported as short.
const skillGapScore = 1.0

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Opts configures the daemon.
type Opts struct {
	DB           *gorm.DB
	Schedule     string // 5-field cron expression, default DefaultSchedule
	BackfillDays int    // days recorded per run, today included; default 1
	DaysAhead    int
	Enhancer     forecast.Enhancer
	Benchmarks   map[string]float64
	Notifiers    []notify.Notifier
	Threshold    float64 // over-allocation threshold for digests, default 100
	Out          io.Writer
	Now          func() time.Time
}

// Daemon holds the services one pipeline run calls into.
type Daemon struct {
	opts      Opts
	schedule  cron.Schedule
	tracker   *utilization.Tracker
	forecasts *forecast.Service
	skills    *skilldemand.Analyzer
	costs     *cost.Tracker
}

// New validates opts and wires the services.
func New(opts Opts) (*Daemon, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("daemon: db is required")
	}
	if opts.Schedule == "" {
		opts.Schedule = DefaultSchedule
	}
	sched, err := cronParser.Parse(opts.Schedule)
	if err != nil {
		return nil, fmt.Errorf("daemon: parse schedule %q: %w", opts.Schedule, err)
	}
	if opts.BackfillDays < 1 {
		opts.BackfillDays = 1
	}
	if opts.Threshold <= 0 {
		opts.Threshold = 100
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	calc := utilization.NewCalculator(opts.DB)
	calc.Now = opts.Now
	svc := forecast.NewService(opts.DB, calc)
	svc.Enhancer = opts.Enhancer
	svc.Benchmarks = opts.Benchmarks
	skills := skilldemand.NewAnalyzer(opts.DB)
	skills.Now = opts.Now
	costs := cost.NewTracker(opts.DB)
	costs.Now = opts.Now

	return &Daemon{
		opts:      opts,
		schedule:  sched,
		tracker:   utilization.NewTracker(calc),
		forecasts: svc,
		skills:    skills,
		costs:     costs,
	}, nil
}

// Next returns the first scheduled run after t.
func (d *Daemon) Next(t time.Time) time.Time {
	return d.schedule.Next(t)
}

// Run schedules the pipeline and blocks until ctx is cancelled. Overlapping
// runs are skipped and a panicking run does not stop the scheduler.
func (d *Daemon) Run(ctx context.Context) error {
	logger := cronLogger{}
	c := cron.New(
		cron.WithParser(cronParser),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	c.Schedule(d.schedule, cron.FuncJob(func() {
		if err := d.RunOnce(ctx); err != nil {
			log.Error().Err(err).Msg("daily pipeline finished with errors")
		}
	}))

	fmt.Fprintf(d.opts.Out, "Daemon starting (schedule %q, next run %s)...\n",
		d.opts.Schedule, d.Next(d.opts.Now()).Format(time.RFC3339))
	c.Start()

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	fmt.Fprintf(d.opts.Out, "Daemon stopped.\n")
	return nil
}

// RunOnce executes every job in order. A failing job is logged and later jobs
// still run; the joined errors are returned.
func (d *Daemon) RunOnce(ctx context.Context) error {
	today := workday.Day(d.opts.Now())
	var errs []error
	var digests []notify.Message

	var summary *utilization.DailySummary
	errs = append(errs, d.job(ctx, "record_utilization", func(ctx context.Context) error {
		for i := d.opts.BackfillDays - 1; i > 0; i-- {
			if _, err := d.tracker.RecordDaily(ctx, today.AddDate(0, 0, -i)); err != nil {
				return err
			}
		}
		var err error
		summary, err = d.tracker.RecordDaily(ctx, today)
		return err
	}))
	if summary != nil {
		if msg, ok := notify.OverAllocationDigest(summary.Date, summary.OverAllocated, d.opts.Threshold); ok {
			digests = append(digests, msg)
		}
	}

	errs = append(errs, d.job(ctx, "analyze_skills", func(ctx context.Context) error {
		recs, err := d.skills.Analyze(ctx)
		if err != nil {
			return err
		}
		if msg, ok := notify.SkillGapDigest(recs, skillGapScore); ok {
			digests = append(digests, msg)
		}
		return nil
	}))

	errs = append(errs, d.job(ctx, "forecast", func(ctx context.Context) error {
		res, err := d.forecasts.GenerateResourceDemand(ctx, d.opts.DaysAhead)
		if err != nil {
			return err
		}
		if msg, ok := notify.ForecastDigest(res); ok {
			digests = append(digests, msg)
		}
		return nil
	}))

	errs = append(errs, d.job(ctx, "update_costs", func(ctx context.Context) error {
		_, err := d.costs.UpdateProjectCosts(ctx, 0)
		return err
	}))

	// Notification failures are logged by Broadcast and never fail the run.
	d.job(ctx, "notify", func(ctx context.Context) error {
		for _, msg := range digests {
			notify.Broadcast(ctx, d.opts.Notifiers, msg)
		}
		return nil
	})

	return errors.Join(errs...)
}

// job times fn and logs its outcome.
func (d *Daemon) job(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("daemon: %s: %w", name, err)
	}
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	metrics.JobDurationSeconds.WithLabelValues(name).Observe(elapsed.Seconds())
	if err != nil {
		log.Error().Err(err).Str("job", name).Dur("duration", elapsed).Msg("job failed")
		return fmt.Errorf("daemon: %s: %w", name, err)
	}
	log.Info().Str("job", name).Dur("duration", elapsed).Msg("job done")
	return nil
}

// cronLogger routes cron's internal logging through zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
