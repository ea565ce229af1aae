package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/zulandar/resourcepro/internal/metrics"
	"github.com/zulandar/resourcepro/internal/models"
	"github.com/zulandar/resourcepro/internal/store"
	"github.com/zulandar/resourcepro/internal/utilization"
	"github.com/zulandar/resourcepro/internal/workday"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Status is the outcome of a forecast run.
type Status string

const (
	StatusOK           Status = "ok"
	StatusDegraded     Status = "degraded"
	StatusInsufficient Status = "insufficient"
)

// minSkillRecords is the least history a skill forecast needs.
const minSkillRecords = 5

// Result is what a generation run produced.
type Result struct {
	RunID       string       `json:"run_id,omitempty"`
	Status      Status       `json:"status"`
	Selection   Selection    `json:"selection"`
	Forecasts   []Forecast   `json:"forecasts"`
	Adjustments []Adjustment `json:"adjustments,omitempty"`
	Insights    *Insights    `json:"insights,omitempty"`
	Reason      string       `json:"reason,omitempty"`
}

// Service generates and persists demand forecasts.
type Service struct {
	DB         *gorm.DB
	Calc       *utilization.Calculator
	Enhancer   Enhancer // nil disables enhancement
	Benchmarks map[string]float64
}

// NewService returns a Service without an enhancer.
func NewService(db *gorm.DB, calc *utilization.Calculator) *Service {
	return &Service{DB: db, Calc: calc}
}

// GenerateResourceDemand forecasts demand per role for the period starting
// daysAhead days from today.
func (s *Service) GenerateResourceDemand(ctx context.Context, daysAhead int) (*Result, error) {
	now := s.Calc.CurrentTime()
	records, err := GatherHistory(ctx, s.DB, now)
	if err != nil {
		return nil, err
	}
	sel := SelectMethod(records)
	if !sel.Sufficient() {
		return s.insufficient(sel, fmt.Sprintf("need at least 7 days and 10 records of history, have %d days and %d records", sel.DataDays, sel.TotalPoints)), nil
	}
	return s.run(ctx, sel, records, generateOpts{now: now, daysAhead: daysAhead, benchmarks: s.Benchmarks})
}

// GenerateSkillDemand forecasts demand for one skill, keyed by the roles of
// the resources holding it.
func (s *Service) GenerateSkillDemand(ctx context.Context, skillName string, daysAhead int) (*Result, error) {
	var skill models.Skill
	if err := s.DB.WithContext(ctx).Where("name = ?", skillName).First(&skill).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("forecast: skill %w: %s", store.ErrNotFound, skillName)
		}
		return nil, fmt.Errorf("forecast: get skill %q: %w", skillName, err)
	}

	now := s.Calc.CurrentTime()
	records, err := GatherSkillHistory(ctx, s.DB, skill.ID, now)
	if err != nil {
		return nil, err
	}
	sel := SelectMethod(records)
	if len(records) < minSkillRecords {
		sel.Method, sel.Tier = MethodInsufficient, 0
		return s.insufficient(sel, fmt.Sprintf("need at least %d records for skill %s, have %d", minSkillRecords, skillName, len(records))), nil
	}
	if !sel.Sufficient() {
		sel.Method, sel.Tier = MethodBootstrap, 1
	}
	return s.run(ctx, sel, records, generateOpts{now: now, daysAhead: daysAhead, skill: skill.Name, benchmarks: s.Benchmarks})
}

func (s *Service) insufficient(sel Selection, reason string) *Result {
	metrics.ForecastRunsTotal.WithLabelValues(string(StatusInsufficient)).Inc()
	log.Info().Int("data_days", sel.DataDays).Int("points", sel.TotalPoints).Msg("insufficient history for forecast")
	return &Result{Status: StatusInsufficient, Selection: sel, Forecasts: []Forecast{}, Reason: reason}
}

func (s *Service) run(ctx context.Context, sel Selection, records []Record, opts generateOpts) (*Result, error) {
	res := &Result{
		RunID:     uuid.NewString(),
		Status:    StatusOK,
		Selection: sel,
		Forecasts: generate(sel, records, opts),
	}
	if err := s.persist(ctx, res.RunID, opts.now, res.Forecasts); err != nil {
		return nil, err
	}
	metrics.ForecastsTotal.WithLabelValues(string(sel.Method)).Add(float64(len(res.Forecasts)))

	if sel.Tier >= 2 && s.Enhancer != nil {
		if err := s.enhance(ctx, res, opts.now); err != nil {
			res.Status = StatusDegraded
			res.Reason = err.Error()
			metrics.EnhancerFailuresTotal.Inc()
			log.Warn().Err(err).Str("run_id", res.RunID).Msg("forecast enhancement failed, returning statistical forecasts")
		}
	}

	metrics.ForecastRunsTotal.WithLabelValues(string(res.Status)).Inc()
	log.Info().
		Str("run_id", res.RunID).
		Str("method", string(sel.Method)).
		Int("forecasts", len(res.Forecasts)).
		Int("adjustments", len(res.Adjustments)).
		Str("status", string(res.Status)).
		Msg("generated demand forecast")
	return res, nil
}

func (s *Service) persist(ctx context.Context, runID string, now time.Time, forecasts []Forecast) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range forecasts {
			f := &forecasts[i]
			rec := models.ResourceDemandForecast{
				RunID:                runID,
				ForecastDate:         workday.Day(now),
				ResourceRole:         f.Role.String(),
				Method:               string(f.Method),
				Tier:                 f.Tier,
				PredictedDemandHours: f.PredictedHours,
				ConfidenceScore:      f.Confidence,
				PeriodStart:          f.PeriodStart,
				PeriodEnd:            f.PeriodEnd,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("forecast: save %s: %w", f.Role, err)
			}
			f.ID = rec.ID
		}
		return nil
	})
}

// enhance asks the Enhancer for adjustments and stores the ones that refer
// to forecasts of this run.
func (s *Service) enhance(ctx context.Context, res *Result, now time.Time) error {
	bc, err := GatherContext(ctx, s.DB, s.Calc, now)
	if err != nil {
		return err
	}
	enh, err := s.Enhancer.Enhance(ctx, res.Forecasts, bc)
	if err != nil {
		return fmt.Errorf("forecast: enhance: %w", err)
	}
	if enh == nil {
		return nil
	}

	known := make(map[uint]bool, len(res.Forecasts))
	for _, f := range res.Forecasts {
		known[f.ID] = true
	}
	var kept []Adjustment
	for _, a := range enh.Adjustments {
		if !known[a.ForecastID] {
			log.Warn().Uint("forecast_id", a.ForecastID).Msg("dropping adjustment for unknown forecast")
			continue
		}
		a.AdjustedHours = round2(max(0, a.AdjustedHours))
		a.Confidence = clamp(a.Confidence, 0, 1)
		kept = append(kept, a)
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, a := range kept {
			factors, err := json.Marshal(a.ContextFactors)
			if err != nil {
				return fmt.Errorf("forecast: encode context factors: %w", err)
			}
			row := models.ForecastAdjustment{
				ForecastID:           a.ForecastID,
				AdjustedDemandHours:  a.AdjustedHours,
				AdjustmentPercentage: a.AdjustmentPercentage,
				Reasoning:            a.Reasoning,
				ContextFactors:       datatypes.JSON(factors),
				ConfidenceScore:      a.Confidence,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("forecast: save adjustment for %d: %w", a.ForecastID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	res.Adjustments = kept
	res.Insights = &enh.Insights
	return nil
}

// Run is a persisted generation run.
type Run struct {
	RunID       string       `json:"run_id"`
	CreatedAt   time.Time    `json:"created_at"`
	Forecasts   []Forecast   `json:"forecasts"`
	Adjustments []Adjustment `json:"adjustments"`
}

// LatestRun loads the most recent run's forecasts and adjustments. It returns
// nil without error when nothing has been generated.
func (s *Service) LatestRun(ctx context.Context) (*Run, error) {
	db := s.DB.WithContext(ctx)
	var last models.ResourceDemandForecast
	if err := db.Order("created_at DESC, id DESC").First(&last).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("forecast: latest run: %w", err)
	}

	var rows []models.ResourceDemandForecast
	if err := db.Where("run_id = ?", last.RunID).Order("resource_role ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("forecast: load run %s: %w", last.RunID, err)
	}
	run := &Run{RunID: last.RunID, CreatedAt: last.CreatedAt, Forecasts: make([]Forecast, len(rows)), Adjustments: []Adjustment{}}
	ids := make([]uint, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
		run.Forecasts[i] = Forecast{
			ID:             r.ID,
			Role:           ParseRole(r.ResourceRole),
			Method:         Method(r.Method),
			Tier:           r.Tier,
			PredictedHours: r.PredictedDemandHours,
			Confidence:     r.ConfidenceScore,
			PeriodStart:    r.PeriodStart,
			PeriodEnd:      r.PeriodEnd,
		}
	}

	var adjs []models.ForecastAdjustment
	if err := db.Where("forecast_id IN ?", ids).Order("id ASC").Find(&adjs).Error; err != nil {
		return nil, fmt.Errorf("forecast: load adjustments for run %s: %w", last.RunID, err)
	}
	for _, a := range adjs {
		var factors []string
		if len(a.ContextFactors) > 0 {
			if err := json.Unmarshal(a.ContextFactors, &factors); err != nil {
				return nil, fmt.Errorf("forecast: decode context factors %d: %w", a.ID, err)
			}
		}
		run.Adjustments = append(run.Adjustments, Adjustment{
			ForecastID:           a.ForecastID,
			AdjustedHours:        a.AdjustedDemandHours,
			AdjustmentPercentage: a.AdjustmentPercentage,
			Reasoning:            a.Reasoning,
			Confidence:           a.ConfidenceScore,
			ContextFactors:       factors,
		})
	}
	return run, nil
}
