package forecast

import "context"

// Enhancer reviews generated forecasts and proposes adjustments. An
// implementation may call out to an external model; errors degrade the
// forecast result but never discard it.
type Enhancer interface {
	Enhance(ctx context.Context, forecasts []Forecast, bc BusinessContext) (*Enhancement, error)
}

// Adjustment is a proposed change to one persisted forecast.
type Adjustment struct {
	ForecastID           uint     `json:"original_forecast_id"`
	AdjustedHours        float64  `json:"adjusted_demand_hours"`
	AdjustmentPercentage float64  `json:"adjustment_percentage"`
	Reasoning            string   `json:"reasoning"`
	Confidence           float64  `json:"confidence_score"`
	ContextFactors       []string `json:"context_factors"`
}

// Insights are run-level observations returned alongside adjustments.
type Insights struct {
	MarketTrendsImpact       string   `json:"market_trends_impact"`
	StrategicRecommendations string   `json:"strategic_recommendations"`
	RiskFactors              []string `json:"risk_factors"`
	Opportunities            []string `json:"opportunities"`
}

// Enhancement is an Enhancer's full response.
type Enhancement struct {
	Adjustments []Adjustment `json:"adjusted_forecasts"`
	Insights    Insights     `json:"overall_insights"`
}

// Noop is an Enhancer that proposes nothing.
type Noop struct{}

// Enhance returns an empty Enhancement.
func (Noop) Enhance(context.Context, []Forecast, BusinessContext) (*Enhancement, error) {
	return &Enhancement{}, nil
}
