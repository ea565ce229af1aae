// Package gemini implements forecast.Enhancer on top of the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/zulandar/resourcepro/internal/forecast"
	"google.golang.org/genai"
)

// DefaultModel is used when Opts.Model is empty.
const DefaultModel = "gemini-2.0-flash"

const temperature = 0.3

// contentGenerator abstracts the genai Models methods we use, enabling test mocks.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Opts holds parameters for creating an Enhancer.
type Opts struct {
	APIKey string
	Model  string
	// For testing: inject a generator instead of the real API.
	Generator contentGenerator
}

// Enhancer asks Gemini to review statistical forecasts.
type Enhancer struct {
	gen   contentGenerator
	model string
}

// New creates an Enhancer. An API key is required unless a generator is injected.
func New(ctx context.Context, opts Opts) (*Enhancer, error) {
	e := &Enhancer{gen: opts.Generator, model: opts.Model}
	if e.model == "" {
		e.model = DefaultModel
	}
	if e.gen != nil {
		return e, nil
	}
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	e.gen = client.Models
	return e, nil
}

// Enhance sends the forecasts and business context to the model and decodes
// its JSON response.
func (e *Enhancer) Enhance(ctx context.Context, forecasts []forecast.Forecast, bc forecast.BusinessContext) (*forecast.Enhancement, error) {
	if len(forecasts) == 0 {
		return &forecast.Enhancement{}, nil
	}
	prompt, err := buildPrompt(forecasts, bc)
	if err != nil {
		return nil, err
	}

	temp := float32(temperature)
	resp, err := e.gen.GenerateContent(ctx, e.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: generate: %w", err)
	}
	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}
	return parseEnhancement(text)
}

// promptForecast is the shape each forecast takes inside the prompt.
type promptForecast struct {
	ID             uint    `json:"id"`
	ResourceRole   string  `json:"resource_role"`
	PredictedHours float64 `json:"predicted_demand_hours"`
	Confidence     float64 `json:"confidence_score"`
	Method         string  `json:"method"`
	PeriodStart    string  `json:"period_start"`
	PeriodEnd      string  `json:"period_end"`
}

func buildPrompt(forecasts []forecast.Forecast, bc forecast.BusinessContext) (string, error) {
	items := make([]promptForecast, len(forecasts))
	for i, f := range forecasts {
		items[i] = promptForecast{
			ID:             f.ID,
			ResourceRole:   f.Role.String(),
			PredictedHours: f.PredictedHours,
			Confidence:     f.Confidence,
			Method:         string(f.Method),
			PeriodStart:    f.PeriodStart.Format("2006-01-02"),
			PeriodEnd:      f.PeriodEnd.Format("2006-01-02"),
		}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("gemini: encode forecasts: %w", err)
	}
	return fmt.Sprintf(promptTemplate, data, bc.String()), nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: empty response")
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("gemini: response has no text")
	}
	return b.String(), nil
}

// parseEnhancement decodes the model's JSON, tolerating a markdown code fence.
func parseEnhancement(text string) (*forecast.Enhancement, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	var enh forecast.Enhancement
	if err := json.Unmarshal([]byte(text), &enh); err != nil {
		return nil, fmt.Errorf("gemini: decode response: %w", err)
	}
	return &enh, nil
}

const promptTemplate = `You are an expert workforce planning consultant analyzing resource demand forecasts for a software development organization.

Statistical forecasts:
%s

Current business context:
%s

Review these forecasts and adjust them for business context, market trends, seasonal patterns, strategic initiatives and shifting skill demand.

For each forecast provide:
- original_forecast_id: the forecast id
- adjusted_demand_hours: your adjusted prediction
- adjustment_percentage: percentage change from the original (+/- decimal)
- reasoning: a 2-3 sentence explanation
- confidence_score: your confidence in the adjustment (0.0-1.0)
- context_factors: the business factors that influenced the decision

Also provide overall insights: market_trends_impact, strategic_recommendations, risk_factors, opportunities.

Respond with JSON in exactly this format:
{
  "adjusted_forecasts": [
    {
      "original_forecast_id": 0,
      "adjusted_demand_hours": 0.0,
      "adjustment_percentage": 0.0,
      "reasoning": "string",
      "confidence_score": 0.0,
      "context_factors": ["string"]
    }
  ],
  "overall_insights": {
    "market_trends_impact": "string",
    "strategic_recommendations": "string",
    "risk_factors": ["string"],
    "opportunities": ["string"]
  }
}
`
