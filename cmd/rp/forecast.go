package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/resourcepro/internal/forecast"
	"github.com/zulandar/resourcepro/internal/utilization"
)

func newForecastCmd() *cobra.Command {
	var (
		configPath string
		daysAhead  int
		skill      string
		noEnhance  bool
	)

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Generate demand forecasts",
		Long: `Forecasts demand hours per role (or per role holding --skill) for the week
starting --days-ahead days from today. The method depends on how much history
exists: bootstrap, trend, statistical or advanced. With enhancement enabled in
config and GEMINI_API_KEY set, tier 2+ forecasts are adjusted for business context.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForecast(cmd, configPath, daysAhead, skill, noEnhance)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to ResourcePro config file")
	cmd.Flags().IntVar(&daysAhead, "days-ahead", -1, "days from today to the forecast period (default from config)")
	cmd.Flags().StringVar(&skill, "skill", "", "forecast demand for one skill")
	cmd.Flags().BoolVar(&noEnhance, "no-enhance", false, "skip business-context enhancement")
	return cmd
}

func runForecast(cmd *cobra.Command, configPath string, daysAhead int, skill string, noEnhance bool) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if daysAhead < 0 {
		daysAhead = cfg.Forecast.DaysAhead
	}

	ctx := context.Background()
	calc := utilization.NewCalculator(gormDB)
	calc.Now = nowFunc
	svc := forecast.NewService(gormDB, calc)
	svc.Benchmarks = cfg.Forecast.Benchmarks
	if !noEnhance {
		if svc.Enhancer, err = newEnhancer(ctx, cfg); err != nil {
			return err
		}
	}

	var res *forecast.Result
	if skill != "" {
		res, err = svc.GenerateSkillDemand(ctx, skill, daysAhead)
	} else {
		res, err = svc.GenerateResourceDemand(ctx, daysAhead)
	}
	if err != nil {
		return err
	}
	return printForecast(cmd.OutOrStdout(), res)
}

func printForecast(out io.Writer, res *forecast.Result) error {
	sel := res.Selection
	fmt.Fprintf(out, "History: %d days, %d records\n", sel.DataDays, sel.TotalPoints)
	if res.Status == forecast.StatusInsufficient {
		fmt.Fprintf(out, "Insufficient data: %s\n", res.Reason)
		return nil
	}
	fmt.Fprintf(out, "Method: %s (tier %d)\n", sel.Method, sel.Tier)
	if res.Status == forecast.StatusDegraded {
		fmt.Fprintf(out, "Enhancement failed, showing base forecasts: %s\n", res.Reason)
	}
	if len(res.Forecasts) == 0 {
		fmt.Fprintln(out, "No forecasts generated.")
		return nil
	}
	first := res.Forecasts[0]
	fmt.Fprintf(out, "Period: %s to %s\n\n", first.PeriodStart.Format(dateLayout), first.PeriodEnd.Format(dateLayout))

	adjusted := make(map[uint]forecast.Adjustment, len(res.Adjustments))
	for _, a := range res.Adjustments {
		adjusted[a.ForecastID] = a
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROLE\tHOURS\tCONFIDENCE\tADJUSTED")
	for _, f := range res.Forecasts {
		adj := "-"
		if a, ok := adjusted[f.ID]; ok {
			adj = fmt.Sprintf("%.1fh (%+.1f%%)", a.AdjustedHours, a.AdjustmentPercentage)
		}
		fmt.Fprintf(w, "%s\t%.1fh\t%.0f%%\t%s\n", f.Role, f.PredictedHours, f.Confidence*100, adj)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if res.Insights != nil && res.Insights.StrategicRecommendations != "" {
		fmt.Fprintf(out, "\nRecommendations: %s\n", res.Insights.StrategicRecommendations)
	}
	return nil
}
