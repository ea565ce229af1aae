package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/resourcepro/internal/dashboard"
	"github.com/zulandar/resourcepro/internal/store"
	"github.com/zulandar/resourcepro/internal/utilization"
)

func newUtilizationCmd() *cobra.Command {
	var (
		configPath string
		resourceID uint
		start, end string
	)

	cmd := &cobra.Command{
		Use:   "utilization",
		Short: "Show allocated versus available hours",
		Long: `Shows utilization for every resource, or the per-assignment breakdown for one
resource with --resource. The range defaults to the current Monday-Sunday week.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUtilization(cmd, configPath, resourceID, start, end)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to ResourcePro config file")
	cmd.Flags().UintVarP(&resourceID, "resource", "r", 0, "resource ID for a detailed breakdown")
	cmd.Flags().StringVar(&start, "start", "", "range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "range end (YYYY-MM-DD)")
	return cmd
}

func runUtilization(cmd *cobra.Command, configPath string, resourceID uint, startFlag, endFlag string) error {
	out := cmd.OutOrStdout()

	startDate, endDate, err := resolveRange(startFlag, endFlag)
	if err != nil {
		return err
	}

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	calc := utilization.NewCalculator(gormDB)
	calc.Now = nowFunc
	ctx := context.Background()

	fmt.Fprintf(out, "Utilization %s to %s\n\n", startDate.Format(dateLayout), endDate.Format(dateLayout))

	if resourceID != 0 {
		res, err := store.GetResource(gormDB, resourceID)
		if err != nil {
			return err
		}
		b, err := calc.Breakdown(ctx, res, startDate, endDate)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s (%s): %s, %.1fh of %.1fh\n\n", b.ResourceName, b.Role, formatPercent(b.Utilization), b.AllocatedHours, b.AvailableHours)
		if len(b.Items) == 0 {
			fmt.Fprintln(out, "No assignments in range.")
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TASK\tALLOCATED\tIN RANGE")
		for _, it := range b.Items {
			fmt.Fprintf(w, "%s\t%dh\t%.1fh\n", it.TaskName, it.AllocatedHours, it.ProratedHours)
		}
		return w.Flush()
	}

	overview, err := dashboard.UtilizationSummary(ctx, gormDB, calc, startDate, endDate)
	if err != nil {
		return err
	}
	if len(overview.Resources) == 0 {
		fmt.Fprintln(out, "No resources found.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tROLE\tALLOCATED\tAVAILABLE\tUTILIZATION")
	for _, r := range overview.Resources {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.1fh\t%.1fh\t%s\n", r.ResourceID, r.Name, r.Role, r.AllocatedHours, r.AvailableHours, formatPercent(r.Utilization))
	}
	return w.Flush()
}

func newRecordCmd() *cobra.Command {
	var (
		configPath string
		days       int
		todayOnly  bool
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record daily utilization history",
		Long: `Writes one historical utilization record per resource per day. Re-running
for a day overwrites that day's records.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if todayOnly {
				days = 1
			}
			return runRecord(cmd, configPath, days)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to ResourcePro config file")
	cmd.Flags().IntVar(&days, "days", 30, "number of days to record, today included")
	cmd.Flags().BoolVar(&todayOnly, "today-only", false, "record today only")
	cmd.MarkFlagsMutuallyExclusive("days", "today-only")
	return cmd
}

func runRecord(cmd *cobra.Command, configPath string, days int) error {
	if days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	calc := utilization.NewCalculator(gormDB)
	calc.Now = nowFunc
	tracker := utilization.NewTracker(calc)

	n, err := tracker.Backfill(context.Background(), days)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d days of utilization history\n", n)
	return nil
}
