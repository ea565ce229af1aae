package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/resourcepro/internal/cost"
)

func newCostsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "costs",
		Short: "Project cost commands",
	}

	cmd.AddCommand(newCostsUpdateCmd())
	cmd.AddCommand(newCostsReportCmd())
	return cmd
}

func newCostsUpdateCmd() *cobra.Command {
	var (
		configPath string
		projectID  uint
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Record today's cost snapshot per project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCostsUpdate(cmd, configPath, projectID)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to ResourcePro config file")
	cmd.Flags().UintVarP(&projectID, "project", "p", 0, "project ID (default all projects)")
	return cmd
}

func runCostsUpdate(cmd *cobra.Command, configPath string, projectID uint) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	t := cost.NewTracker(gormDB)
	t.Now = nowFunc

	snaps, err := t.UpdateProjectCosts(context.Background(), projectID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated costs for %d projects\n", len(snaps))
	return nil
}

func newCostsReportCmd() *cobra.Command {
	var (
		configPath string
		status     string
		start, end string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show estimated versus actual cost per project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCostsReport(cmd, configPath, status, start, end)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to ResourcePro config file")
	cmd.Flags().StringVar(&status, "status", "", "only projects with this status")
	cmd.Flags().StringVar(&start, "start", "", "only projects ending on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "only projects starting on or before this date (YYYY-MM-DD)")
	return cmd
}

func runCostsReport(cmd *cobra.Command, configPath, status, startFlag, endFlag string) error {
	out := cmd.OutOrStdout()

	f := cost.ReportFilter{Status: status}
	var err error
	if f.Start, err = parseDateFlag("start", startFlag); err != nil {
		return err
	}
	if f.End, err = parseDateFlag("end", endFlag); err != nil {
		return err
	}

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	t := cost.NewTracker(gormDB)
	t.Now = nowFunc

	rows, err := t.VarianceReport(context.Background(), f)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "No projects found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROJECT\tSTATUS\tESTIMATED\tACTUAL\tVARIANCE\tBUDGET\tBUDGET USED")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s (%s%%)\t%s\t%s%%\n",
			r.ProjectID, r.Project, r.Status,
			formatMoney(r.EstimatedCost), formatMoney(r.ActualCost),
			formatMoney(r.Variance), r.VariancePercentage.StringFixed(1),
			formatBudget(r.Budget), r.BudgetUtilization.StringFixed(1))
	}
	return w.Flush()
}
