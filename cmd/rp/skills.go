package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/resourcepro/internal/skilldemand"
)

func newSkillsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skills",
		Short: "Skill demand commands",
	}

	cmd.AddCommand(newSkillsAnalyzeCmd())
	return cmd
}

func newSkillsAnalyzeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compare open task demand with resource supply per skill",
		Long: `Counts open tasks needing each skill and resources holding it, and records
today's demand score. A skill with demand but no holders scores 99.99.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSkillsAnalyze(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to ResourcePro config file")
	return cmd
}

func runSkillsAnalyze(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	a := skilldemand.NewAnalyzer(gormDB)
	a.Now = nowFunc

	recs, err := a.Analyze(context.Background())
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(out, "No skills found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SKILL\tOPEN TASKS\tRESOURCES\tSCORE\tPREDICTED")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\t%d\n", r.SkillName, r.CurrentDemand, r.AvailableResources, r.DemandScore, r.PredictedFutureDemand)
	}
	return w.Flush()
}
